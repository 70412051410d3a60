// Package monitoring provides the structured JSON logger and run statistics
// shared by the sort phases.
package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger writes one JSON log entry per line.
type Logger struct {
	component string
	mu        sync.Mutex
	enc       *json.Encoder
}

func NewLogger(component string, w io.Writer) *Logger {
	return &Logger{
		component: component,
		enc:       json.NewEncoder(w),
	}
}

func (l *Logger) Log(_ context.Context, level LogLevel, eventType, message string, details map[string]any) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.component,
		EventType: eventType,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}
