package recordio

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/bartossh/sorter/partition"
)

// Writer encodes records one decimal per line through a buffered writer.
// Callers must Flush before closing the underlying writer.
type Writer struct {
	bw  *bufio.Writer
	buf []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Write emits a single record followed by a newline.
func (w *Writer) Write(rec partition.Record) error {
	w.buf = rec.AppendText(w.buf[:0])
	w.buf = append(w.buf, '\n')
	if _, err := w.bw.Write(w.buf); err != nil {
		return fmt.Errorf("recordio: failed to write record: %w", err)
	}
	return nil
}

// Flush forces buffered records down to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("recordio: failed to flush records: %w", err)
	}
	return nil
}

// Reader decodes records line by line. After Next returns false, Err
// distinguishes a clean end of stream from a read or parse failure.
//
// A final newline at end of input is not surfaced as a line; an interior
// blank line is, and fails to parse.
type Reader struct {
	sc  *bufio.Scanner
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Next returns the next record of the stream, or false when the stream is
// exhausted or broken.
func (r *Reader) Next() (partition.Record, bool) {
	if r.err != nil {
		return 0, false
	}
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return 0, false
	}
	rec, err := partition.Parse(r.sc.Text())
	if err != nil {
		r.err = err
		return 0, false
	}
	return rec, true
}

// Err returns the first failure encountered, or nil after a clean end of
// stream.
func (r *Reader) Err() error {
	return r.err
}

// Seq returns an iterator over the records of r. Decode failures end the
// sequence silently; callers that must distinguish them should use Reader.
func Seq(r io.Reader) iter.Seq[partition.Record] {
	return func(yield func(partition.Record) bool) {
		rd := NewReader(r)
		for rec, ok := rd.Next(); ok; rec, ok = rd.Next() {
			if !yield(rec) {
				return
			}
		}
	}
}
