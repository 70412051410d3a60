package partition

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedRecord reports a line that is not an unsigned 64-bit decimal
// integer.
var ErrMalformedRecord = errors.New("partition: malformed record")

// Record is a single sortable value. The full uint64 range is valid data;
// no sentinel values are reserved.
type Record uint64

// Parse decodes one input line into a Record.
func Parse(line string) (Record, error) {
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	return Record(v), nil
}

func (r Record) String() string {
	return strconv.FormatUint(uint64(r), 10)
}

// AppendText appends the decimal form of r to b.
func (r Record) AppendText(b []byte) []byte {
	return strconv.AppendUint(b, uint64(r), 10)
}

// Prefix is the fixed name prefix of partition files. It is configuration,
// not state: both phases derive partition paths from it and the index alone.
const Prefix = "sort_temp_file_"

const ext = ".txt"

// Path returns the file path of the partition with the given index under dir.
func Path(dir string, index int) string {
	return filepath.Join(dir, Prefix+strconv.Itoa(index)+ext)
}

// Dir returns the directory partitions share with the output file: the
// output path's parent, or the working directory when the path has none.
func Dir(outputPath string) string {
	return filepath.Dir(outputPath)
}

// Index reports the partition index encoded in a file name, and whether the
// name follows the partition naming scheme at all.
func Index(name string) (int, bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, Prefix) || !strings.HasSuffix(base, ext) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, Prefix), ext))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
