package sorter_test

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/bartossh/sorter"
	"github.com/bartossh/sorter/monitoring"
	"github.com/bartossh/sorter/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSorter(t *testing.T, opts ...sorter.Option) *sorter.Sorter {
	t.Helper()

	opts = append([]sorter.Option{
		sorter.WithLogger(monitoring.NewLogger("sorter", io.Discard)),
	}, opts...)
	s, err := sorter.New(opts...)
	require.NoError(t, err)
	return s
}

func writeInput(t *testing.T, dir string, values []uint64) string {
	t.Helper()

	var sb strings.Builder
	for _, v := range values {
		sb.WriteString(strconv.FormatUint(v, 10))
		sb.WriteByte('\n')
	}
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func readOutput(t *testing.T, path string) []uint64 {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(content) == 0 {
		return nil
	}

	var values []uint64
	for _, line := range strings.Split(strings.TrimSuffix(string(content), "\n"), "\n") {
		v, err := strconv.ParseUint(line, 10, 64)
		require.NoError(t, err)
		values = append(values, v)
	}
	return values
}

func assertNoPartitionsLeft(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		_, ok := partition.Index(entry.Name())
		assert.False(t, ok, "leftover partition %s", entry.Name())
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		input     []uint64
		want      []uint64
	}{
		{
			name:      "empty input",
			batchSize: 10,
			input:     nil,
			want:      nil,
		},
		{
			name:      "single record",
			batchSize: 10,
			input:     []uint64{42},
			want:      []uint64{42},
		},
		{
			name:      "duplicates preserved",
			batchSize: 2,
			input:     []uint64{5, 3, 5, 1, 3, 5, 1, 1, 3},
			want:      []uint64{1, 1, 1, 3, 3, 3, 5, 5, 5},
		},
		{
			name:      "boundary values",
			batchSize: 2,
			input:     []uint64{17, math.MaxUint64, 0, 3},
			want:      []uint64{0, 3, 17, math.MaxUint64},
		},
		{
			name:      "already sorted",
			batchSize: 3,
			input:     []uint64{1, 2, 3, 4, 5, 6, 7},
			want:      []uint64{1, 2, 3, 4, 5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			inputPath := writeInput(t, dir, tt.input)
			outputPath := filepath.Join(dir, "sorted.txt")

			s := newSorter(t, sorter.WithBatchSize(tt.batchSize))
			require.NoError(t, s.Sort(context.Background(), inputPath, outputPath))

			assert.Equal(t, tt.want, readOutput(t, outputPath))
			assertNoPartitionsLeft(t, dir)
		})
	}
}

func TestSortEmptyInputCreatesEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeInput(t, dir, nil)
	outputPath := filepath.Join(dir, "sorted.txt")

	s := newSorter(t)
	require.NoError(t, s.Sort(context.Background(), inputPath, outputPath))

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestSortDescendingHundred(t *testing.T) {
	// 100 descending values with batch size 10 force ten partitions that
	// must merge back into 1..100.
	dir := t.TempDir()
	input := make([]uint64, 0, 100)
	for v := uint64(100); v >= 1; v-- {
		input = append(input, v)
	}
	inputPath := writeInput(t, dir, input)
	outputPath := filepath.Join(dir, "sorted.txt")

	s := newSorter(t, sorter.WithBatchSize(10))
	require.NoError(t, s.Sort(context.Background(), inputPath, outputPath))

	want := make([]uint64, 0, 100)
	for v := uint64(1); v <= 100; v++ {
		want = append(want, v)
	}
	assert.Equal(t, want, readOutput(t, outputPath))
	assertNoPartitionsLeft(t, dir)
}

func TestSortBatchSizeIndependence(t *testing.T) {
	input := make([]uint64, 500)
	rng := rand.New(rand.NewSource(1))
	for i := range input {
		input[i] = rng.Uint64() % 1000
	}

	want := append([]uint64(nil), input...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	for _, batchSize := range []int{1, 7, 100, 500, 10000} {
		t.Run(fmt.Sprintf("batch_%d", batchSize), func(t *testing.T) {
			dir := t.TempDir()
			inputPath := writeInput(t, dir, input)
			outputPath := filepath.Join(dir, "sorted.txt")

			s := newSorter(t, sorter.WithBatchSize(batchSize))
			require.NoError(t, s.Sort(context.Background(), inputPath, outputPath))

			assert.Equal(t, want, readOutput(t, outputPath))
			assertNoPartitionsLeft(t, dir)
		})
	}
}

func TestSortMissingInput(t *testing.T) {
	dir := t.TempDir()

	s := newSorter(t)
	err := s.Sort(context.Background(), filepath.Join(dir, "missing.txt"), filepath.Join(dir, "sorted.txt"))
	assert.Error(t, err)
	assertNoPartitionsLeft(t, dir)
}

func TestSortMalformedInput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("3\n1\nnot a number\n2\n"), 0o600))

	s := newSorter(t, sorter.WithBatchSize(2))
	err := s.Sort(context.Background(), inputPath, filepath.Join(dir, "sorted.txt"))
	assert.ErrorIs(t, err, partition.ErrMalformedRecord)
}

func TestNewRejectsInvalidBatchSize(t *testing.T) {
	_, err := sorter.New(sorter.WithBatchSize(0))
	assert.Error(t, err)

	_, err = sorter.New(sorter.WithBatchSize(-1))
	assert.Error(t, err)
}

func BenchmarkSort(b *testing.B) {
	dir := b.TempDir()
	rng := rand.New(rand.NewSource(42))

	var sb strings.Builder
	for range 100_000 {
		sb.WriteString(strconv.FormatUint(rng.Uint64(), 10))
		sb.WriteByte('\n')
	}
	inputPath := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(inputPath, []byte(sb.String()), 0o600); err != nil {
		b.Fatal(err)
	}

	s, err := sorter.New(
		sorter.WithBatchSize(10_000),
		sorter.WithLogger(monitoring.NewLogger("sorter", io.Discard)),
	)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		outputPath := filepath.Join(dir, fmt.Sprintf("sorted_%d.txt", i))
		if err := s.Sort(context.Background(), inputPath, outputPath); err != nil {
			b.Fatal(err)
		}
	}
}
