// Command sorter sorts a file of newline-delimited unsigned 64-bit integers
// that may be bigger than available memory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bartossh/sorter"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sorter:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sorter", flag.ContinueOnError)
	var (
		input  = fs.String("input", "", "input file path")
		output = fs.String("output", "", "output file path")
		batch  = fs.Int("batch", sorter.DefaultBatchSize, "batch size in records")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *input == "" || *output == "" {
		fs.Usage()
		return errors.New("both -input and -output are required")
	}

	s, err := sorter.New(sorter.WithBatchSize(*batch))
	if err != nil {
		return err
	}
	return s.Sort(context.Background(), *input, *output)
}
