// Package recordio owns the text record format shared by the input file,
// partition files and the output file: one unsigned 64-bit decimal integer
// per line, newline terminated.
//
// The package provides a buffered Writer, a pull-based Reader that reports
// decode failures through Err, and a Seq adapter exposing a stream as an
// iter.Seq for whole-stream consumers.
package recordio
