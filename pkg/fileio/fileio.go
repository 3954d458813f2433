// Package fileio runs stream transforms from one file into another.
package fileio

import (
	"fmt"
	"io"
	"os"
)

// Func transforms r into w. The reader is seekable for codecs that
// read their input twice.
type Func func(r io.ReadSeeker, w io.Writer) error

// Transform opens input, creates output and runs fn between them. op
// names the transform in errors. A failed transform leaves whatever fn
// had written in output.
func Transform(op, input, output string, fn Func) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fn(in, out); err != nil {
		out.Close()
		return fmt.Errorf("%s %s: %w", op, input, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	return nil
}
