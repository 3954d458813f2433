// Package rle implements a counted-byte run-length codec. Each run is
// stored as a (count, value) byte pair; runs longer than 255 are split.
package rle

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"gsea/pkg/fileio"
)

// MaxRun is the longest run a single pair can describe
const MaxRun = 255

// ErrTruncated reports an encoded stream ending in the middle of a pair
var ErrTruncated = errors.New("rle: encoded data truncated")

// Encode run-length encodes r into w
func Encode(r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	var prev byte
	count := 0
	for {
		b, err := in.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if count > 0 && b == prev && count < MaxRun {
			count++
			continue
		}
		if count > 0 {
			if _, err := out.Write([]byte{byte(count), prev}); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		prev, count = b, 1
	}
	if count > 0 {
		if _, err := out.Write([]byte{byte(count), prev}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Decode expands pairs written by Encode from r into w
func Decode(r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	var pair [2]byte
	var run [MaxRun]byte
	for {
		_, err := io.ReadFull(in, pair[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		count, value := int(pair[0]), pair[1]
		for i := 0; i < count; i++ {
			run[i] = value
		}
		if _, err := out.Write(run[:count]); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// EncodeFile encodes the file at input into a new file at output
func EncodeFile(input, output string) error {
	return fileio.Transform("rle encode", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return Encode(r, w)
	})
}

// DecodeFile decodes the file at input into a new file at output
func DecodeFile(input, output string) error {
	return fileio.Transform("rle decode", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return Decode(r, w)
	})
}
