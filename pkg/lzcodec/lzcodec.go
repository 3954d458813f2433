// Package lzcodec provides dictionary-based whole-file transforms that
// sit alongside the Huffman, RLE and Caesar utilities. Output is the
// library's standard frame format (an LZ4 frame or a zstd frame), so
// files interoperate with the lz4 and zstd command line tools.
package lzcodec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"gsea/pkg/fileio"
)

// Algorithm selects a frame format
type Algorithm uint8

const (
	// LZ4 favours speed
	LZ4 Algorithm = iota + 1

	// Zstd favours ratio, at the library's default level
	Zstd
)

// String returns the name used on the command line
func (a Algorithm) String() string {
	switch a {
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm parses a name returned by Algorithm.String
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown algorithm: %q", name)
	}
}

// Compress writes r to w as one frame of the given algorithm
func Compress(algo Algorithm, r io.Reader, w io.Writer) error {
	switch algo {
	case LZ4:
		zw := lz4.NewWriter(w)
		if _, err := io.Copy(zw, r); err != nil {
			return fmt.Errorf("lz4 compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close lz4 writer: %w", err)
		}
		return nil

	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		if _, err := io.Copy(zw, r); err != nil {
			zw.Close()
			return fmt.Errorf("zstd compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zstd writer: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported algorithm: %s", algo)
	}
}

// Decompress expands a frame written by Compress from r into w
func Decompress(algo Algorithm, r io.Reader, w io.Writer) error {
	switch algo {
	case LZ4:
		if _, err := io.Copy(w, lz4.NewReader(r)); err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		return nil

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		if _, err := io.Copy(w, zr); err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported algorithm: %s", algo)
	}
}

// CompressFile compresses the file at input into a new file at output
func CompressFile(algo Algorithm, input, output string) error {
	return fileio.Transform(algo.String()+" compress", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return Compress(algo, r, w)
	})
}

// DecompressFile decompresses the file at input into a new file at output
func DecompressFile(algo Algorithm, input, output string) error {
	return fileio.Transform(algo.String()+" decompress", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return Decompress(algo, r, w)
	})
}
