// Package huffman implements a static Huffman coder for whole files.
//
// A compressed stream is the 256-entry frequency table (see WriteHeader)
// followed by the bitstream, MSB first and zero padded to a byte
// boundary. The decoder stops after emitting exactly the number of
// symbols the table declares, so padding bits are never read as data.
package huffman

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"gsea/pkg/fileio"
)

var (
	// ErrTruncated reports a stream that ends before the declared
	// number of symbols has been decoded.
	ErrTruncated = errors.New("huffman: compressed data truncated")

	// ErrCorrupt reports a stream whose header or bits cannot have
	// been produced by Compress.
	ErrCorrupt = errors.New("huffman: compressed data corrupt")

	// ErrCodeTooLong reports a frequency distribution whose deepest
	// code does not fit in MaxCodeLen bits.
	ErrCodeTooLong = errors.New("huffman: code exceeds maximum length")
)

const bufferSize = 32 * 1024

// Compress encodes r into w. The input is read twice: once to build
// the frequency table and, after rewinding, once to emit the codes.
func Compress(r io.ReadSeeker, w io.Writer) error {
	table, err := CountFrequencies(r)
	if err != nil {
		return err
	}

	out := bufio.NewWriterSize(w, bufferSize)
	if err := WriteHeader(out, &table); err != nil {
		return err
	}

	tree := BuildTree(&table)
	if tree == nil {
		return flush(out)
	}
	codes, err := DeriveCodes(tree)
	if err != nil {
		return err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind input: %w", err)
	}

	bw := NewBitWriter(out)
	buf := make([]byte, bufferSize)
	var seen uint64
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			c := codes[b]
			if c.Len == 0 {
				return fmt.Errorf("input changed between passes: unexpected byte %#02x", b)
			}
			bw.WriteCode(c.Bits, c.Len)
		}
		seen += uint64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
	if seen != table.Total() {
		return fmt.Errorf("input changed between passes: read %d bytes, counted %d", seen, table.Total())
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("write bitstream: %w", err)
	}
	return flush(out)
}

// Decompress decodes a stream written by Compress from r into w
func Decompress(r io.Reader, w io.Writer) error {
	in := bufio.NewReaderSize(r, bufferSize)
	table, err := ReadHeader(in)
	if err != nil {
		return err
	}

	tree := BuildTree(&table)
	total := table.Total()
	if tree == nil || total == 0 {
		return nil
	}

	out := bufio.NewWriterSize(w, bufferSize)
	br := NewBitReader(in)
	for written := uint64(0); written < total; written++ {
		node := tree.Root
		for !node.IsLeaf() {
			bit, err := br.ReadBit()
			if err == io.EOF {
				return fmt.Errorf("decoded %d of %d symbols: %w", written, total, ErrTruncated)
			}
			if err != nil {
				return fmt.Errorf("read bitstream: %w", err)
			}
			if bit == 0 {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		if node.synthetic {
			return fmt.Errorf("symbol %d decodes to padding leaf: %w", written, ErrCorrupt)
		}
		if err := out.WriteByte(node.Symbol); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return flush(out)
}

// PayloadSize returns the exact length of a compressed stream whose
// header is table: the header itself plus the padded bitstream.
func PayloadSize(table *FrequencyTable) (int64, error) {
	if err := table.validate(); err != nil {
		return 0, err
	}
	nbits, ok := BuildTree(table).EncodedBits()
	if !ok {
		return 0, fmt.Errorf("%w: bitstream length overflows", ErrCorrupt)
	}
	nbytes := nbits/8 + (nbits%8+7)/8
	if nbytes > math.MaxInt64-HeaderSize {
		return 0, fmt.Errorf("%w: bitstream length overflows", ErrCorrupt)
	}
	return HeaderSize + int64(nbytes), nil
}

// CompressFile compresses the file at input into a new file at output
func CompressFile(input, output string) error {
	return fileio.Transform("compress", input, output, Compress)
}

// DecompressFile decompresses the file at input into a new file at output
func DecompressFile(input, output string) error {
	return fileio.Transform("decompress", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return Decompress(r, w)
	})
}

func flush(w *bufio.Writer) error {
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
