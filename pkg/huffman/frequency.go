package huffman

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

// Symbols is the size of the byte alphabet
const Symbols = 256

// HeaderSize is the size in bytes of a persisted frequency table
const HeaderSize = Symbols * 8

// FrequencyTable counts occurrences of every byte value in one input.
// It is persisted verbatim as the header of a compressed stream.
type FrequencyTable [Symbols]uint64

// Add counts every byte in p
func (t *FrequencyTable) Add(p []byte) {
	for _, b := range p {
		t[b]++
	}
}

// Total returns the sum of all counts, which equals the length of the
// input the table was built from.
func (t *FrequencyTable) Total() uint64 {
	var total uint64
	for _, n := range t {
		total += n
	}
	return total
}

// Distinct returns the number of symbols with a non-zero count
func (t *FrequencyTable) Distinct() int {
	distinct := 0
	for _, n := range t {
		if n > 0 {
			distinct++
		}
	}
	return distinct
}

// CountFrequencies builds a frequency table in a single pass over r
func CountFrequencies(r io.Reader) (FrequencyTable, error) {
	var table FrequencyTable
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		table.Add(buf[:n])
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return table, fmt.Errorf("count frequencies: %w", err)
		}
	}
}

// WriteHeader writes the 256 counts as little-endian 64-bit integers
func WriteHeader(w io.Writer, table *FrequencyTable) error {
	var buf [HeaderSize]byte
	for i, n := range table {
		binary.LittleEndian.PutUint64(buf[i*8:], n)
	}
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// ReadHeader reads a table written by WriteHeader. A header cut short
// is reported as ErrTruncated.
func ReadHeader(r io.Reader) (FrequencyTable, error) {
	var table FrequencyTable
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return table, fmt.Errorf("read header: %w", ErrTruncated)
		}
		return table, fmt.Errorf("read header: %w", err)
	}
	for i := range table {
		table[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	if err := table.validate(); err != nil {
		return table, fmt.Errorf("read header: %w", err)
	}
	return table, nil
}

// validate rejects tables whose total does not fit in 64 bits. Such a
// table cannot come from a real input and would wrap the tree weights.
func (t *FrequencyTable) validate() error {
	var total, carry uint64
	for _, n := range t {
		total, carry = bits.Add64(total, n, 0)
		if carry != 0 {
			return fmt.Errorf("%w: symbol total overflows", ErrCorrupt)
		}
	}
	return nil
}
