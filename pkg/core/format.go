package core

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// format describes one container layout and the per-file transform
// whose output it stores. The pipeline is shared; formats differ only
// in what surrounds each payload.
type format interface {
	name() string
	magic() string

	// transform and restore are the per-file operation and its inverse
	transform(src, dst string) error
	restore(src, dst string) error

	// verify checks a finished artifact against the size its entry
	// will declare
	verify(e *FileEntry) error

	// writeHeader and readHeader handle the fields between the
	// signature and the first entry
	writeHeader(w io.Writer, count uint32) error
	readHeader(r io.Reader) (uint32, error)

	// writeEntry and readEntry handle the metadata preceding a payload.
	// readEntry must report the payload length.
	writeEntry(w io.Writer, e *FileEntry) error
	readEntry(r *bufio.Reader) (EntryInfo, error)
}

// All multi-byte integers in both containers are little-endian.
var order = binary.LittleEndian

func writePath(w io.Writer, rel string) error {
	if err := binary.Write(w, order, uint16(len(rel))); err != nil {
		return fmt.Errorf("write path length: %w", err)
	}
	if _, err := io.WriteString(w, rel); err != nil {
		return fmt.Errorf("write path: %w", err)
	}
	return nil
}

func readPath(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, order, &n); err != nil {
		return "", fmt.Errorf("read path length: %w", eofAsTruncated(err))
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read path: %w", eofAsTruncated(err))
	}
	return string(buf), nil
}

func readCount(r io.Reader) (uint32, error) {
	var count uint32
	if err := binary.Read(r, order, &count); err != nil {
		return 0, fmt.Errorf("read entry count: %w", eofAsTruncated(err))
	}
	return count, nil
}

func eofAsTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
