package core

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"gsea/pkg/huffman"
)

// harFormat is the Huffman directory archive:
//
//	magic "GSHAR100" | u32 count | entry*
//	entry: u8 type | u16 path length | path | u64 original size | payload
//
// The payload is a complete huffman stream. Its length is not stored;
// it follows from the frequency header at the start of the payload.
type harFormat struct{}

func (harFormat) name() string  { return "har" }
func (harFormat) magic() string { return HARMagic }

func (harFormat) transform(src, dst string) error { return huffman.CompressFile(src, dst) }
func (harFormat) restore(src, dst string) error   { return huffman.DecompressFile(src, dst) }

// verify reads the artifact's frequency header and checks it counts
// exactly the bytes the scan saw
func (harFormat) verify(e *FileEntry) error {
	a, err := os.Open(e.Artifact)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer a.Close()

	table, err := huffman.ReadHeader(bufio.NewReader(a))
	if err != nil {
		return fmt.Errorf("read artifact header: %w", err)
	}
	if total := table.Total(); total != uint64(e.Size) {
		return fmt.Errorf("%w: scanned %d bytes, compressed %d", ErrFileChanged, e.Size, total)
	}
	return nil
}

func (harFormat) writeHeader(w io.Writer, count uint32) error {
	if err := binary.Write(w, order, count); err != nil {
		return fmt.Errorf("write entry count: %w", err)
	}
	return nil
}

func (harFormat) readHeader(r io.Reader) (uint32, error) {
	return readCount(r)
}

func (harFormat) writeEntry(w io.Writer, e *FileEntry) error {
	if err := binary.Write(w, order, EntryFile); err != nil {
		return fmt.Errorf("write entry type: %w", err)
	}
	if err := writePath(w, e.RelPath); err != nil {
		return err
	}
	if err := binary.Write(w, order, uint64(e.Size)); err != nil {
		return fmt.Errorf("write size: %w", err)
	}
	return nil
}

func (harFormat) readEntry(r *bufio.Reader) (EntryInfo, error) {
	var info EntryInfo
	if err := binary.Read(r, order, &info.Type); err != nil {
		return info, fmt.Errorf("read entry type: %w", eofAsTruncated(err))
	}
	if info.Type != EntryFile {
		return info, fmt.Errorf("%w: unknown entry type %d", ErrCorrupt, info.Type)
	}
	rel, err := readPath(r)
	if err != nil {
		return info, err
	}
	info.RelPath = rel
	if err := binary.Read(r, order, &info.Size); err != nil {
		return info, fmt.Errorf("read size: %w", eofAsTruncated(err))
	}

	// the payload's own header tells how long the payload is
	head, err := r.Peek(huffman.HeaderSize)
	if err != nil {
		return info, fmt.Errorf("read payload header of %s: %w", rel, eofAsTruncated(err))
	}
	table, err := huffman.ReadHeader(bytes.NewReader(head))
	if err != nil {
		if errors.Is(err, huffman.ErrCorrupt) {
			return info, fmt.Errorf("payload header of %s: %w", rel, ErrCorrupt)
		}
		return info, err
	}
	if total := table.Total(); total != info.Size {
		return info, fmt.Errorf("%w: %s declares %d bytes, payload holds %d", ErrCorrupt, rel, info.Size, total)
	}
	info.PayloadSize, err = huffman.PayloadSize(&table)
	if err != nil {
		return info, fmt.Errorf("payload of %s: %w", rel, ErrCorrupt)
	}
	return info, nil
}
