package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Detect reads the signature of path. Files too short to carry one are
// KindUnknown.
func Detect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var sig [MagicSize]byte
	if _, err := io.ReadFull(f, sig[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return KindUnknown, nil
		}
		return KindUnknown, fmt.Errorf("read signature: %w", err)
	}
	switch string(sig[:]) {
	case HARMagic:
		return KindHAR, nil
	case CSARMagic:
		return KindCSAR, nil
	}
	return KindUnknown, nil
}

// IsHAR reports whether path starts with the HAR signature
func IsHAR(path string) bool {
	k, err := Detect(path)
	return err == nil && k == KindHAR
}

// IsCSAR reports whether path starts with the CSAR signature
func IsCSAR(path string) bool {
	k, err := Detect(path)
	return err == nil && k == KindCSAR
}

// Manifest is the table of contents of an archive
type Manifest struct {
	Kind    Kind
	Key     byte // CSAR only
	Entries []EntryInfo
}

// List reads the entry metadata of a HAR or CSAR archive without
// extracting anything. The CSAR key is reported, not checked.
func List(path string) (*Manifest, error) {
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}

	var f format
	switch kind {
	case KindHAR:
		f = harFormat{}
	case KindCSAR:
		f = csarFormat{skipKeyCheck: true}
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrNotArchive)
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()
	r := bufio.NewReaderSize(in, 64*1024)

	if err := readMagic(r, f.magic()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := &Manifest{Kind: kind}
	if kind == KindCSAR {
		key, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", eofAsTruncated(err))
		}
		m.Key = key
		if err := r.UnreadByte(); err != nil {
			return nil, err
		}
	}
	count, err := f.readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := uint32(0); i < count; i++ {
		entry, err := f.readEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		n, err := r.Discard(int(entry.PayloadSize))
		if err != nil {
			return nil, fmt.Errorf("entry %s: skipped %d of %d payload bytes: %w",
				entry.RelPath, n, entry.PayloadSize, eofAsTruncated(err))
		}
		m.Entries = append(m.Entries, entry)
	}
	return m, nil
}
