package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gsea/pkg/huffman"
	"gsea/pkg/progress"
)

// Decompress reverses Compress. A HAR archive is extracted into the
// directory output; anything else is decoded as a single compressed
// stream into the file output.
func Decompress(input, output string, opts Options) error {
	kind, err := Detect(input)
	if err != nil {
		return err
	}
	if kind == KindHAR {
		return DecompressDirectory(input, output, opts)
	}
	opts.logger().Debug("decompressing file", "input", input, "output", output)
	return huffman.DecompressFile(input, output)
}

// DecompressDirectory extracts a HAR archive into dest
func DecompressDirectory(input, dest string, opts Options) error {
	return extractArchive(input, dest, harFormat{}, opts)
}

// extractArchive reads input sequentially and restores every entry
// under dest. Entries already written stay on disk if a later one fails.
func extractArchive(input, dest string, f format, opts Options) error {
	logger := opts.logger()

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()
	r := bufio.NewReaderSize(in, 64*1024)

	if err := readMagic(r, f.magic()); err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	count, err := f.readHeader(r)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	logger.Info("extracting archive", "format", f.name(), "input", input, "files", count, "dest", dest)

	var tracker *progress.Tracker
	if opts.Progress {
		if info, err := in.Stat(); err == nil {
			tracker = progress.Start(logger, "extract "+input, uint64(info.Size()), opts.ProgressInterval)
			defer tracker.Stop()
		}
	}

	for i := uint32(0); i < count; i++ {
		entry, err := f.readEntry(r)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if err := extractEntry(r, dest, entry, f, opts, tracker); err != nil {
			return fmt.Errorf("entry %s: %w", entry.RelPath, err)
		}
		logger.Debug("entry extracted", "path", entry.RelPath, "size", entry.Size)
	}
	logger.Info("archive extracted", "dest", dest, "files", count)
	return nil
}

// extractEntry streams one payload into a temporary artifact and
// restores it to its final path.
func extractEntry(r io.Reader, dest string, entry EntryInfo, f format, opts Options, tracker *progress.Tracker) error {
	target, err := safeJoin(dest, entry.RelPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(opts.tempDir(), "gsea-*.part")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.CopyN(&progress.Writer{W: tmp, Tracker: tracker}, r, entry.PayloadSize)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("read %d of %d payload bytes: %w", n, entry.PayloadSize, ErrTruncated)
	}
	if err != nil {
		return fmt.Errorf("copy payload: %w", err)
	}

	if err := f.restore(tmp.Name(), target); err != nil {
		return err
	}
	return nil
}

// safeJoin resolves an archived '/'-separated path under dest
func safeJoin(dest, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if rel == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%q: %w", rel, ErrUnsafePath)
	}
	return filepath.Join(dest, local), nil
}

// readMagic consumes the signature and checks it matches want
func readMagic(r io.Reader, want string) error {
	var got [MagicSize]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrNotArchive
		}
		return fmt.Errorf("read magic: %w", err)
	}
	if string(got[:]) != want {
		return ErrNotArchive
	}
	return nil
}
