package core

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"gsea/pkg/huffman"
	"gsea/pkg/progress"
	"gsea/pkg/scan"
)

// Compress compresses input into output with Huffman coding. A
// directory becomes a HAR archive; a regular file becomes a single
// compressed stream.
func Compress(input, output string, opts Options) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return CompressDirectory(input, output, opts)
	}
	opts.logger().Debug("compressing file", "input", input, "output", output)
	return huffman.CompressFile(input, output)
}

// CompressDirectory archives every file under input into a HAR archive
func CompressDirectory(input, output string, opts Options) error {
	return archiveDirectory(input, output, harFormat{}, opts)
}

// archiveDirectory scans input, transforms every file in parallel and
// packs the results into output in scan order.
func archiveDirectory(input, output string, f format, opts Options) error {
	logger := opts.logger()

	listing, err := scan.Scan(input, opts.Scan)
	if err != nil {
		return fmt.Errorf("scan %s: %w", input, err)
	}
	if listing.Dropped > 0 {
		logger.Warn("file limit reached, archive is incomplete",
			"limit", opts.Scan.MaxFiles, "dropped", listing.Dropped)
	}
	if len(listing.Entries) == 0 {
		return fmt.Errorf("%s: %w", input, ErrEmptyDirectory)
	}
	if uint64(len(listing.Entries)) > math.MaxUint32 {
		return fmt.Errorf("%s: %d files exceed the archive entry limit", input, len(listing.Entries))
	}

	entries := make([]FileEntry, len(listing.Entries))
	for i, e := range listing.Entries {
		if len(e.RelPath) > maxPathLen {
			return fmt.Errorf("path too long for archive: %s", e.RelPath)
		}
		entries[i] = FileEntry{RelPath: e.RelPath, FilePath: e.FilePath, Size: e.Size}
	}

	p := &pipeline{
		entries:   entries,
		threads:   opts.threads(),
		tempDir:   opts.tempDir(),
		transform: f.transform,
		verify:    f.verify,
		logger:    logger,
	}
	defer p.cleanup()

	logger.Info("archiving directory",
		"format", f.name(), "input", input, "files", len(entries), "threads", p.threads)
	if opts.Progress {
		p.tracker = progress.Start(logger, f.name()+" "+input, listing.TotalSize(), opts.ProgressInterval)
		defer p.tracker.Stop()
	}

	if err := p.run(); err != nil {
		return err
	}
	if err := p.pack(output, f); err != nil {
		return err
	}
	logger.Info("archive written", "output", output, "files", len(entries))
	return nil
}

// pipeline holds the state of one archive operation: the entry list
// and the cursor workers claim entries from.
type pipeline struct {
	entries   []FileEntry
	threads   int
	tempDir   string
	transform func(src, dst string) error
	verify    func(e *FileEntry) error
	logger    *slog.Logger
	tracker   *progress.Tracker

	mu   sync.Mutex
	next int
}

// claim hands out the next unprocessed entry index
func (p *pipeline) claim() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next >= len(p.entries) {
		return 0, false
	}
	i := p.next
	p.next++
	return i, true
}

// run starts the worker pool and waits for every worker to finish.
// After the first failure no further entries are claimed.
func (p *pipeline) run() error {
	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < p.threads; w++ {
		worker := w
		g.Go(func() error {
			for ctx.Err() == nil {
				i, ok := p.claim()
				if !ok {
					return nil
				}
				if err := p.process(worker, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// process transforms entry i into its own temporary artifact
func (p *pipeline) process(worker, i int) error {
	e := &p.entries[i]

	tmp, err := os.CreateTemp(p.tempDir, "gsea-*.part")
	if err != nil {
		return fmt.Errorf("create artifact for %s: %w", e.RelPath, err)
	}
	e.Artifact = tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact for %s: %w", e.RelPath, err)
	}

	if err := p.transform(e.FilePath, e.Artifact); err != nil {
		return fmt.Errorf("transform %s: %w", e.RelPath, err)
	}
	info, err := os.Stat(e.Artifact)
	if err != nil {
		return fmt.Errorf("stat artifact for %s: %w", e.RelPath, err)
	}
	e.ArtifactSize = info.Size()
	if p.verify != nil {
		if err := p.verify(e); err != nil {
			return fmt.Errorf("%s: %w", e.RelPath, err)
		}
	}

	p.tracker.Add(uint64(e.Size))
	p.logger.Debug("entry transformed",
		"worker", worker, "path", e.RelPath, "size", e.Size, "stored", e.ArtifactSize)
	return nil
}

// pack writes the container in scan order, deleting each artifact once
// it has been copied in.
func (p *pipeline) pack(output string, f format) error {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriterSize(out, 64*1024)
	if _, err := io.WriteString(w, f.magic()); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := f.writeHeader(w, uint32(len(p.entries))); err != nil {
		return err
	}

	for i := range p.entries {
		e := &p.entries[i]
		if err := f.writeEntry(w, e); err != nil {
			return fmt.Errorf("write entry %s: %w", e.RelPath, err)
		}
		if err := appendArtifact(w, e); err != nil {
			return err
		}
		if err := os.Remove(e.Artifact); err != nil {
			return fmt.Errorf("remove artifact for %s: %w", e.RelPath, err)
		}
		e.Artifact = ""
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func appendArtifact(w io.Writer, e *FileEntry) error {
	a, err := os.Open(e.Artifact)
	if err != nil {
		return fmt.Errorf("open artifact for %s: %w", e.RelPath, err)
	}
	defer a.Close()

	n, err := io.Copy(w, a)
	if err != nil {
		return fmt.Errorf("copy artifact for %s: %w", e.RelPath, err)
	}
	if n != e.ArtifactSize {
		return fmt.Errorf("artifact for %s: copied %d bytes, expected %d", e.RelPath, n, e.ArtifactSize)
	}
	return nil
}

// cleanup removes artifacts left behind by a failed run
func (p *pipeline) cleanup() {
	for i := range p.entries {
		if a := p.entries[i].Artifact; a != "" {
			os.Remove(a)
			p.entries[i].Artifact = ""
		}
	}
}
