package core

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gsea/pkg/scan"
)

// Container signatures. Every archive starts with one of these.
const (
	HARMagic  = "GSHAR100" // Huffman directory archive
	CSARMagic = "CSAR1000" // Caesar directory archive
	MagicSize = 8
)

// MaxThreads is the upper bound on the worker pool size
const MaxThreads = 32

// maxPathLen is the longest relative path an entry can store
const maxPathLen = 1<<16 - 1

// EntryType tags a HAR entry
type EntryType byte

const (
	EntryFile EntryType = 0 // regular file
)

// Kind classifies a file by its signature
type Kind int

const (
	KindUnknown Kind = iota
	KindHAR
	KindCSAR
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindHAR:
		return "har"
	case KindCSAR:
		return "csar"
	default:
		return "unknown"
	}
}

var (
	// ErrNotArchive reports a file whose signature is not the one expected
	ErrNotArchive = errors.New("not an archive of this type")

	// ErrKeyMismatch reports a cipher archive opened with the wrong key.
	// Nothing is extracted when it is returned.
	ErrKeyMismatch = errors.New("key does not match archive")

	// ErrUnsafePath reports an entry path that would land outside the
	// destination directory
	ErrUnsafePath = errors.New("entry path escapes destination")

	// ErrEmptyDirectory reports a directory with nothing to archive
	ErrEmptyDirectory = errors.New("directory has no files to archive")

	// ErrTruncated reports an archive that ends inside an entry
	ErrTruncated = errors.New("archive truncated")

	// ErrCorrupt reports inconsistent entry metadata
	ErrCorrupt = errors.New("archive corrupt")

	// ErrFileChanged reports a file whose size changed between the scan
	// and its transform. No archive is written when it is returned.
	ErrFileChanged = errors.New("file changed during archiving")
)

// FileEntry is one scanned file on its way into an archive. Path and
// size are fixed by the scan; the artifact fields are written once, by
// the worker that claims the entry.
type FileEntry struct {
	RelPath  string
	FilePath string
	Size     int64

	Artifact     string // temporary transformed copy
	ArtifactSize int64
}

// EntryInfo describes one stored entry
type EntryInfo struct {
	Type        EntryType
	RelPath     string
	Size        uint64 // original size
	PayloadSize int64  // stored bytes following the metadata
}

// Options tunes directory operations. The zero value is usable.
type Options struct {
	// Threads is the worker pool size, clamped to [1, MaxThreads].
	// Zero means the number of CPUs.
	Threads int

	// TempDir receives per-file artifacts. Empty means os.TempDir().
	TempDir string

	// Scan selects which files are archived
	Scan scan.Options

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// Progress enables periodic progress logging every ProgressInterval
	Progress         bool
	ProgressInterval time.Duration
}

func (o Options) threads() int {
	n := o.Threads
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > MaxThreads {
		n = MaxThreads
	}
	return n
}

func (o Options) tempDir() string {
	if o.TempDir == "" {
		return os.TempDir()
	}
	return o.TempDir
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}
