// Package scan enumerates the regular files under a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HiddenPrefix marks names the scanner skips
const HiddenPrefix = "."

// Entry is one regular file found under the scan root
type Entry struct {
	RelPath  string // relative to the root, '/' separated
	FilePath string // path on disk
	Size     int64
}

// Listing is the result of a scan
type Listing struct {
	Root    string
	Entries []Entry

	// Dropped counts files skipped because MaxFiles was reached
	Dropped int
}

// TotalSize returns the sum of the sizes of all entries
func (l *Listing) TotalSize() uint64 {
	var total uint64
	for _, e := range l.Entries {
		total += uint64(e.Size)
	}
	return total
}

// Options tunes a scan
type Options struct {
	// MaxFiles caps the number of entries. Zero means no cap.
	MaxFiles int

	// Exclude holds doublestar patterns matched against relative paths.
	// A matching directory is not descended into.
	Exclude []string
}

// Validate checks that every exclude pattern is well formed
func (o Options) Validate() error {
	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}
	if o.MaxFiles < 0 {
		return fmt.Errorf("max files must not be negative: %d", o.MaxFiles)
	}
	return nil
}

// Scan walks root and records every regular file beneath it. Names
// starting with HiddenPrefix are skipped. Symlinks to regular files are
// followed; symlinks to directories are not.
//
// The walk keeps an explicit stack of pending directories, so deep
// trees cost heap, not goroutine stack. Within a directory entries come
// in os.ReadDir order, files before the contents of subdirectories.
func Scan(root string, opts Options) (*Listing, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	listing := &Listing{Root: root}
	pending := []string{""}
	for len(pending) > 0 {
		rel := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		dir := filepath.Join(root, filepath.FromSlash(rel))
		children, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", dir, err)
		}

		var subdirs []string
		for _, child := range children {
			name := child.Name()
			if strings.HasPrefix(name, HiddenPrefix) {
				continue
			}
			childRel := path.Join(rel, name)
			if excluded(opts.Exclude, childRel) {
				continue
			}
			full := filepath.Join(dir, name)

			mode := child.Type()
			if mode&fs.ModeSymlink != 0 {
				target, err := os.Stat(full)
				if err != nil || !target.Mode().IsRegular() {
					continue
				}
				mode = 0
			}

			switch {
			case mode.IsDir():
				subdirs = append(subdirs, childRel)
			case mode.IsRegular():
				if opts.MaxFiles > 0 && len(listing.Entries) >= opts.MaxFiles {
					listing.Dropped++
					continue
				}
				fi, err := os.Stat(full)
				if err != nil {
					return nil, fmt.Errorf("stat %s: %w", full, err)
				}
				listing.Entries = append(listing.Entries, Entry{
					RelPath:  childRel,
					FilePath: full,
					Size:     fi.Size(),
				})
			}
		}

		// push in reverse so the first subdirectory is visited first
		for i := len(subdirs) - 1; i >= 0; i-- {
			pending = append(pending, subdirs[i])
		}
	}
	return listing, nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
