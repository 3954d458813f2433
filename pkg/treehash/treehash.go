// Package treehash computes a content digest of a directory tree.
//
// The digest covers every regular file the scanner would archive: its
// relative path and its bytes, visited in sorted path order. Two trees
// have the same digest exactly when they hold the same files with the
// same contents, regardless of traversal order or timestamps.
package treehash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/zeebo/blake3"

	"gsea/pkg/scan"
)

// Digest is a 32-byte BLAKE3 hash
type Digest [32]byte

// String returns the digest as lowercase hex
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// FileDigest is the hash of one file's content
type FileDigest struct {
	RelPath string
	Size    int64
	Digest  Digest
}

// Sum digests the tree rooted at root. Files are selected with the
// same rules as scan.Scan with opts.
func Sum(root string, opts scan.Options) (Digest, []FileDigest, error) {
	listing, err := scan.Scan(root, opts)
	if err != nil {
		return Digest{}, nil, err
	}
	entries := listing.Entries
	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })

	tree := blake3.New()
	files := make([]FileDigest, 0, len(entries))
	for _, entry := range entries {
		d, size, err := hashFile(entry.FilePath)
		if err != nil {
			return Digest{}, nil, err
		}
		files = append(files, FileDigest{RelPath: entry.RelPath, Size: size, Digest: d})

		// length-prefixed so "a"+"bc" and "ab"+"c" differ
		var prefix [8]byte
		binary.LittleEndian.PutUint64(prefix[:], uint64(len(entry.RelPath)))
		tree.Write(prefix[:])
		tree.Write([]byte(entry.RelPath))
		tree.Write(d[:])
	}

	var sum Digest
	copy(sum[:], tree.Sum(nil))
	return sum, files, nil
}

func hashFile(path string) (Digest, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("hash %s: %w", path, err)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, n, nil
}
