// Package lib is the single entry point to gsea's codecs and archivers.
// It picks the right operation for an algorithm and input kind and
// re-exports the types callers need from the packages underneath.
package lib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gsea/pkg/core"
	"gsea/pkg/lzcodec"
	"gsea/pkg/rle"
	"gsea/pkg/scan"
	"gsea/pkg/treehash"
)

// Types re-exported from core
type (
	Options   = core.Options
	Manifest  = core.Manifest
	EntryInfo = core.EntryInfo
	Kind      = core.Kind
)

// Archive kinds re-exported from core
const (
	KindUnknown = core.KindUnknown
	KindHAR     = core.KindHAR
	KindCSAR    = core.KindCSAR
)

// ErrDirectoryUnsupported reports a directory given to an algorithm that
// only works on single files
var ErrDirectoryUnsupported = errors.New("algorithm does not archive directories")

// Algorithm selects the codec used by Compress and Decompress
type Algorithm string

const (
	Huffman Algorithm = "huffman"
	RLE     Algorithm = "rle"
	LZ4     Algorithm = "lz4"
	Zstd    Algorithm = "zstd"
)

// Algorithms lists every supported codec
var Algorithms = []Algorithm{Huffman, RLE, LZ4, Zstd}

// ParseAlgorithm maps a name to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(name, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", name)
}

// extension is the suffix DefaultOutput appends for a single file
func (a Algorithm) extension() string {
	switch a {
	case RLE:
		return ".rle"
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ".huf"
	}
}

// Compress encodes input into output with algo. Only Huffman accepts a
// directory, which becomes a HAR archive.
func Compress(algo Algorithm, input, output string, opts Options) error {
	switch algo {
	case Huffman:
		return core.Compress(input, output, opts)
	case RLE:
		if err := requireFile(input); err != nil {
			return err
		}
		return rle.EncodeFile(input, output)
	case LZ4, Zstd:
		if err := requireFile(input); err != nil {
			return err
		}
		lz, err := lzcodec.ParseAlgorithm(string(algo))
		if err != nil {
			return err
		}
		return lzcodec.CompressFile(lz, input, output)
	}
	return fmt.Errorf("unknown algorithm %q", algo)
}

// Decompress reverses Compress. For Huffman a HAR archive is detected
// by its signature and extracted into the directory output.
func Decompress(algo Algorithm, input, output string, opts Options) error {
	switch algo {
	case Huffman:
		return core.Decompress(input, output, opts)
	case RLE:
		return rle.DecodeFile(input, output)
	case LZ4, Zstd:
		lz, err := lzcodec.ParseAlgorithm(string(algo))
		if err != nil {
			return err
		}
		return lzcodec.DecompressFile(lz, input, output)
	}
	return fmt.Errorf("unknown algorithm %q", algo)
}

func requireFile(input string) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", input, ErrDirectoryUnsupported)
	}
	return nil
}

// Encrypt applies the Caesar cipher; a directory becomes a CSAR archive
func Encrypt(input, output string, key byte, opts Options) error {
	return core.Encrypt(input, output, key, opts)
}

// Decrypt reverses Encrypt
func Decrypt(input, output string, key byte, opts Options) error {
	return core.Decrypt(input, output, key, opts)
}

// List reads the table of contents of a HAR or CSAR archive
func List(path string) (*Manifest, error) {
	return core.List(path)
}

// Detect classifies path by its signature
func Detect(path string) (Kind, error) {
	return core.Detect(path)
}

// Digest hashes every file under root that a scan with opts would archive
func Digest(root string, opts scan.Options) (treehash.Digest, []treehash.FileDigest, error) {
	return treehash.Sum(root, opts)
}

// Operation names what DefaultOutput is choosing a name for
type Operation int

const (
	OpCompress Operation = iota
	OpDecompress
	OpEncrypt
	OpDecrypt
)

// DefaultOutput picks an output path in the current directory when the
// caller gives none. Encoding appends an extension; decoding strips a
// known one, or appends ".out" when there is none to strip.
func DefaultOutput(op Operation, algo Algorithm, input string) (string, error) {
	base := filepath.Base(filepath.Clean(input))
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("cannot derive an output name from %q", input)
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}

	switch op {
	case OpCompress:
		if info.IsDir() {
			return base + ".har", nil
		}
		return base + algo.extension(), nil
	case OpEncrypt:
		if info.IsDir() {
			return base + ".csar", nil
		}
		return base + ".enc", nil
	case OpDecompress:
		return strip(base, algo.extension(), ".har"), nil
	case OpDecrypt:
		return strip(base, ".enc", ".csar"), nil
	}
	return "", fmt.Errorf("unknown operation %d", op)
}

func strip(base string, exts ...string) string {
	for _, ext := range exts {
		if name := strings.TrimSuffix(base, ext); name != base && name != "" {
			return name
		}
	}
	return base + ".out"
}
