// gsea compresses and enciphers files and directories.
//
// A single file is transformed into a single file. A directory is
// archived: with Huffman coding into a HAR archive, with the Caesar
// cipher into a CSAR archive. Decoding detects archives by signature
// and extracts them into a directory.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"gsea/lib"
	"gsea/pkg/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	compress, decompress bool
	encrypt, decrypt     bool
	list, digest         bool

	key  uint8
	algo string

	configPath string
	threads    int
	tempDir    string
	exclude    []string
	maxFiles   int
	progress   bool
	logLevel   string
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags
	flagSet := pflag.NewFlagSet("gsea", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVarP(&f.compress, "compress", "c", false, "compress a file or archive a directory")
	flagSet.BoolVarP(&f.decompress, "decompress", "d", false, "decompress a file or extract a HAR archive")
	flagSet.BoolVarP(&f.encrypt, "encrypt", "e", false, "encipher a file or archive a directory as CSAR")
	flagSet.BoolVarP(&f.decrypt, "decrypt", "u", false, "decipher a file or extract a CSAR archive")
	flagSet.BoolVarP(&f.list, "list", "l", false, "list the entries of an archive")
	flagSet.BoolVar(&f.digest, "digest", false, "print the content digest of a directory")
	flagSet.Uint8VarP(&f.key, "key", "k", 0, "cipher key, 0-255 (required with -e and -u)")
	flagSet.StringVarP(&f.algo, "algo", "a", string(lib.Huffman), "codec for -c and -d: huffman, rle, lz4 or zstd")
	flagSet.StringVar(&f.configPath, "config", "", "YAML config file (default: $"+config.EnvVar+")")
	flagSet.IntVarP(&f.threads, "threads", "t", 0, fmt.Sprintf("worker threads for directories, at most %d (0: number of CPUs)", config.MaxThreads))
	flagSet.StringVar(&f.tempDir, "temp-dir", "", "directory for temporary per-file artifacts")
	flagSet.StringArrayVar(&f.exclude, "exclude", nil, "skip paths matching this glob (repeatable)")
	flagSet.IntVar(&f.maxFiles, "max-files", 0, "archive at most this many files (0: no limit)")
	flagSet.BoolVar(&f.progress, "progress", false, "log progress of long operations")
	flagSet.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}

	cfg, err := loadConfig(flagSet, &f)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts := cfg.Options(logger)

	algo, err := lib.ParseAlgorithm(f.algo)
	if err != nil {
		return err
	}

	ops := 0
	for _, set := range []bool{f.compress, f.decompress, f.encrypt, f.decrypt, f.list, f.digest} {
		if set {
			ops++
		}
	}
	if ops != 1 {
		printHelp(flagSet, stderr)
		return errors.New("exactly one of -c, -d, -e, -u, --list or --digest is required")
	}
	if (f.encrypt || f.decrypt) && !flagSet.Changed("key") {
		return errors.New("-e and -u require -k <key>")
	}

	positional := flagSet.Args()
	switch {
	case f.list:
		if len(positional) != 1 {
			return errors.New("usage: gsea --list <archive>")
		}
		return listArchive(stdout, positional[0])
	case f.digest:
		if len(positional) != 1 {
			return errors.New("usage: gsea --digest <directory>")
		}
		return printDigest(stdout, positional[0], cfg)
	}

	if len(positional) < 1 || len(positional) > 2 {
		return errors.New("expected <input> [output]")
	}
	input := positional[0]

	var op lib.Operation
	switch {
	case f.compress:
		op = lib.OpCompress
	case f.decompress:
		op = lib.OpDecompress
	case f.encrypt:
		op = lib.OpEncrypt
	case f.decrypt:
		op = lib.OpDecrypt
	}
	output := ""
	if len(positional) == 2 {
		output = positional[1]
	} else if output, err = lib.DefaultOutput(op, algo, input); err != nil {
		return err
	}

	logger.Debug("starting", "input", input, "output", output, "algo", algo, "threads", opts.Threads)
	switch op {
	case lib.OpCompress:
		err = lib.Compress(algo, input, output, opts)
	case lib.OpDecompress:
		err = lib.Decompress(algo, input, output, opts)
	case lib.OpEncrypt:
		err = lib.Encrypt(input, output, f.key, opts)
	case lib.OpDecrypt:
		err = lib.Decrypt(input, output, f.key, opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, output)
	return nil
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(flagSet *pflag.FlagSet, f *flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagSet.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flagSet.Changed("temp-dir") {
		cfg.TempDir = f.tempDir
	}
	if flagSet.Changed("exclude") {
		cfg.Exclude = f.exclude
	}
	if flagSet.Changed("max-files") {
		cfg.MaxFiles = f.maxFiles
	}
	if flagSet.Changed("progress") {
		cfg.Progress = f.progress
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func listArchive(w io.Writer, path string) error {
	m, err := lib.List(path)
	if err != nil {
		return err
	}
	if m.Kind == lib.KindCSAR {
		fmt.Fprintf(w, "%s archive, key %d, %d entries\n", m.Kind, m.Key, len(m.Entries))
	} else {
		fmt.Fprintf(w, "%s archive, %d entries\n", m.Kind, len(m.Entries))
	}
	var total, stored uint64
	for _, e := range m.Entries {
		fmt.Fprintf(w, "%10s %10s  %s\n", humanize.Bytes(e.Size), humanize.Bytes(uint64(e.PayloadSize)), e.RelPath)
		total += e.Size
		stored += uint64(e.PayloadSize)
	}
	fmt.Fprintf(w, "%10s %10s  total\n", humanize.Bytes(total), humanize.Bytes(stored))
	return nil
}

func printDigest(w io.Writer, root string, cfg *config.Config) error {
	sum, files, err := lib.Digest(root, cfg.Scan())
	if err != nil {
		return err
	}
	for _, fd := range files {
		fmt.Fprintf(w, "%s  %s\n", fd.Digest, fd.RelPath)
	}
	fmt.Fprintf(w, "%s  %s (%d files)\n", sum, root, len(files))
	return nil
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `gsea: Huffman compression and Caesar enciphering for files and directories.

Usage:
  gsea -c [-a algo] <input> [output]
  gsea -d [-a algo] <input> [output]
  gsea -e -k <key> <input> [output]
  gsea -u -k <key> <input> [output]
  gsea --list <archive>
  gsea --digest <directory>

A directory given to -c becomes a HAR archive; given to -e, a CSAR
archive. -d and -u recognise archives by their signature and extract
them into the output directory. Without an output name one is derived
from the input.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
