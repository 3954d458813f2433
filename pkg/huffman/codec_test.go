package huffman

import (
	"bytes"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func roundTrip(t *testing.T, input []byte) []byte {
	t.Helper()
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(input), &compressed); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	var decompressed bytes.Buffer
	if err := Decompress(bytes.NewReader(compressed.Bytes()), &decompressed); err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	return decompressed.Bytes()
}

func TestRoundTrip(t *testing.T) {
	random := make([]byte, 64*1024)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("Failed to generate random content: %v", err)
	}
	every := make([]byte, 0, 256*3)
	for i := 0; i < 3; i++ {
		for b := 0; b < 256; b++ {
			every = append(every, byte(b))
		}
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"single byte", []byte{'x'}},
		{"single zero byte", []byte{0}},
		{"repeated byte", bytes.Repeat([]byte{'z'}, 1000)},
		{"repeated zero", make([]byte, 4097)},
		{"two symbols", []byte("abababababbbbbba")},
		{"scenario", []byte("AAAABBBCCD")},
		{"text", bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 200)},
		{"every byte value", every},
		{"random", random},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.input)
			if !bytes.Equal(got, tt.input) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.input))
			}
		})
	}
}

func TestHeaderTotalEqualsInputLength(t *testing.T) {
	inputs := [][]byte{nil, []byte("a"), []byte("AAAABBBCCD"), bytes.Repeat([]byte{7, 8, 9}, 333)}
	for _, input := range inputs {
		var compressed bytes.Buffer
		if err := Compress(bytes.NewReader(input), &compressed); err != nil {
			t.Fatalf("Compress failed: %v", err)
		}
		table, err := ReadHeader(&compressed)
		if err != nil {
			t.Fatalf("ReadHeader failed: %v", err)
		}
		if got := table.Total(); got != uint64(len(input)) {
			t.Errorf("header total = %d, want %d", got, len(input))
		}
	}
}

func TestEmptyInputIsHeaderOnly(t *testing.T) {
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(nil), &compressed); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if compressed.Len() != HeaderSize {
		t.Fatalf("compressed empty input is %d bytes, want %d", compressed.Len(), HeaderSize)
	}
}

func TestSingleSymbolDecodesToExactCount(t *testing.T) {
	const n = 12345
	input := bytes.Repeat([]byte{'Q'}, n)
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(input), &compressed); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	// one bit per symbol
	if want := HeaderSize + (n+7)/8; compressed.Len() != want {
		t.Errorf("compressed size = %d, want %d", compressed.Len(), want)
	}
	got := roundTrip(t, input)
	if len(got) != n || bytes.Count(got, []byte{'Q'}) != n {
		t.Fatalf("decoded %d bytes, want %d copies of 'Q'", len(got), n)
	}
}

func TestScenarioCodeLengths(t *testing.T) {
	input := []byte("AAAABBBCCD")
	table, err := CountFrequencies(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("CountFrequencies failed: %v", err)
	}
	for sym, want := range map[byte]uint64{'A': 4, 'B': 3, 'C': 2, 'D': 1} {
		if table[sym] != want {
			t.Errorf("frequency of %q = %d, want %d", sym, table[sym], want)
		}
	}
	codes, err := DeriveCodes(BuildTree(&table))
	if err != nil {
		t.Fatalf("DeriveCodes failed: %v", err)
	}
	for _, short := range []byte("AB") {
		for _, long := range []byte("CD") {
			if codes[short].Len >= codes[long].Len {
				t.Errorf("code for %q (%d bits) not shorter than %q (%d bits)",
					short, codes[short].Len, long, codes[long].Len)
			}
		}
	}
	if got := roundTrip(t, input); string(got) != "AAAABBBCCD" {
		t.Fatalf("round trip = %q", got)
	}
}

func TestDecompressTruncated(t *testing.T) {
	input := bytes.Repeat([]byte("truncate me please "), 50)
	var compressed bytes.Buffer
	if err := Compress(bytes.NewReader(input), &compressed); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	tests := []struct {
		name string
		cut  int
	}{
		{"missing bitstream", HeaderSize},
		{"partial bitstream", compressed.Len() - 5},
		{"partial header", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := compressed.Bytes()[:tt.cut]
			err := Decompress(bytes.NewReader(data), &bytes.Buffer{})
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("Decompress error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestDecompressSyntheticLeafIsCorrupt(t *testing.T) {
	var table FrequencyTable
	table['a'] = 3
	var stream bytes.Buffer
	if err := WriteHeader(&stream, &table); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	// the only valid code is 0; a 1 walks into the padding leaf
	stream.WriteByte(0b01000000)

	err := Decompress(&stream, &bytes.Buffer{})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Decompress error = %v, want ErrCorrupt", err)
	}
}

func TestReadHeaderOverflow(t *testing.T) {
	var table FrequencyTable
	table[0] = ^uint64(0)
	table[1] = 1
	var stream bytes.Buffer
	if err := WriteHeader(&stream, &table); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	if _, err := ReadHeader(&stream); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("ReadHeader error = %v, want ErrCorrupt", err)
	}
}

func TestPayloadSizeMatchesCompressedLength(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("x"),
		[]byte("AAAABBBCCD"),
		bytes.Repeat([]byte("payload size "), 77),
	}
	for _, input := range inputs {
		var compressed bytes.Buffer
		if err := Compress(bytes.NewReader(input), &compressed); err != nil {
			t.Fatalf("Compress failed: %v", err)
		}
		table, err := ReadHeader(bytes.NewReader(compressed.Bytes()))
		if err != nil {
			t.Fatalf("ReadHeader failed: %v", err)
		}
		size, err := PayloadSize(&table)
		if err != nil {
			t.Fatalf("PayloadSize failed: %v", err)
		}
		if size != int64(compressed.Len()) {
			t.Errorf("PayloadSize = %d, compressed length = %d", size, compressed.Len())
		}
	}
}

func TestCompressDecompressFile(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.txt")
	compressed := filepath.Join(dir, "original.huff")
	restored := filepath.Join(dir, "restored.txt")

	content := bytes.Repeat([]byte("file codec contents\n"), 512)
	if err := os.WriteFile(original, content, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	if err := CompressFile(original, compressed); err != nil {
		t.Fatalf("CompressFile failed: %v", err)
	}
	if err := DecompressFile(compressed, restored); err != nil {
		t.Fatalf("DecompressFile failed: %v", err)
	}
	got, err := os.ReadFile(restored)
	if err != nil {
		t.Fatalf("Failed to read restored file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("restored content does not match original")
	}
}

func TestCompressFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := CompressFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("CompressFile error = %v, want not-exist", err)
	}
}
