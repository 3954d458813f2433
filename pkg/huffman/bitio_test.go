package huffman

import (
	"bytes"
	"io"
	"testing"
)

func TestBitWriterPacking(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want []byte
	}{
		{"nothing", "", nil},
		{"full byte", "10110001", []byte{0xB1}},
		{"partial byte left justified", "101", []byte{0xA0}},
		{"byte and a bit", "111111111", []byte{0xFF, 0x80}},
		{"two bytes", "0000000111111110", []byte{0x01, 0xFE}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			bw := NewBitWriter(&buf)
			for _, c := range tt.bits {
				bw.WriteBit(uint(c - '0'))
			}
			if err := bw.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("wrote %08b, want %08b", buf.Bytes(), tt.want)
			}
		})
	}
}

func TestBitWriterCodeMSBFirst(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBitWriter(&buf)
	bw.WriteCode(0b110, 3)
	bw.WriteCode(0b01, 2)
	bw.WriteCode(0b1, 1)
	if err := bw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if want := []byte{0b11001100}; !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("wrote %08b, want %08b", buf.Bytes(), want)
	}
}

func TestBitReader(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xA5, 0x01}))
	var got []byte
	for {
		bit, err := br.ReadBit()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadBit failed: %v", err)
		}
		got = append(got, byte('0'+bit))
	}
	if want := "1010010100000001"; string(got) != want {
		t.Errorf("read %s, want %s", got, want)
	}
}

type failingByteWriter struct{ err error }

func (w failingByteWriter) WriteByte(byte) error { return w.err }

func TestBitWriterStickyError(t *testing.T) {
	bw := NewBitWriter(failingByteWriter{io.ErrShortWrite})
	bw.WriteCode(0xFFFF, 16)
	if err := bw.Err(); err != io.ErrShortWrite {
		t.Fatalf("Err() = %v, want %v", err, io.ErrShortWrite)
	}
	if err := bw.Close(); err != io.ErrShortWrite {
		t.Fatalf("Close() = %v, want %v", err, io.ErrShortWrite)
	}
}
