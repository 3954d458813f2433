package huffman

import "io"

// BitWriter packs bits most significant first into bytes.
// Write errors are sticky and reported by Close or Err.
type BitWriter struct {
	w     io.ByteWriter
	acc   byte
	nbits uint // bits held in acc, always < 8
	err   error
}

// NewBitWriter returns a BitWriter emitting bytes to w
func NewBitWriter(w io.ByteWriter) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBit appends the low bit of bit
func (bw *BitWriter) WriteBit(bit uint) {
	bw.acc = bw.acc<<1 | byte(bit&1)
	bw.nbits++
	if bw.nbits == 8 {
		bw.emit()
	}
}

// WriteCode appends the low n bits of code, most significant first
func (bw *BitWriter) WriteCode(code uint64, n uint8) {
	for i := int(n) - 1; i >= 0; i-- {
		bw.WriteBit(uint(code>>uint(i)) & 1)
	}
}

// Close left-justifies any 1-7 leftover bits, zero fills the rest of
// the byte and emits it.
func (bw *BitWriter) Close() error {
	if bw.nbits > 0 {
		bw.acc <<= 8 - bw.nbits
		bw.emit()
	}
	return bw.err
}

// Err returns the first write error
func (bw *BitWriter) Err() error {
	return bw.err
}

func (bw *BitWriter) emit() {
	if bw.err == nil {
		bw.err = bw.w.WriteByte(bw.acc)
	}
	bw.acc = 0
	bw.nbits = 0
}

// BitReader serves the bits of a byte stream most significant first
type BitReader struct {
	r     io.ByteReader
	cur   byte
	nbits uint // unread bits left in cur
}

// NewBitReader returns a BitReader over r
func NewBitReader(r io.ByteReader) *BitReader {
	return &BitReader{r: r}
}

// ReadBit returns the next bit. It returns io.EOF once the underlying
// source is exhausted.
func (br *BitReader) ReadBit() (uint, error) {
	if br.nbits == 0 {
		b, err := br.r.ReadByte()
		if err != nil {
			return 0, err
		}
		br.cur = b
		br.nbits = 8
	}
	bit := uint(br.cur>>7) & 1
	br.cur <<= 1
	br.nbits--
	return bit, nil
}
