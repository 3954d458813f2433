// Package caesar implements an additive byte cipher: every byte is
// shifted by the key modulo 256.
package caesar

import (
	"fmt"
	"io"

	"gsea/pkg/fileio"
)

// Transform shifts every byte of buf in place. Encryption adds the key,
// decryption subtracts it; both wrap around modulo 256.
func Transform(buf []byte, key byte, decrypt bool) {
	if decrypt {
		key = -key
	}
	for i := range buf {
		buf[i] += key
	}
}

// Encrypt copies r to w, shifting every byte up by key
func Encrypt(r io.Reader, w io.Writer, key byte) error {
	return apply(r, w, key, false)
}

// Decrypt copies r to w, shifting every byte down by key
func Decrypt(r io.Reader, w io.Writer, key byte) error {
	return apply(r, w, key, true)
}

func apply(r io.Reader, w io.Writer, key byte, decrypt bool) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			Transform(buf[:n], key, decrypt)
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write output: %w", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// EncryptFile encrypts the file at input into a new file at output
func EncryptFile(input, output string, key byte) error {
	return fileio.Transform("encrypt", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return apply(r, w, key, false)
	})
}

// DecryptFile decrypts the file at input into a new file at output
func DecryptFile(input, output string, key byte) error {
	return fileio.Transform("decrypt", input, output, func(r io.ReadSeeker, w io.Writer) error {
		return apply(r, w, key, true)
	})
}
