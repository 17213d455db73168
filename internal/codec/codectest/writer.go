// Package codectest builds little-endian byte and bit fixtures for tests.
package codectest

import (
	"encoding/binary"
)

// Writer builds a byte buffer. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}


// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) *Writer {
	w.buf = append(w.buf, make([]byte, n)...)
	return w
}

// WriteFixedString writes s null-padded to n bytes.
func (w *Writer) WriteFixedString(s string, n int) *Writer {
	b := make([]byte, n)
	copy(b, s)
	w.buf = append(w.buf, b...)
	return w
}

// Bytes returns the written content.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// BitWriter builds an LSB-first bitstream.
type BitWriter struct {
	buf  []byte
	bits int
}

func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// WriteBits writes the low width bits of v, least significant first.
func (w *BitWriter) WriteBits(v uint64, width int) *BitWriter {
	for i := 0; i < width; i++ {
		if w.bits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v>>i&1 == 1 {
			w.buf[w.bits/8] |= 1 << (w.bits % 8)
		}
		w.bits++
	}
	return w
}

// WriteBool writes a single bit.
func (w *BitWriter) WriteBool(v bool) *BitWriter {
	if v {
		return w.WriteBits(1, 1)
	}
	return w.WriteBits(0, 1)
}

// Bytes returns the stream padded with zero bits to a byte boundary.
func (w *BitWriter) Bytes() []byte {
	return w.buf
}

// BitLen returns the number of bits written.
func (w *BitWriter) BitLen() int {
	return w.bits
}
