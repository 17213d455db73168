package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ByteReader reads little-endian fields from an immutable byte buffer.
// A ByteReader returned by Slice is bounded to its window; reads past the
// window fail with BoundSlice, reads past the buffer with BoundBuffer.
type ByteReader struct {
	data  []byte
	off   int
	end   int
	slice bool
}

// NewReader creates a ByteReader over the whole of data.
func NewReader(data []byte) *ByteReader {
	return &ByteReader{data: data, end: len(data)}
}

// Offset returns the absolute position in the underlying buffer.
func (r *ByteReader) Offset() int {
	return r.off
}

// BytesRemaining returns the number of unread bytes before the bound.
func (r *ByteReader) BytesRemaining() int {
	return r.end - r.off
}

func (r *ByteReader) bound() Bound {
	if r.slice {
		return BoundSlice
	}
	return BoundBuffer
}

func (r *ByteReader) need(n int) error {
	if n < 0 || r.off+n > r.end {
		return &Error{
			Kind:   ErrEndOfInput,
			Offset: r.off,
			Bound:  r.bound(),
			Detail: fmt.Sprintf("need %d bytes, %d remaining", n, r.end-r.off),
		}
	}
	return nil
}

// Read8 reads 1 unsigned byte.
func (r *ByteReader) Read8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// Read16 reads 2 bytes as little-endian uint16.
func (r *ByteReader) Read16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// Read32 reads 4 bytes as little-endian uint32.
func (r *ByteReader) Read32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// Read64 reads 8 bytes as little-endian uint64.
func (r *ByteReader) Read64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *ByteReader) narrowing(at int, v uint64, bits int) error {
	return &Error{
		Kind:   ErrUnsafeNarrowing,
		Offset: at,
		Detail: fmt.Sprintf("%d does not fit in %d bits", v, bits),
	}
}

// ReadSafe8u reads an unsigned byte that must fit in an int8.
func (r *ByteReader) ReadSafe8u() (int8, error) {
	at := r.off
	v, err := r.Read8()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt8 {
		return 0, r.narrowing(at, uint64(v), 7)
	}
	return int8(v), nil
}

// ReadSafe16u reads an unsigned 16-bit value that must fit in an int16.
func (r *ByteReader) ReadSafe16u() (int16, error) {
	at := r.off
	v, err := r.Read16()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt16 {
		return 0, r.narrowing(at, uint64(v), 15)
	}
	return int16(v), nil
}

// ReadSafe32u reads an unsigned 32-bit value that must fit in an int32.
func (r *ByteReader) ReadSafe32u() (int32, error) {
	at := r.off
	v, err := r.Read32()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, r.narrowing(at, uint64(v), 31)
	}
	return int32(v), nil
}

// ReadSafe63u reads an unsigned 64-bit value that must fit in an int64.
func (r *ByteReader) ReadSafe63u() (int64, error) {
	at := r.off
	v, err := r.Read64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, r.narrowing(at, v, 63)
	}
	return int64(v), nil
}

// ReadBytes reads n raw bytes into a new slice.
func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b, nil
}

// ReadUint32s reads n consecutive little-endian uint32 values.
func (r *ByteReader) ReadUint32s(n int) ([]uint32, error) {
	if err := r.need(4 * n); err != nil {
		return nil, err
	}
	v := make([]uint32, n)
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(r.data[r.off:])
		r.off += 4
	}
	return v, nil
}

// ReadString reads a fixed-capacity field of n bytes and returns the bytes
// before the first null. The content is not validated as UTF-8.
func (r *ByteReader) ReadString(n int) (string, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// ReadSignature consumes len(want) bytes and compares them with want.
// On mismatch the cursor is left where it was.
func (r *ByteReader) ReadSignature(want []byte) error {
	if err := r.need(len(want)); err != nil {
		return err
	}
	got := r.data[r.off : r.off+len(want)]
	if !bytes.Equal(got, want) {
		return &SignatureError{
			Offset: r.off,
			Want:   append([]byte(nil), want...),
			Got:    append([]byte(nil), got...),
		}
	}
	r.off += len(want)
	return nil
}

// PeekSignature reports whether the next bytes equal want without moving.
func (r *ByteReader) PeekSignature(want []byte) bool {
	return r.off+len(want) <= r.end && bytes.Equal(r.data[r.off:r.off+len(want)], want)
}

// SkipBytes advances past n bytes of reserved data.
func (r *ByteReader) SkipBytes(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// Slice returns a reader bounded to the next n bytes and advances r past them.
func (r *ByteReader) Slice(n int) (*ByteReader, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	s := &ByteReader{data: r.data, off: r.off, end: r.off + n, slice: true}
	r.off += n
	return s, nil
}

// Bytes returns the unread bytes between off and the bound without copying.
func (r *ByteReader) Bytes() []byte {
	return r.data[r.off:r.end]
}

// Window returns the bytes in [from, to) of the underlying buffer.
func (r *ByteReader) Window(from, to int) []byte {
	return r.data[from:to]
}
