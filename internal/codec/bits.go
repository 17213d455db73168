package codec

import (
	"fmt"
	"math"
)

// BitReader reads an LSB-first bitstream opened inside a ByteReader.
// It borrows its ByteReader: reads through the ByteReader while the
// BitReader is open are not reflected in either cursor. Align hands the
// ByteReader back at the next byte boundary.
type BitReader struct {
	src *ByteReader
	pos int // absolute bit position
	end int // absolute bit bound
}

// OpenBits returns a BitReader at the current byte position, bit offset 0.
func (r *ByteReader) OpenBits() *BitReader {
	return &BitReader{src: r, pos: r.off * 8, end: r.end * 8}
}

// BitOffset returns the absolute bit position in the underlying buffer.
func (b *BitReader) BitOffset() int {
	return b.pos
}

// BitsRemaining returns the number of unread bits before the bound.
func (b *BitReader) BitsRemaining() int {
	return b.end - b.pos
}

// ReadBits reads width bits (0..64) as an unsigned integer. The first bit
// read is the least significant bit of the result.
func (b *BitReader) ReadBits(width int) (uint64, error) {
	if width < 0 || width > 64 {
		return 0, &Error{
			Kind:   ErrInvalidFormat,
			Offset: b.pos / 8,
			Detail: fmt.Sprintf("bit width %d out of range", width),
		}
	}
	if b.pos+width > b.end {
		return 0, &Error{
			Kind:   ErrEndOfInput,
			Offset: b.pos / 8,
			Bound:  b.src.bound(),
			Detail: fmt.Sprintf("need %d bits, %d remaining", width, b.end-b.pos),
		}
	}
	var v uint64
	for i := 0; i < width; {
		byteIdx := b.pos >> 3
		shift := b.pos & 7
		n := 8 - shift
		if n > width-i {
			n = width - i
		}
		chunk := uint64(b.src.data[byteIdx]>>shift) & (1<<n - 1)
		v |= chunk << i
		i += n
		b.pos += n
	}
	return v, nil
}

// ReadBool reads a single bit.
func (b *BitReader) ReadBool() (bool, error) {
	v, err := b.ReadBits(1)
	return v == 1, err
}

// ReadUint reads up to 32 bits into a uint32.
func (b *BitReader) ReadUint(width int) (uint32, error) {
	if width > 32 {
		return 0, &Error{
			Kind:   ErrUnsafeNarrowing,
			Offset: b.pos / 8,
			Detail: fmt.Sprintf("%d-bit field read into 32 bits", width),
		}
	}
	v, err := b.ReadBits(width)
	return uint32(v), err
}

// ReadSafe31u reads width bits whose value must fit in an int32.
func (b *BitReader) ReadSafe31u(width int) (int32, error) {
	at := b.pos / 8
	v, err := b.ReadBits(width)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, &Error{
			Kind:   ErrUnsafeNarrowing,
			Offset: at,
			Detail: fmt.Sprintf("%d does not fit in 31 bits", v),
		}
	}
	return int32(v), nil
}

// ReadSafe63u reads width bits whose value must fit in an int64.
func (b *BitReader) ReadSafe63u(width int) (int64, error) {
	at := b.pos / 8
	v, err := b.ReadBits(width)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt64 {
		return 0, &Error{
			Kind:   ErrUnsafeNarrowing,
			Offset: at,
			Detail: fmt.Sprintf("%d does not fit in 63 bits", v),
		}
	}
	return int64(v), nil
}

// Align rounds up to the next byte boundary, moves the borrowed ByteReader
// there and returns it. Bits left in a partially read byte are discarded.
func (b *BitReader) Align() *ByteReader {
	off := (b.pos + 7) >> 3
	b.pos = off * 8
	b.src.off = off
	return b.src
}
