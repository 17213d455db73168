package codec_test

import (
	"testing"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/codec/codectest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitReader_ReadBits(t *testing.T) {
	bw := codectest.NewBitWriter().
		WriteBits(0x1FF, 9).
		WriteBits(0x2AB, 10).
		WriteBits(0x12345, 21).
		WriteBits(0xDEADBEEF, 32).
		WriteBits(0x1ABCDEF, 25)

	bits := codec.NewReader(bw.Bytes()).OpenBits()
	for _, tc := range []struct {
		width int
		want  uint64
	}{
		{9, 0x1FF},
		{10, 0x2AB},
		{21, 0x12345},
		{32, 0xDEADBEEF},
		{25, 0x1ABCDEF},
	} {
		got, err := bits.ReadBits(tc.width)
		require.NoError(t, err, "width %d", tc.width)
		assert.Equal(t, tc.want, got, "width %d", tc.width)
	}
	assert.Equal(t, 97, bits.BitOffset())
}

func TestBitReader_LSBFirst(t *testing.T) {
	bits := codec.NewReader([]byte{0x01, 0x80}).OpenBits()

	b, err := bits.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	v, err := bits.ReadBits(14)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	b, err = bits.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
}

func TestBitReader_EndOfInput(t *testing.T) {
	bits := codec.NewReader([]byte{0xFF}).OpenBits()
	_, err := bits.ReadBits(9)
	assert.ErrorIs(t, err, codec.ErrEndOfInput)
	assert.Equal(t, 8, bits.BitsRemaining(), "failed read must not consume bits")
}

func TestBitReader_AlignHandsBack(t *testing.T) {
	r := codec.NewReader([]byte{0xAA, 0xFF, 0x01, 0x02, 0x03})
	_, err := r.Read8()
	require.NoError(t, err)

	bits := r.OpenBits()
	assert.Equal(t, 8, bits.BitOffset())
	_, err = bits.ReadBits(9)
	require.NoError(t, err)

	back := bits.Align()
	assert.Same(t, r, back)
	assert.Equal(t, 3, r.Offset(), "partial byte is discarded")

	v, err := r.Read8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), v)
}

func TestBitReader_AlignOnBoundary(t *testing.T) {
	r := codec.NewReader([]byte{0x01, 0x02})
	bits := r.OpenBits()
	_, err := bits.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, 1, bits.Align().Offset())
}

func TestBitReader_RespectsSliceBound(t *testing.T) {
	r := codec.NewReader([]byte{0xFF, 0xFF, 0xFF})
	s, err := r.Slice(1)
	require.NoError(t, err)

	_, err = s.OpenBits().ReadBits(9)
	var ce *codec.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, codec.BoundSlice, ce.Bound)
}

func TestBitReader_Narrowing(t *testing.T) {
	bw := codectest.NewBitWriter().WriteBits(0xFFFFFFFF, 32).WriteBits(0x7FFFFFFF, 32)
	bits := codec.NewReader(bw.Bytes()).OpenBits()

	_, err := bits.ReadSafe31u(32)
	assert.ErrorIs(t, err, codec.ErrUnsafeNarrowing)

	v, err := bits.ReadSafe31u(32)
	require.NoError(t, err)
	assert.Equal(t, int32(0x7FFFFFFF), v)

	_, err = codec.NewReader(make([]byte, 8)).OpenBits().ReadUint(33)
	assert.ErrorIs(t, err, codec.ErrUnsafeNarrowing)
}
