package item

import (
	"errors"
	"strings"

	"github.com/d2vault/d2vault/internal/codec"
	"go.uber.org/zap"
)

const (
	maxEarName  = 16
	codeLength  = 4
	maxSocketed = 6
)

// Reader parses item records from a ByteReader. An item extends from its
// signature to the nearest following item signature, stop signature, or
// end of input.
type Reader struct {
	log   *zap.Logger
	stops [][]byte
}

// NewReader creates a Reader. stops are section signatures that also end
// an item, e.g. the signature of the section following an item list.
func NewReader(log *zap.Logger, stops ...[]byte) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	boundaries := make([][]byte, 0, len(stops)+1)
	boundaries = append(boundaries, Signature)
	boundaries = append(boundaries, stops...)
	return &Reader{log: log, stops: boundaries}
}

// ReadItem parses one item and its socketed children. A missing item
// signature fails with codec.ErrSignatureMismatch without moving in.
func (r *Reader) ReadItem(in *codec.ByteReader) (*Item, error) {
	start := in.Offset()
	if err := in.ReadSignature(Signature); err != nil {
		return nil, err
	}

	it := &Item{Offset: start}
	if err := readPrefix(in.OpenBits(), it); err != nil {
		return nil, codec.Promote(err)
	}
	if !it.Location.valid() {
		return nil, codec.InvalidFormat(start, nil, "item location %d", uint8(it.Location))
	}
	if !it.Store.valid() {
		return nil, codec.InvalidFormat(start, nil, "item store %d", uint8(it.Store))
	}
	if it.SocketsFilled > maxSocketed {
		return nil, codec.InvalidFormat(start, nil, "%d socketed items", it.SocketsFilled)
	}

	// readPrefix aligned in past the prefix; the body runs to the next boundary.
	end := in.Scan(r.stops...).Offset
	if err := in.SkipTo(end); err != nil {
		return nil, err
	}
	it.Raw = append([]byte(nil), in.Window(start, end)...)

	r.log.Debug("item",
		zap.Int("offset", start),
		zap.String("item", it.String()),
		zap.String("flags", it.FlagsString()),
		zap.Int("size", len(it.Raw)),
	)

	for i := 0; i < int(it.SocketsFilled); i++ {
		child, err := r.ReadItem(in)
		if err != nil {
			// A broken child makes the parent record malformed as a whole.
			if errors.Is(err, codec.ErrInvalidFormat) {
				return nil, err
			}
			return nil, codec.InvalidFormat(start, err, "socketed item %d of %d", i+1, it.SocketsFilled)
		}
		it.Socketed = append(it.Socketed, child)
	}
	return it, nil
}

// SkipToNext moves in to the next item signature.
func (r *Reader) SkipToNext(in *codec.ByteReader) error {
	return in.SkipUntil(Signature)
}

func readPrefix(bits *codec.BitReader, it *Item) error {
	flags, err := bits.ReadUint(32)
	if err != nil {
		return err
	}
	it.Flags = Flag(flags)

	fields := []struct {
		dst   *uint8
		width int
	}{
		{&it.Version, 8},
		{nil, 2},
		{(*uint8)(&it.Location), 3},
		{&it.BodyLoc, 4},
		{&it.GridX, 4},
		{&it.GridY, 4},
		{(*uint8)(&it.Store), 3},
	}
	for _, f := range fields {
		v, err := bits.ReadUint(f.width)
		if err != nil {
			return err
		}
		if f.dst != nil {
			*f.dst = uint8(v)
		}
	}

	if it.Has(FlagEar) {
		if err := readEar(bits, it); err != nil {
			return err
		}
		bits.Align()
		return nil
	}

	var code strings.Builder
	for i := 0; i < codeLength; i++ {
		c, err := bits.ReadUint(8)
		if err != nil {
			return err
		}
		if c < 0x20 || c > 0x7E {
			return codec.InvalidFormat(bits.BitOffset()/8, nil, "item code byte 0x%02X", c)
		}
		code.WriteByte(byte(c))
	}
	it.Code = strings.TrimRight(code.String(), " ")

	n, err := bits.ReadUint(3)
	if err != nil {
		return err
	}
	it.SocketsFilled = uint8(n)
	bits.Align()
	return nil
}

func readEar(bits *codec.BitReader, it *Item) error {
	class, err := bits.ReadUint(3)
	if err != nil {
		return err
	}
	level, err := bits.ReadUint(7)
	if err != nil {
		return err
	}
	var name strings.Builder
	for i := 0; i < maxEarName; i++ {
		c, err := bits.ReadUint(7)
		if err != nil {
			return err
		}
		if c == 0 {
			break
		}
		name.WriteByte(byte(c))
	}
	it.Ear = &Ear{Class: uint8(class), Level: uint8(level), Name: name.String()}
	return nil
}
