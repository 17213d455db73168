// Package d2stest builds complete version 96 save buffers for tests.
package d2stest

import (
	"encoding/binary"
	"math/bits"

	"github.com/d2vault/d2vault/internal/codec/codectest"
)

// Stat is one entry of the stats section.
type Stat struct {
	ID    int
	Value uint64
}

// ItemSection is a "JM" item list.
type ItemSection struct {
	Prefix  []byte // raw bytes between the count and the first record
	Count   int    // declared count; zero means len(Records)
	Records []codectest.ItemRecord
}

// Write appends the section to w.
func (s ItemSection) Write(w *codectest.Writer) {
	n := s.Count
	if n == 0 {
		n = len(s.Records)
	}
	w.WriteBytes([]byte("JM")).WriteH(uint16(n)).WriteBytes(s.Prefix)
	for _, r := range s.Records {
		w.WriteBytes(r.Bytes())
	}
}

// Save describes a save file. Bytes fills in the size and checksum fields.
type Save struct {
	Version    uint32
	Name       string
	Flags      uint32
	Class      byte
	Level      byte
	MapSeed    uint32
	MercSeed   uint32
	QuestsSize uint16
	Stats      []Stat
	Widths     map[int]int // overrides of the stored stat widths
	Skills     [30]byte
	Items      ItemSection
	MercItems  ItemSection
	Golem      *codectest.ItemRecord
}

// NewSave returns a level 1 character with no items, merc or golem.
func NewSave() *Save {
	return &Save{
		Version:    96,
		Name:       "Tester",
		Class:      1,
		Level:      1,
		MapSeed:    0x12345678,
		QuestsSize: 298,
		Stats: []Stat{
			{12, 1}, // level
			{14, 0}, // gold
		},
	}
}

var statBits = [16]int{10, 10, 10, 10, 10, 8, 21, 21, 21, 21, 21, 21, 7, 32, 25, 25}

const realmDataSize = 144

func (f *Save) Bytes() []byte {
	w := codectest.NewWriter()
	w.WriteBytes([]byte{0x55, 0xAA, 0x55, 0xAA}).WriteD(f.Version)
	w.WriteD(0).WriteD(0).WriteD(0) // size, checksum, alternate
	w.WriteFixedString(f.Name, 16).
		WriteD(f.Flags).
		WriteC(f.Class).
		WriteZeros(2).
		WriteC(f.Level).
		WriteZeros(4).
		WriteD(0x5F5E1000).
		WriteZeros(4)
	for i := 0; i < 16; i++ {
		w.WriteD(0xFFFF)
	}
	w.WriteZeros(2 * 2 * 4)
	w.WriteZeros(16).WriteZeros(16)
	w.WriteBytes([]byte{0x80, 0, 0}).WriteD(f.MapSeed)
	w.WriteD(0).WriteD(f.MercSeed).WriteH(3).WriteH(1).WriteD(1000)
	w.WriteZeros(realmDataSize)

	w.WriteBytes([]byte("Woo!")).WriteD(6).WriteH(f.QuestsSize).WriteZeros(96 * 3)

	w.WriteBytes([]byte("WS")).WriteD(1).WriteH(80)
	for i := 0; i < 3; i++ {
		w.WriteBytes([]byte{0x02, 0x01}).WriteC(0x01).WriteZeros(21)
	}

	w.WriteBytes([]byte{0x01, 0x77}).WriteH(52).WriteZeros(48)

	w.WriteBytes([]byte("gf")).WriteBytes(f.stats())
	w.WriteBytes([]byte("if")).WriteBytes(f.Skills[:])

	f.Items.Write(w)
	w.WriteBytes([]byte{'J', 'M', 0, 0})

	w.WriteBytes([]byte("jf"))
	if f.MercSeed != 0 {
		f.MercItems.Write(w)
	}

	w.WriteBytes([]byte("kf"))
	if f.Golem != nil {
		w.WriteC(1).WriteBytes(f.Golem.Bytes())
	} else {
		w.WriteC(0)
	}

	buf := w.Bytes()
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[12:], checksum(buf))
	return buf
}

func (f *Save) stats() []byte {
	bw := codectest.NewBitWriter()
	for _, s := range f.Stats {
		width, ok := f.Widths[s.ID]
		if !ok {
			width = statBits[s.ID]
		}
		bw.WriteBits(uint64(s.ID), 9).WriteBits(s.Value, width)
	}
	bw.WriteBits(0x1FF, 9)
	return bw.Bytes()
}

func checksum(buf []byte) uint32 {
	var sum uint32
	for i, b := range buf {
		if i >= 12 && i < 16 {
			b = 0
		}
		sum = bits.RotateLeft32(sum, 1) + uint32(b)
	}
	return sum
}
