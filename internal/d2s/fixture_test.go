package d2s

import (
	"github.com/d2vault/d2vault/internal/codec/codectest"
	"github.com/d2vault/d2vault/internal/d2s/d2stest"
	"github.com/d2vault/d2vault/internal/item"
)

var (
	potion = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified | item.FlagCompact), Version: 101,
		Location: 2, X: 1, Code: "hp1",
	}
	ring = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified | item.FlagCompact), Version: 101,
		Location: 1, BodyLoc: 6, Code: "rin",
	}
	sword = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified | item.FlagSocketed), Version: 101,
		X: 2, Y: 3, Store: 1, Code: "lsd", Sockets: 1,
		Body: []byte{0xAA, 0xBB},
	}
	runeItem = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified | item.FlagCompact), Version: 101,
		Location: 6, Code: "r01",
	}
	brokenItem = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified | item.FlagCompact), Version: 101,
		Location: uint8(item.LocationGround), Store: 1, Code: "hp1",
	}
	golemItem = codectest.ItemRecord{
		Flags: uint32(item.FlagIdentified), Version: 101,
		Code: "spr", Body: []byte{0x01, 0x02},
	}
)

func newFixture() *d2stest.Save {
	return d2stest.NewSave()
}
