// Package item decodes the stable prefix of a save-file item record and
// locates item boundaries. The item body after the prefix is kept opaque.
package item

import (
	"fmt"
	"strings"
)

// Signature starts every item record.
var Signature = []byte{'J', 'M'}

// Flag bits of the 32-bit item flags field.
type Flag uint32

const (
	FlagIdentified   Flag = 1 << 4
	FlagSocketed     Flag = 1 << 11
	FlagNew          Flag = 1 << 13
	FlagEar          Flag = 1 << 16
	FlagStarter      Flag = 1 << 17
	FlagCompact      Flag = 1 << 21
	FlagEthereal     Flag = 1 << 22
	FlagPersonalized Flag = 1 << 24
	FlagRuneword     Flag = 1 << 26
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagIdentified, "IDENTIFIED"},
	{FlagSocketed, "SOCKETED"},
	{FlagNew, "NEW"},
	{FlagEar, "EAR"},
	{FlagStarter, "STARTER"},
	{FlagCompact, "COMPACT"},
	{FlagEthereal, "ETHEREAL"},
	{FlagPersonalized, "PERSONALIZED"},
	{FlagRuneword, "RUNEWORD"},
}

// Location is where an item lives relative to its owner.
type Location uint8

const (
	LocationStored   Location = 0
	LocationEquipped Location = 1
	LocationBelt     Location = 2
	LocationGround   Location = 3
	LocationCursor   Location = 4
	LocationDropping Location = 5
	LocationSocket   Location = 6
)

func (l Location) String() string {
	switch l {
	case LocationStored:
		return "stored"
	case LocationEquipped:
		return "equipped"
	case LocationBelt:
		return "belt"
	case LocationGround:
		return "ground"
	case LocationCursor:
		return "cursor"
	case LocationDropping:
		return "dropping"
	case LocationSocket:
		return "socket"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(l))
	}
}

// valid reports whether l can appear in a save. Ground and dropping items
// only exist in a running game and are never written, so a record claiming
// either is corrupt.
func (l Location) valid() bool {
	switch l {
	case LocationStored, LocationEquipped, LocationBelt, LocationCursor, LocationSocket:
		return true
	}
	return false
}

// Store is the container of a stored item.
type Store uint8

const (
	StoreNone      Store = 0
	StoreInventory Store = 1
	StoreCube      Store = 4
	StoreStash     Store = 5
)

func (s Store) String() string {
	switch s {
	case StoreNone:
		return "none"
	case StoreInventory:
		return "inventory"
	case StoreCube:
		return "cube"
	case StoreStash:
		return "stash"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

func (s Store) valid() bool {
	switch s {
	case StoreNone, StoreInventory, StoreCube, StoreStash:
		return true
	}
	return false
}

// Ear holds the owner of a player ear.
type Ear struct {
	Class uint8
	Level uint8
	Name  string
}

// Item is one decoded item record.
type Item struct {
	Offset        int // absolute offset of the signature
	Flags         Flag
	Version       uint8
	Location      Location
	BodyLoc       uint8
	GridX         uint8
	GridY         uint8
	Store         Store
	Code          string // empty for ears
	Ear           *Ear
	SocketsFilled uint8
	Socketed      []*Item
	Raw           []byte // signature through the last byte before the next boundary
}

// Has reports whether all bits of f are set.
func (it *Item) Has(f Flag) bool {
	return it.Flags&f == f
}

// FlagsString lists the set flags, e.g. "IDENTIFIED|COMPACT".
func (it *Item) FlagsString() string {
	var parts []string
	for _, fn := range flagNames {
		if it.Has(fn.f) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

func (it *Item) String() string {
	if it.Ear != nil {
		return fmt.Sprintf("ear(%s, lvl %d)", it.Ear.Name, it.Ear.Level)
	}
	return fmt.Sprintf("%s@%s", it.Code, it.Location)
}
