package d2s

import (
	"fmt"
	"strings"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/item"
)

// Save is one decoded character save file.
type Save struct {
	Version    int32
	Size       int32
	Checksum   uint32
	Alternate  int32  // active weapon set
	Name       string // raw bytes, see DisplayName
	Flags      uint32
	Class      int8
	Level      int8
	Timestamp  uint32
	Hotkeys    [NumHotkeys]uint32
	Actions    [NumActions][NumButtons]uint32
	Composites [NumComponents]byte
	Colors     [NumComponents]byte
	Towns      [NumDiffs]byte
	MapSeed    uint32
	Merc       MercData

	Quests    QuestData
	Waypoints WaypointData
	NPCs      NPCData
	Stats     StatData
	Skills    SkillData
	Items     ItemList
	Golem     GolemData
}

// MercData is the hired unit. The summary fields come from the header;
// Items is filled by the later merc section and stays nil when no merc is
// hired (Seed == 0).
type MercData struct {
	Flags      uint32
	Seed       uint32
	Name       int16
	Type       int16
	Experience int32
	Items      *ItemList
}

// Hired reports whether the save has a mercenary.
func (m *MercData) Hired() bool {
	return m.Seed != 0
}

// QuestData holds the quest flag bytes per difficulty.
type QuestData struct {
	Flags [NumDiffs][NumQuestFlags]byte
}

// WaypointData holds the waypoint flag bytes per difficulty.
type WaypointData struct {
	Flags [NumDiffs][NumWaypointFlags]byte
}

// NPCData holds the NPC greeting flags per greeting kind and difficulty.
type NPCData struct {
	Flags [NumGreetings][NumDiffs][NumIntros]byte
}

// SkillData holds allocated skill points indexed by tree and slot.
type SkillData struct {
	Skills [NumTrees * NumTreeSkills]byte
}

// Points returns the points allocated to a skill slot in a tree.
func (s *SkillData) Points(tree, slot int) byte {
	return s.Skills[tree*NumTreeSkills+slot]
}

// ItemList is a decoded item section. Errors counts records that were
// dropped because they could not be parsed.
type ItemList struct {
	Items  []*item.Item
	Errors int
}

// Len returns the number of decoded items.
func (l *ItemList) Len() int {
	return len(l.Items)
}

// GolemData is the iron golem record.
type GolemData struct {
	Exists bool
	Item   *item.Item
}

// DisplayName returns the character name decoded to UTF-8.
func (s *Save) DisplayName() string {
	return codec.DecodeName(s.Name)
}

func (s *Save) Hardcore() bool  { return s.Flags&FlagHardcore != 0 }
func (s *Save) Died() bool      { return s.Flags&FlagDied != 0 }
func (s *Save) Expansion() bool { return s.Flags&FlagExpansion != 0 }
func (s *Save) Ladder() bool    { return s.Flags&FlagLadder != 0 }

// FlagsString lists the set status flags, e.g. "HARDCORE|EXPANSION".
func (s *Save) FlagsString() string {
	var parts []string
	if s.Hardcore() {
		parts = append(parts, "HARDCORE")
	}
	if s.Died() {
		parts = append(parts, "DIED")
	}
	if s.Expansion() {
		parts = append(parts, "EXPANSION")
	}
	if s.Ladder() {
		parts = append(parts, "LADDER")
	}
	return strings.Join(parts, "|")
}

var classNames = []string{
	"Amazon", "Sorceress", "Necromancer", "Paladin", "Barbarian", "Druid", "Assassin",
}

// ClassName returns the character class name for a class id.
func ClassName(id int) string {
	if id < 0 || id >= len(classNames) {
		return fmt.Sprintf("Unknown(%d)", id)
	}
	return classNames[id]
}

var difficultyNames = [NumDiffs]string{"Normal", "Nightmare", "Hell"}

// DifficultyName returns the difficulty name for an index.
func DifficultyName(i int) string {
	if i < 0 || i >= NumDiffs {
		return fmt.Sprintf("Unknown(%d)", i)
	}
	return difficultyNames[i]
}

// VersionString returns the game release for a save format version.
func VersionString(v int32) string {
	switch v {
	case 71:
		return "1.00 - 1.06"
	case 87:
		return "1.07"
	case 89:
		return "1.08"
	case 92:
		return "1.09"
	case 96:
		return "1.10+"
	default:
		return "Unknown"
	}
}
