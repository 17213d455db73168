package d2s

// Version is the only save format version this package decodes ("1.10+").
const Version = 96

// Section signatures.
var (
	Signature              = []byte{0x55, 0xAA, 0x55, 0xAA}
	QuestsSignature        = []byte{0x57, 0x6F, 0x6F, 0x21} // "Woo!"
	WaypointsSignature     = []byte{'W', 'S'}
	WaypointsDiffSignature = []byte{0x02, 0x01}
	NPCsSignature          = []byte{0x01, 0x77}
	StatsSignature         = []byte{0x67, 0x66} // "gf"
	SkillsSignature        = []byte{0x69, 0x66} // "if"
	ItemsSignature         = []byte{0x4A, 0x4D} // "JM"
	ItemsFooterSignature   = []byte{0x4A, 0x4D, 0x00, 0x00}
	MercSignature          = []byte{0x6A, 0x66} // "jf"
	GolemSignature         = []byte{0x6B, 0x66} // "kf"
)

// Fixed cardinalities.
const (
	NumDiffs         = 3
	MaxNameLength    = 15
	NumHotkeys       = 16
	NumActions       = 2
	NumButtons       = 2
	NumComponents    = 16
	NumQuestFlags    = 96
	NumWaypointFlags = 22
	NumGreetings     = 2
	NumIntros        = 8
	NumTrees         = 3
	NumTreeSkills    = 10

	questsVersion    = 6
	waypointsVersion = 1
	realmDataSize    = 144
)

// Section sizes as declared in the file, including signature and header fields.
const (
	HeaderSize        = 0x14F
	MercSize          = 0x10
	QuestsSize        = 4 + 4 + 2 + NumQuestFlags*NumDiffs
	WaypointsDiffSize = 2 + NumWaypointFlags
	WaypointsSize     = 2 + 4 + 2 + WaypointsDiffSize*NumDiffs
	NPCsSize          = 2 + 2 + NumGreetings*NumIntros*NumDiffs
	SkillsSize        = 2 + NumTrees*NumTreeSkills
)

// Status flag bits of Save.Flags.
const (
	FlagHardcore  uint32 = 1 << 2
	FlagDied      uint32 = 1 << 3
	FlagExpansion uint32 = 1 << 5
	FlagLadder    uint32 = 1 << 6
)
