package d2s

import (
	"errors"

	"github.com/d2vault/d2vault/internal/codec"
	"go.uber.org/zap"
)

// Stat ids stored in the stats section.
const (
	StatStrength = iota
	StatEnergy
	StatDexterity
	StatVitality
	StatStatPoints
	StatSkillPoints
	StatHitpoints
	StatMaxHP
	StatMana
	StatMaxMana
	StatStamina
	StatMaxStamina
	StatLevel
	StatExperience
	StatGold
	StatGoldBank

	numStats = StatGoldBank + 1

	statIDBits = 9
	statNone   = 0x1FF
)

// StatWidths reports the stored bit width of a stat. ok is false when the
// provider has no entry for id.
type StatWidths interface {
	StatBits(id int) (bits int, ok bool)
}

// StatWidthsFunc adapts a function to StatWidths.
type StatWidthsFunc func(id int) (int, bool)

func (f StatWidthsFunc) StatBits(id int) (int, bool) {
	return f(id)
}

var builtinStatBits = [numStats]int{
	StatStrength:    10,
	StatEnergy:      10,
	StatDexterity:   10,
	StatVitality:    10,
	StatStatPoints:  10,
	StatSkillPoints: 8,
	StatHitpoints:   21,
	StatMaxHP:       21,
	StatMana:        21,
	StatMaxMana:     21,
	StatStamina:     21,
	StatMaxStamina:  21,
	StatLevel:       7,
	StatExperience:  32,
	StatGold:        25,
	StatGoldBank:    25,
}

// BuiltinStatWidths is the fallback width table used when no provider is
// configured or a provider has no entry for a stat.
var BuiltinStatWidths StatWidths = StatWidthsFunc(func(id int) (int, bool) {
	if id < 0 || id >= numStats {
		return 0, false
	}
	return builtinStatBits[id], true
})

var statNames = [numStats]string{
	"strength", "energy", "dexterity", "vitality", "statpts", "newskills",
	"hitpoints", "maxhp", "mana", "maxmana", "stamina", "maxstamina",
	"level", "experience", "gold", "goldbank",
}

// StatName returns the short name of a stat id.
func StatName(id int) string {
	if id < 0 || id >= numStats {
		return "unknown"
	}
	return statNames[id]
}

// StatData holds the character statistics. Fields absent from the save
// are zero. Life, mana and stamina are fixed point with 8 fractional bits.
type StatData struct {
	Strength    int32
	Energy      int32
	Dexterity   int32
	Vitality    int32
	StatPoints  int32
	SkillPoints int32
	Hitpoints   int32
	MaxHP       int32
	Mana        int32
	MaxMana     int32
	Stamina     int32
	MaxStamina  int32
	Level       int32
	Experience  int64
	Gold        int64
	GoldBank    int64
}

func (s *StatData) Life() int32             { return s.Hitpoints >> 8 }
func (s *StatData) MaxLife() int32          { return s.MaxHP >> 8 }
func (s *StatData) ManaPoints() int32       { return s.Mana >> 8 }
func (s *StatData) MaxManaPoints() int32    { return s.MaxMana >> 8 }
func (s *StatData) StaminaPoints() int32    { return s.Stamina >> 8 }
func (s *StatData) MaxStaminaPoints() int32 { return s.MaxStamina >> 8 }

func (s *StatData) field31(id int) *int32 {
	switch id {
	case StatStrength:
		return &s.Strength
	case StatEnergy:
		return &s.Energy
	case StatDexterity:
		return &s.Dexterity
	case StatVitality:
		return &s.Vitality
	case StatStatPoints:
		return &s.StatPoints
	case StatSkillPoints:
		return &s.SkillPoints
	case StatHitpoints:
		return &s.Hitpoints
	case StatMaxHP:
		return &s.MaxHP
	case StatMana:
		return &s.Mana
	case StatMaxMana:
		return &s.MaxMana
	case StatStamina:
		return &s.Stamina
	case StatMaxStamina:
		return &s.MaxStamina
	case StatLevel:
		return &s.Level
	}
	return nil
}

func (s *StatData) field63(id int) *int64 {
	switch id {
	case StatExperience:
		return &s.Experience
	case StatGold:
		return &s.Gold
	case StatGoldBank:
		return &s.GoldBank
	}
	return nil
}

// statWidth resolves the width of id, falling back to the builtin table.
type statWidth struct {
	widths   StatWidths
	log      *zap.Logger
	warnOnce bool
}

func (w *statWidth) of(id int) int {
	if w.widths != nil {
		if bits, ok := w.widths.StatBits(id); ok && bits > 0 {
			return bits
		}
	}
	if !w.warnOnce {
		w.warnOnce = true
		w.log.Warn("stat widths unavailable, using builtin table", zap.Int("stat", id))
	}
	bits, _ := BuiltinStatWidths.StatBits(id)
	return bits
}

func readStatData(in *codec.ByteReader, s *StatData, widths *statWidth, log *zap.Logger) error {
	if err := in.ReadSignature(StatsSignature); err != nil {
		return err
	}
	bits := in.OpenBits()
	for {
		at := bits.BitOffset()
		raw, err := bits.ReadBits(statIDBits)
		if err != nil {
			return truncatedStats(at, err)
		}
		id := int(raw)
		if id == statNone {
			break
		}
		if id >= numStats {
			return codec.InvalidFormat(at/8, nil, "unexpected stat id: %d", id)
		}

		width := widths.of(id)
		if dst := s.field63(id); dst != nil {
			v, err := bits.ReadSafe63u(width)
			if err != nil {
				return truncatedStats(bits.BitOffset(), err)
			}
			*dst = v
			log.Debug("stat", zap.String("name", statNames[id]), zap.Int64("value", v))
			continue
		}
		v, err := bits.ReadSafe31u(width)
		if err != nil {
			return truncatedStats(bits.BitOffset(), err)
		}
		*s.field31(id) = v
		log.Debug("stat", zap.String("name", statNames[id]), zap.Int32("value", v))
	}
	bits.Align()
	return nil
}

// truncatedStats reports running out of input inside the stats dictionary
// as a format error; the section has no declared length to fall back on.
func truncatedStats(bitOffset int, err error) error {
	if errors.Is(err, codec.ErrEndOfInput) {
		return codec.InvalidFormat(bitOffset/8, err, "stats section truncated")
	}
	return err
}
