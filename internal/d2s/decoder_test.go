package d2s

import (
	"bytes"
	"errors"
	"testing"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/codec/codectest"
	"github.com/d2vault/d2vault/internal/d2s/d2stest"
	"github.com/d2vault/d2vault/internal/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDecode_Minimal(t *testing.T) {
	buf := newFixture().Bytes()

	s, err := NewDecoder(WithLogger(zaptest.NewLogger(t))).Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, int32(Version), s.Version)
	assert.Equal(t, int32(len(buf)), s.Size)
	assert.Equal(t, "Tester", s.Name)
	assert.Equal(t, int8(1), s.Class)
	assert.Equal(t, int8(1), s.Level)
	assert.Equal(t, uint32(0x12345678), s.MapSeed)
	assert.Equal(t, uint32(0xFFFF), s.Hotkeys[0])
	assert.Equal(t, byte(0x80), s.Towns[0])

	assert.Equal(t, int32(1), s.Stats.Level)
	assert.Zero(t, s.Stats.Gold)
	assert.Zero(t, s.Stats.Strength)
	assert.Equal(t, byte(0x01), s.Waypoints.Flags[0][0])

	assert.Equal(t, 0, s.Items.Len())
	assert.Zero(t, s.Items.Errors)
	assert.False(t, s.Merc.Hired())
	assert.Nil(t, s.Merc.Items)
	assert.False(t, s.Golem.Exists)
	assert.Nil(t, s.Golem.Item)
}

func TestDecode_Full(t *testing.T) {
	f := newFixture()
	f.Flags = FlagExpansion | FlagHardcore
	f.Level = 80
	f.MercSeed = 0xCAFE
	f.Stats = []d2stest.Stat{
		{ID: StatStrength, Value: 156},
		{ID: StatVitality, Value: 300},
		{ID: StatHitpoints, Value: 55 << 8},
		{ID: StatMaxHP, Value: 600 << 8},
		{ID: StatLevel, Value: 80},
		{ID: StatExperience, Value: 0xFFFFFFFF},
		{ID: StatGold, Value: 250000},
		{ID: StatGoldBank, Value: 1500000},
	}
	f.Skills[3] = 20
	f.Items = d2stest.ItemSection{
		Count:   2,
		Records: []codectest.ItemRecord{potion, sword, runeItem},
	}
	f.MercItems = d2stest.ItemSection{Records: []codectest.ItemRecord{ring}}
	f.Golem = &golemItem

	s, err := NewDecoder(
		WithLogger(zaptest.NewLogger(t)),
		WithChecksumVerification(),
		WithSizeVerification(),
	).Decode(f.Bytes())
	require.NoError(t, err)

	assert.True(t, s.Hardcore())
	assert.True(t, s.Expansion())
	assert.False(t, s.Died())
	assert.Equal(t, int8(80), s.Level)

	assert.Equal(t, int32(156), s.Stats.Strength)
	assert.Equal(t, int32(300), s.Stats.Vitality)
	assert.Equal(t, int32(55), s.Stats.Life())
	assert.Equal(t, int32(600), s.Stats.MaxLife())
	assert.Equal(t, int64(0xFFFFFFFF), s.Stats.Experience)
	assert.Equal(t, int64(250000), s.Stats.Gold)
	assert.Equal(t, int64(1500000), s.Stats.GoldBank)
	assert.Equal(t, byte(20), s.Skills.Points(0, 3))

	require.Equal(t, 2, s.Items.Len())
	assert.Equal(t, "hp1", s.Items.Items[0].Code)
	assert.Equal(t, "lsd", s.Items.Items[1].Code)
	require.Len(t, s.Items.Items[1].Socketed, 1)
	assert.Equal(t, "r01", s.Items.Items[1].Socketed[0].Code)

	assert.True(t, s.Merc.Hired())
	assert.Equal(t, int16(3), s.Merc.Name)
	assert.Equal(t, int32(1000), s.Merc.Experience)
	require.NotNil(t, s.Merc.Items)
	require.Equal(t, 1, s.Merc.Items.Len())
	assert.Equal(t, item.LocationEquipped, s.Merc.Items.Items[0].Location)
	assert.Len(t, s.Merc.Items.Items[0].Raw, len(ring.Bytes()), "merc item stops at the golem section")

	assert.True(t, s.Golem.Exists)
	require.NotNil(t, s.Golem.Item)
	assert.Equal(t, "spr", s.Golem.Item.Code)
}

func TestDecode_CorruptItemIsCounted(t *testing.T) {
	f := newFixture()
	f.Items.Records = []codectest.ItemRecord{potion, brokenItem, ring}

	s, err := NewDecoder().Decode(f.Bytes())
	require.NoError(t, err)

	require.Equal(t, 2, s.Items.Len())
	assert.Equal(t, 1, s.Items.Errors)
	assert.Equal(t, "hp1", s.Items.Items[0].Code)
	assert.Equal(t, "rin", s.Items.Items[1].Code)
}

func TestDecode_GarbageBeforeFirstItem(t *testing.T) {
	f := newFixture()
	f.Items.Prefix = []byte{0x01, 0x02, 0x03}
	f.Items.Records = []codectest.ItemRecord{potion}

	s, err := NewDecoder().Decode(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Items.Len())
	assert.Zero(t, s.Items.Errors, "a missing signature is not a malformed item")
}

func TestDecode_BadSignature(t *testing.T) {
	corrupt := newFixture().Bytes()
	corrupt[0] = 0x00

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"corrupt", corrupt, codec.ErrSignatureMismatch},
		{"empty", nil, codec.ErrInvalidFormat},
		{"two bytes", []byte{0x00, 0x01}, codec.ErrSignatureMismatch},
		{"three byte prefix", []byte{0x55, 0xAA, 0x55}, codec.ErrInvalidFormat},
		{"three bytes", []byte{0x55, 0xAA, 0x00}, codec.ErrSignatureMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewDecoder().Decode(tt.buf)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, codec.ErrEndOfInput)
		})
	}
}

func TestDecode_MissingSection(t *testing.T) {
	tests := []struct {
		name string
		sig  []byte
	}{
		{"skills", SkillsSignature},
		{"merc", MercSignature},
		{"golem", GolemSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := newFixture().Bytes()
			require.Contains(t, string(buf), string(tt.sig))
			buf = bytes.ReplaceAll(buf, tt.sig, append([]byte{'X'}, tt.sig[1:]...))

			s, err := NewDecoder().Decode(buf)
			assert.Nil(t, s)
			require.ErrorIs(t, err, codec.ErrInvalidFormat)
			assert.Contains(t, err.Error(), tt.name+" section")
		})
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	f := newFixture()
	f.Version = 71

	s, err := NewDecoder().Decode(f.Bytes())
	assert.Nil(t, s)
	require.ErrorIs(t, err, codec.ErrInvalidFormat)

	var ve *VersionError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, int32(71), ve.Got)
	assert.Equal(t, int32(Version), ve.Want)
	assert.Contains(t, err.Error(), "1.00")
}

func TestReadSignatureAndVersion_StopsAfterVersion(t *testing.T) {
	f := newFixture()
	f.Version = 92
	in := codec.NewReader(f.Bytes())

	err := readSignatureAndVersion(in, &Save{})
	require.Error(t, err)
	assert.Equal(t, 8, in.Offset())
}

func TestDecode_QuestsSizeMismatch(t *testing.T) {
	f := newFixture()
	f.QuestsSize = QuestsSize - 1

	_, err := NewDecoder().Decode(f.Bytes())
	require.ErrorIs(t, err, codec.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "quests")
}

func TestDecode_Truncated(t *testing.T) {
	buf := newFixture().Bytes()

	for _, n := range []int{0, 3, 8, 100, HeaderSize, HeaderSize + 40, len(buf) - 1} {
		s, err := NewDecoder().Decode(buf[:n])
		assert.Error(t, err, "length %d", n)
		assert.Nil(t, s, "length %d", n)
	}
}

func TestDecode_MissingFooter(t *testing.T) {
	f := newFixture()
	buf := f.Bytes()

	// Rewrite the footer signature so no item boundary follows the list.
	footer := len(buf) - len(GolemSignature) - 1 - len(MercSignature) - len(ItemsFooterSignature)
	require.Equal(t, ItemsFooterSignature, buf[footer:footer+4])
	buf[footer] = 'X'

	_, err := NewDecoder().Decode(buf)
	require.ErrorIs(t, err, codec.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "footer")
}

func TestDecode_ChecksumVerification(t *testing.T) {
	buf := newFixture().Bytes()
	buf[HeaderSize+20] ^= 0x01 // quest flag byte

	_, err := NewDecoder().Decode(buf)
	require.NoError(t, err)

	_, err = NewDecoder(WithChecksumVerification()).Decode(buf)
	require.ErrorIs(t, err, codec.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "checksum")
}

func TestDecode_SizeVerification(t *testing.T) {
	buf := append(newFixture().Bytes(), 0x00)

	_, err := NewDecoder().Decode(buf)
	require.NoError(t, err)

	_, err = NewDecoder(WithSizeVerification()).Decode(buf)
	assert.ErrorIs(t, err, codec.ErrInvalidFormat)
}

func TestDecodeHeader(t *testing.T) {
	f := newFixture()
	f.Name = "Header"
	f.MercSeed = 7
	buf := f.Bytes()

	s, err := NewDecoder().DecodeHeader(buf[:HeaderSize+8])
	require.NoError(t, err)
	assert.Equal(t, "Header", s.Name)
	assert.True(t, s.Merc.Hired())
	assert.Nil(t, s.Merc.Items)
}

func TestDecode_StatWidthsProvider(t *testing.T) {
	f := newFixture()
	f.Widths = map[int]int{StatStrength: 12}
	f.Stats = []d2stest.Stat{{ID: StatStrength, Value: 3000}, {ID: StatLevel, Value: 5}}

	widths := StatWidthsFunc(func(id int) (int, bool) {
		if id == StatStrength {
			return 12, true
		}
		return 0, false
	})
	s, err := NewDecoder(WithStatWidths(widths)).Decode(f.Bytes())
	require.NoError(t, err)
	assert.Equal(t, int32(3000), s.Stats.Strength)
	assert.Equal(t, int32(5), s.Stats.Level)
}
