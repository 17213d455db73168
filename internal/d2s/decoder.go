// Package d2s decodes character save files: a fixed header followed by
// signature-delimited sections for quests, waypoints, NPC flags, bit-packed
// statistics, skills, items, the mercenary and the iron golem.
//
// Decoding is synchronous over an in-memory buffer. A Decoder holds only
// configuration and may be shared; every call builds its own cursor chain.
package d2s

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/item"
	"go.uber.org/zap"
)

// Decoder decodes save buffers.
type Decoder struct {
	log            *zap.Logger
	items          ItemReader
	widths         StatWidths
	verifyChecksum bool
	verifySize     bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(d *Decoder) { d.log = log }
}

// WithItemReader replaces the default item reader.
func WithItemReader(r ItemReader) Option {
	return func(d *Decoder) { d.items = r }
}

// WithStatWidths sets the stat width provider. Without one, or for ids the
// provider does not know, BuiltinStatWidths is used.
func WithStatWidths(w StatWidths) Option {
	return func(d *Decoder) { d.widths = w }
}

// WithChecksumVerification rejects saves whose stored checksum differs from
// the computed one.
func WithChecksumVerification() Option {
	return func(d *Decoder) { d.verifyChecksum = true }
}

// WithSizeVerification rejects saves whose declared size differs from the
// buffer length.
func WithSizeVerification() Option {
	return func(d *Decoder) { d.verifySize = true }
}

// NewDecoder returns a Decoder configured by opts. Without WithItemReader it
// uses the default item reader, stopping items at the merc and golem markers.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.items == nil {
		d.items = item.NewReader(d.log.Named("item"), MercSignature, GolemSignature)
	}
	return d
}

// Decode decodes a complete save. On failure no partial record is returned.
func (d *Decoder) Decode(buf []byte) (*Save, error) {
	s, in, err := d.decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := d.decodeRemaining(in, s); err != nil {
		return nil, codec.Promote(err)
	}
	return s, nil
}

// DecodeHeader decodes only the fixed header, including the merc summary.
func (d *Decoder) DecodeHeader(buf []byte) (*Save, error) {
	s, _, err := d.decodeHeader(buf)
	return s, err
}

func (d *Decoder) decodeHeader(buf []byte) (*Save, *codec.ByteReader, error) {
	in := codec.NewReader(buf)
	s := &Save{}
	if err := readSignatureAndVersion(in, s); err != nil {
		return nil, nil, fmt.Errorf("header: %w", codec.Promote(err))
	}
	if err := readHeader(in, s, d.log.With(zap.String("section", "header"))); err != nil {
		return nil, nil, fmt.Errorf("header: %w", codec.Promote(err))
	}
	if err := d.verify(buf, s); err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}
	return s, in, nil
}

func (d *Decoder) verify(buf []byte, s *Save) error {
	if d.verifySize && int(s.Size) != len(buf) {
		return codec.InvalidFormat(8, nil, "declared size %d != file size %d", s.Size, len(buf))
	}
	if d.verifyChecksum {
		if sum := Checksum(buf); sum != s.Checksum {
			return codec.InvalidFormat(checksumOffset, nil, "checksum 0x%08X != computed 0x%08X", s.Checksum, sum)
		}
	}
	return nil
}

func (d *Decoder) decodeRemaining(in *codec.ByteReader, s *Save) error {
	log := d.log.With(zap.String("name", s.Name))
	section := func(name string) *zap.Logger {
		return log.With(zap.String("section", name))
	}

	if err := readQuestData(in, &s.Quests, section("quests")); err != nil {
		return fmt.Errorf("quests: %w", err)
	}
	if err := readWaypointData(in, &s.Waypoints, section("waypoints")); err != nil {
		return fmt.Errorf("waypoints: %w", err)
	}
	if err := readNPCData(in, &s.NPCs, section("npcs")); err != nil {
		return fmt.Errorf("npcs: %w", err)
	}
	statLog := section("stats")
	widths := &statWidth{widths: d.widths, log: statLog}
	if err := readStatData(in, &s.Stats, widths, statLog); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if err := skipToSection(in, SkillsSignature, "skills"); err != nil {
		return err
	}
	if err := readSkillData(in, &s.Skills, section("skills")); err != nil {
		return fmt.Errorf("skills: %w", err)
	}

	items, err := readItemList(in, d.items, section("items"))
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}
	s.Items = items
	if err := d.readItemsFooter(in); err != nil {
		return err
	}

	if err := skipToSection(in, MercSignature, "merc"); err != nil {
		return err
	}
	if err := readMercItems(in, &s.Merc, d.items, section("merc")); err != nil {
		return fmt.Errorf("merc: %w", err)
	}

	if err := skipToSection(in, GolemSignature, "golem"); err != nil {
		return err
	}
	if err := readGolemData(in, &s.Golem, d.items, section("golem")); err != nil {
		return fmt.Errorf("golem: %w", err)
	}
	return nil
}

func (d *Decoder) readItemsFooter(in *codec.ByteReader) error {
	err := d.items.SkipToNext(in)
	if err == nil {
		err = in.ReadSignature(ItemsFooterSignature)
	}
	if errors.Is(err, codec.ErrEndOfInput) {
		return codec.InvalidFormat(in.Offset(), err, "items footer %s is missing",
			hex.EncodeToString(ItemsFooterSignature))
	}
	if err != nil {
		return fmt.Errorf("items footer: %w", err)
	}
	return nil
}

// skipToSection scans forward to a section whose offset is not fixed.
func skipToSection(in *codec.ByteReader, sig []byte, name string) error {
	if err := in.SkipUntil(sig); err != nil {
		return codec.InvalidFormat(in.Offset(), err, "%s section %s is missing", name, hex.EncodeToString(sig))
	}
	return nil
}
