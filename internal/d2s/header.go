package d2s

import (
	"bytes"
	"fmt"

	"github.com/d2vault/d2vault/internal/codec"
	"go.uber.org/zap"
)

// VersionError reports an unsupported save format version. It matches
// codec.ErrInvalidFormat.
type VersionError struct {
	Got  int32
	Want int32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported version %d (%s), expected %d (%s)",
		e.Got, VersionString(e.Got), e.Want, VersionString(e.Want))
}

func (e *VersionError) Is(target error) bool {
	return target == codec.ErrInvalidFormat
}

// readSignatureAndVersion consumes nothing past the version field. Input too
// short to hold the signature is a format error, not a truncation.
func readSignatureAndVersion(in *codec.ByteReader, s *Save) error {
	if n := in.BytesRemaining(); n < len(Signature) {
		got := in.Bytes()
		if !bytes.Equal(got, Signature[:n]) {
			return &codec.SignatureError{
				Offset: in.Offset(),
				Want:   append([]byte(nil), Signature...),
				Got:    append([]byte(nil), got...),
			}
		}
		return codec.InvalidFormat(in.Offset(), nil, "save signature missing: %d of %d bytes", n, len(Signature))
	}
	if err := in.ReadSignature(Signature); err != nil {
		return err
	}
	v, err := in.ReadSafe32u()
	if err != nil {
		return err
	}
	s.Version = v
	if v != Version {
		return &VersionError{Got: v, Want: Version}
	}
	return nil
}

func readHeader(in *codec.ByteReader, s *Save, log *zap.Logger) error {
	in, err := in.Slice(HeaderSize - len(Signature) - 4)
	if err != nil {
		return err
	}
	if s.Size, err = in.ReadSafe32u(); err != nil {
		return err
	}
	if s.Checksum, err = in.Read32(); err != nil {
		return err
	}
	if s.Alternate, err = in.ReadSafe32u(); err != nil {
		return err
	}
	if s.Name, err = in.ReadString(MaxNameLength + 1); err != nil {
		return err
	}
	log = log.With(zap.String("name", s.Name))
	log.Debug("header",
		zap.Int32("version", s.Version),
		zap.Int32("size", s.Size),
		zap.String("checksum", fmt.Sprintf("0x%08X", s.Checksum)),
	)

	if s.Flags, err = in.Read32(); err != nil {
		return err
	}
	if s.Class, err = in.ReadSafe8u(); err != nil {
		return err
	}
	if err := in.SkipBytes(2); err != nil { // unknown
		return err
	}
	if s.Level, err = in.ReadSafe8u(); err != nil {
		return err
	}
	if err := in.SkipBytes(4); err != nil { // unknown
		return err
	}
	if s.Timestamp, err = in.Read32(); err != nil {
		return err
	}
	if err := in.SkipBytes(4); err != nil { // unknown
		return err
	}
	log.Debug("character",
		zap.String("flags", fmt.Sprintf("0x%08X [%s]", s.Flags, s.FlagsString())),
		zap.String("class", ClassName(int(s.Class))),
		zap.Int8("level", s.Level),
	)

	hotkeys, err := in.ReadUint32s(NumHotkeys)
	if err != nil {
		return err
	}
	copy(s.Hotkeys[:], hotkeys)
	for i := range s.Actions {
		actions, err := in.ReadUint32s(NumButtons)
		if err != nil {
			return err
		}
		copy(s.Actions[i][:], actions)
	}
	if err := readInto(in, s.Composites[:]); err != nil {
		return err
	}
	if err := readInto(in, s.Colors[:]); err != nil {
		return err
	}
	if err := readInto(in, s.Towns[:]); err != nil {
		return err
	}
	if s.MapSeed, err = in.Read32(); err != nil {
		return err
	}
	log.Debug("appearance",
		zap.Binary("composites", s.Composites[:]),
		zap.Binary("colors", s.Colors[:]),
		zap.Binary("towns", s.Towns[:]),
		zap.String("mapSeed", fmt.Sprintf("0x%08X", s.MapSeed)),
	)

	if err := readMercSummary(in, &s.Merc, log.With(zap.String("section", "merc"))); err != nil {
		return fmt.Errorf("merc: %w", err)
	}
	if err := in.SkipBytes(realmDataSize); err != nil {
		return err
	}
	if n := in.BytesRemaining(); n != 0 {
		return codec.InvalidFormat(in.Offset(), nil, "header has %d unread bytes", n)
	}
	return nil
}

func readMercSummary(in *codec.ByteReader, m *MercData, log *zap.Logger) error {
	in, err := in.Slice(MercSize)
	if err != nil {
		return err
	}
	if m.Flags, err = in.Read32(); err != nil {
		return err
	}
	if m.Seed, err = in.Read32(); err != nil {
		return err
	}
	if m.Name, err = in.ReadSafe16u(); err != nil {
		return err
	}
	if m.Type, err = in.ReadSafe16u(); err != nil {
		return err
	}
	if m.Experience, err = in.ReadSafe32u(); err != nil {
		return err
	}
	log.Debug("merc summary",
		zap.String("flags", fmt.Sprintf("0x%08X", m.Flags)),
		zap.String("seed", fmt.Sprintf("0x%08X", m.Seed)),
		zap.Int16("name", m.Name),
		zap.Int16("type", m.Type),
		zap.Int32("experience", m.Experience),
	)
	if n := in.BytesRemaining(); n != 0 {
		return codec.InvalidFormat(in.Offset(), nil, "merc has %d unread bytes", n)
	}
	return nil
}

// readInto fills dst with the next len(dst) bytes.
func readInto(in *codec.ByteReader, dst []byte) error {
	b, err := in.ReadBytes(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}
