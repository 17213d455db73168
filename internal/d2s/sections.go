package d2s

import (
	"github.com/d2vault/d2vault/internal/codec"
	"go.uber.org/zap"
)

// readSectionSize reads the declared 16-bit size and checks it against the
// size derived from the section's fixed cardinalities.
func readSectionSize(in *codec.ByteReader, section string, want int) (int, error) {
	at := in.Offset()
	size, err := in.ReadSafe16u()
	if err != nil {
		return 0, err
	}
	if int(size) != want {
		return 0, codec.InvalidFormat(at, nil, "%s size %d != %d", section, size, want)
	}
	return int(size), nil
}

func expectExhausted(in *codec.ByteReader, section string) error {
	if n := in.BytesRemaining(); n != 0 {
		return codec.InvalidFormat(in.Offset(), nil, "%s has %d unread bytes", section, n)
	}
	return nil
}

func readQuestData(in *codec.ByteReader, q *QuestData, log *zap.Logger) error {
	if err := in.ReadSignature(QuestsSignature); err != nil {
		return err
	}
	at := in.Offset()
	version, err := in.ReadSafe32u()
	if err != nil {
		return err
	}
	if version != questsVersion {
		return codec.InvalidFormat(at, nil, "quests version %d != %d", version, questsVersion)
	}
	size, err := readSectionSize(in, "quests", QuestsSize)
	if err != nil {
		return err
	}
	in, err = in.Slice(size - len(QuestsSignature) - 4 - 2)
	if err != nil {
		return err
	}
	for i := range q.Flags {
		if err := readInto(in, q.Flags[i][:]); err != nil {
			return err
		}
		if ce := log.Check(zap.DebugLevel, "quests"); ce != nil {
			ce.Write(zap.String("difficulty", DifficultyName(i)), zap.Binary("flags", q.Flags[i][:]))
		}
	}
	return expectExhausted(in, "quests")
}

func readWaypointData(in *codec.ByteReader, w *WaypointData, log *zap.Logger) error {
	if err := in.ReadSignature(WaypointsSignature); err != nil {
		return err
	}
	at := in.Offset()
	version, err := in.ReadSafe32u()
	if err != nil {
		return err
	}
	if version != waypointsVersion {
		return codec.InvalidFormat(at, nil, "waypoints version %d != %d", version, waypointsVersion)
	}
	size, err := readSectionSize(in, "waypoints", WaypointsSize)
	if err != nil {
		return err
	}
	in, err = in.Slice(size - len(WaypointsSignature) - 4 - 2)
	if err != nil {
		return err
	}
	for i := range w.Flags {
		diff, err := in.Slice(WaypointsDiffSize)
		if err != nil {
			return err
		}
		if err := diff.ReadSignature(WaypointsDiffSignature); err != nil {
			return err
		}
		if err := readInto(diff, w.Flags[i][:]); err != nil {
			return err
		}
		if err := expectExhausted(diff, "waypoints difficulty"); err != nil {
			return err
		}
		if ce := log.Check(zap.DebugLevel, "waypoints"); ce != nil {
			ce.Write(zap.String("difficulty", DifficultyName(i)), zap.Binary("flags", w.Flags[i][:]))
		}
	}
	return expectExhausted(in, "waypoints")
}

var greetingNames = [NumGreetings]string{"intro", "return"}

func readNPCData(in *codec.ByteReader, n *NPCData, log *zap.Logger) error {
	if err := in.ReadSignature(NPCsSignature); err != nil {
		return err
	}
	size, err := readSectionSize(in, "npcs", NPCsSize)
	if err != nil {
		return err
	}
	in, err = in.Slice(size - len(NPCsSignature) - 2)
	if err != nil {
		return err
	}
	for i := range n.Flags {
		for j := range n.Flags[i] {
			if err := readInto(in, n.Flags[i][j][:]); err != nil {
				return err
			}
			if ce := log.Check(zap.DebugLevel, "npcs"); ce != nil {
				ce.Write(
					zap.String("greeting", greetingNames[i]),
					zap.String("difficulty", DifficultyName(j)),
					zap.Binary("flags", n.Flags[i][j][:]),
				)
			}
		}
	}
	return expectExhausted(in, "npcs")
}

func readSkillData(in *codec.ByteReader, s *SkillData, log *zap.Logger) error {
	if err := in.ReadSignature(SkillsSignature); err != nil {
		return err
	}
	in, err := in.Slice(SkillsSize - len(SkillsSignature))
	if err != nil {
		return err
	}
	if err := readInto(in, s.Skills[:]); err != nil {
		return err
	}
	for i := 0; i < NumTrees; i++ {
		log.Debug("skills", zap.Int("tree", i), zap.Binary("points", s.Skills[i*NumTreeSkills:(i+1)*NumTreeSkills]))
	}
	return expectExhausted(in, "skills")
}
