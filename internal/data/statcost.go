package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StatCost describes how one character stat is stored in a save.
type StatCost struct {
	ID         int
	Name       string
	Bits       int // stored width in the stats section
	ValueShift int // fractional bits of fixed-point values
}

// StatCostTable holds stat storage widths indexed by stat id. It satisfies
// d2s.StatWidths.
type StatCostTable struct {
	stats  map[int]*StatCost
	byName map[string]*StatCost
}

// Get returns a stat by id, or nil if not found.
func (t *StatCostTable) Get(id int) *StatCost {
	if t == nil {
		return nil
	}
	return t.stats[id]
}

// GetByName returns a stat by its short name, or nil if not found.
func (t *StatCostTable) GetByName(name string) *StatCost {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Shift returns the fractional bits of a fixed-point stat, or def when the
// table has no entry for name.
func (t *StatCostTable) Shift(name string, def int) int {
	if s := t.GetByName(name); s != nil {
		return s.ValueShift
	}
	return def
}

// StatBits reports the stored width of a stat.
func (t *StatCostTable) StatBits(id int) (int, bool) {
	s := t.stats[id]
	if s == nil || s.Bits <= 0 {
		return 0, false
	}
	return s.Bits, true
}

// Count returns total loaded stats.
func (t *StatCostTable) Count() int {
	return len(t.stats)
}

// --- YAML loading ---

type statCostEntry struct {
	ID         int    `yaml:"id"`
	Name       string `yaml:"name"`
	CsvBits    int    `yaml:"csv_bits"`
	ValueShift int    `yaml:"value_shift"`
}

type statCostFile struct {
	Stats []statCostEntry `yaml:"stats"`
}

// LoadStatCostTable loads stat widths from YAML.
func LoadStatCostTable(path string) (*StatCostTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stat cost: %w", err)
	}
	var f statCostFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse stat cost: %w", err)
	}
	t := &StatCostTable{
		stats:  make(map[int]*StatCost, len(f.Stats)),
		byName: make(map[string]*StatCost, len(f.Stats)),
	}
	for i := range f.Stats {
		e := &f.Stats[i]
		if e.CsvBits < 0 || e.CsvBits > 64 {
			return nil, fmt.Errorf("stat cost %d (%s): csv_bits %d out of range", e.ID, e.Name, e.CsvBits)
		}
		if e.ValueShift < 0 || e.ValueShift > 31 {
			return nil, fmt.Errorf("stat cost %d (%s): value_shift %d out of range", e.ID, e.Name, e.ValueShift)
		}
		if _, dup := t.stats[e.ID]; dup {
			return nil, fmt.Errorf("stat cost %d: duplicate id", e.ID)
		}
		t.stats[e.ID] = &StatCost{
			ID:         e.ID,
			Name:       e.Name,
			Bits:       e.CsvBits,
			ValueShift: e.ValueShift,
		}
		t.byName[e.Name] = t.stats[e.ID]
	}
	return t, nil
}
