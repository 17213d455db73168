package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemCategory groups item type codes for display.
type ItemCategory int

const (
	CategoryMisc   ItemCategory = 0
	CategoryWeapon ItemCategory = 1
	CategoryArmor  ItemCategory = 2
)

func (c ItemCategory) String() string {
	switch c {
	case CategoryWeapon:
		return "weapon"
	case CategoryArmor:
		return "armor"
	default:
		return "misc"
	}
}

// ItemType is the template behind a 3-4 character item code.
type ItemType struct {
	Code     string
	Name     string
	Category ItemCategory
	Width    int // inventory cells
	Height   int
}

// ItemTypeTable maps item codes to templates.
type ItemTypeTable struct {
	types map[string]*ItemType
}

// Get returns an item type by code, or nil if not found.
func (t *ItemTypeTable) Get(code string) *ItemType {
	if t == nil {
		return nil
	}
	return t.types[code]
}

// Name returns the display name of code, or code itself when unknown.
func (t *ItemTypeTable) Name(code string) string {
	if it := t.Get(code); it != nil {
		return it.Name
	}
	return code
}

func (t *ItemTypeTable) Count() int {
	return len(t.types)
}

// --- YAML loading ---

type itemTypeEntry struct {
	Code   string `yaml:"code"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"inv_width"`
	Height int    `yaml:"inv_height"`
}

type itemTypeFile struct {
	Weapons []itemTypeEntry `yaml:"weapons"`
	Armor   []itemTypeEntry `yaml:"armor"`
	Misc    []itemTypeEntry `yaml:"misc"`
}

// LoadItemTypeTable loads item type templates from YAML.
func LoadItemTypeTable(path string) (*ItemTypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item types: %w", err)
	}
	var f itemTypeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item types: %w", err)
	}
	t := &ItemTypeTable{
		types: make(map[string]*ItemType, len(f.Weapons)+len(f.Armor)+len(f.Misc)),
	}
	for _, group := range []struct {
		entries  []itemTypeEntry
		category ItemCategory
	}{
		{f.Weapons, CategoryWeapon},
		{f.Armor, CategoryArmor},
		{f.Misc, CategoryMisc},
	} {
		for _, e := range group.entries {
			if e.Code == "" || len(e.Code) > 4 {
				return nil, fmt.Errorf("item type %q: code must be 1-4 characters", e.Code)
			}
			t.types[e.Code] = &ItemType{
				Code:     e.Code,
				Name:     e.Name,
				Category: group.category,
				Width:    e.Width,
				Height:   e.Height,
			}
		}
	}
	return t, nil
}
