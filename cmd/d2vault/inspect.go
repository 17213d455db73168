package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/d2vault/d2vault/internal/data"
	"github.com/d2vault/d2vault/internal/item"
	"github.com/d2vault/d2vault/internal/query"
	"go.uber.org/zap"
)

func (a *app) inspect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	where := fs.String("where", "", "only show characters matching this expression")
	showItems := fs.Bool("items", false, "list items")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var filter *query.Filter
	if *where != "" {
		f, err := query.Compile(*where)
		if err != nil {
			return err
		}
		filter = f
	}

	types, err := data.LoadItemTypeTable(a.cfg.Decoder.ItemTypesPath)
	if err != nil {
		// Names fall back to codes.
		a.log.Warn("item types unavailable", zap.Error(err))
	}
	costs, err := data.LoadStatCostTable(a.cfg.Decoder.StatCostPath)
	if err != nil {
		// Fixed-point stats fall back to 8 fractional bits.
		a.log.Warn("stat costs unavailable", zap.Error(err))
	}

	results, err := a.decodeAll(ctx, fs.Args())
	if err != nil && results == nil {
		return err
	}

	a.out.printBanner("inspect")
	shown, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.out.printFail(r.Err.Error())
			continue
		}
		if filter != nil {
			ok, err := filter.Match(r.Save)
			if err != nil {
				failed++
				a.out.printFail(fmt.Sprintf("%s: %v", r.Path, err))
				continue
			}
			if !ok {
				continue
			}
		}
		shown++
		a.printSave(r.Path, r.Save, types, costs, *showItems)
	}

	a.out.printSection("Summary")
	a.out.printStat("Files", len(results))
	a.out.printStat("Shown", shown)
	a.out.printStat("Failed", failed)
	if err != nil {
		return err
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}

func (a *app) printSave(path string, s *d2s.Save, types *data.ItemTypeTable, costs *data.StatCostTable, showItems bool) {
	p := a.out
	p.printSection(s.DisplayName())
	p.printStat("File", path)
	p.printStat("Version", d2s.VersionString(s.Version))
	p.printStat("Class", d2s.ClassName(int(s.Class)))
	p.printStat("Level", s.Level)
	status := s.FlagsString()
	if status == "" {
		status = "-"
	}
	p.printStat("Status", status)
	p.printStat("Experience", s.Stats.Experience)
	p.printStat("Gold", s.Stats.Gold)
	p.printStat("Stash", s.Stats.GoldBank)
	p.printStat("Life", fixedPair(costs, "hitpoints", s.Stats.Hitpoints, "maxhp", s.Stats.MaxHP))
	p.printStat("Mana", fixedPair(costs, "mana", s.Stats.Mana, "maxmana", s.Stats.MaxMana))
	p.printStat("Stamina", fixedPair(costs, "stamina", s.Stats.Stamina, "maxstamina", s.Stats.MaxStamina))
	p.printStat("Str/Dex/Vit/Ene", fmt.Sprintf("%d/%d/%d/%d",
		s.Stats.Strength, s.Stats.Dexterity, s.Stats.Vitality, s.Stats.Energy))
	p.printStat("Items", s.Items.Len())
	if s.Items.Errors > 0 {
		p.printStat("Item errors", s.Items.Errors)
	}
	if s.Merc.Hired() {
		p.printStat("Merc experience", s.Merc.Experience)
		if s.Merc.Items != nil {
			p.printStat("Merc items", s.Merc.Items.Len())
		}
	}
	if s.Golem.Item != nil {
		p.printStat("Golem", types.Name(s.Golem.Item.Code))
	}

	if showItems {
		for _, it := range s.Items.Items {
			a.printItem(it, types, "")
		}
	}
	fmt.Fprintln(p.w)
}

func (a *app) printItem(it *item.Item, types *data.ItemTypeTable, indent string) {
	name := types.Name(it.Code)
	if it.Ear != nil {
		name = fmt.Sprintf("Ear of %s (level %d)", it.Ear.Name, it.Ear.Level)
	}
	where := it.Location.String()
	if it.Location == item.LocationStored {
		where = fmt.Sprintf("%s (%d,%d)", it.Store, it.GridX, it.GridY)
	}
	if t := types.Get(it.Code); t != nil {
		where = fmt.Sprintf("%s %dx%d, %s", t.Category, t.Width, t.Height, where)
	}
	a.out.printLine("%s%-28s %s", indent, name, a.out.render(dimStyle, where))
	for _, child := range it.Socketed {
		a.printItem(child, types, indent+"  ")
	}
}

// fixedPair renders current/max of two fixed-point stats as integers.
func fixedPair(costs *data.StatCostTable, curName string, cur int32, maxName string, maxVal int32) string {
	return fmt.Sprintf("%d/%d", cur>>costs.Shift(curName, 8), maxVal>>costs.Shift(maxName, 8))
}
