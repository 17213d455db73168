package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/d2vault/d2vault/internal/d2s"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM. Calls are serialized, so one Engine
// may serve concurrent decoders.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("SAVE_VERSION", lua.LNumber(d2s.Version))

	e := &Engine{vm: vm, log: log}

	// Core helpers first, then the hooks that may use them.
	for _, sub := range []string{"core", "stats", "lint"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// --- Stat Width Bridge ---

// StatBits calls Lua stat_bits(id). A missing function, a nil result or a
// non-positive width means the script has no entry for id.
func (e *Engine) StatBits(id int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("stat_bits")
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(id)); err != nil {
		e.log.Error("lua stat_bits error", zap.Int("stat", id), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || n <= 0 || n > 64 {
		return 0, false
	}
	return int(n), true
}

// --- Lint Bridge ---

// Lint calls Lua lint_character(c) and returns its messages. Without a
// lint_character function there is nothing to report.
func (e *Engine) Lint(s *d2s.Save) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("lint_character")
	if fn == lua.LNil {
		return nil, nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.characterTable(s)); err != nil {
		return nil, fmt.Errorf("lua lint_character: %w", err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return nil, nil
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua lint_character returned %s, want table", result.Type())
	}

	var msgs []string
	rt.ForEach(func(_, v lua.LValue) {
		msgs = append(msgs, lua.LVAsString(v))
	})
	return msgs, nil
}

// characterTable packs a decoded save for Lua.
func (e *Engine) characterTable(s *d2s.Save) *lua.LTable {
	L := e.vm
	t := L.NewTable()
	t.RawSetString("name", lua.LString(s.DisplayName()))
	t.RawSetString("class", lua.LNumber(s.Class))
	t.RawSetString("class_name", lua.LString(d2s.ClassName(int(s.Class))))
	t.RawSetString("level", lua.LNumber(s.Level))
	t.RawSetString("hardcore", lua.LBool(s.Hardcore()))
	t.RawSetString("died", lua.LBool(s.Died()))
	t.RawSetString("expansion", lua.LBool(s.Expansion()))
	t.RawSetString("ladder", lua.LBool(s.Ladder()))

	st := &s.Stats
	stats := L.NewTable()
	for _, kv := range []struct {
		id int
		v  int64
	}{
		{d2s.StatStrength, int64(st.Strength)},
		{d2s.StatEnergy, int64(st.Energy)},
		{d2s.StatDexterity, int64(st.Dexterity)},
		{d2s.StatVitality, int64(st.Vitality)},
		{d2s.StatStatPoints, int64(st.StatPoints)},
		{d2s.StatSkillPoints, int64(st.SkillPoints)},
		{d2s.StatHitpoints, int64(st.Life())},
		{d2s.StatMaxHP, int64(st.MaxLife())},
		{d2s.StatMana, int64(st.ManaPoints())},
		{d2s.StatMaxMana, int64(st.MaxManaPoints())},
		{d2s.StatStamina, int64(st.StaminaPoints())},
		{d2s.StatMaxStamina, int64(st.MaxStaminaPoints())},
		{d2s.StatLevel, int64(st.Level)},
		{d2s.StatExperience, st.Experience},
		{d2s.StatGold, st.Gold},
		{d2s.StatGoldBank, st.GoldBank},
	} {
		stats.RawSetString(d2s.StatName(kv.id), lua.LNumber(kv.v))
	}
	t.RawSetString("stats", stats)

	skills := L.NewTable()
	for _, p := range s.Skills.Skills {
		skills.Append(lua.LNumber(p))
	}
	t.RawSetString("skills", skills)

	items := L.NewTable()
	for _, it := range s.Items.Items {
		row := L.NewTable()
		row.RawSetString("code", lua.LString(it.Code))
		row.RawSetString("location", lua.LString(it.Location.String()))
		row.RawSetString("store", lua.LString(it.Store.String()))
		row.RawSetString("x", lua.LNumber(it.GridX))
		row.RawSetString("y", lua.LNumber(it.GridY))
		row.RawSetString("ear", lua.LBool(it.Ear != nil))
		row.RawSetString("socketed", lua.LNumber(len(it.Socketed)))
		items.Append(row)
	}
	t.RawSetString("items", items)
	t.RawSetString("item_errors", lua.LNumber(s.Items.Errors))

	merc := L.NewTable()
	merc.RawSetString("hired", lua.LBool(s.Merc.Hired()))
	merc.RawSetString("experience", lua.LNumber(s.Merc.Experience))
	if s.Merc.Items != nil {
		merc.RawSetString("items", lua.LNumber(s.Merc.Items.Len()))
		merc.RawSetString("item_errors", lua.LNumber(s.Merc.Items.Errors))
	}
	t.RawSetString("merc", merc)
	t.RawSetString("golem", lua.LBool(s.Golem.Exists))
	return t
}

// --- Lua helpers ---

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// ExpForLevel calls Lua exp_for_level(level), the experience needed to reach
// level. Lint rules use it through the same function.
func (e *Engine) ExpForLevel(level int) int64 {
	return int64(e.callIntFunc("exp_for_level", level))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
