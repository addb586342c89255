package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/catalog"
)

// Engine wraps a single gopher-lua VM running the loot hooks.
// Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under
// scriptsDir/loot. A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.loadDir(filepath.Join(scriptsDir, "loot")); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load loot scripts: %w", err)
	}
	return e, nil
}

// NewEngineFromSource creates an engine from an inline chunk.
func NewEngineFromSource(src string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
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

// HasHook reports whether the named global function is defined.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// LootRarity calls loot_rarity(item, profile) and returns the tier it
// names. Without the hook, or when it returns nil, the tier is empty and
// the caller keeps its default.
func (e *Engine) LootRarity(item *catalog.Entry, profile string) (string, error) {
	fn := e.vm.GetGlobal("loot_rarity")
	if fn == lua.LNil {
		return "", nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.itemTable(item), lua.LString(profile)); err != nil {
		e.log.Error("lua loot_rarity error", zap.Stringer("id", item.ID), zap.Error(err))
		return "", fmt.Errorf("loot_rarity: %w", err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return "", nil
	default:
		return "", fmt.Errorf("loot_rarity: returned %s, want string", result.Type())
	}
}

func (e *Engine) itemTable(item *catalog.Entry) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(item.ID.String()))
	t.RawSetString("name", lua.LString(item.Name))
	t.RawSetString("kind", lua.LString(item.Kind.String()))
	t.RawSetString("value", lua.LNumber(item.Value))
	t.RawSetString("weight", lua.LNumber(item.Weight))
	switch item.Kind {
	case catalog.KindArmor:
		t.RawSetString("armor_type", lua.LString(item.ArmorType.String()))
		t.RawSetString("armor", lua.LNumber(item.ArmorRating))
		t.RawSetString("slots", lua.LNumber(uint32(item.Slots)))
	case catalog.KindWeapon, catalog.KindAmmo:
		t.RawSetString("weapon_type", lua.LString(item.WeaponType))
		t.RawSetString("damage", lua.LNumber(item.Damage))
		t.RawSetString("bolt", lua.LBool(item.Bolt))
	}
	kws := e.vm.NewTable()
	for _, kw := range item.Keywords {
		kws.Append(lua.LString(kw))
	}
	t.RawSetString("keywords", kws)
	return t
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
