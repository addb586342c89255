package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/rebalance"
)

// BaseSetTable indexes template sets by name.
type BaseSetTable struct {
	byName map[string]*rebalance.BaseSet
}

// Get returns a base set by name, or nil if not found.
func (t *BaseSetTable) Get(name string) *rebalance.BaseSet {
	return t.byName[name]
}

// Names returns the set names, sorted.
func (t *BaseSetTable) Names() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of sets loaded.
func (t *BaseSetTable) Count() int {
	return len(t.byName)
}

// --- YAML loading ---

type weaponSourceEntry struct {
	ID      string `yaml:"id"`
	Keyword string `yaml:"keyword"`
}

type baseSetEntry struct {
	Name    string              `yaml:"name"`
	Armor   []string            `yaml:"armor"`
	Weapons []weaponSourceEntry `yaml:"weapons"`
	Ammo    []string            `yaml:"ammo"`
}

type baseSetFile struct {
	Sets []baseSetEntry `yaml:"base_sets"`
}

// LoadBaseSetTable loads template sets from YAML, resolving every member
// against cat. An unresolved member or a broken set invariant is an error.
func LoadBaseSetTable(path string, cat *catalog.Catalog) (*BaseSetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("baseset: read %s: %w", path, err)
	}
	var f baseSetFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("baseset: parse %s: %w", path, err)
	}

	t := &BaseSetTable{byName: make(map[string]*rebalance.BaseSet, len(f.Sets))}
	for _, se := range f.Sets {
		b := &rebalance.BaseSet{Name: se.Name}
		for _, s := range se.Armor {
			e, err := resolve(cat, s)
			if err != nil {
				return nil, fmt.Errorf("baseset %s: %w", se.Name, err)
			}
			b.Armor = append(b.Armor, e)
		}
		for _, w := range se.Weapons {
			e, err := resolve(cat, w.ID)
			if err != nil {
				return nil, fmt.Errorf("baseset %s: %w", se.Name, err)
			}
			b.Weapons = append(b.Weapons, rebalance.WeaponSource{Entry: e, Keyword: w.Keyword})
		}
		for _, s := range se.Ammo {
			e, err := resolve(cat, s)
			if err != nil {
				return nil, fmt.Errorf("baseset %s: %w", se.Name, err)
			}
			b.Ammo = append(b.Ammo, e)
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		t.byName[se.Name] = b
	}
	return t, nil
}

func resolve(cat *catalog.Catalog, s string) (*catalog.Entry, error) {
	id, err := catalog.ParseFormID(s)
	if err != nil {
		return nil, err
	}
	return cat.Resolve(id.Origin, id.Local)
}
