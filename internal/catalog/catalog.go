package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/l1jgo/itemforge/internal/slot"
)

var (
	ErrNotFound      = errors.New("catalog: entry not found")
	ErrScopeInactive = errors.New("catalog: origin scope not active")
	ErrOutOfRange    = errors.New("catalog: local id out of range for scope")
)

// Kind distinguishes armor/weapon/ammo for rebalance logic.
type Kind int

const (
	KindOther Kind = iota
	KindArmor
	KindWeapon
	KindAmmo
)

func (k Kind) String() string {
	switch k {
	case KindArmor:
		return "armor"
	case KindWeapon:
		return "weapon"
	case KindAmmo:
		return "ammo"
	default:
		return "other"
	}
}

// ParseKind converts a YAML kind string.
func ParseKind(s string) Kind {
	switch s {
	case "armor":
		return KindArmor
	case "weapon":
		return KindWeapon
	case "ammo":
		return KindAmmo
	default:
		return KindOther
	}
}

// ArmorType is the weight class of an armor piece.
type ArmorType int

const (
	ArmorClothing ArmorType = iota
	ArmorLight
	ArmorHeavy
)

// ParseArmorType converts a YAML armor type string; unknown means clothing.
func ParseArmorType(s string) ArmorType {
	switch s {
	case "light":
		return ArmorLight
	case "heavy":
		return ArmorHeavy
	default:
		return ArmorClothing
	}
}

func (t ArmorType) String() string {
	switch t {
	case ArmorLight:
		return "light"
	case ArmorHeavy:
		return "heavy"
	default:
		return "clothing"
	}
}

// ModelPart is a geometry association that must follow its armor's slots.
type ModelPart struct {
	ID    FormID
	Slots slot.Mask
}

// Entry holds one catalog item. Flat struct: fields that don't apply to a
// kind are zero-valued.
type Entry struct {
	ID       FormID
	Kind     Kind
	Name     string
	Keywords []string
	Weight   float64
	Value    int

	// Armor
	Slots       slot.Mask
	ArmorRating int
	ArmorType   ArmorType
	Models      []ModelPart

	// Weapon / ammo
	WeaponType string // raw animation category; battleaxe and warhammer share one
	Damage     int
	Speed      float64
	Stagger    float64
	Bolt       bool
}

// KindOf returns the entry's kind, KindOther for nil.
func KindOf(e *Entry) Kind {
	if e == nil {
		return KindOther
	}
	return e.Kind
}

// HasKeyword reports whether the entry carries keyword kw.
func (e *Entry) HasKeyword(kw string) bool {
	return slices.Contains(e.Keywords, kw)
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Keywords = slices.Clone(e.Keywords)
	c.Models = slices.Clone(e.Models)
	return &c
}

// Scope describes one origin collection.
type Scope struct {
	Name   string
	Light  bool
	Active bool
	Order  int
}

// LocalMax returns the largest valid local id for the scope.
func (s *Scope) LocalMax() uint32 {
	if s.Light {
		return LightLocalMax
	}
	return FullLocalMax
}

// Catalog is the in-memory item store the engine reads and the applier
// mutates. Single-goroutine access only.
type Catalog struct {
	scopes  map[string]*Scope
	entries map[FormID]*Entry
	recipes map[FormID][]*Recipe
	order   []FormID
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		scopes:  make(map[string]*Scope),
		entries: make(map[FormID]*Entry, 4096),
		recipes: make(map[FormID][]*Recipe),
	}
}

// AddScope registers an origin scope. Re-adding replaces the definition.
func (c *Catalog) AddScope(s Scope) {
	if s.Order == 0 {
		s.Order = len(c.scopes) + 1
	}
	c.scopes[s.Name] = &s
}

// Scope returns the named scope or nil.
func (c *Catalog) Scope(name string) *Scope {
	return c.scopes[name]
}

// Scopes lists scopes in load order.
func (c *Catalog) Scopes() []*Scope {
	out := make([]*Scope, 0, len(c.scopes))
	for _, s := range c.scopes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Add inserts an entry. Its scope must exist and the local id must fit it.
func (c *Catalog) Add(e *Entry) error {
	sc := c.scopes[e.ID.Origin]
	if sc == nil {
		return fmt.Errorf("add %s: unknown origin scope", e.ID)
	}
	if e.ID.Local > sc.LocalMax() {
		return fmt.Errorf("add %s: %w", e.ID, ErrOutOfRange)
	}
	if _, dup := c.entries[e.ID]; !dup {
		c.order = append(c.order, e.ID)
	}
	c.entries[e.ID] = e
	return nil
}

// Resolve looks up an entry by origin scope and local id.
func (c *Catalog) Resolve(origin string, local uint32) (*Entry, error) {
	sc := c.scopes[origin]
	if sc == nil || !sc.Active {
		return nil, fmt.Errorf("resolve %s|%s: %w", origin, FormatLocal(local), ErrScopeInactive)
	}
	if local > sc.LocalMax() {
		return nil, fmt.Errorf("resolve %s|%s: %w", origin, FormatLocal(local), ErrOutOfRange)
	}
	e := c.entries[FormID{Origin: origin, Local: local}]
	if e == nil {
		return nil, fmt.Errorf("resolve %s|%s: %w", origin, FormatLocal(local), ErrNotFound)
	}
	return e, nil
}

// Get returns an entry by id, or nil if not found or inactive.
func (c *Catalog) Get(id FormID) *Entry {
	e, err := c.Resolve(id.Origin, id.Local)
	if err != nil {
		return nil
	}
	return e
}

// Entries returns every active entry in insertion order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, id := range c.order {
		if e := c.Get(id); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Count returns total loaded entries.
func (c *Catalog) Count() int {
	return len(c.entries)
}

// Clone deep-copies the catalog so a replay can start from pristine state.
func (c *Catalog) Clone() *Catalog {
	n := New()
	for name, s := range c.scopes {
		cp := *s
		n.scopes[name] = &cp
	}
	n.order = slices.Clone(c.order)
	for id, e := range c.entries {
		n.entries[id] = e.clone()
	}
	for id, rs := range c.recipes {
		for _, r := range rs {
			n.recipes[id] = append(n.recipes[id], r.clone())
		}
	}
	return n
}
