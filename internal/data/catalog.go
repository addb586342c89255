package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/slot"
)

// --- YAML loading ---

type scopeEntry struct {
	Name   string `yaml:"name"`
	Light  bool   `yaml:"light"`
	Active bool   `yaml:"active"`
}

type modelEntry struct {
	ID    string   `yaml:"id"`
	Slots []string `yaml:"slots"`
}

type itemEntry struct {
	ID          string       `yaml:"id"`
	Kind        string       `yaml:"kind"`
	Name        string       `yaml:"name"`
	Keywords    []string     `yaml:"keywords"`
	Weight      float64      `yaml:"weight"`
	Value       int          `yaml:"value"`
	Slots       []string     `yaml:"slots"`
	ArmorRating int          `yaml:"armor_rating"`
	ArmorType   string       `yaml:"armor_type"`
	Models      []modelEntry `yaml:"models"`
	WeaponType  string       `yaml:"weapon_type"`
	Damage      int          `yaml:"damage"`
	Speed       float64      `yaml:"speed"`
	Stagger     float64      `yaml:"stagger"`
	Bolt        bool         `yaml:"bolt"`
}

type materialEntry struct {
	Item  string `yaml:"item"`
	Count int    `yaml:"count"`
}

type conditionEntry struct {
	Function string  `yaml:"function"`
	Param    string  `yaml:"param"`
	Value    float64 `yaml:"value"`
}

type recipeEntry struct {
	ID         string           `yaml:"id"`
	Kind       string           `yaml:"kind"` // "craft" or "temper"
	Created    string           `yaml:"created"`
	Workbench  string           `yaml:"workbench"`
	Items      []materialEntry  `yaml:"items"`
	Conditions []conditionEntry `yaml:"conditions"`
}

type catalogFile struct {
	Scopes  []scopeEntry  `yaml:"scopes"`
	Items   []itemEntry   `yaml:"items"`
	Recipes []recipeEntry `yaml:"recipes"`
}

// LoadCatalog builds the item catalog from YAML. Scopes are registered in
// file order, which is also their load order.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	c := catalog.New()
	for i, s := range f.Scopes {
		if s.Name == "" {
			return nil, fmt.Errorf("catalog: scope %d has no name", i)
		}
		c.AddScope(catalog.Scope{Name: s.Name, Light: s.Light, Active: s.Active, Order: i + 1})
	}
	for _, it := range f.Items {
		e, err := it.entry()
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if err := c.Add(e); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	for _, r := range f.Recipes {
		rec, err := r.recipe()
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.AddRecipe(rec)
	}
	return c, nil
}

func (it *itemEntry) entry() (*catalog.Entry, error) {
	id, err := catalog.ParseFormID(it.ID)
	if err != nil {
		return nil, err
	}
	slots, err := slot.ParseMask(it.Slots)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", it.ID, err)
	}
	e := &catalog.Entry{
		ID:          id,
		Kind:        catalog.ParseKind(it.Kind),
		Name:        it.Name,
		Keywords:    it.Keywords,
		Weight:      it.Weight,
		Value:       it.Value,
		Slots:       slots,
		ArmorRating: it.ArmorRating,
		ArmorType:   catalog.ParseArmorType(it.ArmorType),
		WeaponType:  it.WeaponType,
		Damage:      it.Damage,
		Speed:       it.Speed,
		Stagger:     it.Stagger,
		Bolt:        it.Bolt,
	}
	for _, m := range it.Models {
		mid, err := catalog.ParseFormID(m.ID)
		if err != nil {
			return nil, fmt.Errorf("item %s model: %w", it.ID, err)
		}
		ms, err := slot.ParseMask(m.Slots)
		if err != nil {
			return nil, fmt.Errorf("item %s model %s: %w", it.ID, m.ID, err)
		}
		e.Models = append(e.Models, catalog.ModelPart{ID: mid, Slots: ms})
	}
	return e, nil
}

func (r *recipeEntry) recipe() (*catalog.Recipe, error) {
	created, err := catalog.ParseFormID(r.Created)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", r.ID, err)
	}
	rec := &catalog.Recipe{Kind: catalog.RecipeCraft, Created: created, Workbench: r.Workbench}
	if r.ID != "" {
		if rec.ID, err = catalog.ParseFormID(r.ID); err != nil {
			return nil, err
		}
	}
	switch r.Kind {
	case "", "craft":
	case "temper":
		rec.Kind = catalog.RecipeTemper
	default:
		return nil, fmt.Errorf("recipe %s: unknown kind %q", r.ID, r.Kind)
	}
	for _, m := range r.Items {
		item, err := catalog.ParseFormID(m.Item)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", r.ID, err)
		}
		rec.Items = append(rec.Items, catalog.Material{Item: item, Count: m.Count})
	}
	for _, c := range r.Conditions {
		cond := catalog.Condition{Function: c.Function, Value: c.Value}
		if c.Param != "" {
			if cond.Param, err = catalog.ParseFormID(c.Param); err != nil {
				return nil, fmt.Errorf("recipe %s condition: %w", r.ID, err)
			}
		}
		rec.Conditions = append(rec.Conditions, cond)
	}
	return rec, nil
}
