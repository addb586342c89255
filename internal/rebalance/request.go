package rebalance

import (
	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/scale"
	"github.com/l1jgo/itemforge/internal/slot"
)

// Toggle is one stat slider.
type Toggle struct {
	Enabled bool
	Percent float64
}

// On returns an enabled toggle at percent.
func On(percent float64) Toggle { return Toggle{Enabled: true, Percent: percent} }

func (t Toggle) field() *float64 {
	if !t.Enabled {
		return nil
	}
	return patch.F(scale.Factor(t.Percent))
}

// Stats selects which attributes a record carries.
type Stats struct {
	Armor    Toggle
	Weight   Toggle
	Warmth   Toggle
	Coverage Toggle
	Damage   Toggle
	Speed    Toggle
	Stagger  Toggle
	Value    Toggle
	Keywords bool
	Temper   *patch.RecipeOption
	Craft    *patch.RecipeOption
}

// LootOptions controls the loot sub-object.
type LootOptions struct {
	Enabled bool
	Profile string
	Group   string
	// Rarity is used when no annotator is configured.
	Rarity string
	Piece  bool
	// Sets distributes whole sets; MatchSets groups them by set matching,
	// otherwise every target joins one mixed set.
	Sets      bool
	MatchSets bool
}

// Request is one change computation. Items are processed in the given
// order.
type Request struct {
	Items []*catalog.Entry
	Stats Stats
	Remap slot.Remap
	Loot  LootOptions
}
