package rebalance

import (
	"fmt"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/slot"
)

// WeaponSource is a template weapon. Keyword separates weapon kinds that
// share a raw weapon type; empty matches any weapon of the type.
type WeaponSource struct {
	Entry   *catalog.Entry
	Keyword string
}

// BaseSet is the template collection stats are scaled from.
type BaseSet struct {
	Name    string
	Armor   []*catalog.Entry
	Weapons []WeaponSource
	Ammo    []*catalog.Entry
}

// Validate checks the set invariants: armor pieces do not share a slot once
// cosmetic head bits are masked, and weapon and ammo classes are unique.
func (b *BaseSet) Validate() error {
	var seen slot.Mask
	for _, a := range b.Armor {
		if a.Kind != catalog.KindArmor {
			return fmt.Errorf("base set %s: %s is not armor", b.Name, a.ID)
		}
		m := a.Slots.Minus(slot.HeadCosmetic)
		if m.Intersects(seen) {
			return fmt.Errorf("base set %s: %s overlaps slots %s", b.Name, a.ID, m.Intersect(seen))
		}
		seen = seen.Union(m)
	}
	classes := make(map[string]bool)
	for _, w := range b.Weapons {
		if w.Entry.Kind != catalog.KindWeapon {
			return fmt.Errorf("base set %s: %s is not a weapon", b.Name, w.Entry.ID)
		}
		key := w.Entry.WeaponType + "/" + w.Keyword
		if classes[key] {
			return fmt.Errorf("base set %s: duplicate weapon class %s", b.Name, key)
		}
		classes[key] = true
	}
	var bolt, arrow bool
	for _, a := range b.Ammo {
		if a.Kind != catalog.KindAmmo {
			return fmt.Errorf("base set %s: %s is not ammo", b.Name, a.ID)
		}
		dup := arrow
		if a.Bolt {
			dup = bolt
		}
		if dup {
			return fmt.Errorf("base set %s: duplicate ammo class for %s", b.Name, a.ID)
		}
		if a.Bolt {
			bolt = true
		} else {
			arrow = true
		}
	}
	return nil
}

// ArmorMask is the union of the promoted masks of every armor piece.
func (b *BaseSet) ArmorMask() slot.Mask {
	var m slot.Mask
	for _, a := range b.Armor {
		m = m.Union(a.Slots.PromoteHead())
	}
	return m
}

// ArmorAt returns the armor piece covering s, with cosmetic head slots
// counting as the head.
func (b *BaseSet) ArmorAt(s slot.Slot) *catalog.Entry {
	for _, a := range b.Armor {
		if a.Slots.PromoteHead().Has(s) {
			return a
		}
	}
	return nil
}

// MatchArmor returns the first piece sharing a slot with mask; any head-like
// slot matches any other.
func (b *BaseSet) MatchArmor(mask slot.Mask) *catalog.Entry {
	for _, a := range b.Armor {
		if a.Slots.MatchesHead(mask) {
			return a
		}
	}
	return nil
}

// MatchWeapon returns the template of the target's weapon type. A template
// whose keyword the target carries wins over a generic one.
func (b *BaseSet) MatchWeapon(target *catalog.Entry) *catalog.Entry {
	var generic *catalog.Entry
	for _, w := range b.Weapons {
		if w.Entry.WeaponType != target.WeaponType {
			continue
		}
		if w.Keyword == "" {
			if generic == nil {
				generic = w.Entry
			}
			continue
		}
		if target.HasKeyword(w.Keyword) {
			return w.Entry
		}
	}
	return generic
}

// MatchAmmo returns the template of the same projectile class.
func (b *BaseSet) MatchAmmo(target *catalog.Entry) *catalog.Entry {
	for _, a := range b.Ammo {
		if a.Bolt == target.Bolt {
			return a
		}
	}
	return nil
}
