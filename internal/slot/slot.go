package slot

import (
	"fmt"
	"math/bits"
	"strings"
)

// Slot identifies one equipment slot (biped slot 30 + index).
type Slot int

// Count is the fixed number of equipment slots.
const Count = 32

const (
	Head Slot = iota
	Hair
	Body
	Hands
	Forearms
	Amulet
	Ring
	Feet
	Calves
	Shield
	Tail
	LongHair
	Circlet
	Ears
	Face
	Neck
	Chest
	Back
	Misc
	Pelvis
	DecapitatedHead
	Decapitate
	PelvisSecondary
	LegPrimary
	LegSecondary
	FaceJewelry
	ChestSecondary
	Shoulder
	ArmSecondary
	ArmPrimary
	Misc2
	FX
	None Slot = -1
)

var slotNames = [Count]string{
	"head", "hair", "body", "hands", "forearms", "amulet", "ring", "feet",
	"calves", "shield", "tail", "long_hair", "circlet", "ears", "face", "neck",
	"chest", "back", "misc", "pelvis", "decapitated_head", "decapitate",
	"pelvis_secondary", "leg_primary", "leg_secondary", "face_jewelry",
	"chest_secondary", "shoulder", "arm_secondary", "arm_primary", "misc2", "fx",
}

// Valid reports whether s is inside the fixed enumeration.
func (s Slot) Valid() bool { return s >= 0 && s < Count }

// Biped returns the host's biped slot number (30..61).
func (s Slot) Biped() int { return int(s) + 30 }

func (s Slot) String() string {
	if !s.Valid() {
		return "none"
	}
	return slotNames[s]
}

// ParseSlot accepts a slot name ("body") or a biped number ("32").
func ParseSlot(name string) (Slot, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	var biped int
	if _, err := fmt.Sscanf(name, "%d", &biped); err == nil && biped >= 30 && biped < 30+Count {
		return Slot(biped - 30), nil
	}
	return None, fmt.Errorf("unknown slot %q", name)
}

// Mask is a bitset over the slot enumeration.
type Mask uint32

// Of builds a mask from individual slots.
func Of(slots ...Slot) Mask {
	var m Mask
	for _, s := range slots {
		m = m.With(s)
	}
	return m
}

// Bit returns the single-slot mask for s, or 0 for an invalid slot.
func Bit(s Slot) Mask {
	if !s.Valid() {
		return 0
	}
	return 1 << uint(s)
}

func (m Mask) Has(s Slot) bool { return m&Bit(s) != 0 }
func (m Mask) With(s Slot) Mask { return m | Bit(s) }
func (m Mask) Without(s Slot) Mask { return m &^ Bit(s) }
func (m Mask) Intersects(o Mask) bool { return m&o != 0 }
func (m Mask) Contains(o Mask) bool { return m&o == o }
func (m Mask) Count() int { return bits.OnesCount32(uint32(m)) }
func (m Mask) IsEmpty() bool { return m == 0 }
func (m Mask) Union(o Mask) Mask { return m | o }
func (m Mask) Minus(o Mask) Mask { return m &^ o }
func (m Mask) Intersect(o Mask) Mask { return m & o }

// LowestSlot returns the lowest-numbered slot in the mask, or None.
func (m Mask) LowestSlot() Slot {
	if m == 0 {
		return None
	}
	return Slot(bits.TrailingZeros32(uint32(m)))
}

// Slots lists the occupied slots, low bit first.
func (m Mask) Slots() []Slot {
	out := make([]Slot, 0, m.Count())
	for rest := m; rest != 0; {
		s := rest.LowestSlot()
		out = append(out, s)
		rest = rest.Without(s)
	}
	return out
}

func (m Mask) String() string {
	if m == 0 {
		return "[]"
	}
	names := make([]string, 0, m.Count())
	for _, s := range m.Slots() {
		names = append(names, s.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

// ParseMask parses a list of slot names or biped numbers.
func ParseMask(names []string) (Mask, error) {
	var m Mask
	for _, n := range names {
		s, err := ParseSlot(n)
		if err != nil {
			return 0, err
		}
		m = m.With(s)
	}
	return m, nil
}

// All is the full-coverage mask.
const All Mask = 0xFFFFFFFF

var (
	// HeadCosmetic holds the cosmetic aliases of the head slot.
	HeadCosmetic = Of(Hair, LongHair, Circlet, Ears)
	// HeadLike is the head slot plus its cosmetic aliases.
	HeadLike = HeadCosmetic.With(Head)
	// Protected slots are skipped by remapping unless explicitly allowed.
	Protected = Of(Amulet, Ring, Shield, Tail, DecapitatedHead, Decapitate, FX)
)

// PromoteHead normalises the head slots of one item: cosmetic bits are
// dropped when the literal head bit is present, otherwise they collapse onto it.
func (m Mask) PromoteHead() Mask {
	if !m.Intersects(HeadCosmetic) {
		return m
	}
	if m.Has(Head) {
		return m.Minus(HeadCosmetic)
	}
	return m.Minus(HeadCosmetic).With(Head)
}

// PromoteHeadSummary normalises a covered-slot summary. Only the lowest
// cosmetic bit present is promoted; the returned slot is the one promoted,
// or None when nothing was.
func (m Mask) PromoteHeadSummary() (Mask, Slot) {
	cos := m.Intersect(HeadCosmetic)
	if cos == 0 {
		return m, None
	}
	if m.Has(Head) {
		return m.Minus(HeadCosmetic), None
	}
	lowest := cos.LowestSlot()
	return m.Minus(HeadCosmetic).With(Head), lowest
}

// MatchesHead reports whether two masks overlap, treating every head-like
// slot as equivalent to every other.
func (m Mask) MatchesHead(o Mask) bool {
	if m.Intersects(o) {
		return true
	}
	return m.Intersects(HeadLike) && o.Intersects(HeadLike)
}
