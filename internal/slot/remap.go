package slot

import "sort"

// Target is the destination of one remap entry.
type Target struct {
	Slot   Slot
	Remove bool
}

// Remap maps an origin slot to its replacement.
type Remap struct {
	Entries        map[Slot]Target
	AllowProtected bool
}

// Empty reports whether the table has no entries.
func (r Remap) Empty() bool { return len(r.Entries) == 0 }

// Apply returns a remapped copy of m. Every entry is evaluated against the
// original mask, so {A->B, B->C} moves A to B and never on to C.
func (r Remap) Apply(m Mask) Mask {
	if r.Empty() {
		return m
	}
	var from, to Mask
	for _, src := range r.sources() {
		if !m.Has(src) {
			continue
		}
		if !r.AllowProtected && Protected.Has(src) {
			continue
		}
		from = from.With(src)
		if t := r.Entries[src]; !t.Remove {
			to = to.With(t.Slot)
		}
	}
	return m.Minus(from).Union(to)
}

func (r Remap) sources() []Slot {
	out := make([]Slot, 0, len(r.Entries))
	for s := range r.Entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
