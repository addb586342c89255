// Package curve computes per-slot weight budgets from a slot-weighted tree.
//
// A curve is a forest of nodes keyed by slot. Children are finer sub-slots or
// cosmetic layers that feed their parent's effective weight. The engine works
// in three passes over an explicit [Weights] arena:
//
//  1. TotalWeight sums a subtree, restricted to a slot filter;
//  2. PropagateBase walks down from every slot the template set covers,
//     turning it into an anchor that owns its uncovered descendants;
//  3. CoveredWeight does the same for the slots the target items cover.
//
// An item's scale ratio is the used weight of its slots over the base weight
// of its first anchor.
package curve

import (
	"fmt"

	"github.com/l1jgo/itemforge/internal/slot"
)

// Node is one curve node.
type Node struct {
	Slot     slot.Slot
	Weight   int
	Children []*Node
}

// Curve is a named forest of nodes. Read-only once loaded.
type Curve struct {
	Name  string
	Roots []*Node
}

// Validate checks that every slot appears at most once and weights are
// non-negative.
func (c *Curve) Validate() error {
	var seen slot.Mask
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if !n.Slot.Valid() {
			return fmt.Errorf("curve %s: invalid slot %d", c.Name, n.Slot)
		}
		if seen.Has(n.Slot) {
			return fmt.Errorf("curve %s: slot %s appears more than once", c.Name, n.Slot)
		}
		if n.Weight < 0 {
			return fmt.Errorf("curve %s: slot %s has negative weight", c.Name, n.Slot)
		}
		seen = seen.With(n.Slot)
		for _, ch := range n.Children {
			if err := walk(ch); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range c.Roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}

// Mask returns every slot the curve mentions.
func (c *Curve) Mask() slot.Mask {
	var m slot.Mask
	var walk func(n *Node)
	walk = func(n *Node) {
		m = m.With(n.Slot)
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	for _, r := range c.Roots {
		walk(r)
	}
	return m
}

// SlotWeight is the arena cell for one slot.
type SlotWeight struct {
	InCurve    bool
	Anchor     slot.Slot // slot whose template item this slot borrows; None if none
	BaseWeight int
	UsedWeight int
}

// Weights is the per-slot arena threaded through the passes.
type Weights struct {
	Slots [slot.Count]SlotWeight
	// Total is the filtered weight of the whole curve.
	Total int
}

// NewWeights returns an arena with no anchors.
func NewWeights() *Weights {
	w := &Weights{}
	for i := range w.Slots {
		w.Slots[i].Anchor = slot.None
	}
	return w
}

// TotalWeight sums n and its descendants, skipping every subtree whose slot
// is outside filter.
func TotalWeight(n *Node, filter slot.Mask) int {
	if n == nil || !filter.Has(n.Slot) {
		return 0
	}
	sum := n.Weight
	for _, ch := range n.Children {
		sum += TotalWeight(ch, filter)
	}
	return sum
}

// ForestWeight sums TotalWeight over every root.
func ForestWeight(c *Curve, filter slot.Mask) int {
	sum := 0
	for _, r := range c.Roots {
		sum += TotalWeight(r, filter)
	}
	return sum
}

// PropagateBase assigns anchors. A node whose slot hasBase reports as covered
// by the template set anchors itself, owns its own weight plus what its
// subtree returns, and returns 0. Any other node inherits the nearest anchor
// above it and returns its own-plus-subtree weight to be folded into it.
func PropagateBase(n *Node, inherited slot.Slot, hasBase func(slot.Slot) bool, w *Weights) int {
	sw := &w.Slots[n.Slot]
	sw.InCurve = true
	if hasBase(n.Slot) {
		total := n.Weight
		for _, ch := range n.Children {
			total += PropagateBase(ch, n.Slot, hasBase, w)
		}
		sw.Anchor = n.Slot
		sw.BaseWeight = total
		return 0
	}
	sw.Anchor = inherited
	up := n.Weight
	for _, ch := range n.Children {
		up += PropagateBase(ch, inherited, hasBase, w)
	}
	return up
}

// CoveredWeight mirrors PropagateBase keyed on the covered mask: a covered
// node records its own-plus-uncovered-subtree weight as used and returns 0,
// an uncovered node returns its weight upward.
func CoveredWeight(n *Node, covered slot.Mask, w *Weights) int {
	sum := n.Weight
	for _, ch := range n.Children {
		sum += CoveredWeight(ch, covered, w)
	}
	if covered.Has(n.Slot) {
		w.Slots[n.Slot].UsedWeight = sum
		return 0
	}
	return sum
}

// Compute runs every pass and resolves inherited base weights.
func Compute(c *Curve, hasBase func(slot.Slot) bool, covered, filter slot.Mask) *Weights {
	w := NewWeights()
	for _, r := range c.Roots {
		PropagateBase(r, slot.None, hasBase, w)
		CoveredWeight(r, covered, w)
	}
	for i := range w.Slots {
		sw := &w.Slots[i]
		if sw.Anchor != slot.None && sw.Anchor != slot.Slot(i) {
			sw.BaseWeight = w.Slots[sw.Anchor].BaseWeight
		}
	}
	w.Total = ForestWeight(c, filter)
	return w
}

// Ratio is an item's share of its anchor's template weight.
type Ratio struct {
	Anchor slot.Slot
	Used   int
	Base   int
	Set    int
}

// Value returns Used/Base, or 0 when Base is 0.
func (r Ratio) Value() float64 {
	if r.Base <= 0 {
		return 0
	}
	return float64(r.Used) / float64(r.Base)
}

// ItemRatio accumulates used weight over every slot of mask whose anchor has
// a positive base weight. The first such anchor in low-bit order decides the
// item's source; ok is false when no slot has one.
func (w *Weights) ItemRatio(mask slot.Mask) (Ratio, bool) {
	r := Ratio{Anchor: slot.None, Set: w.Total}
	for _, s := range mask.Slots() {
		sw := w.Slots[s]
		if sw.Anchor == slot.None || w.Slots[sw.Anchor].BaseWeight <= 0 {
			continue
		}
		r.Used += sw.UsedWeight
		if r.Anchor == slot.None {
			r.Anchor = sw.Anchor
			r.Base = w.Slots[sw.Anchor].BaseWeight
		}
	}
	return r, r.Anchor != slot.None
}
