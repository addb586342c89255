package apply

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/slot"
)

// KeywordChange lists the items a keyword was added to or removed from.
type KeywordChange struct {
	Add    []catalog.FormID
	Remove []catalog.FormID
}

// State holds the side tables filled while applying. Everything is keyed by
// stable id, so the tables survive a catalog reload.
type State struct {
	originalSlots map[catalog.FormID]slot.Mask
	warmth        map[catalog.FormID]float64
	coverage      map[catalog.FormID]float64
	keywords      map[string]*KeywordChange
	loot          map[catalog.FormID]patch.Loot
}

func newState() *State {
	return &State{
		originalSlots: make(map[catalog.FormID]slot.Mask),
		warmth:        make(map[catalog.FormID]float64),
		coverage:      make(map[catalog.FormID]float64),
		keywords:      make(map[string]*KeywordChange),
		loot:          make(map[catalog.FormID]patch.Loot),
	}
}

// OriginalSlots returns the native mask recorded the first time the item's
// slots were changed.
func (s *State) OriginalSlots(id catalog.FormID) (slot.Mask, bool) {
	m, ok := s.originalSlots[id]
	return m, ok
}

func (s *State) rememberSlots(id catalog.FormID, m slot.Mask) {
	if _, seen := s.originalSlots[id]; !seen {
		s.originalSlots[id] = m
	}
}

// Warmth returns the derived warmth of an item.
func (s *State) Warmth(id catalog.FormID) (float64, bool) {
	v, ok := s.warmth[id]
	return v, ok
}

// Coverage returns the derived coverage of an item.
func (s *State) Coverage(id catalog.FormID) (float64, bool) {
	v, ok := s.coverage[id]
	return v, ok
}

// Loot returns a copy of the applied loot memberships.
func (s *State) Loot() map[catalog.FormID]patch.Loot {
	out := make(map[catalog.FormID]patch.Loot, len(s.loot))
	for id, l := range s.loot {
		l.Set = slices.Clone(l.Set)
		out[id] = l
	}
	return out
}

// KeywordChanges returns a copy of the keyword export map.
func (s *State) KeywordChanges() map[string]KeywordChange {
	out := make(map[string]KeywordChange, len(s.keywords))
	for kw, c := range s.keywords {
		out[kw] = KeywordChange{Add: slices.Clone(c.Add), Remove: slices.Clone(c.Remove)}
	}
	return out
}

func (s *State) keywordAdded(kw string, id catalog.FormID) {
	c := s.keyword(kw)
	c.Remove = slices.DeleteFunc(c.Remove, func(x catalog.FormID) bool { return x == id })
	if !slices.Contains(c.Add, id) {
		c.Add = append(c.Add, id)
	}
}

func (s *State) keywordRemoved(kw string, id catalog.FormID) {
	c := s.keyword(kw)
	c.Add = slices.DeleteFunc(c.Add, func(x catalog.FormID) bool { return x == id })
	if !slices.Contains(c.Remove, id) {
		c.Remove = append(c.Remove, id)
	}
}

func (s *State) keyword(kw string) *KeywordChange {
	c := s.keywords[kw]
	if c == nil {
		c = &KeywordChange{}
		s.keywords[kw] = c
	}
	return c
}

// ExportKeywords writes one line per keyword, sorted:
//
//	KeywordName = +Origin|0x000801,-Origin|0x000802
func (s *State) ExportKeywords(w io.Writer) error {
	names := make([]string, 0, len(s.keywords))
	for kw, c := range s.keywords {
		if len(c.Add)+len(c.Remove) > 0 {
			names = append(names, kw)
		}
	}
	sort.Strings(names)
	bw := bufio.NewWriter(w)
	for _, kw := range names {
		c := s.keywords[kw]
		parts := make([]string, 0, len(c.Add)+len(c.Remove))
		for _, id := range c.Add {
			parts = append(parts, "+"+id.String())
		}
		for _, id := range c.Remove {
			parts = append(parts, "-"+id.String())
		}
		if _, err := fmt.Fprintf(bw, "%s = %s\n", kw, strings.Join(parts, ",")); err != nil {
			return fmt.Errorf("export keywords: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export keywords: %w", err)
	}
	return nil
}
