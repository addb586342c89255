package variant

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/slot"
	"github.com/l1jgo/itemforge/internal/token"
)

// Pick is the outcome for one slot of a set. More than one candidate means
// the tie-break could not separate them.
type Pick struct {
	Slot       slot.Slot
	Candidates []*catalog.Entry
}

// Ambiguous reports whether the pick needs a caller decision.
func (p Pick) Ambiguous() bool { return len(p.Candidates) > 1 }

// Ordered returns the candidates sorted by name similarity to anchor, most
// similar first. Only the presentation order changes.
func (p Pick) Ordered(anchor string) []*catalog.Entry {
	out := make([]*catalog.Entry, len(p.Candidates))
	copy(out, p.Candidates)
	a := strings.ToLower(anchor)
	score := make(map[catalog.FormID]float64, len(out))
	for _, c := range out {
		score[c.ID] = matchr.JaroWinkler(a, strings.ToLower(c.Name), false)
	}
	sort.SliceStable(out, func(i, j int) bool { return score[out[i].ID] > score[out[j].ID] })
	return out
}

// Set is an anchor plus the pieces grouped around it.
type Set struct {
	Anchor *catalog.Entry
	Picks  []Pick
}

// Ambiguous reports whether any pick kept more than one candidate.
func (s Set) Ambiguous() bool {
	for _, p := range s.Picks {
		if p.Ambiguous() {
			return true
		}
	}
	return false
}

// Members returns the anchor and every candidate, anchor first.
func (s Set) Members() []catalog.FormID {
	out := []catalog.FormID{s.Anchor.ID}
	for _, p := range s.Picks {
		for _, c := range p.Candidates {
			out = append(out, c.ID)
		}
	}
	return out
}

// Mask is the union of the promoted slots of every member.
func (s Set) Mask() slot.Mask {
	m := s.Anchor.Slots.PromoteHead()
	for _, p := range s.Picks {
		for _, c := range p.Candidates {
			m = m.Union(c.Slots.PromoteHead())
		}
	}
	return m
}

// BestMatch builds a set around anchor from candidates. Unclaimed slots are
// visited low to high; an item qualifies for a slot when it covers it and
// touches no claimed slot. Competing items are ranked by armor type match,
// then by how many of the interesting keywords they share with the anchor,
// then by the smaller word difference to the anchor's name.
func (r *Result) BestMatch(anchor *catalog.Entry, candidates []*catalog.Entry, interesting []string) Set {
	set := Set{Anchor: anchor}
	claimed := anchor.Slots.PromoteHead()
	used := map[catalog.FormID]bool{anchor.ID: true}
	m := matcher{r: r, anchor: anchor, words: r.WordsOf(anchor), relevant: relevantKeywords(anchor, interesting)}

	for s := slot.Slot(0); s < slot.Count; s++ {
		if claimed.Has(s) {
			continue
		}
		var best []*catalog.Entry
		for _, c := range candidates {
			if used[c.ID] || c.Kind != catalog.KindArmor {
				continue
			}
			cm := c.Slots.PromoteHead()
			if !cm.Has(s) || cm.Intersects(claimed) {
				continue
			}
			if len(best) == 0 {
				best = []*catalog.Entry{c}
				continue
			}
			switch m.compare(c, best[0]) {
			case 1:
				best = []*catalog.Entry{c}
			case 0:
				best = append(best, c)
			}
		}
		if len(best) == 0 {
			continue
		}
		for _, c := range best {
			claimed = claimed.Union(c.Slots.PromoteHead())
			used[c.ID] = true
		}
		set.Picks = append(set.Picks, Pick{Slot: s, Candidates: best})
	}
	return set
}

type matcher struct {
	r        *Result
	anchor   *catalog.Entry
	words    token.Set
	relevant []string
}

func relevantKeywords(anchor *catalog.Entry, interesting []string) []string {
	var out []string
	for _, kw := range interesting {
		if anchor.HasKeyword(kw) {
			out = append(out, kw)
		}
	}
	return out
}

func (m matcher) keywordCount(e *catalog.Entry) int {
	n := 0
	for _, kw := range m.relevant {
		if e.HasKeyword(kw) {
			n++
		}
	}
	return n
}

// compare returns 1 when a beats b, -1 when b beats a, 0 on a full tie.
func (m matcher) compare(a, b *catalog.Entry) int {
	at, bt := a.ArmorType == m.anchor.ArmorType, b.ArmorType == m.anchor.ArmorType
	if at != bt {
		if at {
			return 1
		}
		return -1
	}
	if ak, bk := m.keywordCount(a), m.keywordCount(b); ak != bk {
		if ak > bk {
			return 1
		}
		return -1
	}
	ad := m.r.WordsOf(a).Diff(m.words)
	bd := m.r.WordsOf(b).Diff(m.words)
	switch {
	case ad < bd:
		return 1
	case ad > bd:
		return -1
	}
	return 0
}
