package apply

import (
	"slices"

	"github.com/l1jgo/itemforge/internal/catalog"
)

// swapKeywords makes the target's interesting keywords equal the source's.
// The full keyword list is built first and assigned once.
func (a *Applier) swapKeywords(t, src *catalog.Entry) {
	interesting := func(kw string) bool { return slices.Contains(a.cfg.Interesting, kw) }

	want := make([]string, 0, len(t.Keywords))
	for _, kw := range t.Keywords {
		if !interesting(kw) {
			want = append(want, kw)
		}
	}
	for _, kw := range src.Keywords {
		if interesting(kw) && !slices.Contains(want, kw) {
			want = append(want, kw)
		}
	}

	for _, kw := range want {
		if !t.HasKeyword(kw) {
			a.state.keywordAdded(kw, t.ID)
		}
	}
	for _, kw := range t.Keywords {
		if !slices.Contains(want, kw) {
			a.state.keywordRemoved(kw, t.ID)
		}
	}
	t.Keywords = want
}
