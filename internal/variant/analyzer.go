// Package variant classifies the words of item names and groups items into
// sets and variant families.
package variant

import (
	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/slot"
	"github.com/l1jgo/itemforge/internal/token"
)

// Category is the bucket a word falls into.
type Category int

const (
	CategoryNameAuthor Category = iota // unique per item, lowest signal
	CategoryDynamic
	CategoryStatic
	CategoryEither
	CategoryPiece
	CategoryDescriptive
)

func (c Category) String() string {
	switch c {
	case CategoryDynamic:
		return "dynamic"
	case CategoryStatic:
		return "static"
	case CategoryEither:
		return "either"
	case CategoryPiece:
		return "piece"
	case CategoryDescriptive:
		return "descriptive"
	default:
		return "name_author"
	}
}

// Hints are the configured word lists that steer classification.
type Hints struct {
	// Dynamic maps a variant type to its stage words, in stage order.
	Dynamic     map[string][]string
	Static      []string
	Descriptive []string
	Piece       []string
}

// Word is one hashed word and the items whose name contains it.
type Word struct {
	Hash     uint64
	Text     string
	Category Category
	Items    []catalog.FormID
}

// Result is the outcome of Analyze.
type Result struct {
	Words     map[uint64]*Word
	ItemWords map[catalog.FormID]token.Set

	tokenizer token.Tokenizer
	items     map[catalog.FormID]*catalog.Entry
	order     []catalog.FormID
}

// Analyze tokenizes every item name and classifies each word.
func Analyze(items []*catalog.Entry, hints Hints, tk token.Tokenizer) *Result {
	r := &Result{
		Words:     make(map[uint64]*Word),
		ItemWords: make(map[catalog.FormID]token.Set, len(items)),
		tokenizer: tk,
		items:     make(map[catalog.FormID]*catalog.Entry, len(items)),
	}
	for _, it := range items {
		if _, dup := r.items[it.ID]; dup {
			continue
		}
		r.items[it.ID] = it
		r.order = append(r.order, it.ID)
		tr := tk.Tokenize(it.Name)
		r.ItemWords[it.ID] = tr.Hashes
		for _, text := range tr.Words {
			h := tr.Hash[text]
			w := r.Words[h]
			if w == nil {
				w = &Word{Hash: h, Text: text}
				r.Words[h] = w
			}
			if len(w.Items) == 0 || w.Items[len(w.Items)-1] != it.ID {
				w.Items = append(w.Items, it.ID)
			}
		}
	}
	r.classify(hints)
	return r
}

func (r *Result) hashAll(words []string) token.Set {
	s := make(token.Set, len(words))
	for _, w := range words {
		for h := range r.tokenizer.Tokenize(w).Hashes {
			s.Add(h)
		}
	}
	return s
}

func (r *Result) classify(hints Hints) {
	var dynWords []string
	for _, stages := range hints.Dynamic {
		dynWords = append(dynWords, stages...)
	}
	dynamic := r.hashAll(dynWords)
	static := r.hashAll(hints.Static)
	descriptive := r.hashAll(hints.Descriptive)
	piece := r.hashAll(hints.Piece)
	inferred := r.inferStatic()

	for h, w := range r.Words {
		isDyn := dynamic.Contains(h)
		isStatic := static.Contains(h) || inferred.Contains(h)
		switch {
		case isDyn && isStatic:
			w.Category = CategoryEither
		case isDyn:
			w.Category = CategoryDynamic
		case isStatic:
			w.Category = CategoryStatic
		case descriptive.Contains(h):
			w.Category = CategoryDescriptive
		case piece.Contains(h), len(w.Items) >= 2:
			w.Category = CategoryPiece
		default:
			w.Category = CategoryNameAuthor
		}
	}
}

// inferStatic finds words that are the only difference between two items
// occupying the same slots: same-slot alternates such as colour swaps.
func (r *Result) inferStatic() token.Set {
	out := make(token.Set)
	bySlots := make(map[slot.Mask][]catalog.FormID)
	for _, id := range r.order {
		e := r.items[id]
		if e.Kind != catalog.KindArmor {
			continue
		}
		m := e.Slots.PromoteHead()
		bySlots[m] = append(bySlots[m], id)
	}
	for _, ids := range bySlots {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := r.ItemWords[ids[i]], r.ItemWords[ids[j]]
				if a.Diff(b) != 1 {
					continue
				}
				for h := range a {
					if !b.Contains(h) {
						out.Add(h)
					}
				}
				for h := range b {
					if !a.Contains(h) {
						out.Add(h)
					}
				}
			}
		}
	}
	return out
}

// Category returns the bucket of a word hash; unknown words are name/author.
func (r *Result) Category(h uint64) Category {
	if w := r.Words[h]; w != nil {
		return w.Category
	}
	return CategoryNameAuthor
}

// ItemsFor returns the items whose name contains the word.
func (r *Result) ItemsFor(h uint64) []catalog.FormID {
	if w := r.Words[h]; w != nil {
		return w.Items
	}
	return nil
}

// WordsOf returns an item's word set, tokenizing on demand for items the
// analysis has not seen.
func (r *Result) WordsOf(e *catalog.Entry) token.Set {
	if s, ok := r.ItemWords[e.ID]; ok {
		return s
	}
	return r.tokenizer.Tokenize(e.Name).Hashes
}

// Entry returns an analysed item.
func (r *Result) Entry(id catalog.FormID) *catalog.Entry {
	return r.items[id]
}

// ByCategory lists the words of one bucket.
func (r *Result) ByCategory(c Category) []*Word {
	var out []*Word
	for _, w := range r.Words {
		if w.Category == c {
			out = append(out, w)
		}
	}
	return out
}
