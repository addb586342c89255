package variant

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/token"
)

// Stages is an ordered stage list. A zero FormID marks a stage no item was
// found for. Items beyond the configured stages are appended in encounter
// order.
type Stages []catalog.FormID

// Filled returns the number of non-gap stages.
func (s Stages) Filled() int {
	n := 0
	for _, id := range s {
		if !id.IsZero() {
			n++
		}
	}
	return n
}

// HintHashes hashes the dynamic hint lists with the analysis tokenizer.
func (r *Result) HintHashes(dynamic map[string][]string) map[string][]uint64 {
	out := make(map[string][]uint64, len(dynamic))
	for typ, words := range dynamic {
		hs := make([]uint64, 0, len(words))
		for _, w := range words {
			tr := r.tokenizer.Tokenize(w)
			if len(tr.Words) == 0 {
				continue
			}
			hs = append(hs, tr.Hash[tr.Words[0]])
		}
		out[typ] = hs
	}
	return out
}

// DynamicVariants groups items into stage lists per variant type. Items
// whose names are identical once every hint word of the type is removed
// share a base key; each is placed at the stage of the first hint word its
// name carries. When a stage is already taken the item is appended after
// the configured stages.
func (r *Result) DynamicVariants(hints map[string][]uint64) map[string]map[uint64]Stages {
	out := make(map[string]map[uint64]Stages, len(hints))
	for typ, stageHashes := range hints {
		hintSet := make(token.Set, len(stageHashes))
		for _, h := range stageHashes {
			hintSet.Add(h)
		}
		bases := make(map[uint64]Stages)
		placed := make(map[catalog.FormID]bool)
		for stage, h := range stageHashes {
			for _, id := range r.ItemsFor(h) {
				if placed[id] {
					continue
				}
				placed[id] = true
				key := baseKey(r.ItemWords[id], hintSet)
				st, ok := bases[key]
				if !ok {
					st = make(Stages, len(stageHashes))
				}
				if st[stage].IsZero() {
					st[stage] = id
				} else {
					st = append(st, id)
				}
				bases[key] = st
			}
		}
		if len(bases) > 0 {
			out[typ] = bases
		}
	}
	return out
}

// baseKey hashes the sorted words of an item that are not hint words.
func baseKey(words, hints token.Set) uint64 {
	rest := make([]uint64, 0, len(words))
	for h := range words {
		if !hints.Contains(h) {
			rest = append(rest, h)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	d := xxhash.New()
	var buf [8]byte
	for _, h := range rest {
		binary.LittleEndian.PutUint64(buf[:], h)
		d.Write(buf[:])
	}
	return d.Sum64()
}
