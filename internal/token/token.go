// Package token splits item display names into hashed, script-aware words.
//
// Scanning rules, in priority order per codepoint:
//
//   - separator glyphs (brackets, dashes, slashes, full-width variants) end
//     the current word and are never part of one;
//   - a run of CJK ideographs is a word, and a hiragana run right after it is
//     appended to it; katakana runs are words of their own;
//   - names containing a space are treated as explicitly separated: every
//     alphanumeric run (any script) is one word;
//   - names without spaces are split on case transitions, so "IronArmor"
//     yields iron+armor and "IDBoots" yields id+boots;
//   - whatever is left is collected into one trailing "other" word.
//
// Words are case-folded before hashing. A word ending in a variant tag such
// as "helmet2a" also registers its letter prefix ("helmet").
package token

import (
	"regexp"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Set is a set of word hashes.
type Set map[uint64]struct{}

// Add inserts h.
func (s Set) Add(h uint64) { s[h] = struct{}{} }

// Contains reports whether h is in the set.
func (s Set) Contains(h uint64) bool {
	_, ok := s[h]
	return ok
}

// Len returns the number of hashes.
func (s Set) Len() int { return len(s) }

// Diff returns the size of the symmetric difference of s and o.
func (s Set) Diff(o Set) int {
	n := 0
	for h := range s {
		if !o.Contains(h) {
			n++
		}
	}
	for h := range o {
		if !s.Contains(h) {
			n++
		}
	}
	return n
}

// Result is the tokenized form of one name.
type Result struct {
	Hashes Set
	// Words holds the folded literal words in encounter order, for display.
	Words []string
	// Hash maps each literal word to its hash.
	Hash map[string]uint64
}

// Hasher turns a folded word into its 64-bit hash.
type Hasher func(word string) uint64

// Tokenizer carries the hash function. The zero value uses xxhash, which
// has no per-process seed.
type Tokenizer struct {
	Hasher Hasher
}

// Hash folds and hashes a single word with the default hasher.
func Hash(word string) uint64 {
	return xxhash.Sum64String(Fold(word))
}

// Fold applies full Unicode case folding.
func Fold(word string) string {
	return cases.Fold().String(word)
}

// Tokenize splits name with the default hasher.
func Tokenize(name string) Result {
	return Tokenizer{}.Tokenize(name)
}

// Tokenize splits name into hashed words.
func (t Tokenizer) Tokenize(name string) Result {
	hasher := t.Hasher
	if hasher == nil {
		hasher = func(w string) uint64 { return xxhash.Sum64String(w) }
	}
	res := Result{Hashes: make(Set), Hash: make(map[string]uint64)}
	for _, w := range split(norm.NFC.String(name)) {
		word := w.text
		if w.kind != kindHan && w.kind != kindHanHira && w.kind != kindKata {
			word = Fold(word)
		}
		res.add(word, hasher)
		if m := variantTag.FindStringSubmatch(word); m != nil {
			res.add(m[1], hasher)
		}
	}
	return res
}

func (r *Result) add(word string, hasher Hasher) {
	if word == "" {
		return
	}
	if _, seen := r.Hash[word]; seen {
		return
	}
	h := hasher(word)
	r.Hash[word] = h
	r.Hashes.Add(h)
	r.Words = append(r.Words, word)
}

var variantTag = regexp.MustCompile(`^(.*\D)(\d+\pL\d*)$`)

type kind int

const (
	kindNone kind = iota
	kindHan
	kindHanHira
	kindKata
	kindAlnum
	kindUpperLead
	kindUpperTail
	kindLower
	kindDigit
	kindDigitTag
	kindOther
)

type word struct {
	text string
	kind kind
}

const unwantedGlyphs = "()[]{}<>-_/\\|:;,.!?\"'`~+*=&^%$#@" +
	"（）［］｛｝＜＞－＿／＼｜：；，．！？＂＇～＋＊＝＆＃＠" +
	"【】「」『』〈〉《》〔〕、。・‐‑–—―"

var unwanted = func() map[rune]struct{} {
	m := make(map[rune]struct{})
	for _, r := range unwantedGlyphs {
		m[r] = struct{}{}
	}
	return m
}()

func isUnwanted(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	_, ok := unwanted[r]
	return ok
}

func isHan(r rune) bool { return unicode.Is(unicode.Han, r) }
func isHiragana(r rune) bool { return unicode.Is(unicode.Hiragana, r) }
func isKatakana(r rune) bool { return unicode.Is(unicode.Katakana, r) || r == 'ー' }
func isUpper(r rune) bool { return unicode.IsUpper(r) || unicode.IsTitle(r) }

// isLowerLike covers lowercase letters and letters of caseless scripts.
func isLowerLike(r rune) bool {
	return unicode.IsLetter(r) && !isUpper(r)
}

type scanner struct {
	runes    []rune
	explicit bool
	out      []word
	cur      []rune
	kind     kind
	other    []rune
}

func split(name string) []word {
	s := &scanner{runes: []rune(name)}
	for _, r := range s.runes {
		if r == ' ' {
			s.explicit = true
			break
		}
	}
	for i, r := range s.runes {
		s.step(i, r)
	}
	s.flush()
	if len(s.other) > 0 {
		s.out = append(s.out, word{text: string(s.other), kind: kindOther})
	}
	return s.out
}

func (s *scanner) flush() {
	if len(s.cur) > 0 {
		s.out = append(s.out, word{text: string(s.cur), kind: s.kind})
	}
	s.cur = s.cur[:0]
	s.kind = kindNone
}

func (s *scanner) start(r rune, k kind) {
	s.flush()
	s.cur = append(s.cur, r)
	s.kind = k
}

func (s *scanner) push(r rune, k kind) {
	s.cur = append(s.cur, r)
	s.kind = k
}

func (s *scanner) toOther(r rune) {
	s.flush()
	s.other = append(s.other, r)
}

func (s *scanner) step(i int, r rune) {
	switch {
	case isUnwanted(r):
		s.flush()
	case isHan(r):
		if s.kind == kindHan {
			s.push(r, kindHan)
		} else {
			s.start(r, kindHan)
		}
	case isHiragana(r):
		if s.kind == kindHan || s.kind == kindHanHira {
			s.push(r, kindHanHira)
		} else {
			s.toOther(r)
		}
	case isKatakana(r):
		if s.kind == kindKata {
			s.push(r, kindKata)
		} else {
			s.start(r, kindKata)
		}
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		if s.explicit {
			if s.kind == kindAlnum {
				s.push(r, kindAlnum)
			} else {
				s.start(r, kindAlnum)
			}
			return
		}
		s.camel(i, r)
	default:
		if !s.explicit && s.kind == kindUpperLead {
			s.push(r, kindUpperLead)
			return
		}
		s.toOther(r)
	}
}

// camel handles letters and digits of names written without spaces.
func (s *scanner) camel(i int, r rune) {
	next := rune(0)
	if i+1 < len(s.runes) {
		next = s.runes[i+1]
	}
	switch {
	case isUpper(r):
		if s.kind == kindUpperLead && !(isLowerLike(next) && s.hasUpper()) {
			s.push(r, kindUpperLead)
			return
		}
		s.start(r, kindUpperLead)
	case unicode.IsDigit(r):
		switch s.kind {
		case kindUpperLead, kindDigit, kindDigitTag:
			s.push(r, s.kind)
		default:
			s.start(r, kindDigit)
		}
	default:
		switch s.kind {
		case kindUpperLead, kindUpperTail:
			s.push(r, kindUpperTail)
		case kindLower:
			s.push(r, kindLower)
		case kindDigit:
			if next == 0 || !isLowerLike(next) {
				s.push(r, kindDigitTag)
				return
			}
			s.start(r, kindLower)
		default:
			s.start(r, kindLower)
		}
	}
}

func (s *scanner) hasUpper() bool {
	for _, r := range s.cur {
		if isUpper(r) {
			return true
		}
	}
	return false
}
