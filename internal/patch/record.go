package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ratio is the stored weight ratio `w`: either a precomputed float or the
// integer triple it was derived from, kept so it can be recomputed later.
type Ratio struct {
	Item   int
	Base   int
	Set    int
	Fixed  float64
	Triple bool
}

// FixedRatio returns a precomputed ratio.
func FixedRatio(v float64) *Ratio { return &Ratio{Fixed: v} }

// TripleRatio returns a ratio stored as its weights.
func TripleRatio(item, base, set int) *Ratio {
	return &Ratio{Item: item, Base: base, Set: set, Triple: true}
}

// Value resolves the ratio; ok is false when it is not a non-negative number.
func (r *Ratio) Value() (float64, bool) {
	if r == nil {
		return 0, false
	}
	if !r.Triple {
		return r.Fixed, r.Fixed >= 0
	}
	if r.Base <= 0 || r.Item < 0 {
		return 0, false
	}
	return float64(r.Item) / float64(r.Base), true
}

// SetShare returns the item and set weights used for warmth and coverage.
// A fixed ratio carries neither and returns zeros.
func (r *Ratio) SetShare() (item, set int) {
	if r == nil || !r.Triple {
		return 0, 0
	}
	return r.Item, r.Set
}

type ratioTriple struct {
	Item int `json:"item"`
	Base int `json:"base"`
	Set  int `json:"set"`
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Triple {
		return json.Marshal(ratioTriple{Item: r.Item, Base: r.Base, Set: r.Set})
	}
	return json.Marshal(r.Fixed)
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var t ratioTriple
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("w: %w", err)
		}
		*r = Ratio{Item: t.Item, Base: t.Base, Set: t.Set, Triple: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("w: %w", err)
	}
	*r = Ratio{Fixed: v}
	return nil
}

// RecipeOption is the temper/craft directive.
type RecipeOption struct {
	New  bool `json:"new"`
	Free bool `json:"free"`
}

// Loot is the leveled-list membership handed to the loot builder.
type Loot struct {
	Profile string   `json:"profile"`
	Group   string   `json:"group"`
	Rarity  string   `json:"rarity"`
	Piece   bool     `json:"piece"`
	Set     []string `json:"set,omitempty"`
}

// Record is one change record. A nil field means "leave that attribute
// alone"; scale fields hold UI percent / 100.
type Record struct {
	Name     string        `json:"name,omitempty"`
	SrcName  string        `json:"srcname,omitempty"`
	SrcFile  string        `json:"srcfile"`
	SrcID    string        `json:"srcid"`
	W        *Ratio        `json:"w,omitempty"`
	Armor    *float64      `json:"armor,omitempty"`
	Weight   *float64      `json:"weight,omitempty"`
	Warmth   *float64      `json:"warmth,omitempty"`
	Damage   *float64      `json:"damage,omitempty"`
	Speed    *float64      `json:"speed,omitempty"`
	Stagger  *float64      `json:"stagger,omitempty"`
	Value    *float64      `json:"value,omitempty"`
	Keywords *bool         `json:"keywords,omitempty"`
	Coverage *float64      `json:"coverage,omitempty"`
	Slots    *uint32       `json:"slots,omitempty"`
	Temper   *RecipeOption `json:"temper,omitempty"`
	Craft    *RecipeOption `json:"craft,omitempty"`
	Loot     *Loot         `json:"loot,omitempty"`
}

// F returns a pointer to v, for building records.
func F(v float64) *float64 { return &v }

// B returns a pointer to v.
func B(v bool) *bool { return &v }

// U returns a pointer to v.
func U(v uint32) *uint32 { return &v }
