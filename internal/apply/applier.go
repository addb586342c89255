// Package apply replays patch documents against the live catalog.
package apply

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/core/event"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/scale"
	"github.com/l1jgo/itemforge/internal/slot"
)

var (
	ErrMissingField  = errors.New("apply: missing mandatory field")
	ErrKindMismatch  = errors.New("apply: target and source kinds differ")
	ErrTargetMissing = errors.New("apply: target not found")
	ErrBadRatio      = errors.New("apply: weight ratio not derivable")
)

// Outcome classifies one record.
type Outcome int

const (
	Applied Outcome = iota
	Skipped         // source not installed, benign
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result counts the outcomes of a document.
type Result struct {
	Applied int
	Failed  int
	Skipped int
}

func (r *Result) add(o Outcome) {
	switch o {
	case Applied:
		r.Applied++
	case Skipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Config is the applier configuration.
type Config struct {
	Interesting []string
	RoundWeight bool
	WarmthScale float64
	// Workbenches attached to fabricated recipes.
	CraftBench  string
	TemperBench string
	Local       Permissions
	Shared      Permissions
}

// Applier mutates the catalog in place. Single-goroutine access only.
type Applier struct {
	cat   *catalog.Catalog
	cfg   Config
	log   *zap.Logger
	bus   *event.Bus
	state *State
}

// New creates an applier over cat. bus may be nil.
func New(cat *catalog.Catalog, cfg Config, log *zap.Logger, bus *event.Bus) *Applier {
	if cfg.CraftBench == "" {
		cfg.CraftBench = "CraftingSmithingForge"
	}
	if cfg.TemperBench == "" {
		cfg.TemperBench = "CraftingSmithingArmorTable"
	}
	return &Applier{cat: cat, cfg: cfg, log: log, bus: bus, state: newState()}
}

// State returns the side tables filled so far.
func (a *Applier) State() *State { return a.state }

// ApplyDocument applies every record of doc in document order. Failures and
// skips are counted and the batch continues.
func (a *Applier) ApplyDocument(scope patch.Scope, doc *patch.Document, perms Permissions) Result {
	var res Result
	for _, key := range doc.Keys() {
		rec, err := doc.Record(key)
		if err != nil {
			a.report(scope, doc.Origin, key, nil, Failed, err)
			res.add(Failed)
			continue
		}
		o, err := a.ApplyOne(doc.Origin, key, rec, perms)
		a.report(scope, doc.Origin, key, rec, o, err)
		res.add(o)
	}
	a.log.Info("patch document applied",
		zap.String("scope", string(scope)),
		zap.String("origin", doc.Origin),
		zap.Int("applied", res.Applied),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped))
	return res
}

func (a *Applier) report(scope patch.Scope, origin, key string, rec *patch.Record, o Outcome, err error) {
	switch o {
	case Failed:
		a.log.Warn("record failed",
			zap.String("origin", origin), zap.String("id", key), zap.Error(err))
		event.Emit(a.bus, event.RecordFailed{Scope: string(scope), Origin: origin, Key: key, Err: err})
	case Skipped:
		a.log.Debug("record skipped, source not installed",
			zap.String("origin", origin), zap.String("id", key), zap.Error(err))
		event.Emit(a.bus, event.RecordSkipped{
			Scope: string(scope), Origin: origin, Key: key,
			Source: rec.SrcFile + "|" + rec.SrcID,
		})
	}
}

// ApplyOne applies a single record to the item origin|key.
func (a *Applier) ApplyOne(origin, key string, rec *patch.Record, perms Permissions) (Outcome, error) {
	local, err := catalog.ParseLocal(key)
	if err != nil {
		return Failed, err
	}
	target, err := a.cat.Resolve(origin, local)
	if err != nil {
		return Failed, fmt.Errorf("%w: %v", ErrTargetMissing, err)
	}
	if rec.SrcFile == "" || rec.SrcID == "" {
		return Failed, fmt.Errorf("%w: srcfile/srcid", ErrMissingField)
	}
	srcLocal, err := catalog.ParseLocal(rec.SrcID)
	if err != nil {
		return Failed, fmt.Errorf("srcid: %w", err)
	}
	src, err := a.cat.Resolve(rec.SrcFile, srcLocal)
	if err != nil {
		return Skipped, err
	}
	if target.Kind != src.Kind {
		return Failed, fmt.Errorf("%w: %s is %s, %s is %s", ErrKindMismatch, target.ID, target.Kind, src.ID, src.Kind)
	}

	ratio := 1.0
	if rec.W != nil || target.Kind == catalog.KindArmor {
		if rec.W == nil {
			return Failed, fmt.Errorf("%w: w", ErrMissingField)
		}
		v, ok := rec.W.Value()
		if !ok {
			return Failed, ErrBadRatio
		}
		ratio = v
	}

	switch target.Kind {
	case catalog.KindArmor:
		a.armor(target, src, rec, ratio, perms)
	case catalog.KindWeapon:
		a.weapon(target, src, rec, ratio, perms)
	case catalog.KindAmmo:
		a.ammo(target, src, rec, ratio, perms)
	default:
		return Failed, fmt.Errorf("apply %s: unsupported kind %s", target.ID, target.Kind)
	}
	if perms.Keywords && rec.Keywords != nil && *rec.Keywords {
		a.swapKeywords(target, src)
	}
	if perms.Temper && rec.Temper != nil {
		a.recipe(target, src, catalog.RecipeTemper, *rec.Temper, ratio, perms)
	}
	if perms.Craft && rec.Craft != nil {
		a.recipe(target, src, catalog.RecipeCraft, *rec.Craft, ratio, perms)
	}
	if perms.Loot && rec.Loot != nil {
		l := *rec.Loot
		a.state.loot[target.ID] = l
	}
	return Applied, nil
}

func (a *Applier) armor(t, src *catalog.Entry, rec *patch.Record, ratio float64, p Permissions) {
	if p.Armor && rec.Armor != nil {
		t.ArmorRating = scale.Rating(ratio, *rec.Armor, src.ArmorRating)
	}
	a.weightValue(t, src, rec, ratio, p)
	item, set := rec.W.SetShare()
	if p.Warmth && rec.Warmth != nil {
		a.state.warmth[t.ID] = scale.Warmth(*rec.Warmth, item, set, a.cfg.WarmthScale)
	}
	if p.Coverage && rec.Coverage != nil {
		a.state.coverage[t.ID] = scale.Coverage(*rec.Coverage, item, set)
	}
	if p.Slots && rec.Slots != nil {
		m := slot.Mask(*rec.Slots)
		if t.Slots != m {
			a.state.rememberSlots(t.ID, t.Slots)
			t.Slots = m
		}
		for i := range t.Models {
			t.Models[i].Slots = m
		}
	}
}

func (a *Applier) weapon(t, src *catalog.Entry, rec *patch.Record, ratio float64, p Permissions) {
	if p.Damage && rec.Damage != nil {
		t.Damage = scale.Damage(ratio, *rec.Damage, src.Damage)
	}
	if p.Speed && rec.Speed != nil {
		t.Speed = scale.Float(*rec.Speed, src.Speed)
	}
	if p.Stagger && rec.Stagger != nil {
		t.Stagger = scale.Float(*rec.Stagger, src.Stagger)
	}
	a.weightValue(t, src, rec, ratio, p)
}

func (a *Applier) ammo(t, src *catalog.Entry, rec *patch.Record, ratio float64, p Permissions) {
	if p.Damage && rec.Damage != nil {
		t.Damage = scale.Damage(ratio, *rec.Damage, src.Damage)
	}
	a.weightValue(t, src, rec, ratio, p)
}

func (a *Applier) weightValue(t, src *catalog.Entry, rec *patch.Record, ratio float64, p Permissions) {
	if p.Weight && rec.Weight != nil {
		t.Weight = scale.Weight(ratio, *rec.Weight, src.Weight, a.cfg.RoundWeight)
	}
	if p.Value && rec.Value != nil {
		t.Value = scale.Value(ratio, *rec.Value, src.Value)
	}
}
