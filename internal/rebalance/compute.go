package rebalance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/core/event"
	"github.com/l1jgo/itemforge/internal/curve"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/scale"
	"github.com/l1jgo/itemforge/internal/slot"
	"github.com/l1jgo/itemforge/internal/token"
	"github.com/l1jgo/itemforge/internal/variant"
)

// LootAnnotator assigns a rarity tier to a target for a loot profile.
type LootAnnotator interface {
	LootRarity(item *catalog.Entry, profile string) (string, error)
}

// Preview holds the values the applier will produce for a change.
type Preview struct {
	Armor    int
	Weight   float64
	Value    int
	Warmth   float64
	Coverage float64
	Damage   int
	Speed    float64
	Stagger  float64
	Slots    slot.Mask
}

// Change is one computed record with its context.
type Change struct {
	Target  *catalog.Entry
	Source  *catalog.Entry
	Record  *patch.Record
	Ratio   float64
	Preview Preview
}

// Skip is a target left unmodified.
type Skip struct {
	ID     catalog.FormID
	Name   string
	Reason string
}

// Changes is the result of one computation.
type Changes struct {
	// Documents are keyed by origin scope.
	Documents map[string]*patch.Document
	Items     []Change
	Skipped   []Skip
	Sets      []variant.Set
	Covered   slot.Mask
	Weights   *curve.Weights
}

// Engine computes changes for a fixed configuration.
type Engine struct {
	cfg  *Config
	log  *zap.Logger
	bus  *event.Bus
	loot LootAnnotator
}

// NewEngine creates an engine. bus and loot may be nil.
func NewEngine(cfg *Config, log *zap.Logger, bus *event.Bus, loot LootAnnotator) *Engine {
	return &Engine{cfg: cfg, log: log, bus: bus, loot: loot}
}

// run is the per-call working state.
type run struct {
	req          *Request
	changes      *Changes
	memberOf     map[catalog.FormID][]string
	mixed        []string
	mixedEmitted bool
}

// Compute builds the change records for req. Items that cannot be matched
// are skipped with a diagnostic; only a broken request returns an error.
func (e *Engine) Compute(req *Request) (*Changes, error) {
	if req == nil {
		return nil, fmt.Errorf("rebalance: nil request")
	}
	r := &run{
		req: req,
		changes: &Changes{
			Documents: make(map[string]*patch.Document),
		},
	}

	var covered slot.Mask
	for _, it := range req.Items {
		if it.Kind == catalog.KindArmor {
			covered = covered.Union(req.Remap.Apply(it.Slots))
		}
	}
	covered, promoted := covered.PromoteHeadSummary()
	if promoted != slot.None {
		e.log.Debug("covered head alias promoted", zap.Stringer("slot", promoted))
	}
	filter := slot.All
	if e.cfg.ExcludeShield {
		filter = filter.Without(slot.Shield)
	}
	base := e.cfg.Base
	w := curve.Compute(e.cfg.Curve, func(s slot.Slot) bool { return base.ArmorAt(s) != nil }, covered, filter)
	r.changes.Covered = covered
	r.changes.Weights = w

	var made []*Change
	for _, it := range req.Items {
		var (
			ch  *Change
			err error
		)
		switch it.Kind {
		case catalog.KindArmor:
			ch, err = e.armor(r, it, w)
		case catalog.KindWeapon:
			ch, err = e.weapon(r, it)
		case catalog.KindAmmo:
			ch, err = e.ammo(r, it)
		default:
			err = fmt.Errorf("unsupported kind %s", it.Kind)
		}
		if err != nil {
			e.skip(r, it, err.Error())
			continue
		}
		made = append(made, ch)
	}

	if req.Loot.Enabled && req.Loot.Sets {
		e.buildSets(r, made)
	}

	for _, ch := range made {
		e.annotate(r, ch)
		origin := ch.Target.ID.Origin
		doc := r.changes.Documents[origin]
		if doc == nil {
			doc = patch.NewDocument(origin)
			r.changes.Documents[origin] = doc
		}
		if err := doc.Upsert(ch.Target.ID.LocalKey(), ch.Record, false); err != nil {
			return nil, err
		}
		r.changes.Items = append(r.changes.Items, *ch)
	}
	e.log.Info("changes computed",
		zap.Int("records", len(r.changes.Items)),
		zap.Int("skipped", len(r.changes.Skipped)),
		zap.Int("documents", len(r.changes.Documents)),
		zap.Stringer("covered", covered))
	return r.changes, nil
}

func (e *Engine) skip(r *run, it *catalog.Entry, reason string) {
	r.changes.Skipped = append(r.changes.Skipped, Skip{ID: it.ID, Name: it.Name, Reason: reason})
	e.log.Warn("item skipped", zap.Stringer("id", it.ID), zap.String("name", it.Name), zap.String("reason", reason))
	event.Emit(e.bus, event.ItemSkipped{ID: it.ID, Name: it.Name, Reason: reason})
}

func newRecord(target, src *catalog.Entry) *patch.Record {
	return &patch.Record{
		Name:    target.Name,
		SrcName: src.Name,
		SrcFile: src.ID.Origin,
		SrcID:   src.ID.LocalKey(),
	}
}

func (e *Engine) armor(r *run, it *catalog.Entry, w *curve.Weights) (*Change, error) {
	st := r.req.Stats
	remapped := r.req.Remap.Apply(it.Slots)
	mask := remapped.PromoteHead()
	if mask.IsEmpty() {
		return nil, fmt.Errorf("no slots after remap")
	}
	ratio, ok := w.ItemRatio(mask)
	if !ok {
		return nil, fmt.Errorf("%w: no anchored slot in %s", ErrNoSource, mask)
	}
	src := e.cfg.Base.ArmorAt(ratio.Anchor)
	if src == nil {
		src = e.cfg.Base.MatchArmor(mask)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: no template armor for %s", ErrNoSource, mask)
	}

	rec := newRecord(it, src)
	rec.W = patch.TripleRatio(ratio.Used, ratio.Base, ratio.Set)
	rec.Armor = st.Armor.field()
	rec.Weight = st.Weight.field()
	rec.Value = st.Value.field()
	rec.Warmth = st.Warmth.field()
	rec.Coverage = st.Coverage.field()
	if remapped != it.Slots {
		rec.Slots = patch.U(uint32(remapped))
	}
	e.directives(r, rec)

	rv := ratio.Value()
	p := Preview{Slots: remapped}
	if rec.Armor != nil {
		p.Armor = scale.Rating(rv, *rec.Armor, src.ArmorRating)
	}
	if rec.Weight != nil {
		p.Weight = scale.Weight(rv, *rec.Weight, src.Weight, e.cfg.RoundWeight)
	}
	if rec.Value != nil {
		p.Value = scale.Value(rv, *rec.Value, src.Value)
	}
	if rec.Warmth != nil {
		p.Warmth = scale.Warmth(*rec.Warmth, ratio.Used, ratio.Set, e.cfg.WarmthScale)
	}
	if rec.Coverage != nil {
		p.Coverage = scale.Coverage(*rec.Coverage, ratio.Used, ratio.Set)
	}
	return &Change{Target: it, Source: src, Record: rec, Ratio: rv, Preview: p}, nil
}

func (e *Engine) weapon(r *run, it *catalog.Entry) (*Change, error) {
	src := e.cfg.Base.MatchWeapon(it)
	if src == nil {
		return nil, fmt.Errorf("%w: no template for weapon type %q", ErrNoSource, it.WeaponType)
	}
	st := r.req.Stats
	rec := newRecord(it, src)
	rec.W = patch.FixedRatio(1)
	rec.Damage = st.Damage.field()
	rec.Speed = st.Speed.field()
	rec.Stagger = st.Stagger.field()
	rec.Weight = st.Weight.field()
	rec.Value = st.Value.field()
	e.directives(r, rec)
	return &Change{Target: it, Source: src, Record: rec, Ratio: 1, Preview: e.flatPreview(rec, src)}, nil
}

func (e *Engine) ammo(r *run, it *catalog.Entry) (*Change, error) {
	src := e.cfg.Base.MatchAmmo(it)
	if src == nil {
		return nil, fmt.Errorf("%w: no template for ammo class (bolt=%t)", ErrNoSource, it.Bolt)
	}
	st := r.req.Stats
	rec := newRecord(it, src)
	rec.W = patch.FixedRatio(1)
	rec.Damage = st.Damage.field()
	rec.Weight = st.Weight.field()
	rec.Value = st.Value.field()
	e.directives(r, rec)
	return &Change{Target: it, Source: src, Record: rec, Ratio: 1, Preview: e.flatPreview(rec, src)}, nil
}

func (e *Engine) flatPreview(rec *patch.Record, src *catalog.Entry) Preview {
	var p Preview
	if rec.Damage != nil {
		p.Damage = scale.Damage(1, *rec.Damage, src.Damage)
	}
	if rec.Speed != nil {
		p.Speed = scale.Float(*rec.Speed, src.Speed)
	}
	if rec.Stagger != nil {
		p.Stagger = scale.Float(*rec.Stagger, src.Stagger)
	}
	if rec.Weight != nil {
		p.Weight = scale.Weight(1, *rec.Weight, src.Weight, e.cfg.RoundWeight)
	}
	if rec.Value != nil {
		p.Value = scale.Value(1, *rec.Value, src.Value)
	}
	return p
}

// directives copies the keyword and recipe switches.
func (e *Engine) directives(r *run, rec *patch.Record) {
	st := r.req.Stats
	if st.Keywords {
		rec.Keywords = patch.B(true)
	}
	if st.Temper != nil {
		o := *st.Temper
		rec.Temper = &o
	}
	if st.Craft != nil {
		o := *st.Craft
		rec.Craft = &o
	}
}

// buildSets groups the armor that produced a change by set matching, or
// collects the single mixed set from every change.
func (e *Engine) buildSets(r *run, made []*Change) {
	if !r.req.Loot.MatchSets {
		for _, ch := range made {
			r.mixed = append(r.mixed, ch.Target.ID.String())
		}
		return
	}
	var armor []*catalog.Entry
	for _, ch := range made {
		if ch.Target.Kind == catalog.KindArmor {
			armor = append(armor, ch.Target)
		}
	}
	an := variant.Analyze(armor, e.cfg.Hints, token.Tokenizer{})
	r.memberOf = make(map[catalog.FormID][]string)
	for _, anchor := range armor {
		if _, grouped := r.memberOf[anchor.ID]; grouped {
			continue
		}
		var pool []*catalog.Entry
		for _, c := range armor {
			if _, grouped := r.memberOf[c.ID]; !grouped && c.ID != anchor.ID {
				pool = append(pool, c)
			}
		}
		set := an.BestMatch(anchor, pool, e.cfg.Interesting)
		for _, p := range set.Picks {
			if !p.Ambiguous() {
				continue
			}
			ids := make([]catalog.FormID, 0, len(p.Candidates))
			for _, c := range p.Ordered(anchor.Name) {
				ids = append(ids, c.ID)
			}
			event.Emit(e.bus, event.SetAmbiguous{Anchor: anchor.ID, Slot: p.Slot.String(), Candidates: ids})
		}
		members := set.Members()
		strs := make([]string, len(members))
		for i, id := range members {
			strs[i] = id.String()
		}
		for _, id := range members {
			r.memberOf[id] = strs
		}
		r.changes.Sets = append(r.changes.Sets, set)
	}
}

// annotate fills the loot sub-object. A failing rarity hook keeps the
// request's default rarity and is reported; the item still gets its record.
func (e *Engine) annotate(r *run, ch *Change) {
	opts := r.req.Loot
	if !opts.Enabled {
		return
	}
	loot := &patch.Loot{Profile: opts.Profile, Group: opts.Group, Rarity: opts.Rarity, Piece: opts.Piece}
	if e.loot != nil {
		rarity, err := e.loot.LootRarity(ch.Target, opts.Profile)
		switch {
		case err != nil:
			e.log.Warn("loot rarity hook failed, keeping default rarity",
				zap.Stringer("id", ch.Target.ID), zap.String("name", ch.Target.Name),
				zap.String("rarity", opts.Rarity), zap.Error(err))
			event.Emit(e.bus, event.LootAnnotationFailed{ID: ch.Target.ID, Name: ch.Target.Name, Err: err})
		case rarity != "":
			loot.Rarity = rarity
		}
	}
	if opts.Sets {
		if opts.MatchSets {
			loot.Set = r.memberOf[ch.Target.ID]
		} else if !r.mixedEmitted {
			loot.Set = r.mixed
			r.mixedEmitted = true
		}
	}
	ch.Record.Loot = loot
}
