package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/data"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/rebalance"
	"github.com/l1jgo/itemforge/internal/scripting"
	"github.com/l1jgo/itemforge/internal/slot"
)

var (
	computeOrigins        []string
	computeItems          []string
	computeCurve          string
	computeBaseSet        string
	computeStats          map[string]string
	computeKeywords       bool
	computeTemper         string
	computeCraft          string
	computeRemap          map[string]string
	computeAllowProtected bool
	computeLootProfile    string
	computeScope          string
	computeReplace        bool
	computeDryRun         bool
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute change records for a selection of items",
	Long:  `Compute matches every selected item to a template item, derives its share of the template set from the weight curve and writes the patch documents.`,
	RunE:  runCompute,
}

func init() {
	f := computeCmd.Flags()
	f.StringSliceVar(&computeOrigins, "origin", nil, "select every armor, weapon and ammo item of these scopes")
	f.StringSliceVar(&computeItems, "item", nil, "select items by form id (Origin|0xLOCAL)")
	f.StringVar(&computeCurve, "curve", "", "weight curve (config default when empty)")
	f.StringVar(&computeBaseSet, "base-set", "", "template set (config default when empty)")
	f.StringToStringVar(&computeStats, "stat", map[string]string{
		"armor": "100", "weight": "100", "value": "100", "warmth": "100",
		"coverage": "100", "damage": "100", "speed": "100", "stagger": "100",
	}, "enabled stats as name=percent")
	f.BoolVar(&computeKeywords, "keywords", false, "swap interesting keywords with the template")
	f.StringVar(&computeTemper, "temper", "", "tempering recipes: copy, new or free")
	f.StringVar(&computeCraft, "craft", "", "crafting recipes: copy, new or free")
	f.StringToStringVar(&computeRemap, "remap", nil, "slot remap as from=to, to '-' removes the slot")
	f.BoolVar(&computeAllowProtected, "allow-protected", false, "let the remap touch protected slots")
	f.StringVar(&computeLootProfile, "loot", "", "loot profile to annotate records with")
	f.StringVar(&computeScope, "scope", string(patch.ScopeLocal), "patch scope: local or shared")
	f.BoolVar(&computeReplace, "replace", false, "replace existing records instead of merging fields")
	f.BoolVar(&computeDryRun, "dry-run", false, "print the changes without writing")
}

func runCompute(_ *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	cfg := a.cfg
	scope := patch.Scope(computeScope)
	if scope != patch.ScopeLocal && scope != patch.ScopeShared {
		return fmt.Errorf("--scope %q, want local or shared", computeScope)
	}

	cat, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return err
	}
	engine, closeLua, err := newEngine(a, cat)
	if err != nil {
		return err
	}
	defer closeLua()

	req, err := buildRequest(a, cat)
	if err != nil {
		return err
	}
	ch, err := engine.Compute(req)
	if err != nil {
		return err
	}
	printChanges(ch)

	if !computeDryRun {
		store := patch.NewStore(cfg.Patch.Dir, a.log)
		err := engine.Commit(store, ch, rebalance.CommitOptions{
			Scope:  scope,
			Merge:  cfg.Patch.Merge && !computeReplace,
			Backup: cfg.Patch.Backup,
		})
		if err != nil {
			a.log.Error("commit failed", zap.Error(err))
		}
	}
	return a.finish()
}

func newEngine(a *app, cat *catalog.Catalog) (*rebalance.Engine, func(), error) {
	cfg := a.cfg
	curves, err := data.LoadCurveTable(cfg.Data.Curves)
	if err != nil {
		return nil, nil, err
	}
	curveName := orDefault(computeCurve, cfg.Rebalance.Curve)
	c := curves.Get(curveName)
	if c == nil {
		return nil, nil, fmt.Errorf("unknown curve %q (have %s)", curveName, strings.Join(curves.Names(), ", "))
	}
	sets, err := data.LoadBaseSetTable(cfg.Data.BaseSets, cat)
	if err != nil {
		return nil, nil, err
	}
	setName := orDefault(computeBaseSet, cfg.Rebalance.BaseSet)
	base := sets.Get(setName)
	if base == nil {
		return nil, nil, fmt.Errorf("unknown base set %q (have %s)", setName, strings.Join(sets.Names(), ", "))
	}
	hints, err := data.LoadHints(cfg.Data.Hints)
	if err != nil {
		return nil, nil, err
	}
	kw, err := data.LoadKeywordSets(cfg.Data.Keywords)
	if err != nil {
		return nil, nil, err
	}
	rcfg, err := rebalance.NewConfig(rebalance.Config{
		Curve:         c,
		Base:          base,
		Hints:         hints,
		Interesting:   kw.Interesting,
		WarmthScale:   cfg.Rebalance.WarmthScale,
		ExcludeShield: cfg.Rebalance.ExcludeShield,
		RoundWeight:   cfg.Patch.RoundWeight,
	})
	if err != nil {
		return nil, nil, err
	}

	lua, err := scripting.NewEngine(cfg.Scripting.Dir, a.log)
	if err != nil {
		return nil, nil, err
	}
	var loot rebalance.LootAnnotator
	if lua.HasHook("loot_rarity") {
		loot = lua
	}
	return rebalance.NewEngine(rcfg, a.log, a.bus, loot), lua.Close, nil
}

func buildRequest(a *app, cat *catalog.Catalog) (*rebalance.Request, error) {
	req := &rebalance.Request{}

	for _, e := range cat.Entries() {
		if slices.Contains(computeOrigins, e.ID.Origin) && e.Kind != catalog.KindOther {
			req.Items = append(req.Items, e)
		}
	}
	for _, s := range computeItems {
		id, err := catalog.ParseFormID(s)
		if err != nil {
			return nil, err
		}
		e := cat.Get(id)
		if e == nil {
			return nil, fmt.Errorf("item %s not in catalog", s)
		}
		if !slices.Contains(req.Items, e) {
			req.Items = append(req.Items, e)
		}
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("no items selected, use --origin or --item")
	}

	if err := parseStats(&req.Stats, computeStats); err != nil {
		return nil, err
	}
	req.Stats.Keywords = computeKeywords
	var err error
	if req.Stats.Temper, err = parseRecipe(computeTemper); err != nil {
		return nil, fmt.Errorf("--temper: %w", err)
	}
	if req.Stats.Craft, err = parseRecipe(computeCraft); err != nil {
		return nil, fmt.Errorf("--craft: %w", err)
	}
	if req.Remap, err = parseRemap(computeRemap, computeAllowProtected); err != nil {
		return nil, err
	}

	if computeLootProfile != "" {
		profiles, err := data.LoadLootProfiles(a.cfg.Data.Loot)
		if err != nil {
			return nil, err
		}
		p := profiles.Get(computeLootProfile)
		if p == nil {
			return nil, fmt.Errorf("unknown loot profile %q", computeLootProfile)
		}
		req.Loot = rebalance.LootOptions{
			Enabled:   true,
			Profile:   p.Name,
			Group:     p.Group,
			Rarity:    p.Rarity,
			Piece:     p.Piece,
			Sets:      p.Sets,
			MatchSets: p.MatchSets,
		}
	}
	return req, nil
}

func parseStats(st *rebalance.Stats, in map[string]string) error {
	fields := map[string]*rebalance.Toggle{
		"armor":    &st.Armor,
		"weight":   &st.Weight,
		"warmth":   &st.Warmth,
		"coverage": &st.Coverage,
		"damage":   &st.Damage,
		"speed":    &st.Speed,
		"stagger":  &st.Stagger,
		"value":    &st.Value,
	}
	for name, v := range in {
		t, ok := fields[name]
		if !ok {
			return fmt.Errorf("--stat: unknown stat %q", name)
		}
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("--stat %s: %w", name, err)
		}
		*t = rebalance.On(p)
	}
	return nil
}

func parseRecipe(mode string) (*patch.RecipeOption, error) {
	switch mode {
	case "":
		return nil, nil
	case "copy":
		return &patch.RecipeOption{}, nil
	case "new":
		return &patch.RecipeOption{New: true}, nil
	case "free":
		return &patch.RecipeOption{Free: true}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q, want copy, new or free", mode)
	}
}

func parseRemap(in map[string]string, allowProtected bool) (slot.Remap, error) {
	r := slot.Remap{AllowProtected: allowProtected}
	if len(in) == 0 {
		return r, nil
	}
	r.Entries = make(map[slot.Slot]slot.Target, len(in))
	for from, to := range in {
		src, err := slot.ParseSlot(from)
		if err != nil {
			return r, fmt.Errorf("--remap: %w", err)
		}
		if to == "-" {
			r.Entries[src] = slot.Target{Remove: true}
			continue
		}
		dst, err := slot.ParseSlot(to)
		if err != nil {
			return r, fmt.Errorf("--remap: %w", err)
		}
		r.Entries[src] = slot.Target{Slot: dst}
	}
	return r, nil
}

func printChanges(ch *rebalance.Changes) {
	fmt.Printf("covered slots: %s\n", ch.Covered)
	for _, c := range ch.Items {
		p := c.Preview
		fmt.Printf("%-28s <- %-20s ratio %.3f  armor %3d  dmg %3d  weight %6.2f  value %5d\n",
			c.Target.Name, c.Source.Name, c.Ratio, p.Armor, p.Damage, p.Weight, p.Value)
	}
	for _, s := range ch.Skipped {
		fmt.Printf("skipped %-28s %s\n", s.Name, s.Reason)
	}
	for _, s := range ch.Sets {
		flag := ""
		if s.Ambiguous() {
			flag = " (ambiguous)"
		}
		fmt.Printf("set %s: %d members%s\n", s.Anchor.Name, len(s.Members()), flag)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
