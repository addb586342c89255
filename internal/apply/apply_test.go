package apply

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/core/event"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/slot"
)

var (
	srcArmor  = catalog.FormID{Origin: "Base.esm", Local: 0x100}
	srcWeapon = catalog.FormID{Origin: "Base.esm", Local: 0x200}
	ingot     = catalog.FormID{Origin: "Base.esm", Local: 0x500}
	helmet    = catalog.FormID{Origin: "Mod.esp", Local: 0x801}
	sword     = catalog.FormID{Origin: "Mod.esp", Local: 0x810}
	model     = catalog.FormID{Origin: "Mod.esp", Local: 0x901}
)

var interesting = []string{"ArmorHeavy", "ArmorLight", "MaterialIron", "MaterialLeather"}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	c.AddScope(catalog.Scope{Name: "Base.esm", Active: true})
	c.AddScope(catalog.Scope{Name: "Mod.esp", Active: true, Light: true})
	c.AddScope(catalog.Scope{Name: "Missing.esp"})

	entries := []*catalog.Entry{
		{
			ID: srcArmor, Kind: catalog.KindArmor, Name: "Iron Cuirass",
			ArmorRating: 100, Weight: 30, Value: 200, Slots: slot.Of(slot.Body),
			Keywords: []string{"ArmorHeavy", "MaterialIron", "VendorItemArmor"},
		},
		{
			ID: srcWeapon, Kind: catalog.KindWeapon, Name: "Iron Greatsword",
			Damage: 20, Speed: 0.7, Stagger: 1.1, Weight: 20, Value: 100,
		},
		{
			ID: helmet, Kind: catalog.KindArmor, Name: "Leather Cap",
			ArmorRating: 10, Weight: 5, Value: 50, Slots: slot.Of(slot.Head, slot.Hair),
			Keywords: []string{"ArmorLight", "MaterialLeather", "Custom"},
			Models:   []catalog.ModelPart{{ID: model, Slots: slot.Of(slot.Head, slot.Hair)}},
		},
		{ID: sword, Kind: catalog.KindWeapon, Name: "Fancy Sword", Damage: 5, Speed: 1, Stagger: 0.5, Weight: 8, Value: 10},
	}
	for _, e := range entries {
		require.NoError(t, c.Add(e))
	}
	c.AddRecipe(&catalog.Recipe{
		Kind: catalog.RecipeTemper, Created: srcArmor, Workbench: "CraftingSmithingArmorTable",
		Items: []catalog.Material{{Item: ingot, Count: 4}},
		Conditions: []catalog.Condition{
			{Function: "GetItemCount", Param: srcArmor, Value: 1},
			{Function: "GetStage", Param: srcArmor, Value: 10},
		},
	})
	return c
}

func newApplier(c *catalog.Catalog, bus *event.Bus) *Applier {
	return New(c, Config{
		Interesting: interesting,
		WarmthScale: 100,
		Local:       AllowAll(),
		Shared:      AllowAll(),
	}, zap.NewNop(), bus)
}

func armorRecord() *patch.Record {
	return &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000100",
		W:     patch.TripleRatio(5, 15, 20),
		Armor: patch.F(0.5), Weight: patch.F(1), Value: patch.F(1),
		Warmth: patch.F(1), Coverage: patch.F(0.5),
	}
}

func TestApplyArmorScaling(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)

	o, err := a.ApplyOne("Mod.esp", "0x000801", armorRecord(), AllowAll())
	require.NoError(t, err)
	require.Equal(t, Applied, o)

	e := c.Get(helmet)
	assert.Equal(t, 16, e.ArmorRating)
	assert.InDelta(t, 10.0, e.Weight, 1e-9)
	assert.Equal(t, 66, e.Value)

	w, ok := a.State().Warmth(helmet)
	require.True(t, ok)
	assert.Equal(t, 25.0, w)
	cov, ok := a.State().Coverage(helmet)
	require.True(t, ok)
	assert.Equal(t, 0.125, cov)
}

func TestApplyIsIdempotent(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := armorRecord()
	rec.Slots = patch.U(uint32(slot.Of(slot.Head)))
	rec.Keywords = patch.B(true)

	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)
	once := *c.Get(helmet)
	once.Keywords = append([]string(nil), once.Keywords...)

	_, err = a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)
	assert.Equal(t, once, *c.Get(helmet))
}

func TestFloorOnZeroScale(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000100", W: patch.FixedRatio(0),
		Armor: patch.F(0), Weight: patch.F(0), Value: patch.F(0),
	}
	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)
	e := c.Get(helmet)
	assert.Equal(t, 1, e.ArmorRating)
	assert.Equal(t, 0.1, e.Weight)
	assert.Equal(t, 1, e.Value)
}

func buildDocument(t *testing.T) *patch.Document {
	t.Helper()
	doc := patch.NewDocument("Mod.esp")
	rec := armorRecord()
	rec.Slots = patch.U(uint32(slot.Of(slot.Head)))
	rec.Keywords = patch.B(true)
	rec.Temper = &patch.RecipeOption{New: true}
	require.NoError(t, doc.Upsert("0x000801", rec, false))
	require.NoError(t, doc.Upsert("0x000810", &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000200",
		Damage: patch.F(1.5), Speed: patch.F(1), Stagger: patch.F(1),
	}, false))
	require.NoError(t, doc.Upsert("0x000811", &patch.Record{SrcFile: "Base.esm", SrcID: "0x000200"}, false))
	return doc
}

func TestReplayOnFreshCatalogIsStable(t *testing.T) {
	pristine := newCatalog(t)
	doc := buildDocument(t)

	first := pristine.Clone()
	r1 := newApplier(first, nil).ApplyDocument(patch.ScopeLocal, doc, AllowAll())
	second := pristine.Clone()
	r2 := newApplier(second, nil).ApplyDocument(patch.ScopeLocal, doc, AllowAll())

	assert.Equal(t, Result{Applied: 2, Failed: 1}, r1)
	assert.Equal(t, r1, r2)
	for _, id := range []catalog.FormID{helmet, sword} {
		assert.Equal(t, first.Get(id), second.Get(id), id.String())
	}
	assert.Equal(t, first.RecipesFor(helmet, catalog.RecipeTemper), second.RecipesFor(helmet, catalog.RecipeTemper))

	s := second.Get(sword)
	assert.Equal(t, 30, s.Damage)
	assert.Equal(t, 0.7, s.Speed)
	assert.Equal(t, 1.1, s.Stagger)
	assert.Equal(t, 5, pristine.Get(sword).Damage, "clone leaves the pristine catalog alone")
}

func TestUnresolvedSourceIsSkipped(t *testing.T) {
	c := newCatalog(t)
	bus := event.NewBus()
	var skipped []event.RecordSkipped
	event.Subscribe(bus, func(e event.RecordSkipped) { skipped = append(skipped, e) })

	doc := patch.NewDocument("Mod.esp")
	require.NoError(t, doc.Upsert("0x000801", armorRecord(), false))
	require.NoError(t, doc.Upsert("0x000810", &patch.Record{SrcFile: "Missing.esp", SrcID: "0x000001"}, false))

	res := newApplier(c, bus).ApplyDocument(patch.ScopeShared, doc, AllowAll())
	assert.Equal(t, Result{Applied: 1, Skipped: 1}, res)
	bus.Flush()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Missing.esp|0x000001", skipped[0].Source)
	assert.Equal(t, "shared", skipped[0].Scope)
}

func TestRecordFailuresDoNotStopTheBatch(t *testing.T) {
	c := newCatalog(t)
	bus := event.NewBus()
	var failed []event.RecordFailed
	event.Subscribe(bus, func(e event.RecordFailed) { failed = append(failed, e) })
	a := newApplier(c, bus)

	cases := []struct {
		name string
		key  string
		rec  *patch.Record
		want error
	}{
		{"missing srcid", "0x000801", &patch.Record{SrcFile: "Base.esm"}, ErrMissingField},
		{"missing w on armor", "0x000801", &patch.Record{SrcFile: "Base.esm", SrcID: "0x000100"}, ErrMissingField},
		{"kind mismatch", "0x000810", &patch.Record{SrcFile: "Base.esm", SrcID: "0x000100"}, ErrKindMismatch},
		{"target missing", "0x000999", &patch.Record{SrcFile: "Base.esm", SrcID: "0x000100"}, ErrTargetMissing},
		{"bad ratio", "0x000801", &patch.Record{SrcFile: "Base.esm", SrcID: "0x000100", W: patch.TripleRatio(1, 0, 1)}, ErrBadRatio},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, err := a.ApplyOne("Mod.esp", tc.key, tc.rec, AllowAll())
			assert.Equal(t, Failed, o)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	doc, err := patch.ParseDocument("Mod.esp", []byte(`{
		"0x000801": "oops",
		"0x000810": {"srcfile": "Base.esm", "srcid": "0x000100"},
		"0x000811": {"srcfile": "Base.esm", "srcid": "0x000200", "damage": 1}
	}`))
	require.NoError(t, err)
	res := a.ApplyDocument(patch.ScopeLocal, doc, AllowAll())
	assert.Equal(t, Result{Applied: 0, Failed: 3}, res, "0x000811 is not in the catalog")
	bus.Flush()
	assert.Len(t, failed, 3)
	assert.Equal(t, 10, c.Get(helmet).ArmorRating, "failed records leave the target alone")
}

func TestPermissionsGateFields(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	perms := AllowAll()
	perms.Armor = false
	perms.Warmth = false

	_, err := a.ApplyOne("Mod.esp", "0x000801", armorRecord(), perms)
	require.NoError(t, err)
	e := c.Get(helmet)
	assert.Equal(t, 10, e.ArmorRating)
	assert.Equal(t, 66, e.Value)
	_, ok := a.State().Warmth(helmet)
	assert.False(t, ok)
}

func TestSlotsFollowModelsAndKeepOriginal(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := armorRecord()
	rec.Slots = patch.U(uint32(slot.Of(slot.Head)))
	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)

	e := c.Get(helmet)
	assert.Equal(t, slot.Of(slot.Head), e.Slots)
	assert.Equal(t, slot.Of(slot.Head), e.Models[0].Slots)

	rec.Slots = patch.U(uint32(slot.Of(slot.Circlet)))
	_, err = a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)
	orig, ok := a.State().OriginalSlots(helmet)
	require.True(t, ok)
	assert.Equal(t, slot.Of(slot.Head, slot.Hair), orig, "first write wins")
	assert.Equal(t, slot.Of(slot.Circlet), c.Get(helmet).Models[0].Slots)
}

func TestKeywordSwapAndExport(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := armorRecord()
	rec.Keywords = patch.B(true)
	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)

	assert.Equal(t, []string{"Custom", "ArmorHeavy", "MaterialIron"}, c.Get(helmet).Keywords)
	changes := a.State().KeywordChanges()
	assert.Equal(t, []catalog.FormID{helmet}, changes["ArmorHeavy"].Add)
	assert.Equal(t, []catalog.FormID{helmet}, changes["ArmorLight"].Remove)
	assert.NotContains(t, changes, "VendorItemArmor")
	assert.NotContains(t, changes, "Custom")

	var buf bytes.Buffer
	require.NoError(t, a.State().ExportKeywords(&buf))
	assert.Equal(t,
		"ArmorHeavy = +Mod.esp|0x000801\n"+
			"ArmorLight = -Mod.esp|0x000801\n"+
			"MaterialIron = +Mod.esp|0x000801\n"+
			"MaterialLeather = -Mod.esp|0x000801\n",
		buf.String())
}

func TestRecipes(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := armorRecord()
	rec.Temper = &patch.RecipeOption{New: true}
	rec.Craft = &patch.RecipeOption{New: false}
	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)

	tempers := c.RecipesFor(helmet, catalog.RecipeTemper)
	require.Len(t, tempers, 1)
	r := tempers[0]
	assert.Equal(t, "CraftingSmithingArmorTable", r.Workbench)
	assert.Equal(t, []catalog.Material{{Item: ingot, Count: 1}}, r.Items)
	assert.Equal(t, []catalog.Condition{
		{Function: "GetItemCount", Param: helmet, Value: 1},
		{Function: "GetStage", Param: srcArmor, Value: 10},
	}, r.Conditions)
	assert.Empty(t, c.RecipesFor(helmet, catalog.RecipeCraft), "creation not requested")

	rec.Temper = &patch.RecipeOption{Free: true}
	_, err = a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)
	assert.Empty(t, c.RecipesFor(helmet, catalog.RecipeTemper)[0].Items)

	perms := AllowAll()
	perms.CreateRecipes = false
	_, err = a.ApplyOne("Mod.esp", "0x000810", &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000200", Craft: &patch.RecipeOption{New: true},
	}, perms)
	require.NoError(t, err)
	assert.Empty(t, c.RecipesFor(sword, catalog.RecipeCraft))
}

func TestLootRegistry(t *testing.T) {
	c := newCatalog(t)
	a := newApplier(c, nil)
	rec := armorRecord()
	rec.Loot = &patch.Loot{Profile: "bandit", Group: "heavy", Rarity: "rare", Set: []string{"Mod.esp|0x000801"}}
	_, err := a.ApplyOne("Mod.esp", "0x000801", rec, AllowAll())
	require.NoError(t, err)

	loot := a.State().Loot()
	require.Contains(t, loot, helmet)
	assert.Equal(t, "bandit", loot[helmet].Profile)
	assert.Equal(t, []string{"Mod.esp|0x000801"}, loot[helmet].Set)
}

func TestApplyAllScopes(t *testing.T) {
	c := newCatalog(t)
	store := patch.NewStore(t.TempDir(), zap.NewNop())

	shared := patch.NewDocument("Mod.esp")
	require.NoError(t, shared.Upsert("0x000801", &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000100", W: patch.TripleRatio(5, 15, 20),
		Armor: patch.F(1), Value: patch.F(1),
	}, false))
	require.NoError(t, store.Save(patch.ScopeShared, shared))

	local := patch.NewDocument("Mod.esp")
	require.NoError(t, local.Upsert("0x000801", &patch.Record{
		SrcFile: "Base.esm", SrcID: "0x000100", W: patch.TripleRatio(5, 15, 20),
		Armor: patch.F(0.5),
	}, false))
	require.NoError(t, store.Save(patch.ScopeLocal, local))

	sharedPerms := AllowAll()
	sharedPerms.Value = false
	a := New(c, Config{Local: AllowAll(), Shared: sharedPerms}, zap.NewNop(), nil)
	sum := a.ApplyAll(store)

	require.Len(t, sum.Documents, 2)
	assert.Equal(t, patch.ScopeShared, sum.Documents[0].Scope)
	assert.Equal(t, patch.ScopeLocal, sum.Documents[1].Scope)
	assert.Equal(t, Result{Applied: 2}, sum.Total)

	e := c.Get(helmet)
	assert.Equal(t, 16, e.ArmorRating, "local applied last")
	assert.Equal(t, 50, e.Value, "shared value not permitted")
	assert.Zero(t, sum.Invalid)
}

func TestApplyAllReportsInvalidDocuments(t *testing.T) {
	c := newCatalog(t)
	dir := t.TempDir()
	store := patch.NewStore(dir, zap.NewNop())

	good := patch.NewDocument("Mod.esp")
	require.NoError(t, good.Upsert("0x000801", armorRecord(), false))
	require.NoError(t, store.Save(patch.ScopeLocal, good))
	broken := filepath.Join(dir, "local", "Broken.esp.json")
	require.NoError(t, os.WriteFile(broken, []byte("{ not json"), 0o644))

	bus := event.NewBus()
	var invalid []event.DocumentInvalid
	event.Subscribe(bus, func(e event.DocumentInvalid) { invalid = append(invalid, e) })

	a := New(c, Config{Local: AllowAll(), Shared: AllowAll()}, zap.NewNop(), bus)
	sum := a.ApplyAll(store)
	bus.Flush()

	assert.Equal(t, 1, sum.Invalid)
	assert.Equal(t, Result{Applied: 1}, sum.Total, "the good document still applies")
	require.Len(t, invalid, 1)
	assert.Equal(t, broken, invalid[0].Path)
	assert.Error(t, invalid[0].Err)
}
