package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/slot"
)

const sampleDir = "../../data/yaml"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadCatalogSample(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(sampleDir, "catalog.yaml"))
	require.NoError(t, err)

	require.Len(t, cat.Scopes(), 3)
	assert.Equal(t, "Skyrim.esm", cat.Scopes()[0].Name)
	assert.True(t, cat.Scope("Trinkets.esl").Light)

	hood := cat.Get(catalog.FormID{Origin: "Wanderer.esp", Local: 0x801})
	require.NotNil(t, hood)
	assert.Equal(t, catalog.KindArmor, hood.Kind)
	assert.Equal(t, catalog.ArmorLight, hood.ArmorType)
	assert.Equal(t, slot.Of(slot.Hair), hood.Slots)
	require.Len(t, hood.Models, 1)
	assert.Equal(t, slot.Of(slot.Hair), hood.Models[0].Slots)

	bolt := cat.Get(catalog.FormID{Origin: "Trinkets.esl", Local: 0x801})
	require.NotNil(t, bolt)
	assert.True(t, bolt.Bolt)

	armor := catalog.FormID{Origin: "Skyrim.esm", Local: 0x012E49}
	require.Len(t, cat.RecipesFor(armor, catalog.RecipeTemper), 1)
	craft := cat.RecipesFor(armor, catalog.RecipeCraft)
	require.Len(t, craft, 1)
	assert.Len(t, craft[0].Items, 2)
	require.Len(t, craft[0].Conditions, 1)
	assert.Equal(t, "GetItemCount", craft[0].Conditions[0].Function)
}

func TestLoadCatalogErrors(t *testing.T) {
	cases := map[string]string{
		"unknown scope": `
items:
  - {id: "Missing.esp|0x000801", kind: armor}
`,
		"bad slot": `
scopes: [{name: A.esp, active: true}]
items:
  - {id: "A.esp|0x000801", kind: armor, slots: [elbow]}
`,
		"bad id": `
scopes: [{name: A.esp, active: true}]
items:
  - {id: "0x000801", kind: armor}
`,
		"light out of range": `
scopes: [{name: A.esl, light: true, active: true}]
items:
  - {id: "A.esl|0x001000", kind: armor}
`,
		"recipe kind": `
scopes: [{name: A.esp, active: true}]
recipes:
  - {kind: brew, created: "A.esp|0x000801"}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(writeFile(t, "catalog.yaml", body))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "catalog: read")
}

func TestLoadCurveTable(t *testing.T) {
	tbl, err := LoadCurveTable(filepath.Join(sampleDir, "curves.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Count())
	assert.Equal(t, []string{"default", "flat"}, tbl.Names())

	c := tbl.Get("default")
	require.NotNil(t, c)
	require.Len(t, c.Roots, 2)
	assert.Equal(t, slot.Body, c.Roots[0].Slot)
	assert.Len(t, c.Roots[0].Children, 3)
	assert.True(t, c.Mask().Has(slot.Calves))
	assert.Nil(t, tbl.Get("missing"))
}

func TestLoadCurveTableRejectsDuplicates(t *testing.T) {
	_, err := LoadCurveTable(writeFile(t, "curves.yaml", `
curves:
  - name: twice
    nodes:
      - slot: body
        weight: 1
        children:
          - {slot: body, weight: 2}
`))
	assert.ErrorContains(t, err, "more than once")

	_, err = LoadCurveTable(writeFile(t, "curves.yaml", `
curves:
  - {name: a, nodes: [{slot: body, weight: 1}]}
  - {name: a, nodes: [{slot: head, weight: 1}]}
`))
	assert.ErrorContains(t, err, "duplicate curve")
}

func TestLoadBaseSetTable(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(sampleDir, "catalog.yaml"))
	require.NoError(t, err)
	tbl, err := LoadBaseSetTable(filepath.Join(sampleDir, "base_sets.yaml"), cat)
	require.NoError(t, err)

	iron := tbl.Get("iron")
	require.NotNil(t, iron)
	assert.Len(t, iron.Armor, 4)
	assert.Len(t, iron.Weapons, 3)
	assert.Len(t, iron.Ammo, 2)

	maul := cat.Get(catalog.FormID{Origin: "Wanderer.esp", Local: 0x810})
	require.NotNil(t, maul)
	assert.Equal(t, "Iron Warhammer", iron.MatchWeapon(maul).Name)
}

func TestLoadBaseSetTableErrors(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(sampleDir, "catalog.yaml"))
	require.NoError(t, err)

	_, err = LoadBaseSetTable(writeFile(t, "sets.yaml", `
base_sets:
  - name: ghost
    armor: ["Skyrim.esm|0x0FFFFF"]
`), cat)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = LoadBaseSetTable(writeFile(t, "sets.yaml", `
base_sets:
  - name: overlap
    armor: ["Wanderer.esp|0x000802", "Wanderer.esp|0x000804"]
`), cat)
	assert.ErrorContains(t, err, "overlaps")
}

func TestLoadHintsAndKeywords(t *testing.T) {
	h, err := LoadHints(filepath.Join(sampleDir, "hints.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"rusty", "worn", "polished"}, h.Dynamic["condition"])
	assert.Contains(t, h.Static, "coat")
	assert.Contains(t, h.Piece, "armor")

	_, err = LoadHints(writeFile(t, "hints.yaml", "dynamic:\n  empty: []\n"))
	assert.ErrorContains(t, err, "no stages")

	kw, err := LoadKeywordSets(filepath.Join(sampleDir, "keywords.yaml"))
	require.NoError(t, err)
	assert.True(t, kw.Has("ArmorCuirass"))
	assert.False(t, kw.Has("ArmorMaterialIron"))
}

func TestLoadLootProfiles(t *testing.T) {
	tbl, err := LoadLootProfiles(filepath.Join(sampleDir, "loot_profiles.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Count())

	b := tbl.Get("bandit")
	require.NotNil(t, b)
	assert.Equal(t, "bandit_gear", b.Group)
	assert.True(t, b.MatchSets)
	assert.False(t, tbl.Get("boss").Piece)

	_, err = LoadLootProfiles(writeFile(t, "loot.yaml", "loot_profiles:\n  - group: x\n"))
	assert.ErrorContains(t, err, "no name")
}
