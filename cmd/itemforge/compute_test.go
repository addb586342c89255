package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/rebalance"
	"github.com/l1jgo/itemforge/internal/slot"
)

func TestParseStats(t *testing.T) {
	var st rebalance.Stats
	require.NoError(t, parseStats(&st, map[string]string{"armor": "150", "weight": "50"}))
	assert.Equal(t, rebalance.On(150), st.Armor)
	assert.Equal(t, rebalance.On(50), st.Weight)
	assert.False(t, st.Damage.Enabled)

	assert.Error(t, parseStats(&st, map[string]string{"luck": "100"}))
	assert.Error(t, parseStats(&st, map[string]string{"armor": "lots"}))
}

func TestParseRecipe(t *testing.T) {
	opt, err := parseRecipe("")
	require.NoError(t, err)
	assert.Nil(t, opt)

	opt, err = parseRecipe("new")
	require.NoError(t, err)
	assert.Equal(t, &patch.RecipeOption{New: true}, opt)

	opt, err = parseRecipe("free")
	require.NoError(t, err)
	assert.True(t, opt.Free)

	_, err = parseRecipe("melt")
	assert.Error(t, err)
}

func TestParseRemap(t *testing.T) {
	r, err := parseRemap(map[string]string{"calves": "feet", "hair": "-"}, false)
	require.NoError(t, err)
	assert.Equal(t, slot.Target{Slot: slot.Feet}, r.Entries[slot.Calves])
	assert.True(t, r.Entries[slot.Hair].Remove)
	assert.Equal(t, slot.Of(slot.Body, slot.Feet), r.Apply(slot.Of(slot.Body, slot.Calves)))

	r, err = parseRemap(nil, true)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.True(t, r.AllowProtected)

	_, err = parseRemap(map[string]string{"elbow": "feet"}, false)
	assert.Error(t, err)
}

func TestDiagnosticsEmpty(t *testing.T) {
	d := &diagnostics{}
	assert.True(t, d.empty())
	d.recordsFailed++
	assert.False(t, d.empty())
}
