package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingFromTriple(t *testing.T) {
	// w = {item: 5, base: 15}, armor slider 50%, source rating 100.
	assert.Equal(t, 16, Rating(5.0/15.0, 0.5, 100))
}

func TestFloors(t *testing.T) {
	for _, ratio := range []float64{0, 0.001, 0.3, 1, 2.5} {
		for _, factor := range []float64{0, 0.01, 1} {
			assert.GreaterOrEqual(t, Rating(ratio, factor, 7), 1)
			assert.GreaterOrEqual(t, Value(ratio, factor, 3), 1)
			assert.GreaterOrEqual(t, Weight(ratio, factor, 0.5, true), 0.1)
			assert.GreaterOrEqual(t, Weight(ratio, factor, 0.5, false), 0.1)
		}
	}
	assert.Equal(t, 1, Rating(1, 0, 50), "zero scale forces the floor")
	assert.Equal(t, 0.1, Weight(1, 0, 12, true))
}

func TestWeightRounding(t *testing.T) {
	assert.Equal(t, 3.3, Weight(1.0/3.0, 1, 10, true))
	assert.InDelta(t, 3.3333, Weight(1.0/3.0, 1, 10, false), 0.001)
}

func TestStableUnderRepetition(t *testing.T) {
	first := Weight(0.37, 0.8, 17, true)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Weight(0.37, 0.8, 17, true))
	}
}

func TestWarmthAndCoverage(t *testing.T) {
	assert.Equal(t, 25.0, Warmth(1, 5, 20, 100))
	assert.Equal(t, 0.0, Warmth(1, 5, 0, 100))
	assert.Equal(t, 0.125, Coverage(0.5, 5, 20))
}

func TestMaterialCount(t *testing.T) {
	assert.Equal(t, 2, MaterialCount(0.5, 4))
	assert.Equal(t, 1, MaterialCount(0.1, 2))
	assert.Equal(t, 0.75, Factor(75))
	assert.Equal(t, 1.2, Float(1.2, 1))
}
