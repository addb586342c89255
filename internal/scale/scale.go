// Package scale holds the numeric transforms shared by change computation
// and replay, so repeated application lands on the same values.
package scale

import "math"

// Floors for scaled attributes.
const (
	IntFloor    = 1
	WeightFloor = 0.1
)

// Int scales an integer attribute: max(1, int(ratio * factor * src)).
// factor is the stored fraction (UI percent / 100).
func Int(ratio, factor float64, src int) int {
	v := int(ratio * factor * float64(src))
	if v < IntFloor {
		return IntFloor
	}
	return v
}

// Rating scales an armor rating.
func Rating(ratio, factor float64, src int) int { return Int(ratio, factor, src) }

// Value scales a gold value.
func Value(ratio, factor float64, src int) int { return Int(ratio, factor, src) }

// Damage scales weapon or ammo damage.
func Damage(ratio, factor float64, src int) int { return Int(ratio, factor, src) }

// Weight scales carry weight with a 0.1 floor, optionally rounded to one
// decimal.
func Weight(ratio, factor, src float64, round bool) float64 {
	v := ratio * factor * src
	if round {
		v = Round(v, 1)
	}
	if v < WeightFloor {
		return WeightFloor
	}
	return v
}

// Float scales an unfloored float attribute such as speed or stagger,
// rounded to two decimals.
func Float(factor, src float64) float64 {
	v := Round(factor*src, 2)
	if v < 0 {
		return 0
	}
	return v
}

// Warmth derives a warmth rating from the item's share of the whole set:
// factor * item/set * warmthScale.
func Warmth(factor float64, item, set int, warmthScale float64) float64 {
	if set <= 0 {
		return 0
	}
	return Round(factor*float64(item)/float64(set)*warmthScale, 2)
}

// Coverage is the item's covered share of the set, scaled by factor.
func Coverage(factor float64, item, set int) float64 {
	if set <= 0 {
		return 0
	}
	return Round(factor*float64(item)/float64(set), 4)
}

// MaterialCount scales a recipe ingredient count, never below one.
func MaterialCount(ratio float64, count int) int {
	v := int(math.Round(ratio * float64(count)))
	if v < 1 {
		return 1
	}
	return v
}

// Factor converts a UI percent slider into the stored fraction.
func Factor(percent float64) float64 {
	return Round(0.01*percent, 4)
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
