// Package rebalance turns a change request into per-origin patch documents:
// it matches every target to a template item, derives its share of the
// template set from the curve and writes the scale directives.
package rebalance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/l1jgo/itemforge/internal/curve"
	"github.com/l1jgo/itemforge/internal/variant"
)

// ErrNoSource marks a target with no matching template item.
var ErrNoSource = errors.New("rebalance: no matching source item")

// Config is the validated, read-only engine configuration.
type Config struct {
	Curve *curve.Curve
	Base  *BaseSet
	Hints variant.Hints
	// Interesting keywords take part in set matching and keyword swaps.
	Interesting   []string
	WarmthScale   float64
	ExcludeShield bool
	RoundWeight   bool
}

// NewConfig validates c and returns a private copy. Any error is a
// configuration error: the engine must not run.
func NewConfig(c Config) (*Config, error) {
	if c.Curve == nil {
		return nil, errors.New("rebalance config: no curve")
	}
	if err := c.Curve.Validate(); err != nil {
		return nil, fmt.Errorf("rebalance config: %w", err)
	}
	if c.Base == nil {
		return nil, errors.New("rebalance config: no base set")
	}
	if err := c.Base.Validate(); err != nil {
		return nil, fmt.Errorf("rebalance config: %w", err)
	}
	if c.WarmthScale < 0 {
		return nil, fmt.Errorf("rebalance config: negative warmth scale %v", c.WarmthScale)
	}
	out := c
	out.Interesting = slices.Clone(c.Interesting)
	return &out, nil
}
