package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/itemforge/internal/curve"
	"github.com/l1jgo/itemforge/internal/slot"
)

// CurveTable indexes weight curves by name.
type CurveTable struct {
	byName map[string]*curve.Curve
}

// Get returns a curve by name, or nil if not found.
func (t *CurveTable) Get(name string) *curve.Curve {
	return t.byName[name]
}

// Names returns the curve names, sorted.
func (t *CurveTable) Names() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of curves loaded.
func (t *CurveTable) Count() int {
	return len(t.byName)
}

// --- YAML loading ---

type curveNode struct {
	Slot     string      `yaml:"slot"`
	Weight   int         `yaml:"weight"`
	Children []curveNode `yaml:"children"`
}

type curveEntry struct {
	Name  string      `yaml:"name"`
	Nodes []curveNode `yaml:"nodes"`
}

type curveFile struct {
	Curves []curveEntry `yaml:"curves"`
}

// LoadCurveTable loads weight curves from YAML and validates each one.
func LoadCurveTable(path string) (*CurveTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("curve: read %s: %w", path, err)
	}
	var f curveFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("curve: parse %s: %w", path, err)
	}

	t := &CurveTable{byName: make(map[string]*curve.Curve, len(f.Curves))}
	for _, ce := range f.Curves {
		if _, dup := t.byName[ce.Name]; dup {
			return nil, fmt.Errorf("curve: duplicate curve %q", ce.Name)
		}
		c := &curve.Curve{Name: ce.Name}
		for _, n := range ce.Nodes {
			node, err := n.build()
			if err != nil {
				return nil, fmt.Errorf("curve %s: %w", ce.Name, err)
			}
			c.Roots = append(c.Roots, node)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("curve %s: %w", ce.Name, err)
		}
		t.byName[ce.Name] = c
	}
	return t, nil
}

func (n *curveNode) build() (*curve.Node, error) {
	s, err := slot.ParseSlot(n.Slot)
	if err != nil {
		return nil, err
	}
	out := &curve.Node{Slot: s, Weight: n.Weight}
	for i := range n.Children {
		ch, err := n.Children[i].build()
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, ch)
	}
	return out, nil
}
