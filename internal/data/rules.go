package data

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/itemforge/internal/variant"
)

type hintsFile struct {
	Dynamic     map[string][]string `yaml:"dynamic"`
	Static      []string            `yaml:"static"`
	Descriptive []string            `yaml:"descriptive"`
	Piece       []string            `yaml:"piece"`
}

// LoadHints loads the variant hint word lists.
func LoadHints(path string) (variant.Hints, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return variant.Hints{}, fmt.Errorf("hints: read %s: %w", path, err)
	}
	var f hintsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return variant.Hints{}, fmt.Errorf("hints: parse %s: %w", path, err)
	}
	for typ, words := range f.Dynamic {
		if len(words) == 0 {
			return variant.Hints{}, fmt.Errorf("hints: dynamic type %q has no stages", typ)
		}
	}
	return variant.Hints{
		Dynamic:     f.Dynamic,
		Static:      f.Static,
		Descriptive: f.Descriptive,
		Piece:       f.Piece,
	}, nil
}

// KeywordSets are the configured keyword classifications.
type KeywordSets struct {
	// Interesting keywords take part in set matching and keyword swaps.
	Interesting []string `yaml:"interesting"`
}

// Has reports whether kw is interesting.
func (k *KeywordSets) Has(kw string) bool {
	return slices.Contains(k.Interesting, kw)
}

// LoadKeywordSets loads keyword classifications from YAML.
func LoadKeywordSets(path string) (*KeywordSets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keywords: read %s: %w", path, err)
	}
	var k KeywordSets
	if err := yaml.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("keywords: parse %s: %w", path, err)
	}
	return &k, nil
}

// LootProfile is a named loot distribution preset.
type LootProfile struct {
	Name      string `yaml:"name"`
	Group     string `yaml:"group"`
	Rarity    string `yaml:"rarity"`
	Piece     bool   `yaml:"piece"`
	Sets      bool   `yaml:"sets"`
	MatchSets bool   `yaml:"match_sets"`
}

// LootProfileTable indexes loot profiles by name.
type LootProfileTable struct {
	byName map[string]*LootProfile
}

// Get returns a profile by name, or nil if not found.
func (t *LootProfileTable) Get(name string) *LootProfile {
	return t.byName[name]
}

// Count returns the number of profiles loaded.
func (t *LootProfileTable) Count() int {
	return len(t.byName)
}

type lootFile struct {
	Profiles []LootProfile `yaml:"loot_profiles"`
}

// LoadLootProfiles loads loot profiles from YAML.
func LoadLootProfiles(path string) (*LootProfileTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loot: read %s: %w", path, err)
	}
	var f lootFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("loot: parse %s: %w", path, err)
	}
	t := &LootProfileTable{byName: make(map[string]*LootProfile, len(f.Profiles))}
	for i := range f.Profiles {
		p := &f.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("loot: profile %d has no name", i)
		}
		t.byName[p.Name] = p
	}
	return t, nil
}
