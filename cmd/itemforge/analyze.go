package main

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/data"
	"github.com/l1jgo/itemforge/internal/slot"
	"github.com/l1jgo/itemforge/internal/token"
	"github.com/l1jgo/itemforge/internal/variant"
)

var analyzeOrigins []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify item name words and group sets and variants",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeOrigins, "origin", nil, "limit to these scopes (all when empty)")
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	cat, err := data.LoadCatalog(a.cfg.Data.Catalog)
	if err != nil {
		return err
	}
	hints, err := data.LoadHints(a.cfg.Data.Hints)
	if err != nil {
		return err
	}
	kw, err := data.LoadKeywordSets(a.cfg.Data.Keywords)
	if err != nil {
		return err
	}

	var items []*catalog.Entry
	for _, e := range cat.Entries() {
		if e.Kind == catalog.KindOther {
			continue
		}
		if len(analyzeOrigins) == 0 || slices.Contains(analyzeOrigins, e.ID.Origin) {
			items = append(items, e)
		}
	}

	res := variant.Analyze(items, hints, token.Tokenizer{})
	for c := variant.CategoryNameAuthor; c <= variant.CategoryDescriptive; c++ {
		words := res.ByCategory(c)
		if len(words) == 0 {
			continue
		}
		sort.Slice(words, func(i, j int) bool { return words[i].Text < words[j].Text })
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = fmt.Sprintf("%s(%d)", w.Text, len(w.Items))
		}
		fmt.Printf("%-12s %s\n", c, strings.Join(texts, " "))
	}

	for typ, groups := range res.DynamicVariants(res.HintHashes(hints.Dynamic)) {
		for _, stages := range groups {
			if stages.Filled() < 2 {
				continue
			}
			names := make([]string, len(stages))
			for i, id := range stages {
				names[i] = "-"
				if e := res.Entry(id); e != nil {
					names[i] = e.Name
				}
			}
			fmt.Printf("variant %-10s %s\n", typ, strings.Join(names, " | "))
		}
	}

	var armor []*catalog.Entry
	for _, e := range items {
		if e.Kind == catalog.KindArmor {
			armor = append(armor, e)
		}
	}
	for _, anchor := range armor {
		if !anchor.Slots.Has(slot.Body) {
			continue
		}
		set := res.BestMatch(anchor, armor, kw.Interesting)
		fmt.Printf("set %s [%s]\n", anchor.Name, set.Mask())
		for _, p := range set.Picks {
			for _, c := range p.Ordered(anchor.Name) {
				fmt.Printf("  %-10s %s\n", p.Slot, c.Name)
			}
		}
	}
	return a.finish()
}
