package apply

import (
	"slices"

	"github.com/l1jgo/itemforge/internal/catalog"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/scale"
)

// Condition functions whose parameter names the item a recipe produces.
var itemConditions = []string{"GetItemCount", "GetEquipped", "GetIsID", "IsWorn"}

// recipe reconciles the target's recipes of one kind with the source's.
// Fabricated recipes carry a zero id; they exist only for this session.
func (a *Applier) recipe(t, src *catalog.Entry, kind catalog.RecipeKind, opt patch.RecipeOption, ratio float64, p Permissions) {
	dst := a.cat.RecipesFor(t.ID, kind)
	if len(dst) == 0 {
		if !opt.New || !p.CreateRecipes {
			return
		}
		bench := a.cfg.CraftBench
		if kind == catalog.RecipeTemper {
			bench = a.cfg.TemperBench
		}
		r := &catalog.Recipe{Kind: kind, Created: t.ID, Workbench: bench}
		a.cat.AddRecipe(r)
		dst = []*catalog.Recipe{r}
	}

	var from *catalog.Recipe
	if rs := a.cat.RecipesFor(src.ID, kind); len(rs) > 0 {
		from = rs[0]
	}
	for _, r := range dst {
		if opt.Free {
			r.Items = nil
			continue
		}
		if from == nil {
			continue
		}
		r.Items = make([]catalog.Material, len(from.Items))
		for i, m := range from.Items {
			r.Items[i] = catalog.Material{Item: m.Item, Count: scale.MaterialCount(ratio, m.Count)}
		}
		r.Conditions = make([]catalog.Condition, len(from.Conditions))
		for i, c := range from.Conditions {
			if c.Param == src.ID && slices.Contains(itemConditions, c.Function) {
				c.Param = t.ID
			}
			r.Conditions[i] = c
		}
	}
}
