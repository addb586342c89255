package catalog

import "slices"

// RecipeKind separates crafting from tempering recipes.
type RecipeKind int

const (
	RecipeCraft RecipeKind = iota
	RecipeTemper
)

func (k RecipeKind) String() string {
	if k == RecipeTemper {
		return "temper"
	}
	return "craft"
}

// Material is one recipe ingredient.
type Material struct {
	Item  FormID
	Count int
}

// Condition gates a recipe. Param is the item the function inspects, when
// the function takes one.
type Condition struct {
	Function string
	Param    FormID
	Value    float64
}

// Recipe is a crafting or tempering recipe producing Created.
type Recipe struct {
	ID         FormID
	Kind       RecipeKind
	Created    FormID
	Workbench  string
	Items      []Material
	Conditions []Condition
}

func (r *Recipe) clone() *Recipe {
	c := *r
	c.Items = slices.Clone(r.Items)
	c.Conditions = slices.Clone(r.Conditions)
	return &c
}

// AddRecipe attaches a recipe to the item it creates.
func (c *Catalog) AddRecipe(r *Recipe) {
	c.recipes[r.Created] = append(c.recipes[r.Created], r)
}

// RecipesFor returns the recipes of the given kind that create id.
func (c *Catalog) RecipesFor(id FormID, kind RecipeKind) []*Recipe {
	var out []*Recipe
	for _, r := range c.recipes[id] {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
