package apply

// Permissions gate which record fields an applier honours. A field is
// applied only when it is present and its permission is set.
type Permissions struct {
	Armor    bool `toml:"armor"`
	Weight   bool `toml:"weight"`
	Warmth   bool `toml:"warmth"`
	Coverage bool `toml:"coverage"`
	Damage   bool `toml:"damage"`
	Speed    bool `toml:"speed"`
	Stagger  bool `toml:"stagger"`
	Value    bool `toml:"value"`
	Keywords bool `toml:"keywords"`
	Slots    bool `toml:"slots"`
	Temper   bool `toml:"temper"`
	Craft    bool `toml:"craft"`
	// CreateRecipes allows fabricating a recipe when the target has none.
	CreateRecipes bool `toml:"create_recipes"`
	Loot          bool `toml:"loot"`
}

// AllowAll grants every field.
func AllowAll() Permissions {
	return Permissions{
		Armor: true, Weight: true, Warmth: true, Coverage: true,
		Damage: true, Speed: true, Stagger: true, Value: true,
		Keywords: true, Slots: true, Temper: true, Craft: true,
		CreateRecipes: true, Loot: true,
	}
}
