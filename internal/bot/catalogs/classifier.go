package catalogs

import "sort"

// Classification answers "how do I obtain one of these" for the goal planner.
// Precedence mirrors the planner's node kinds: a minable block drop beats a
// furnace recipe beats a mob drop; anything else is crafted (possibly with no
// known recipe). All lookups are pure reads over the loaded catalogs.

// BlockSource returns the breakable block type that drops the item.
func (c *Catalogs) BlockSource(item string) (string, bool) {
	for _, id := range c.Blocks.Palette {
		d := c.Blocks.Defs[id]
		if d.Breakable && d.DropsItem == item {
			return d.ID, true
		}
	}
	return "", false
}

// SmeltInput returns the precursor item of the furnace recipe producing the
// item. Only single-input furnace recipes count as smelting.
func (c *Catalogs) SmeltInput(item string) (string, bool) {
	for _, id := range c.recipeIDs() {
		r := c.Recipes.ByID[id]
		if r.Station != "FURNACE" || len(r.Inputs) != 1 {
			continue
		}
		for _, out := range r.Outputs {
			if out.Item == item {
				return r.Inputs[0].Item, true
			}
		}
	}
	return "", false
}

// HuntSource returns the mob type that drops the item.
func (c *Catalogs) HuntSource(item string) (string, bool) {
	ids := make([]string, 0, len(c.Mobs.Defs))
	for id := range c.Mobs.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if c.Mobs.Defs[id].DropsItem == item {
			return id, true
		}
	}
	return "", false
}

// Recipe returns the crafting inputs for the item, in recipe order.
func (c *Catalogs) Recipe(item string) ([]ItemCount, bool) {
	for _, id := range c.recipeIDs() {
		r := c.Recipes.ByID[id]
		if r.Station == "FURNACE" {
			continue
		}
		for _, out := range r.Outputs {
			if out.Item == item {
				inputs := make([]ItemCount, len(r.Inputs))
				copy(inputs, r.Inputs)
				return inputs, true
			}
		}
	}
	return nil, false
}

// recipeIDs returns recipe ids in sorted order so classification is
// deterministic regardless of map iteration.
func (c *Catalogs) recipeIDs() []string {
	ids := make([]string, 0, len(c.Recipes.ByID))
	for id := range c.Recipes.ByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
