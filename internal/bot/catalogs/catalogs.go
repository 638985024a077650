package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalogs is the client-side copy of the world's item/block/recipe/mob data.
// The bot loads it from the same JSON files the server ships and verifies the
// palette digests against WELCOME.
type Catalogs struct {
	Blocks  BlockCatalog
	Items   ItemCatalog
	Recipes RecipeCatalog
	Mobs    MobCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID        string `json:"id"`
	Solid     bool   `json:"solid"`
	Breakable bool   `json:"breakable"`
	DropsItem string `json:"drops_item,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // "BLOCK","TOOL","MATERIAL","FOOD","MECH"
	PlaceAs  string `json:"place_as,omitempty"`
	EdibleHP int    `json:"edible_hp,omitempty"`
}

type RecipeCatalog struct {
	ByID   map[string]RecipeDef
	Digest string
}

type RecipeDef struct {
	RecipeID  string      `json:"recipe_id"`
	Station   string      `json:"station"` // "HAND","CRAFTING","FURNACE"
	Inputs    []ItemCount `json:"inputs"`
	Outputs   []ItemCount `json:"outputs"`
	Tier      int         `json:"tier"`
	TimeTicks int         `json:"time_ticks"`
}

type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

type MobCatalog struct {
	Defs   map[string]MobDef
	Digest string
}

type MobDef struct {
	ID        string `json:"id"`
	Hostile   bool   `json:"hostile"`
	DropsItem string `json:"drops_item,omitempty"`
	DropCount int    `json:"drop_count,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), &c.Recipes); err != nil {
		return nil, err
	}
	if err := loadMobs(filepath.Join(configDir, "mobs.json"), &c.Mobs); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// AIR must exist and be palette id 0, same as the server.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadRecipes(path string, out *RecipeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []RecipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.ByID = map[string]RecipeDef{}
	for _, r := range defs {
		if r.RecipeID == "" {
			return fmt.Errorf("recipes.json: empty recipe_id")
		}
		out.ByID[r.RecipeID] = r
	}
	return nil
}

func loadMobs(path string, out *MobCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Worlds without mobs ship no mobs.json.
		if os.IsNotExist(err) {
			out.Digest = sha256Hex(nil)
			out.Defs = map[string]MobDef{}
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []MobDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("mobs.json: %w", err)
	}
	out.Defs = map[string]MobDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("mobs.json: empty id")
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
