package catalogs

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"taproom.ai/internal/sim/world/feature/orders"
)

//go:embed recipes.json
var builtinRecipes []byte

type Catalogs struct {
	Recipes RecipeCatalog
}

type RecipeCatalog struct {
	ByName map[string]Recipe
	// Names is sorted so random picks are reproducible for a given seed.
	Names  []string
	Digest string
}

type Recipe struct {
	Drink         string
	Ingredients   orders.IngredientSet
	Prereqs       orders.IngredientSet
	TipMultiplier float64
}

type recipeDef struct {
	Drink         string   `json:"drink"`
	Ingredients   []string `json:"ingredients"`
	Prereqs       []string `json:"prereqs,omitempty"`
	TipMultiplier float64  `json:"tip_multiplier"`
}

// Load reads recipes.json from configDir.
func Load(configDir string) (*Catalogs, error) {
	raw, err := os.ReadFile(filepath.Join(configDir, "recipes.json"))
	if err != nil {
		return nil, err
	}
	var c Catalogs
	if err := parseRecipes(raw, &c.Recipes); err != nil {
		return nil, err
	}
	return &c, nil
}

// Builtin returns the recipe set compiled into the binary.
func Builtin() *Catalogs {
	var c Catalogs
	if err := parseRecipes(builtinRecipes, &c.Recipes); err != nil {
		panic(err)
	}
	return &c
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func parseRecipes(raw []byte, out *RecipeCatalog) error {
	out.Digest = sha256Hex(raw)

	var defs []recipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.ByName = map[string]Recipe{}
	out.Names = out.Names[:0]
	for _, d := range defs {
		if d.Drink == "" {
			return fmt.Errorf("recipes.json: empty drink")
		}
		if _, dup := out.ByName[d.Drink]; dup {
			return fmt.Errorf("recipes.json: duplicate drink %q", d.Drink)
		}
		ing, err := orders.ParseSet(d.Ingredients)
		if err != nil {
			return fmt.Errorf("recipes.json: %s: %w", d.Drink, err)
		}
		if ing.Empty() {
			return fmt.Errorf("recipes.json: %s: no ingredients", d.Drink)
		}
		pre, err := orders.ParseSet(d.Prereqs)
		if err != nil {
			return fmt.Errorf("recipes.json: %s: %w", d.Drink, err)
		}
		tm := d.TipMultiplier
		if tm <= 0 {
			tm = 1
		}
		out.ByName[d.Drink] = Recipe{Drink: d.Drink, Ingredients: ing, Prereqs: pre, TipMultiplier: tm}
		out.Names = append(out.Names, d.Drink)
	}
	sort.Strings(out.Names)
	return nil
}

func (c RecipeCatalog) Get(drink string) (Recipe, bool) {
	r, ok := c.ByName[drink]
	return r, ok
}

// IngredientsFor returns the required ingredient set of drink.
func (c RecipeCatalog) IngredientsFor(drink string) (orders.IngredientSet, bool) {
	r, ok := c.ByName[drink]
	return r.Ingredients, ok
}

func (c RecipeCatalog) HasAlcohol(drink string) bool {
	r, ok := c.ByName[drink]
	return ok && r.Ingredients.HasAlcohol()
}

// Available filters names to the drinks this catalog knows about. An empty
// filter means every drink.
func (c RecipeCatalog) Available(filter []string) []string {
	if len(filter) == 0 {
		out := make([]string, len(c.Names))
		copy(out, c.Names)
		return out
	}
	var out []string
	for _, n := range filter {
		if _, ok := c.ByName[n]; ok {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
