// Package orders covers the drink order lifecycle: ingredients, the
// validation oracle that decides whether a served drink is acceptable, and
// pricing.
package orders

import (
	"fmt"
	"math/bits"
	"strings"
)

type Ingredient uint8

const (
	IceCubes Ingredient = iota
	IceCrushed
	Soda
	Water
	Tonic
	Lime
	Salt
	MintLeaf

	Rum
	Tequila
	Vodka
	Whiskey
	Gin
	TripleSec
	Cointreau

	Bitters
	Lemon
	LemonJuice
	LimeJuice
	CranJuice
	PinaJuice
	CoconutCream
	SimpleSyrup

	ingredientCount
)

var ingredientNames = [ingredientCount]string{
	"IceCubes", "IceCrushed", "Soda", "Water", "Tonic", "Lime", "Salt", "MintLeaf",
	"Rum", "Tequila", "Vodka", "Whiskey", "Gin", "TripleSec", "Cointreau",
	"Bitters", "Lemon", "LemonJuice", "LimeJuice", "CranJuice", "PinaJuice", "CoconutCream", "SimpleSyrup",
}

func (i Ingredient) String() string {
	if i >= ingredientCount {
		return fmt.Sprintf("Ingredient(%d)", uint8(i))
	}
	return ingredientNames[i]
}

// IsAlcohol reports whether i is stocked as a single-alcohol bottle.
// Cointreau is a TripleSec alternative and does not count; Bitters does.
func (i Ingredient) IsAlcohol() bool {
	switch i {
	case Rum, Tequila, Vodka, Whiskey, Gin, TripleSec, Bitters:
		return true
	}
	return false
}

func ParseIngredient(name string) (Ingredient, bool) {
	for i, n := range ingredientNames {
		if strings.EqualFold(n, name) {
			return Ingredient(i), true
		}
	}
	return 0, false
}

// IngredientSet is a bitset over Ingredient.
type IngredientSet uint32

func SetOf(items ...Ingredient) IngredientSet {
	var s IngredientSet
	for _, it := range items {
		s = s.With(it)
	}
	return s
}

func (s IngredientSet) With(i Ingredient) IngredientSet { return s | 1<<i }
func (s IngredientSet) Has(i Ingredient) bool           { return s&(1<<i) != 0 }
func (s IngredientSet) Count() int                      { return bits.OnesCount32(uint32(s)) }
func (s IngredientSet) Empty() bool                     { return s == 0 }

func (s IngredientSet) Items() []Ingredient {
	var out []Ingredient
	for i := Ingredient(0); i < ingredientCount; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s IngredientSet) HasAlcohol() bool {
	for _, it := range s.Items() {
		if it.IsAlcohol() {
			return true
		}
	}
	return false
}

// AllAlcohol reports whether s is non-empty and every member is a spirit.
func (s IngredientSet) AllAlcohol() bool {
	if s.Empty() {
		return false
	}
	for _, it := range s.Items() {
		if !it.IsAlcohol() {
			return false
		}
	}
	return true
}

func (s IngredientSet) String() string {
	items := s.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

func ParseSet(names []string) (IngredientSet, error) {
	var s IngredientSet
	for _, n := range names {
		it, ok := ParseIngredient(n)
		if !ok {
			return 0, fmt.Errorf("unknown ingredient %q", n)
		}
		s = s.With(it)
	}
	return s, nil
}
