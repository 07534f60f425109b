package orders

import "math"

const (
	pricePerIngredient = 5
	pricePerPrereq     = 10
	tipRate            = 0.8
	speakeasyPerTile   = 0.01
)

type PriceInput struct {
	Ingredients    int
	Prereqs        int
	CostMultiplier float64
	// Speakeasy bumps prices by 1% per tile of the longest path in the bar.
	Speakeasy     bool
	MaxPathLength int
	// PatiencePct is the customer's remaining patience in [0,1].
	PatiencePct float64
}

func BasePrice(ingredients, prereqs int) int {
	return pricePerIngredient*ingredients + pricePerPrereq*prereqs
}

func Price(in PriceInput) (price, tip int) {
	mult := in.CostMultiplier
	if mult <= 0 {
		mult = 1
	}
	speak := 1.0
	if in.Speakeasy && in.MaxPathLength > 0 {
		speak += speakeasyPerTile * float64(in.MaxPathLength)
	}
	price = int(mult * speak * float64(BasePrice(in.Ingredients, in.Prereqs)))
	pct := in.PatiencePct
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	tip = int(math.Ceil(float64(price) * tipRate * pct))
	if tip < 0 {
		tip = 0
	}
	return price, tip
}
