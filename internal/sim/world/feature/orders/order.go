package orders

type State uint8

const (
	NeedsReset State = iota
	Ordering
	DrinkingNow
	DoneDrinking
)

func (s State) String() string {
	switch s {
	case NeedsReset:
		return "needs_reset"
	case Ordering:
		return "ordering"
	case DrinkingNow:
		return "drinking"
	case DoneDrinking:
		return "done"
	}
	return "unknown"
}

// Order is a customer's running tab and drink wish.
type Order struct {
	Drink             string `json:"drink"`
	State             State  `json:"state"`
	Remaining         int    `json:"remaining"`
	TabTotal          int    `json:"tab_total"`
	TipTotal          int    `json:"tip_total"`
	DrinksConsumed    int    `json:"drinks_consumed"`
	AlcoholicConsumed int    `json:"alcoholic_consumed"`
	BladderFill       int    `json:"bladder_fill"`
}

func New(drink string, remaining int) *Order {
	if remaining < 1 {
		remaining = 1
	}
	return &Order{Drink: drink, State: Ordering, Remaining: remaining}
}

// HasOrder is true while the customer is waiting for or holding a drink.
func (o *Order) HasOrder() bool {
	return o != nil && (o.State == Ordering || o.State == DrinkingNow)
}

func (o *Order) WantsMore() bool { return o != nil && o.Remaining > 0 }

// Reorder asks for another drink.
func (o *Order) Reorder(drink string) {
	o.Drink = drink
	o.State = Ordering
}

// Accept is called when the customer takes a drink at the register.
func (o *Order) Accept() { o.State = DrinkingNow }

// Finish is called when the customer drinks up.
func (o *Order) Finish(alcoholic bool) {
	o.State = DoneDrinking
	if o.Remaining > 0 {
		o.Remaining--
	}
	o.DrinksConsumed++
	o.BladderFill++
	if alcoholic {
		o.AlcoholicConsumed++
	}
}

// Charge adds a drink to the tab. The accumulated tip is then scaled by the
// drink's tip multiplier.
func (o *Order) Charge(price, tip int, tipMultiplier float64) {
	o.TabTotal += price
	o.TipTotal += tip
	if tipMultiplier > 0 {
		o.TipTotal = int(float64(o.TipTotal) * tipMultiplier)
	}
}

// SettleTab zeroes the tab and returns what was owed.
func (o *Order) SettleTab() (tab, tip int) {
	tab, tip = o.TabTotal, o.TipTotal
	o.TabTotal, o.TipTotal = 0, 0
	return tab, tip
}

func (o *Order) EmptyBladder() { o.BladderFill = 0 }
