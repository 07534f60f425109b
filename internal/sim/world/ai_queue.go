package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/catalogs"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/tuning"
	"taproom.ai/internal/sim/world/feature/orders"
)

func (w *World) tickQueueForRegister(a *Agent, dt float64) {
	if a.Order == nil {
		return
	}
	qs := a.Blocks.Queue
	if w.gate(a, ai.SiteQueue, dt, ai.IntervalSearch) {
		st := w.acquireLine(a, &qs.Line, KindRegister)
		if st == nil {
			w.wanderPause(a, ai.QueueForRegister)
			return
		}
		step := w.advanceLine(a, &qs.Line, st)
		if step.AtFront {
			a.Patience.Enable(w.tun.MaxPatience())
			a.Ctrl.RequestTransition(ai.AtRegisterWaitForDrink, false)
		}
	}
	w.walkToSpot(a, &qs.Line, dt)
}

func (w *World) tickAtRegister(a *Agent, dt float64) {
	if a.Order == nil {
		return
	}
	qs := a.Blocks.Queue
	if qs == nil {
		a.Ctrl.RequestTransition(ai.QueueForRegister, false)
		return
	}
	w.walkToSpot(a, &qs.Line, dt)
	if !w.gate(a, ai.SiteFulfilment, dt, ai.IntervalFulfilment) {
		return
	}

	st, ok := w.stations.Get(qs.Line.Station)
	if !ok || st.Register == nil || st.Line.PositionOf(a.Ref) < 0 {
		qs.Line.clear()
		a.Ctrl.RequestTransition(ai.QueueForRegister, false)
		return
	}
	if st.Register.Slot.IsNil() {
		return
	}
	item, ok := w.items.Get(st.Register.Slot)
	if !ok {
		st.Register.Slot = entity.Nil
		return
	}
	if !item.IsDrink() {
		return
	}
	recipe, ok := w.catalogs.Recipes.Get(a.Order.Drink)
	if !ok {
		w.logger.Printf("ERROR ai: agent=%s ordered unknown drink %q", a.Ref, a.Order.Drink)
		return
	}
	if !orders.Validate(recipe.Ingredients, item.Ingredients, w.rules(), a.Order.AlcoholicConsumed) {
		w.totals.Rejected++
		w.note(a, "rejected", item.Drink)
		return
	}

	price, tip := w.priceFor(recipe, a.Patience.Pct())
	mult := 1.0
	if served, ok := w.catalogs.Recipes.Get(item.Drink); ok {
		mult = served.TipMultiplier
	}
	a.Order.Charge(price, tip, mult)

	itemRef := st.Register.Slot
	st.Register.Slot = entity.Nil
	item.Register = entity.Nil
	item.Holder = a.Ref
	a.Held = itemRef
	delete(w.bartender, st.Ref)

	w.leaveLine(a, &qs.Line)
	a.Order.Accept()
	a.Patience.Disable()
	w.totals.DrinksSold++
	w.note(a, "served", item.Drink)
	a.Ctrl.RequestTransition(ai.Drinking, false)
}

// priceFor prices one drink of recipe for a customer with patience pct left.
func (w *World) priceFor(recipe catalogs.Recipe, patiencePct float64) (price, tip int) {
	return orders.Price(orders.PriceInput{
		Ingredients:    recipe.Ingredients.Count(),
		Prereqs:        recipe.Prereqs.Count(),
		CostMultiplier: w.tun.DrinkCostMultiplier,
		Speakeasy:      w.tun.HasUpgrade(tuning.UpgradeSpeakeasy),
		MaxPathLength:  w.maxPathLen,
		PatiencePct:    patiencePct,
	})
}
