package world

import (
	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/world/feature/orders"
)

func (w *World) tickDrinking(a *Agent, dt float64) {
	if a.Order == nil || a.Order.State != orders.DrinkingNow {
		return
	}
	ds := a.Blocks.Drink
	if !ds.HasTarget {
		if !w.gate(a, ai.SiteDrink, dt, ai.IntervalIdle) {
			return
		}
		ds.Timer.Set(w.tun.MaxDrinkTime + w.rnd.Float(0.1, 1.0))
		ds.Target = w.pickWanderSpot(a)
		ds.HasTarget = true
	}
	if !w.travelToward(a, ds.Target, dt) {
		return
	}
	if !ds.Timer.Pass(dt) {
		return
	}

	if !a.Held.IsNil() {
		w.items.Remove(a.Held)
		a.Held = entity.Nil
	}
	a.Order.Finish(w.catalogs.Recipes.HasAlcohol(a.Order.Drink))
	a.Speed = w.rollSpeed(a)
	ds.HasTarget = false

	if !a.Order.WantsMore() {
		a.Order.State = orders.DoneDrinking
		a.Ctrl.RequestTransition(ai.Pay, false)
		return
	}
	if a.Ctrl.Abilities.PlayJukebox && w.rnd.Bool() {
		a.Ctrl.RequestTransition(ai.PlayJukebox, false)
		return
	}
	w.newOrder(a)
	a.Ctrl.RequestTransition(ai.QueueForRegister, false)
}

func (w *World) newOrder(a *Agent) {
	a.Order.Reorder(w.randomDrink())
}
