package world

import (
	"fmt"

	"taproom.ai/internal/sim/ai"
	"taproom.ai/internal/sim/entity"
	"taproom.ai/internal/sim/world/feature/orders"
)

// BarRequest places a drink on a register from outside the world loop.
type BarRequest struct {
	Register    string
	Drink       string
	Ingredients []string
	Resp        chan error
}

// ServeDrink queues a BarRequest for the next tick boundary.
func (w *World) ServeDrink(req BarRequest) bool {
	select {
	case w.bar <- req:
		return true
	default:
		return false
	}
}

// drainBarRequests applies queued requests at the tick boundary.
func (w *World) drainBarRequests() {
	for {
		select {
		case req := <-w.bar:
			w.handleBarRequest(req)
		default:
			return
		}
	}
}

func (w *World) handleBarRequest(req BarRequest) {
	err := w.applyBarRequest(req)
	if req.Resp != nil {
		req.Resp <- err
	}
}

func (w *World) applyBarRequest(req BarRequest) error {
	st, ok := w.StationByName(req.Register)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStation, req.Register)
	}
	var set orders.IngredientSet
	if len(req.Ingredients) > 0 {
		s, err := orders.ParseSet(req.Ingredients)
		if err != nil {
			return err
		}
		set = s
	} else {
		s, ok := w.catalogs.Recipes.IngredientsFor(req.Drink)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDrink, req.Drink)
		}
		set = s
	}
	_, err := w.PlaceDrink(st.Ref, req.Drink, set)
	return err
}

// PlaceDrink puts a drink in a register's slot. World-loop goroutine only.
func (w *World) PlaceDrink(register entity.Ref, drink string, ingredients orders.IngredientSet) (entity.Ref, error) {
	st, ok := w.stations.Get(register)
	if !ok {
		return entity.Nil, ErrUnknownStation
	}
	if st.Register == nil {
		return entity.Nil, ErrNotRegister
	}
	if w.items.Valid(st.Register.Slot) {
		return entity.Nil, ErrSlotOccupied
	}
	ref := w.items.Insert(Item{Drink: drink, Ingredients: ingredients, Register: register})
	st.Register.Slot = ref
	return ref, nil
}

// stepBartender serves whoever waits at a register front once they have
// waited AutoBartenderDelay seconds.
func (w *World) stepBartender(dt float64) {
	if w.cfg.AutoBartenderDelay <= 0 {
		return
	}
	w.stations.Each(func(r entity.Ref, st *Station) bool {
		if st.Register == nil || w.items.Valid(st.Register.Slot) {
			return true
		}
		front, ok := st.Line.Front()
		if !ok {
			delete(w.bartender, r)
			return true
		}
		a, ok := w.agents.Get(front)
		if !ok || a.Ctrl.State != ai.AtRegisterWaitForDrink || a.Order == nil {
			delete(w.bartender, r)
			return true
		}
		w.bartender[r] += dt
		if w.bartender[r] < w.cfg.AutoBartenderDelay {
			return true
		}
		ing, ok := w.catalogs.Recipes.IngredientsFor(a.Order.Drink)
		if !ok {
			return true
		}
		if _, err := w.PlaceDrink(r, a.Order.Drink, ing); err == nil {
			delete(w.bartender, r)
		}
		return true
	})
}

// CleanToilet restores a toilet's uses.
func (w *World) CleanToilet(ref entity.Ref) error {
	st, ok := w.stations.Get(ref)
	if !ok || st.Toilet == nil {
		return ErrUnknownStation
	}
	st.Toilet.UsesRemaining = w.tun.ToiletUses
	return nil
}

// stepMaintenance keeps toilets usable when the auto bartender is on.
func (w *World) stepMaintenance() {
	if w.cfg.AutoBartenderDelay <= 0 {
		return
	}
	w.stations.Each(func(r entity.Ref, st *Station) bool {
		if st.Toilet != nil && st.Toilet.UsesRemaining == 0 && !st.Toilet.Occupied {
			_ = w.CleanToilet(r)
		}
		return true
	})
}
