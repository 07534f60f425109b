package world

import (
	"fmt"

	"taproom.ai/internal/sim/ai"
)

func (w *World) tickPay(a *Agent, dt float64) {
	if a.Order == nil {
		return
	}
	ps := a.Blocks.Pay
	if w.gate(a, ai.SitePay, dt, ai.IntervalSearch) {
		st := w.acquireLine(a, &ps.Line, KindRegister)
		if st == nil {
			w.wanderPause(a, ai.Pay)
			return
		}
		step := w.advanceLine(a, &ps.Line, st)
		if step.AtFront && !ps.Timer.Initialized {
			ps.Timer.Set(w.tun.PayProcessTime)
		}
	}
	w.walkToSpot(a, &ps.Line, dt)
	if !ps.Timer.Initialized || !ps.Timer.Pass(dt) {
		return
	}

	tab, tip := a.Order.SettleTab()
	w.bank.DepositWithTip(tab, tip, fmt.Sprintf("tab %s", a.Ref))
	w.totals.TabsPaid++
	w.note(a, "paid", fmt.Sprintf("%d+%d", tab, tip))
	w.leaveLine(a, &ps.Line)
	a.Ctrl.RequestTransition(ai.Leave, false)
}
