package world

// tickLeave walks to the door every tick. Despawning is the spawner's job.
func (w *World) tickLeave(a *Agent, dt float64) {
	if a.AtExit {
		return
	}
	if w.travelToward(a, w.cfg.Layout.Exit.Center(), dt) {
		a.AtExit = true
	}
}
