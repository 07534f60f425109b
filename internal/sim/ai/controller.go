package ai

// Controller owns an agent's committed state and at most one pending
// transition. Handlers request; the world commits all requests at a single
// boundary per tick.
type Controller struct {
	State     State
	Abilities Abilities

	// Resume is the state a detour (wander, bathroom) should hand control
	// back to. Set by whoever starts the detour.
	Resume State

	next       State
	override   bool
	pending    bool
	needsReset bool
}

func NewController(initial State, ab Abilities) Controller {
	return Controller{State: initial, Abilities: ab, Resume: initial, needsReset: true}
}

// RequestTransition records s as the next state. Without override a second
// request in the same tick is refused; with override it replaces the first.
func (c *Controller) RequestTransition(s State, override bool) bool {
	if c.pending && !override {
		return false
	}
	c.next = s
	c.override = override
	c.pending = true
	return true
}

func (c *Controller) Pending() (State, bool) { return c.next, c.pending }

// PendingOverride reports whether the pending transition came from an override.
func (c *Controller) PendingOverride() bool { return c.pending && c.override }

// Commit applies the pending transition. The new state's transient data must
// be reset before handlers run again (see NeedsReset).
func (c *Controller) Commit() (from, to State, ok bool) {
	if !c.pending {
		return c.State, c.State, false
	}
	from = c.State
	c.State = c.next
	c.pending = false
	c.override = false
	c.needsReset = true
	return from, c.State, true
}

// Force sets the state immediately, dropping any pending request.
func (c *Controller) Force(s State) (from State, changed bool) {
	from = c.State
	c.pending = false
	c.override = false
	if from == s {
		return from, false
	}
	c.State = s
	c.needsReset = true
	return from, true
}

func (c *Controller) NeedsReset() bool { return c.needsReset }
func (c *Controller) ClearReset()      { c.needsReset = false }

// Active reports whether the state handler may run this tick.
func (c *Controller) Active() bool { return !c.pending && !c.needsReset }
