package schedule

// GateKind identifies one of the guarded switches.
type GateKind string

const (
	GateGroup    GateKind = "group"
	GateTestKind GateKind = "kind"
)

// GateState is the state of a single gate.
type GateState int

const (
	GateIdle GateState = iota
	GatePendingConfirmation
)

func (s GateState) String() string {
	switch s {
	case GateIdle:
		return "idle"
	case GatePendingConfirmation:
		return "pending_confirmation"
	default:
		return "unknown"
	}
}

// Gate holds a destructive switch until it is confirmed or cancelled.
type Gate struct {
	kind   GateKind
	state  GateState
	from   string
	to     string
	action func() error
}

// NewGate returns an idle gate.
func NewGate(kind GateKind) *Gate {
	return &Gate{kind: kind}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	return g.state
}

// Pending returns the recorded switch while confirmation is pending.
func (g *Gate) Pending() (from, to string, ok bool) {
	if g.state != GatePendingConfirmation {
		return "", "", false
	}
	return g.from, g.to, true
}

// Request asks to switch from one value to another. Switching to the current
// value runs nothing and drops any pending switch. When empty is true the
// action runs immediately;
// otherwise the gate holds it and returns a *TransitionConflict. A newer
// request replaces a pending one.
func (g *Gate) Request(from, to string, empty bool, action func() error) error {
	if from == to {
		g.reset()
		return nil
	}
	if empty {
		g.reset()
		return action()
	}
	g.state = GatePendingConfirmation
	g.from = from
	g.to = to
	g.action = action
	return &TransitionConflict{Gate: g.kind, From: from, To: to}
}

// Confirm runs the held action and returns the gate to idle.
func (g *Gate) Confirm() error {
	if g.state != GatePendingConfirmation {
		return ErrNothingPending
	}
	action := g.action
	g.reset()
	return action()
}

// Cancel drops the held action and returns the gate to idle.
func (g *Gate) Cancel() error {
	if g.state != GatePendingConfirmation {
		return ErrNothingPending
	}
	g.reset()
	return nil
}

func (g *Gate) reset() {
	g.state = GateIdle
	g.from = ""
	g.to = ""
	g.action = nil
}

// Guard groups the two independent gates.
type Guard struct {
	Group *Gate
	Kind  *Gate
}

// NewGuard returns a guard with both gates idle.
func NewGuard() *Guard {
	return &Guard{
		Group: NewGate(GateGroup),
		Kind:  NewGate(GateTestKind),
	}
}

// Gate returns the gate for kind, or nil if kind is unknown.
func (g *Guard) Gate(kind GateKind) *Gate {
	switch kind {
	case GateGroup:
		return g.Group
	case GateTestKind:
		return g.Kind
	default:
		return nil
	}
}
