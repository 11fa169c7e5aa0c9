package ledger

import "sync"

// Op names a ledger mutation.
type Op string

const (
	OpSendCoins Op = "send_coins"
	OpRedeem    Op = "redeem"
)

// State is the lifecycle position of one operation.
//
//	Idle -> Submitting -> Succeeded -> Reconciling -> Idle
//	                   -> Failed -> Idle
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Reconciling
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Reconciling:
		return "reconciling"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// gate is the per-operation busy flag. Only one submission of an operation
// may be in flight at a time.
type gate struct {
	mu    sync.Mutex
	busy  bool
	state State
}

func (g *gate) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

func (g *gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	g.state = Idle
}

func (g *gate) set(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

func (g *gate) current() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
