package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/wpp-client/internal/bus"
)

// State is the lifecycle state of the event channel connection.
type State string

const (
	Idle         State = "IDLE"
	Connecting   State = "CONNECTING"
	Connected    State = "CONNECTED"
	Reconnecting State = "RECONNECTING"
	Closed       State = "CLOSED"
)

var validTransitions = map[State][]State{
	Idle:         {Connecting, Closed},
	Connecting:   {Connected, Reconnecting, Closed},
	Connected:    {Reconnecting, Closed},
	Reconnecting: {Connecting, Closed},
	Closed:       {},
}

// Machine tracks connection state and announces every change on the bus.
type Machine struct {
	mu      sync.RWMutex
	current State
	lastErr error
	bus     *bus.Bus
}

// NewMachine returns a machine in the Idle state. b may be nil.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Idle, bus: b}
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LastError returns the cause attached to the most recent transition, if any.
func (m *Machine) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Transition moves to the given state.
func (m *Machine) Transition(to State) error {
	return m.TransitionWithCause(to, nil)
}

// TransitionWithCause moves to the given state and records why. Moving to
// the current state is a no-op and publishes nothing.
func (m *Machine) TransitionWithCause(to State, cause error) error {
	m.mu.Lock()
	from := m.current
	if from == to {
		m.mu.Unlock()
		return nil
	}
	if !slices.Contains(validTransitions[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	m.current = to
	m.lastErr = cause
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Emit(bus.KindConnStatusChanged, StatusChange{From: from, To: to, Err: cause})
	}
	return nil
}

// StatusChange is the payload of conn.status_changed events.
type StatusChange struct {
	From State
	To   State
	Err  error
}
