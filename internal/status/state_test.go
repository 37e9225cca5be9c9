package status

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wpp-client/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Idle {
		t.Errorf("initial state = %s, want IDLE", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Idle, Connecting},
		{Idle, Closed},
		{Connecting, Connected},
		{Connecting, Reconnecting},
		{Connected, Reconnecting},
		{Connected, Closed},
		{Reconnecting, Connecting},
		{Reconnecting, Closed},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Idle, Connected},
		{Idle, Reconnecting},
		{Reconnecting, Connected},
		{Closed, Connecting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s -> %s) should fail", tt.from, tt.to)
			}
			if m.Current() != tt.from {
				t.Errorf("state = %s, want unchanged %s", m.Current(), tt.from)
			}
		})
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("conn.", 10)
	defer unsub()

	m := NewMachine(b)
	cause := errors.New("dial refused")
	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}
	if err := m.TransitionWithCause(Reconnecting, cause); err != nil {
		t.Fatal(err)
	}

	want := []StatusChange{{From: Idle, To: Connecting}, {From: Connecting, To: Reconnecting, Err: cause}}
	for _, w := range want {
		select {
		case evt := <-ch:
			if evt.Kind != bus.KindConnStatusChanged {
				t.Errorf("event kind = %q, want %s", evt.Kind, bus.KindConnStatusChanged)
			}
			change, ok := evt.Payload.(StatusChange)
			if !ok {
				t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
			}
			if change != w {
				t.Errorf("change = %+v, want %+v", change, w)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for status event")
		}
	}
	if !errors.Is(m.LastError(), cause) {
		t.Errorf("LastError() = %v, want %v", m.LastError(), cause)
	}
}

func TestSameStateIsSilent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("conn.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Idle); err != nil {
		t.Fatalf("Transition(IDLE -> IDLE) error = %v", err)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestReconnectCycle walks the loop the channel runs after a dropped socket.
func TestReconnectCycle(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connected)

	for _, s := range []State{Reconnecting, Connecting, Connected, Closed} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
}

func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Idle:         {},
		Connecting:   {Connecting},
		Connected:    {Connecting, Connected},
		Reconnecting: {Connecting, Reconnecting},
		Closed:       {Closed},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
