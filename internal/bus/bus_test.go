package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("remote.", 10)
	defer unsub()

	b.Emit(KindNewMessage, "payload")

	select {
	case evt := <-ch:
		if evt.Kind != KindNewMessage {
			t.Errorf("got kind %q, want %s", evt.Kind, KindNewMessage)
		}
		if evt.Payload != "payload" {
			t.Errorf("got payload %v", evt.Payload)
		}
		if evt.Timestamp.IsZero() {
			t.Error("event not timestamped")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("store.", 10)
	defer unsub()

	b.Emit(KindConnStatusChanged, nil)
	b.Emit(KindStoreChanged, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindStoreChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, KindStoreChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmptyNamespaceMatchesAll(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 10)
	defer unsub()

	b.Emit(KindConnStatusChanged, nil)
	b.Emit(KindMessageStatusUpdate, nil)

	for _, want := range []string{KindConnStatusChanged, KindMessageStatusUpdate} {
		select {
		case evt := <-ch:
			if evt.Kind != want {
				t.Errorf("got %q, want %q", evt.Kind, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conn.", 10)
	unsub()
	unsub()

	b.Emit(KindConnStatusChanged, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("remote.", 1)
	defer unsub()

	b.Emit(KindNewMessage, 1)
	b.Emit(KindNewMessage, 2)

	evt := <-ch
	if evt.Payload != 1 {
		t.Errorf("got payload %v, want 1", evt.Payload)
	}
	if got := b.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}
}
