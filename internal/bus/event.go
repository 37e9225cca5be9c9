package bus

import "time"

// Event kinds. Subscribers filter on the namespace prefix up to and
// including the first dot ("remote.", "conn.", "store.").
const (
	KindNewMessage          = "remote.newMessage"
	KindMessageStatusUpdate = "remote.messageStatusUpdate"
	KindConnStatusChanged   = "conn.status_changed"
	KindStoreChanged        = "store.changed"
)

// RemotePrefix namespaces events forwarded from the event channel.
const RemotePrefix = "remote."

// Event is something that happened somewhere in the client.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent stamps an event of the given kind with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
