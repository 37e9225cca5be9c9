package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MessageType is the backend's message kind tag.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeDocument MessageType = "document"
	TypeOutgoing MessageType = "outgoing"
)

// Status is the delivery status of an outgoing message.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// Message is a single message as served by the backend.
type Message struct {
	ID        string      `json:"_id,omitempty"`
	WaID      string      `json:"wa_id"`
	From      string      `json:"from,omitempty"`
	Text      string      `json:"text"`
	Timestamp Timestamp   `json:"timestamp"`
	Type      MessageType `json:"type"`
	Status    Status      `json:"status,omitempty"`
	MetaMsgID string      `json:"meta_msg_id,omitempty"`

	// Raw is the body the backend returned when it created the message.
	Raw json.RawMessage `json:"-"`
}

// Payload returns the message in the backend's own encoding when it is
// known, so re-emitting it keeps fields this client does not model.
func (m Message) Payload() any {
	if len(m.Raw) > 0 {
		return m.Raw
	}
	return m
}

// IsOutgoing reports whether the message was sent by this side of the
// conversation. A message without a sender counts as outgoing.
func (m Message) IsOutgoing() bool {
	return m.Type == TypeOutgoing || m.From == ""
}

// Chat is a conversation summary as served by the backend.
type Chat struct {
	WaID        string   `json:"wa_id"`
	ProfileName string   `json:"profile_name,omitempty"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	UnreadCount int      `json:"unreadCount"`
}

// SendRequest is the body of POST /api/messages/send.
type SendRequest struct {
	WaID string      `json:"wa_id"`
	Text string      `json:"text"`
	Type MessageType `json:"type"`
}

// Timestamp accepts RFC 3339 strings, zone-less ISO dates (read as local
// time), numeric strings and JSON numbers. Numbers are unix seconds, or
// milliseconds when larger than 1e12. Anything else decodes to the zero
// time so one bad value does not fail the whole response.
type Timestamp struct {
	time.Time
}

// localLayouts are the ISO forms without a zone, as JS Date accepts them.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	ts.Time = parseTimestamp(bytes.TrimSpace(b))
	return nil
}

func parseTimestamp(b []byte) time.Time {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return time.Time{}
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return time.Time{}
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return time.Time{}
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return t
			}
		}
		// A bare date is UTC midnight.
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			return t
		}
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n))
	}
	return time.Unix(int64(n), 0)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}
