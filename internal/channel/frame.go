package channel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Engine.IO v4 packet types.
const (
	engineOpen    byte = '0'
	engineClose   byte = '1'
	enginePing    byte = '2'
	enginePong    byte = '3'
	engineMessage byte = '4'
	engineNoop    byte = '6'
)

// Socket.IO v5 packet types carried inside an Engine.IO message.
const (
	socketConnect      byte = '0'
	socketDisconnect   byte = '1'
	socketEvent        byte = '2'
	socketAck          byte = '3'
	socketConnectError byte = '4'
)

var errEmptyFrame = errors.New("empty frame")

// frame is one decoded text frame. Socket is zero unless Engine is
// engineMessage.
type frame struct {
	Engine byte
	Socket byte
	Body   []byte
}

func decodeFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, errEmptyFrame
	}
	f := frame{Engine: b[0], Body: b[1:]}
	if f.Engine < engineOpen || f.Engine > engineNoop {
		return frame{}, fmt.Errorf("unknown engine packet type %q", f.Engine)
	}
	if f.Engine != engineMessage {
		return f, nil
	}
	if len(f.Body) == 0 {
		return frame{}, errors.New("message packet without socket type")
	}
	f.Socket = f.Body[0]
	f.Body = f.Body[1:]
	if f.Socket < socketConnect || f.Socket > socketConnectError {
		return frame{}, fmt.Errorf("unknown socket packet type %q", f.Socket)
	}
	return f, nil
}

// openPacket is the Engine.IO handshake body.
type openPacket struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

func decodeOpen(body []byte) (openPacket, error) {
	var p openPacket
	if err := json.Unmarshal(body, &p); err != nil {
		return p, fmt.Errorf("decode open packet: %w", err)
	}
	if p.SID == "" {
		return p, errors.New("open packet without sid")
	}
	return p, nil
}

// connectError is the body of a Socket.IO CONNECT_ERROR packet.
type connectError struct {
	Message string `json:"message"`
}

func decodeConnectError(body []byte) error {
	var ce connectError
	if err := json.Unmarshal(body, &ce); err != nil || ce.Message == "" {
		return fmt.Errorf("connect refused: %s", body)
	}
	return fmt.Errorf("connect refused: %s", ce.Message)
}

var errOtherNamespace = errors.New("event on a non-default namespace")

// decodeEvent splits a Socket.IO event body into its name and first
// argument. Events addressed to a namespace other than "/" are rejected
// with errOtherNamespace; a leading ack id is ignored.
func decodeEvent(body []byte) (string, json.RawMessage, error) {
	if len(body) > 0 && body[0] == '/' {
		i := bytes.IndexByte(body, ',')
		if i < 0 {
			return "", nil, errors.New("namespaced event without payload")
		}
		if string(body[:i]) != "/" {
			return "", nil, fmt.Errorf("%w: %s", errOtherNamespace, body[:i])
		}
		body = body[i+1:]
	}
	for len(body) > 0 && body[0] >= '0' && body[0] <= '9' {
		body = body[1:]
	}

	var args []json.RawMessage
	if err := json.Unmarshal(body, &args); err != nil {
		return "", nil, fmt.Errorf("decode event: %w", err)
	}
	if len(args) == 0 {
		return "", nil, errors.New("event without name")
	}
	var name string
	if err := json.Unmarshal(args[0], &name); err != nil || name == "" {
		return "", nil, errors.New("event name is not a string")
	}
	if len(args) < 2 {
		return name, nil, nil
	}
	return name, args[1], nil
}

// encodeEvent builds a 42["name",payload] packet. A json.RawMessage payload
// is written as is, HTML characters included.
func encodeEvent(name string, payload any) ([]byte, error) {
	args := []any{name}
	if payload != nil {
		args = append(args, payload)
	}
	buf := bytes.NewBuffer([]byte{engineMessage, socketEvent})
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var (
	connectPacket = []byte{engineMessage, socketConnect}
	pongPacket    = []byte{enginePong}
)
