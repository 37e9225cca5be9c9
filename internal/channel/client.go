package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/matheus3301/wpp-client/internal/status"
	"go.uber.org/zap"
)

// Inbound and outbound event names understood by the backend.
const (
	EventNewMessage          = "newMessage"
	EventMessageStatusUpdate = "messageStatusUpdate"
	EventSendMessage         = "sendMessage"
)

const (
	DefaultPath             = "/socket.io/"
	defaultHandshakeTimeout = 20 * time.Second
	defaultReadLimit        = 1 << 20
)

// ErrNotConnected is returned by Emit while no session is open.
var ErrNotConnected = errors.New("channel: not connected")

var errServerClosed = errors.New("server closed the session")

// Client keeps one Socket.IO session to the backend open and forwards every
// inbound event to the bus as "remote.<event>".
type Client struct {
	url              string
	bus              *bus.Bus
	state            *status.Machine
	logger           *zap.Logger
	httpClient       *http.Client
	newBackOff       func() backoff.BackOff
	handshakeTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	sid    string
	cancel context.CancelFunc
	closed bool
}

type Option func(*Client)

// WithHTTPClient sets the client used for the websocket upgrade request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackOff replaces the reconnect policy. newBackOff is called once per Run.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = newBackOff }
}

func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) { c.handshakeTimeout = d }
}

// New builds a client for the backend at baseURI. path is the Socket.IO
// endpoint path, DefaultPath when empty.
func New(baseURI, path string, b *bus.Bus, state *status.Machine, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := EndpointURL(baseURI, path)
	if err != nil {
		return nil, err
	}
	c := &Client{
		url:              u,
		bus:              b,
		state:            state,
		logger:           logger.Named("channel"),
		newBackOff:       defaultBackOff,
		handshakeTimeout: defaultHandshakeTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// defaultBackOff follows socket.io-client: 1s growing to 5s with 50%
// jitter, retrying forever.
func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 5 * time.Second
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	return b
}

// EndpointURL maps an http(s) backend URI to the websocket endpoint URL.
func EndpointURL(baseURI, path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURI))
	if err != nil {
		return "", fmt.Errorf("channel: parse backend uri: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("channel: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("channel: backend uri has no host")
	}
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = path
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// URL returns the websocket endpoint this client dials.
func (c *Client) URL() string { return c.url }

// Run connects and keeps reconnecting until ctx is cancelled or Close is
// called. It returns nil on a requested shutdown and an error only when the
// backoff policy gives up.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()
	defer c.transition(status.Closed, nil)

	bo := backoff.WithContext(c.newBackOff(), ctx)
	for {
		c.transition(status.Connecting, nil)
		err := c.session(ctx, bo)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("session ended", zap.Error(err))
		c.transition(status.Reconnecting, err)

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("channel: giving up: %w", err)
		}
		c.logger.Debug("reconnecting", zap.Duration("in", wait))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// session runs one connection from dial to disconnect.
func (c *Client) session(ctx context.Context, bo backoff.BackOff) error {
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{HTTPClient: c.httpClient})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(defaultReadLimit)

	open, err := c.handshake(ctx, conn)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	c.setConn(conn, open.SID)
	defer c.setConn(nil, "")
	c.transition(status.Connected, nil)
	bo.Reset()
	c.logger.Info("connected",
		zap.String("url", c.url),
		zap.String("sid", open.SID),
		zap.Int("ping_interval_ms", open.PingInterval),
	)

	deadline := time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
	for {
		f, err := c.read(ctx, conn, deadline)
		if err != nil {
			return err
		}
		if err := c.handle(ctx, conn, f); err != nil {
			return err
		}
	}
}

func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) (openPacket, error) {
	ctx, cancel := context.WithTimeout(ctx, c.handshakeTimeout)
	defer cancel()

	f, err := c.read(ctx, conn, 0)
	if err != nil {
		return openPacket{}, err
	}
	if f.Engine != engineOpen {
		return openPacket{}, fmt.Errorf("expected open packet, got %q", f.Engine)
	}
	open, err := decodeOpen(f.Body)
	if err != nil {
		return openPacket{}, err
	}
	if err := conn.Write(ctx, websocket.MessageText, connectPacket); err != nil {
		return openPacket{}, fmt.Errorf("send connect: %w", err)
	}

	for {
		f, err := c.read(ctx, conn, 0)
		if err != nil {
			return openPacket{}, err
		}
		switch {
		case f.Engine == enginePing:
			if err := conn.Write(ctx, websocket.MessageText, pongPacket); err != nil {
				return openPacket{}, fmt.Errorf("send pong: %w", err)
			}
		case f.Engine == engineClose:
			return openPacket{}, errServerClosed
		case f.Socket == socketConnect:
			return open, nil
		case f.Socket == socketConnectError:
			return openPacket{}, decodeConnectError(f.Body)
		}
	}
}

// read returns the next text frame, skipping binary ones. A positive
// deadline bounds the wait.
func (c *Client) read(ctx context.Context, conn *websocket.Conn, deadline time.Duration) (frame, error) {
	for {
		rctx, cancel := ctx, context.CancelFunc(func() {})
		if deadline > 0 {
			rctx, cancel = context.WithTimeout(ctx, deadline)
		}
		typ, data, err := conn.Read(rctx)
		cancel()
		if err != nil {
			return frame{}, fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			c.logger.Debug("ignoring binary frame", zap.Int("bytes", len(data)))
			continue
		}
		f, err := decodeFrame(data)
		if err != nil {
			c.logger.Debug("ignoring malformed frame", zap.Error(err))
			continue
		}
		return f, nil
	}
}

func (c *Client) handle(ctx context.Context, conn *websocket.Conn, f frame) error {
	switch f.Engine {
	case enginePing:
		if err := conn.Write(ctx, websocket.MessageText, pongPacket); err != nil {
			return fmt.Errorf("send pong: %w", err)
		}
	case engineClose:
		return errServerClosed
	case engineMessage:
		switch f.Socket {
		case socketEvent:
			c.dispatch(f.Body)
		case socketDisconnect:
			return errServerClosed
		}
	}
	return nil
}

func (c *Client) dispatch(body []byte) {
	name, raw, err := decodeEvent(body)
	if err != nil {
		c.logger.Warn("dropping event", zap.Error(err))
		return
	}

	var payload any = raw
	switch name {
	case EventNewMessage, EventMessageStatusUpdate:
		var m api.Message
		if err := json.Unmarshal(raw, &m); err != nil {
			c.logger.Warn("dropping event with bad message", zap.String("event", name), zap.Error(err))
			return
		}
		payload = m
	}
	c.logger.Debug("event", zap.String("event", name))
	c.bus.Emit(bus.RemotePrefix+name, payload)
}

// Emit sends a Socket.IO event on the open session.
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := encodeEvent(event, payload)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("channel: emit %s: %w", event, err)
	}
	return nil
}

// Connected reports whether a session is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SessionID returns the Engine.IO sid of the open session, or "".
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sid
}

// Close stops Run. An open session is sent a disconnect packet first.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	cancel, conn := c.cancel, c.conn
	c.mu.Unlock()

	if conn != nil {
		ctx, done := context.WithTimeout(context.Background(), time.Second)
		_ = conn.Write(ctx, websocket.MessageText, []byte{engineMessage, socketDisconnect})
		done()
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

func (c *Client) setConn(conn *websocket.Conn, sid string) {
	c.mu.Lock()
	c.conn, c.sid = conn, sid
	c.mu.Unlock()
}

func (c *Client) transition(to status.State, cause error) {
	if c.state == nil {
		return
	}
	if err := c.state.TransitionWithCause(to, cause); err != nil {
		c.logger.Debug("state transition", zap.Error(err))
	}
}
