package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// API is the subset of the REST client the store needs.
type API interface {
	ListChats(ctx context.Context) ([]api.Chat, error)
	ListMessages(ctx context.Context, waID string) ([]api.Message, error)
	SendMessage(ctx context.Context, req api.SendRequest) (*api.Message, error)
}

// Emitter publishes an event on the realtime channel.
type Emitter interface {
	Emit(ctx context.Context, event string, payload any) error
}

const sendMessageEvent = "sendMessage"

var (
	// ErrStopped is returned by operations issued after Stop.
	ErrStopped = errors.New("store: stopped")
	// ErrSuperseded is returned by SelectChat when another selection was
	// made before its messages arrived. The late response is discarded.
	ErrSuperseded = errors.New("store: selection superseded")
)

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Chats    []api.Chat
	Selected *api.Chat
	Messages []api.Message
	Loading  bool
	Version  uint64
	// MessagesRev changes only when Messages does.
	MessagesRev uint64
}

// SelectedID returns the wa_id of the selected chat, or "".
func (s Snapshot) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.WaID
}

// state is owned by the run loop.
type state struct {
	chats    []api.Chat
	selected *api.Chat
	messages []api.Message
	loading  bool
	token    uint64
	version  uint64
	msgRev   uint64
}

type op func(*state)

// Store holds the chat list, the selected chat and its messages. All
// mutations run on one goroutine in arrival order; REST calls run on the
// caller's goroutine and their results are queued back.
type Store struct {
	api     API
	emitter Emitter
	bus     *bus.Bus
	logger  *zap.Logger

	ops  chan op
	done chan struct{}

	mu     sync.RWMutex
	snap   Snapshot
	cancel context.CancelFunc
	wg     sync.WaitGroup

	refreshCh chan struct{}
}

func New(client API, emitter Emitter, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{
		api:       client,
		emitter:   emitter,
		bus:       b,
		logger:    logger.Named("store"),
		ops:       make(chan op),
		done:      make(chan struct{}),
		snap:      Snapshot{Loading: true},
		refreshCh: make(chan struct{}, 1),
	}
}

// Start runs the update loop and subscribes it to remote events. Calling
// an operation before Start blocks until Start is called.
func (s *Store) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	events, unsub := s.bus.Subscribe(bus.RemotePrefix, 256)

	st := &state{loading: true}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.done)
		defer unsub()
		for {
			select {
			case fn := <-s.ops:
				fn(st)
			case evt := <-events:
				if s.handleEvent(ctx, st, evt) {
					s.publish(st)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the update loop and waits for it to exit.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Snapshot returns a copy of the latest published state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (snap Snapshot) clone() Snapshot {
	out := snap
	out.Chats = slices.Clone(snap.Chats)
	out.Messages = slices.Clone(snap.Messages)
	if snap.Selected != nil {
		c := *snap.Selected
		out.Selected = &c
	}
	return out
}

// RefreshCh signals after every published change.
func (s *Store) RefreshCh() <-chan struct{} {
	return s.refreshCh
}

// FetchChats replaces the chat list with the backend's and clears the
// loading flag, on failure too.
func (s *Store) FetchChats(ctx context.Context) error {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		s.logger.Error("fetch chats", zap.Error(err))
	}
	applyErr := s.apply(ctx, func(st *state) bool {
		if err == nil {
			st.chats = chats
		}
		st.loading = false
		return true
	})
	if err != nil {
		return err
	}
	return applyErr
}

// SelectChat selects chat and loads its messages. Messages that arrive
// after a newer selection or ClearSelection are discarded.
func (s *Store) SelectChat(ctx context.Context, chat api.Chat) error {
	var token uint64
	if err := s.apply(ctx, func(st *state) bool {
		c := chat
		st.selected = &c
		st.token++
		token = st.token
		return true
	}); err != nil {
		return err
	}

	msgs, err := s.api.ListMessages(ctx, chat.WaID)
	if err != nil {
		s.logger.Error("fetch messages", zap.String("wa_id", chat.WaID), zap.Error(err))
		return err
	}

	superseded := false
	if err := s.apply(ctx, func(st *state) bool {
		if st.token != token {
			superseded = true
			return false
		}
		st.messages = msgs
		st.msgRev++
		return true
	}); err != nil {
		return err
	}
	if superseded {
		s.logger.Debug("discarding stale messages", zap.String("wa_id", chat.WaID), zap.Uint64("token", token))
		return ErrSuperseded
	}
	return nil
}

// ClearSelection deselects the current chat. Loaded messages are kept.
func (s *Store) ClearSelection(ctx context.Context) error {
	return s.apply(ctx, func(st *state) bool {
		if st.selected == nil {
			return false
		}
		st.selected = nil
		st.token++
		return true
	})
}

// SendMessage posts text to the selected chat and re-emits the created
// message on the channel. It does nothing when no chat is selected or text
// is blank. The created message is re-emitted exactly as the backend
// returned it, and reaches the thread only through the channel.
func (s *Store) SendMessage(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	var target *api.Chat
	if err := s.apply(ctx, func(st *state) bool {
		target = st.selected
		return false
	}); err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	sendID := uuid.NewString()
	log := s.logger.With(zap.String("send_id", sendID), zap.String("wa_id", target.WaID))

	created, err := s.api.SendMessage(ctx, api.SendRequest{
		WaID: target.WaID,
		Text: trimmed,
		Type: api.TypeText,
	})
	if err != nil {
		log.Error("send message", zap.Error(err))
		return err
	}
	log.Info("message sent", zap.String("msg_id", created.ID))

	if err := s.emitter.Emit(ctx, sendMessageEvent, created.Payload()); err != nil {
		log.Warn("emit sent message", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) handleEvent(ctx context.Context, st *state, evt bus.Event) bool {
	switch evt.Kind {
	case bus.KindNewMessage:
		m, ok := evt.Payload.(api.Message)
		if !ok {
			return false
		}
		st.messages = append(st.messages, m)
		st.msgRev++
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.FetchChats(ctx)
		}()
		return true
	case bus.KindMessageStatusUpdate:
		m, ok := evt.Payload.(api.Message)
		if !ok || m.ID == "" {
			return false
		}
		// newMessage does not de-duplicate, so one _id may appear more than
		// once; every copy is replaced.
		if !lo.ContainsBy(st.messages, func(x api.Message) bool { return x.ID == m.ID }) {
			return false
		}
		st.messages = lo.Map(st.messages, func(x api.Message, _ int) api.Message {
			if x.ID == m.ID {
				return m
			}
			return x
		})
		st.msgRev++
		return true
	}
	return false
}

// apply queues fn on the update loop and waits until it has run. A true
// result from fn publishes a new snapshot before apply returns.
func (s *Store) apply(ctx context.Context, fn func(*state) bool) error {
	ran := make(chan struct{})
	wrapped := func(st *state) {
		defer close(ran)
		if fn(st) {
			s.publish(st)
		}
	}
	select {
	case s.ops <- wrapped:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

func (s *Store) publish(st *state) {
	st.version++
	snap := Snapshot{
		Chats:       st.chats,
		Selected:    st.selected,
		Messages:    st.messages,
		Loading:     st.loading,
		Version:     st.version,
		MessagesRev: st.msgRev,
	}.clone()

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
	s.bus.Emit(bus.KindStoreChanged, snap.Version)
}
