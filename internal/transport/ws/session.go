package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cashier-terminal/internal/metrics"
	"cashier-terminal/internal/protocol"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotConnected = errors.New("not_connected")
	ErrUnauthorized = errors.New("unauthorized")
	ErrSendBuffer   = errors.New("send_buffer_full")

	errReconfigured = errors.New("identity_changed")
)

type Handler func(raw json.RawMessage)

type StatusHandler func(connected bool)

type Options struct {
	URL          string
	Dialer       *websocket.Dialer
	BackoffMin   time.Duration
	BackoffMax   time.Duration
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	Metrics      *metrics.Metrics
}

func (o *Options) defaults() {
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.BackoffMin <= 0 {
		o.BackoffMin = 500 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 10 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 20 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
}

// Session keeps exactly one live connection for the current Identity.
// Handlers run on the read goroutine and must not block.
type Session struct {
	opts Options

	mu        sync.Mutex
	identity  Identity
	sendCh    chan []byte
	handlers  map[string]map[uint64]Handler
	statusFns []StatusHandler
	nextID    uint64

	connected   atomic.Bool
	reconfigure chan struct{}
}

func NewSession(opts Options) *Session {
	opts.defaults()
	return &Session{
		opts:        opts,
		handlers:    map[string]map[uint64]Handler{},
		reconfigure: make(chan struct{}, 1),
	}
}

// SetIdentity replaces the connection parameters. An identical identity is a no-op.
func (s *Session) SetIdentity(id Identity) {
	s.mu.Lock()
	if s.identity == id {
		s.mu.Unlock()
		return
	}
	s.identity = id
	s.mu.Unlock()
	select {
	case s.reconfigure <- struct{}{}:
	default:
	}
}

func (s *Session) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Session) Connected() bool { return s.connected.Load() }

// Subscribe registers h for one event name and returns a func that removes only h.
func (s *Session) Subscribe(event string, h Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	if s.handlers[event] == nil {
		s.handlers[event] = map[uint64]Handler{}
	}
	s.handlers[event][id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers[event], id)
	}
}

// Unsubscribe drops every handler registered for event.
func (s *Session) Unsubscribe(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, event)
}

func (s *Session) OnStatus(fn StatusHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFns = append(s.statusFns, fn)
}

// Send writes one event. It never queues while disconnected.
func (s *Session) Send(event string, payload any) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	return s.enqueue(frame)
}

func (s *Session) enqueue(frame []byte) error {
	s.mu.Lock()
	ch := s.sendCh
	s.mu.Unlock()
	if ch == nil {
		return ErrNotConnected
	}
	select {
	case ch <- frame:
		return nil
	default:
		return ErrSendBuffer
	}
}

// Run dials and redials until ctx ends or the server rejects the token.
func (s *Session) Run(ctx context.Context) error {
	backoff := s.opts.BackoffMin
	for {
		// A signal raised before this identity was read is already reflected in it.
		select {
		case <-s.reconfigure:
		default:
		}
		id := s.Identity()
		if err := id.Validate(); err != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-s.reconfigure:
				continue
			}
		}

		wasUp, err := s.connectAndListen(ctx, id)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, ErrUnauthorized):
			log.Error().Str("cashier_id", id.CashierID).Msg("transport_unauthorized")
			return err
		case errors.Is(err, errReconfigured):
			backoff = s.opts.BackoffMin
			continue
		}
		if wasUp {
			backoff = s.opts.BackoffMin
		}
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("transport_disconnected")
		s.opts.Metrics.Reconnect()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-s.reconfigure:
			timer.Stop()
			backoff = s.opts.BackoffMin
			continue
		case <-timer.C:
		}
		backoff *= 2
		if backoff > s.opts.BackoffMax {
			backoff = s.opts.BackoffMax
		}
	}
}

func (s *Session) connectAndListen(ctx context.Context, id Identity) (bool, error) {
	target, err := id.dialURL(s.opts.URL)
	if err != nil {
		return false, err
	}
	conn, _, err := s.opts.Dialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, err
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sendCh := make(chan []byte, s.opts.SendBuffer)
	s.mu.Lock()
	s.sendCh = sendCh
	s.mu.Unlock()

	var reconfigured atomic.Bool
	go func() {
		select {
		case <-connCtx.Done():
		case <-s.reconfigure:
			reconfigured.Store(true)
		}
		_ = conn.Close()
	}()
	go s.writeLoop(connCtx, conn, sendCh)

	// Ask for display status before anyone sees the connection as up.
	if frame, err := encodeFrame(protocol.GetDisplayStatus, protocol.SessionCommand{SessionID: id.SessionID}); err == nil {
		_ = s.enqueue(frame)
	}
	s.setConnected(true)
	log.Info().Str("cashier_id", id.CashierID).Str("session_id", id.SessionID).Msg("transport_connected")

	err = s.readLoop(conn)

	s.mu.Lock()
	if s.sendCh == sendCh {
		s.sendCh = nil
	}
	s.mu.Unlock()
	s.setConnected(false)
	if reconfigured.Load() {
		return true, errReconfigured
	}
	return true, err
}

func (s *Session) readLoop(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			log.Warn().Err(err).Msg("transport_bad_frame")
			continue
		}
		s.opts.Metrics.EventReceived(env.Event)
		s.dispatch(env)
		if env.Event == protocol.CashierUnauthorized {
			return ErrUnauthorized
		}
	}
}

func (s *Session) writeLoop(ctx context.Context, conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case frame := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.opts.WriteWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (s *Session) dispatch(env protocol.Envelope) {
	s.mu.Lock()
	hs := make([]Handler, 0, len(s.handlers[env.Event]))
	for _, h := range s.handlers[env.Event] {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(env.Data)
	}
}

func (s *Session) setConnected(up bool) {
	if s.connected.Swap(up) == up {
		return
	}
	s.opts.Metrics.SetConnected(up)
	s.mu.Lock()
	fns := append([]StatusHandler(nil), s.statusFns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(up)
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(protocol.Envelope{Event: event, Data: data})
}
