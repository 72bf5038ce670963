package terminal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/ids"
	"cashier-terminal/internal/metrics"
	"cashier-terminal/internal/protocol"

	"github.com/rs/zerolog/log"
)

// Backend is the slice of the game server REST API the reconciler reads.
type Backend interface {
	CurrentGame(ctx context.Context) (gameapi.CurrentGame, error)
	PlacedBetCartelas(ctx context.Context) ([]int, error)
	EndGame(ctx context.Context) (gameapi.EndGameResult, error)
}

type Sender interface {
	Send(event string, payload any) error
}

// Publisher receives UI stream events: "state", "notice", "auto_draw_countdown", "catalog".
type Publisher interface {
	Publish(kind string, data any)
}

type PrefWriter interface {
	Put(ctx context.Context, cashierID, key, value string) error
}

type Options struct {
	Backend   Backend
	Sender    Sender
	Publisher Publisher
	Prefs     PrefWriter
	Metrics   *metrics.Metrics
	Initial   State
	InboxSize int
}

type timings struct {
	bet       time.Duration
	countdown time.Duration
	stats     time.Duration
	noticeTTL time.Duration
}

var defaultTimings = timings{
	bet:       betTimeout,
	countdown: countdownInterval,
	stats:     statsInterval,
	noticeTTL: noticeTTL,
}

type msg interface{ isMsg() }

type eventMsg struct{ ev protocol.Event }
type connMsg struct{ up bool }
type identityMsg struct{ id Identity }
type commandMsg struct {
	name  string
	quiet bool
	apply func(State, time.Time) (State, []Effect, error)
	reply chan error
}
type ledgerFetched struct {
	gameID string
	ids    []int
	err    error
}
type gameFetched struct {
	requestedFor string
	game         gameapi.CurrentGame
	err          error
}
type endGameDone struct {
	res gameapi.EndGameResult
	err error
}
type betTimeoutMsg struct{ requestID string }
type noticeExpired struct{ id string }

func (eventMsg) isMsg()      {}
func (connMsg) isMsg()       {}
func (identityMsg) isMsg()   {}
func (commandMsg) isMsg()    {}
func (ledgerFetched) isMsg() {}
func (gameFetched) isMsg()   {}
func (endGameDone) isMsg()   {}
func (betTimeoutMsg) isMsg() {}
func (noticeExpired) isMsg() {}

// Terminal owns the reconciled state of one cashier session. Every mutation
// happens on the Run goroutine; readers get immutable snapshots.
type Terminal struct {
	opts    Options
	timings timings
	now     func() time.Time

	inbox    chan msg
	done     chan struct{}
	snapshot atomic.Pointer[State]

	timersMu sync.Mutex
	timers   map[*time.Timer]struct{}

	// loop-owned
	state     State
	countdown *time.Ticker
	stats     *time.Ticker
}

func New(opts Options) *Terminal {
	if opts.InboxSize <= 0 {
		opts.InboxSize = 256
	}
	initial := opts.Initial
	if initial.Ledger.Records == nil {
		initial = NewState(initial.Selection.SingleMode, initial.Stake)
	}
	t := &Terminal{
		opts:    opts,
		timings: defaultTimings,
		now:     time.Now,
		inbox:   make(chan msg, opts.InboxSize),
		done:    make(chan struct{}),
		timers:  map[*time.Timer]struct{}{},
		state:   initial,
	}
	t.snapshot.Store(&initial)
	return t
}

// Snapshot returns the last committed state. Callers must not modify its collections.
func (t *Terminal) Snapshot() State { return *t.snapshot.Load() }

func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(t.done)
	defer t.stopTimers()
	defer t.setTickers(false)

	log.Info().Msg("terminal_loop_started")
	for {
		var countdownC, statsC <-chan time.Time
		if t.countdown != nil {
			countdownC = t.countdown.C
		}
		if t.stats != nil {
			statsC = t.stats.C
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("terminal_loop_stopped")
			return nil
		case m := <-t.inbox:
			t.opts.Metrics.InboxLen(len(t.inbox))
			t.handle(ctx, m)
		case now := <-countdownC:
			t.tickCountdown(now)
		case <-statsC:
			t.sendNow(statsPull(t.state))
		}
	}
}

// HandleEvent queues one decoded server event. It blocks while the inbox is full.
func (t *Terminal) HandleEvent(ev protocol.Event) error {
	return t.post(context.Background(), eventMsg{ev: ev})
}

func (t *Terminal) SetConnected(up bool) error {
	return t.post(context.Background(), connMsg{up: up})
}

func (t *Terminal) SetIdentity(ctx context.Context, id Identity) error {
	return t.post(ctx, identityMsg{id: id})
}

func (t *Terminal) Select(ctx context.Context, cartelaID int) error {
	return t.exec(ctx, "select", false, func(s State, _ time.Time) (State, []Effect, error) {
		return requestSelect(s, cartelaID)
	})
}

func (t *Terminal) Deselect(ctx context.Context, cartelaID int) error {
	return t.exec(ctx, "deselect", false, func(s State, _ time.Time) (State, []Effect, error) {
		return requestDeselect(s, cartelaID)
	})
}

func (t *Terminal) SetSingleMode(ctx context.Context, on bool) error {
	return t.exec(ctx, "single_mode", false, func(s State, _ time.Time) (State, []Effect, error) {
		next, effects := setSingleMode(s, on)
		return next, effects, nil
	})
}

func (t *Terminal) SetStake(ctx context.Context, stake int) error {
	return t.exec(ctx, "stake", false, func(s State, _ time.Time) (State, []Effect, error) {
		return setStake(s, stake)
	})
}

// PlaceBet opens the placement exchange and returns its request id. The outcome
// arrives asynchronously through the state stream.
func (t *Terminal) PlaceBet(ctx context.Context) (string, error) {
	requestID := ids.Prefixed("bet")
	err := t.exec(ctx, "place_bet", true, func(s State, now time.Time) (State, []Effect, error) {
		return placeBet(s, requestID, now)
	})
	if err != nil {
		return "", err
	}
	return requestID, nil
}

func (t *Terminal) StartGame(ctx context.Context) error {
	return t.exec(ctx, "start_game", false, func(s State, _ time.Time) (State, []Effect, error) {
		return startGame(s)
	})
}

func (t *Terminal) EndGame(ctx context.Context) error {
	return t.exec(ctx, "end_game", false, func(s State, _ time.Time) (State, []Effect, error) {
		return endGame(s)
	})
}

func (t *Terminal) DrawNumber(ctx context.Context) error {
	return t.exec(ctx, "draw_number", false, func(s State, _ time.Time) (State, []Effect, error) {
		return drawNumber(s)
	})
}

func (t *Terminal) RefreshDisplay(ctx context.Context) error {
	return t.exec(ctx, "display_status", false, func(s State, _ time.Time) (State, []Effect, error) {
		return requestDisplayStatus(s)
	})
}

// Refresh re-fetches the game and the ledger.
func (t *Terminal) Refresh(ctx context.Context) error {
	return t.exec(ctx, "refresh", true, func(s State, _ time.Time) (State, []Effect, error) {
		return s, refetch(s, 0), nil
	})
}

func (t *Terminal) AutoDraw(ctx context.Context, cmd AutoDrawCommand) error {
	return t.exec(ctx, "auto_draw_"+string(cmd), false, func(s State, _ time.Time) (State, []Effect, error) {
		return autoDraw(s, cmd)
	})
}

// TicketCancelled applies a cancellation confirmed over REST. It is idempotent
// with the server's ticket_cancelled broadcast.
func (t *Terminal) TicketCancelled(ctx context.Context, cartelaID int, gameID string) error {
	return t.exec(ctx, "ticket_cancelled", true, func(s State, _ time.Time) (State, []Effect, error) {
		if gameID != "" && gameID != s.Game.GameID {
			return s, nil, nil
		}
		next, effects := onTicketCancelled(s, cartelaID)
		return next, effects, nil
	})
}

func (t *Terminal) exec(ctx context.Context, name string, quiet bool, apply func(State, time.Time) (State, []Effect, error)) error {
	reply := make(chan error, 1)
	if err := t.post(ctx, commandMsg{name: name, quiet: quiet, apply: apply, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrClosed
	}
}

func (t *Terminal) post(ctx context.Context, m msg) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	select {
	case t.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrClosed
	}
}

func (t *Terminal) handle(ctx context.Context, m msg) {
	now := t.now()
	s := t.state
	var (
		next    State
		effects []Effect
		cmdErr  error
	)
	switch m := m.(type) {
	case eventMsg:
		var ok bool
		next, effects, ok = reduceEvent(s, m.ev, now)
		if !ok {
			t.opts.Metrics.EventDropped("stale_or_foreign")
			log.Debug().Str("event", m.ev.Name()).Str("game_id", s.Game.GameID).Msg("event_dropped")
			return
		}
		if cc, isCatalog := m.ev.(protocol.CatalogChanged); isCatalog {
			t.publish("catalog", map[string]string{"event": cc.Name(), "cartela_id": cc.CartelaID})
		}
	case connMsg:
		next, effects = setConnected(s, m.up)
	case identityMsg:
		next, effects = setIdentity(s, m.id)
	case commandMsg:
		next, effects, cmdErr = m.apply(s, now)
		// reply once the outcome is committed so callers read their own write
		defer func() { m.reply <- cmdErr }()
		if cmdErr != nil {
			log.Info().Err(cmdErr).Str("command", m.name).Msg("command_rejected")
			if m.quiet {
				return
			}
			next, effects = s, []Effect{failure(noticeText(cmdErr))}
		}
	case ledgerFetched:
		if m.err != nil {
			log.Warn().Err(m.err).Str("game_id", m.gameID).Msg("ledger_refresh_failed")
			return
		}
		var ok bool
		next, ok = refreshFromServer(s, m.gameID, m.ids, now)
		if !ok {
			t.opts.Metrics.EventDropped("superseded_ledger")
			log.Debug().Str("fetched_for", m.gameID).Str("game_id", s.Game.GameID).Msg("ledger_refresh_discarded")
			return
		}
	case gameFetched:
		if m.err != nil {
			log.Warn().Err(m.err).Msg("game_refresh_failed")
			return
		}
		var ok bool
		next, effects, ok = onGameFetched(s, m.requestedFor, gameRecord{
			GameID:           m.game.Identifier(),
			Status:           m.game.CurrentStatus(),
			DisplayConnected: &m.game.ConnectionStatus.DisplayConnected,
		})
		if !ok {
			t.opts.Metrics.EventDropped("superseded_game")
			return
		}
	case endGameDone:
		if m.err != nil {
			log.Warn().Err(m.err).Msg("end_game_failed")
		}
		next, effects = onEndGameDone(s, m.res.NextGameID.String(), m.err)
	case betTimeoutMsg:
		var ok bool
		next, effects, ok = onBetTimeout(s, m.requestID)
		if !ok {
			return
		}
	case noticeExpired:
		var ok bool
		next, ok = removeNotice(s, m.id)
		if !ok {
			return
		}
	default:
		return
	}
	if err := t.commit(ctx, next, effects); err != nil && cmdErr == nil {
		cmdErr = err
	}
}

// commit applies effects and installs next. It returns the first immediate
// send failure, after that send's optimistic state has been rolled back.
func (t *Terminal) commit(ctx context.Context, next State, effects []Effect) error {
	var sendErr error
	for i := 0; i < len(effects); i++ {
		switch e := effects[i].(type) {
		case notify:
			n := Notice{ID: ids.Prefixed("ntc"), Level: e.Level, Text: e.Text, At: t.now()}
			next = addNotice(next, n)
			t.publish("notice", n)
			t.after(t.timings.noticeTTL, func() { _ = t.post(ctx, noticeExpired{id: n.ID}) })
		case sendEffect:
			if e.Delay > 0 {
				t.after(e.Delay, func() { t.sendLogged(e) })
				continue
			}
			if err := t.opts.Sender.Send(e.Event, e.Payload); err != nil {
				log.Warn().Err(err).Str("event", e.Event).Msg("send_failed")
				err = sendError(err)
				var undo []Effect
				next, undo = onSendFailed(next, e, err)
				if sendErr == nil {
					sendErr = err
					effects = append(effects, undo...)
				}
			}
		case fetchLedger:
			t.spawn(ctx, e.Delay, func(ctx context.Context) msg {
				list, err := t.opts.Backend.PlacedBetCartelas(ctx)
				return ledgerFetched{gameID: e.GameID, ids: list, err: err}
			})
		case fetchGame:
			t.spawn(ctx, e.Delay, func(ctx context.Context) msg {
				g, err := t.opts.Backend.CurrentGame(ctx)
				return gameFetched{requestedFor: e.RequestedFor, game: g, err: err}
			})
		case endGameCall:
			t.spawn(ctx, 0, func(ctx context.Context) msg {
				res, err := t.opts.Backend.EndGame(ctx)
				return endGameDone{res: res, err: err}
			})
		case armBetTimer:
			t.after(t.timings.bet, func() { _ = t.post(ctx, betTimeoutMsg{requestID: e.RequestID}) })
		case persistPref:
			t.persist(ctx, next.Identity.CashierID, e)
		case autoDrawTickers:
			t.setTickers(e.On)
		case betOutcome:
			t.opts.Metrics.BetOutcome(e.Outcome)
			log.Info().Str("outcome", e.Outcome).Str("request_id", next.Bet.RequestID).Msg("bet_outcome")
		}
	}
	next.Version = t.state.Version + 1
	t.state = next
	t.snapshot.Store(&next)
	t.publish("state", next.View())
	return sendErr
}

func (t *Terminal) tickCountdown(now time.Time) {
	secs := countdown(t.state.AutoDraw.Stats.NextDrawTime.Time, now)
	if secs != t.state.AutoDraw.Countdown {
		next := t.state
		next.AutoDraw.Countdown = secs
		t.state = next
		t.snapshot.Store(&next)
	}
	t.publish("auto_draw_countdown", map[string]int{"seconds": secs})
}

func (t *Terminal) setTickers(on bool) {
	if t.countdown != nil {
		t.countdown.Stop()
		t.countdown = nil
	}
	if t.stats != nil {
		t.stats.Stop()
		t.stats = nil
	}
	if on {
		t.countdown = time.NewTicker(t.timings.countdown)
		t.stats = time.NewTicker(t.timings.stats)
	}
}

func (t *Terminal) sendNow(e sendEffect) {
	if err := t.opts.Sender.Send(e.Event, e.Payload); err != nil {
		log.Debug().Err(err).Str("event", e.Event).Msg("send_skipped")
	}
}

func (t *Terminal) sendLogged(e sendEffect) {
	select {
	case <-t.done:
		return
	default:
	}
	t.sendNow(e)
}

func (t *Terminal) persist(ctx context.Context, cashierID string, e persistPref) {
	if t.opts.Prefs == nil || cashierID == "" {
		return
	}
	go func() {
		if err := t.opts.Prefs.Put(ctx, cashierID, e.Key, e.Value); err != nil {
			log.Warn().Err(err).Str("key", e.Key).Msg("pref_persist_failed")
		}
	}()
}

func (t *Terminal) publish(kind string, data any) {
	if t.opts.Publisher != nil {
		t.opts.Publisher.Publish(kind, data)
	}
}

// spawn runs fn off the loop and posts its result back.
func (t *Terminal) spawn(ctx context.Context, delay time.Duration, fn func(context.Context) msg) {
	run := func() {
		if ctx.Err() != nil {
			return
		}
		_ = t.post(ctx, fn(ctx))
	}
	if delay <= 0 {
		go run()
		return
	}
	t.after(delay, run)
}

func (t *Terminal) after(d time.Duration, fn func()) {
	t.timersMu.Lock()
	defer t.timersMu.Unlock()
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.timersMu.Lock()
		delete(t.timers, timer)
		t.timersMu.Unlock()
		fn()
	})
	t.timers[timer] = struct{}{}
}

func (t *Terminal) stopTimers() {
	t.timersMu.Lock()
	defer t.timersMu.Unlock()
	for timer := range t.timers {
		timer.Stop()
		delete(t.timers, timer)
	}
}
