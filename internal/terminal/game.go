package terminal

import (
	"strings"
	"time"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/protocol"
)

type gameRecord struct {
	GameID           string
	Status           string
	DisplayConnected *bool
}

func parseStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

func refetch(s State, delay time.Duration) []Effect {
	return []Effect{
		fetchGame{RequestedFor: s.Game.GameID, Delay: delay},
		fetchLedger{GameID: s.Game.GameID, Delay: delay},
	}
}

// adoptGame switches to a new game context. The old id is retired so late
// events and fetches that still carry it are dropped.
func adoptGame(s State, gameID string, status Status) State {
	g := s.Game
	if g.GameID != "" && g.GameID != gameID {
		g.retired = cloneMap(g.retired)
		g.retired[g.GameID] = struct{}{}
	}
	g.GameID = gameID
	g.Status = status
	g.LastNumber = 0
	g.DrawnCount = 0
	s.Game = g
	s.Ledger = s.Ledger.adopt(gameID)
	return onComprehensiveReset(s)
}

// onGameSnapshot absorbs a sync event: patch on the same id, adopt on a new one.
func onGameSnapshot(s State, ev protocol.GameSnapshot) (State, []Effect, bool) {
	if foreignSession(s, ev.SessionID) || s.Game.Retired(ev.GameID) {
		return s, nil, false
	}
	if !ev.At.IsZero() {
		if ev.At.Before(s.Game.syncedAt) {
			return s, nil, false
		}
		s.Game.syncedAt = ev.At
	}
	var effects []Effect
	if ev.GameID != "" && ev.GameID != s.Game.GameID {
		status := parseStatus(ev.Status)
		if status == "" {
			status = StatusWaiting
		}
		s = adoptGame(s, ev.GameID, status)
		effects = append(effects, fetchLedger{GameID: ev.GameID})
	} else if ev.Status != "" {
		s.Game.Status = parseStatus(ev.Status)
	}
	if ev.DisplayConnected != nil {
		s.Game.DisplayConnected = *ev.DisplayConnected
	}
	return s, effects, true
}

// onLifecycle treats every lifecycle signal as the start of a fresh game context.
func onLifecycle(s State, ev protocol.GameLifecycle) (State, []Effect, bool) {
	if foreignSession(s, ev.SessionID) || s.Game.Retired(ev.GameID) {
		return s, nil, false
	}
	if ev.GameID != "" && ev.GameID != s.Game.GameID {
		s = adoptGame(s, ev.GameID, StatusWaiting)
	} else {
		s.Game.Status = StatusWaiting
		if ev.Kind == protocol.LifecycleReset {
			s = onComprehensiveReset(s)
		}
	}
	s.Game.syncedAt = time.Time{}
	effects := refetch(s, 0)
	if ev.Message != "" {
		effects = append(effects, info(ev.Message))
	}
	return s, effects, true
}

// onGameFetched applies a REST game record. A fetch issued for a game that was
// superseded meanwhile only counts when it names the game now tracked.
func onGameFetched(s State, requestedFor string, rec gameRecord) (State, []Effect, bool) {
	if rec.GameID == "" || s.Game.Retired(rec.GameID) {
		return s, nil, false
	}
	if requestedFor != s.Game.GameID && rec.GameID != s.Game.GameID {
		return s, nil, false
	}
	var effects []Effect
	status := parseStatus(rec.Status)
	if rec.GameID != s.Game.GameID {
		if status == "" {
			status = StatusWaiting
		}
		s = adoptGame(s, rec.GameID, status)
		effects = append(effects, fetchLedger{GameID: rec.GameID})
	} else if status != "" {
		s.Game.Status = status
	}
	if rec.DisplayConnected != nil {
		s.Game.DisplayConnected = *rec.DisplayConnected
	}
	return s, effects, true
}

func onGameStarted(s State, ev protocol.GameStartedEvent) (State, []Effect, bool) {
	if foreignSession(s, ev.SessionID) || s.Game.Retired(ev.GameID) {
		return s, nil, false
	}
	if ev.GameID != "" && ev.GameID != s.Game.GameID {
		s = adoptGame(s, ev.GameID, StatusActive)
	}
	s.Game.Status = StatusActive
	return s, []Effect{
		success("Game started"),
		fetchLedger{GameID: s.Game.GameID, Delay: ledgerAfterStart},
		displayPoll(s, 0),
	}, true
}

func onGameStartFailed(s State, ev protocol.GameStartFailed) (State, []Effect, bool) {
	if foreignSession(s, ev.SessionID) {
		return s, nil, false
	}
	msg := ev.Message
	if msg == "" {
		msg = "Failed to start game."
	}
	return s, []Effect{failure(msg), displayPoll(s, 0)}, true
}

func onDisplayStatus(s State, ev protocol.DisplayStatus) (State, bool) {
	if foreignSession(s, ev.SessionID) {
		return s, false
	}
	s.Game.DisplayConnected = ev.Connected
	return s, true
}

func onNumberDrawn(s State, ev protocol.NumberDrawnEvent) (State, bool) {
	if foreignSession(s, ev.SessionID) {
		return s, false
	}
	s.Game.LastNumber = ev.Number
	s.Game.DrawnCount++
	return s, true
}

func displayPoll(s State, delay time.Duration) sendEffect {
	return sendEffect{
		Event:   protocol.GetDisplayStatus,
		Payload: protocol.SessionCommand{SessionID: s.Identity.SessionID},
		Delay:   delay,
	}
}

func requestDisplayStatus(s State) (State, []Effect, error) {
	if err := checkSelectable(s); err != nil {
		return s, nil, err
	}
	return s, []Effect{displayPoll(s, 0)}, nil
}

func startGame(s State) (State, []Effect, error) {
	switch {
	case !s.Connected:
		return s, nil, ErrNotConnected
	case s.Identity.SessionID == "":
		return s, nil, ErrNoSession
	case s.Game.Status != StatusWaiting:
		return s, nil, ErrGameNotWaiting
	case !s.Game.DisplayConnected:
		return s, nil, ErrDisplayDisconnected
	case s.PlacedCount() < MinBetsToStart:
		return s, nil, ErrNotEnoughBets
	}
	return s, []Effect{
		sendEffect{
			Event:   protocol.StartGame,
			Payload: protocol.SessionCommand{SessionID: s.Identity.SessionID, CashierID: s.Identity.CashierID},
		},
		displayPoll(s, displayAfterStart),
	}, nil
}

func endGame(s State) (State, []Effect, error) {
	if !s.CanEnd() {
		return s, nil, ErrCannotEnd
	}
	return s, []Effect{endGameCall{}}, nil
}

func onEndGameDone(s State, nextGameID string, err error) (State, []Effect) {
	if err != nil {
		return s, []Effect{failure(gameapi.Message(err))}
	}
	if nextGameID != "" && nextGameID != s.Game.GameID && !s.Game.Retired(nextGameID) {
		s = adoptGame(s, nextGameID, StatusWaiting)
	} else {
		s.Game.Status = StatusCompleted
	}
	effects := []Effect{success("Game ended")}
	return s, append(effects, refetch(s, refreshAfterEndGame)...)
}

func drawNumber(s State) (State, []Effect, error) {
	switch {
	case !s.Connected:
		return s, nil, ErrNotConnected
	case s.Identity.SessionID == "":
		return s, nil, ErrNoSession
	case s.Game.Status != StatusActive:
		return s, nil, ErrGameNotActive
	}
	return s, []Effect{sendEffect{
		Event:   protocol.DrawNumber,
		Payload: protocol.SessionCommand{SessionID: s.Identity.SessionID, CashierID: s.Identity.CashierID},
	}}, nil
}

// setIdentity scopes the state to a cashier session. A new session starts clean.
func setIdentity(s State, id Identity) (State, []Effect) {
	if s.Identity == id {
		return s, nil
	}
	sessionChanged := s.Identity.SessionID != id.SessionID
	s.Identity = id
	if !sessionChanged {
		return s, nil
	}
	fresh := NewState(s.Selection.SingleMode, s.Stake)
	fresh.Identity = id
	fresh.Connected = s.Connected
	fresh.Notices = s.Notices
	fresh.Version = s.Version
	if id.SessionID == "" {
		return fresh, nil
	}
	return fresh, refetch(fresh, 0)
}

func setConnected(s State, up bool) (State, []Effect) {
	if s.Connected == up {
		return s, nil
	}
	s.Connected = up
	if !up {
		// intents sent on the dead connection will never be answered
		s.Selection.pending = nil
		return s, nil
	}
	if s.Identity.SessionID == "" {
		return s, nil
	}
	return s, refetch(s, 0)
}
