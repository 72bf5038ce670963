package terminal

import (
	"math"
	"time"

	"cashier-terminal/internal/protocol"
)

type AutoDrawCommand string

const (
	AutoDrawInitialize AutoDrawCommand = "initialize"
	AutoDrawStart      AutoDrawCommand = "start"
	AutoDrawStop       AutoDrawCommand = "stop"
	AutoDrawShuffle    AutoDrawCommand = "shuffle"
)

var autoDrawEvents = map[AutoDrawCommand]string{
	AutoDrawInitialize: protocol.AutoDrawInitialize,
	AutoDrawStart:      protocol.AutoDrawStart,
	AutoDrawStop:       protocol.AutoDrawStop,
	AutoDrawShuffle:    protocol.ShuffleNumberPool,
}

func autoDraw(s State, cmd AutoDrawCommand) (State, []Effect, error) {
	event, ok := autoDrawEvents[cmd]
	if !ok {
		return s, nil, ErrUnknownCommand
	}
	if err := checkSelectable(s); err != nil {
		return s, nil, err
	}
	switch cmd {
	case AutoDrawStart:
		if s.Game.Status != StatusActive {
			return s, nil, ErrGameNotActive
		}
		if !s.Game.DisplayConnected {
			return s, nil, ErrDisplayDisconnected
		}
	case AutoDrawShuffle:
		if s.Game.Status != StatusWaiting {
			return s, nil, ErrGameNotWaiting
		}
	}
	return s, []Effect{sendEffect{Event: event, Payload: s.autoDrawPayload()}}, nil
}

func (s State) autoDrawPayload() protocol.SessionCommand {
	return protocol.SessionCommand{SessionID: s.Identity.SessionID, CashierID: s.Identity.CashierID}
}

func statsPull(s State) sendEffect {
	return sendEffect{Event: protocol.GetAutoDrawStats, Payload: s.autoDrawPayload()}
}

func foreignCashier(s State, cashierID string) bool {
	return cashierID != "" && s.Identity.CashierID != "" && cashierID != s.Identity.CashierID
}

func onAutoDrawAck(s State, ev protocol.AutoDrawAck) (State, []Effect, bool) {
	if foreignCashier(s, ev.CashierID) {
		return s, nil, false
	}
	if !ev.Success {
		msg := ev.Message
		if msg == "" {
			msg = "Auto-draw command failed."
		}
		return s, []Effect{failure(msg)}, true
	}
	var effects []Effect
	switch ev.Kind {
	case protocol.AckStarted:
		s, effects = setAutoDrawActive(s, true)
	case protocol.AckStopped:
		s, effects = setAutoDrawActive(s, false)
		s.AutoDraw.Countdown = 0
	}
	if ev.Message != "" {
		effects = append(effects, info(ev.Message))
	}
	return s, append(effects, statsPull(s)), true
}

func onAutoDrawTelemetry(s State, ev protocol.AutoDrawTelemetry, now time.Time) (State, []Effect, bool) {
	if foreignCashier(s, ev.CashierID) {
		return s, nil, false
	}
	s.AutoDraw.Stats = ev.Stats
	s.AutoDraw.Pool = ev.Pool
	var effects []Effect
	s, effects = setAutoDrawActive(s, ev.Stats.IsActive)
	s.AutoDraw.Countdown = countdown(s.AutoDraw.Stats.NextDrawTime.Time, now)
	return s, effects, true
}

func setAutoDrawActive(s State, on bool) (State, []Effect) {
	if s.AutoDraw.Active == on {
		return s, nil
	}
	s.AutoDraw.Active = on
	return s, []Effect{autoDrawTickers{On: on}}
}

// countdown is presentational: whole seconds until next, never negative.
func countdown(next, now time.Time) int {
	if next.IsZero() {
		return 0
	}
	secs := math.Ceil(next.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}
