package terminal

import (
	"fmt"
	"time"

	"cashier-terminal/internal/protocol"
)

// reduceEvent is the single entry point for inbound server events. The bool is
// false when the event was stale or foreign and left the state untouched.
func reduceEvent(s State, ev protocol.Event, now time.Time) (State, []Effect, bool) {
	switch ev := ev.(type) {
	case protocol.SelectionConfirmed:
		next, effects := onServerSelectionSnapshot(s, ev)
		return next, effects, true
	case protocol.SelectionRejected:
		next, effects := onSelectionRejected(s, ev)
		return next, effects, true
	case protocol.SelectionBroadcast:
		return onSelectionBroadcast(s, ev)

	case protocol.BetConfirmed:
		return onBetConfirmed(s, ev, now)
	case protocol.BetRejected:
		return onBetRejected(s, ev)
	case protocol.PrintStatus:
		return onPrintStatus(s, ev)
	case protocol.PlacementBroadcast:
		next, ok := applyPushedPlacement(s, ev, now)
		return next, nil, ok
	case protocol.PlacedBetsChanged:
		if foreignSession(s, ev.SessionID) || (ev.GameID != "" && ev.GameID != s.Game.GameID) {
			return s, nil, false
		}
		return s, []Effect{fetchLedger{GameID: s.Game.GameID}}, true

	case protocol.GameSnapshot:
		return onGameSnapshot(s, ev)
	case protocol.GameLifecycle:
		return onLifecycle(s, ev)
	case protocol.GameStartedEvent:
		return onGameStarted(s, ev)
	case protocol.GameStartFailed:
		return onGameStartFailed(s, ev)
	case protocol.NumberDrawnEvent:
		next, ok := onNumberDrawn(s, ev)
		return next, nil, ok
	case protocol.DrawRejectedEvent:
		msg := ev.Reason
		if msg == "" {
			msg = "Draw was rejected."
		}
		return s, []Effect{failure(msg)}, true
	case protocol.DisplayStatus:
		next, ok := onDisplayStatus(s, ev)
		return next, nil, ok

	case protocol.TicketCancelledEvent:
		if foreignSession(s, ev.SessionID) || (ev.GameID != "" && ev.GameID != s.Game.GameID) {
			return s, nil, false
		}
		next, effects := onTicketCancelled(s, ev.CartelaID)
		if ev.TicketNumber != "" {
			effects = append(effects, info(fmt.Sprintf("Ticket %s cancelled", ev.TicketNumber)))
		}
		return next, effects, true

	case protocol.AutoDrawAck:
		return onAutoDrawAck(s, ev)
	case protocol.AutoDrawTelemetry:
		return onAutoDrawTelemetry(s, ev, now)

	case protocol.RefreshRequested:
		if foreignSession(s, ev.SessionID) {
			return s, nil, false
		}
		return s, refetch(s, 0), true
	case protocol.Unauthorized:
		return s, []Effect{failure("Session expired. Please log in again.")}, true
	case protocol.CatalogChanged, protocol.RoomJoinedEvent:
		return s, nil, true
	}
	return s, nil, false
}

// onSendFailed undoes the optimistic part of a command whose intent never left
// the terminal, so the cashier can retry at once.
func onSendFailed(s State, e sendEffect, err error) (State, []Effect) {
	switch p := e.Payload.(type) {
	case protocol.SelectIntent:
		s.Selection = clearPending(s.Selection, p.CartelaID)
	case protocol.PlaceBetIntent:
		if s.Bet.Phase == BetPending && s.Bet.RequestID == p.RequestID {
			s.Bet = BetSlot{Phase: BetIdle, LastOutcome: s.Bet.LastOutcome}
		}
	}
	return s, []Effect{failure(noticeText(err))}
}
