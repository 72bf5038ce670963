package terminal

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"cashier-terminal/internal/protocol"
)

const (
	outcomeConfirmed = "confirmed"
	outcomeRejected  = "rejected"
	outcomeTimedOut  = "timed_out"
)

// placeBet opens the single pending slot. Preconditions fail without any send.
func placeBet(s State, requestID string, now time.Time) (State, []Effect, error) {
	switch {
	case s.Bet.Phase == BetPending:
		return s, nil, ErrBetInFlight
	case !s.Connected:
		return s, nil, ErrNotConnected
	case s.Identity.CashierID == "":
		return s, nil, ErrNoCashier
	case s.Identity.SessionID == "":
		return s, nil, ErrNoSession
	case len(s.Selection.IDs) == 0:
		return s, nil, ErrEmptySelection
	case s.Game.Status != StatusWaiting:
		return s, nil, ErrGameNotWaiting
	case !ValidStake(s.Stake):
		return s, nil, ErrInvalidStake
	}
	ids := slices.Clone(s.Selection.IDs)
	s.Bet = BetSlot{
		Phase:       BetPending,
		RequestID:   requestID,
		GameID:      s.Game.GameID,
		CartelaIDs:  ids,
		Stake:       s.Stake,
		StartedAt:   now,
		LastOutcome: s.Bet.LastOutcome,
	}
	return s, []Effect{
		sendEffect{Event: protocol.PlaceBet, Payload: protocol.PlaceBetIntent{
			SessionID:  s.Identity.SessionID,
			CartelaIDs: ids,
			Stake:      s.Stake,
			CashierID:  s.Identity.CashierID,
			RequestID:  requestID,
		}},
		armBetTimer{RequestID: requestID},
	}, nil
}

func onBetConfirmed(s State, ev protocol.BetConfirmed, now time.Time) (State, []Effect, bool) {
	if s.Bet.Phase != BetPending || (ev.RequestID != "" && ev.RequestID != s.Bet.RequestID) {
		return s, nil, false
	}
	ids := ev.CartelaIDs
	if len(ids) == 0 {
		ids = s.Bet.CartelaIDs
	}
	stake := ev.Stake
	if stake == 0 {
		stake = s.Bet.Stake
	}
	gameID := ev.GameID
	if gameID == "" {
		gameID = s.Bet.GameID
	}

	s.Bet.Phase = BetConfirmed
	s.Bet.LastOutcome = outcomeConfirmed
	s.Selection.IDs = []int{}
	s.Selection.pending = nil

	effects := []Effect{
		betOutcome{Outcome: outcomeConfirmed},
		success(fmt.Sprintf("%d ticket(s) placed", len(ids))),
	}
	if gameID != s.Game.GameID {
		// the bet landed in a game we no longer track; let the server say what is placed
		return s, append(effects, fetchLedger{GameID: s.Game.GameID}), true
	}
	s = applyLocalPlacement(s, gameID, ids, ev.TicketNumbers, stake, now)
	return s, effects, true
}

func onBetRejected(s State, ev protocol.BetRejected) (State, []Effect, bool) {
	if s.Bet.Phase != BetPending {
		return s, nil, false
	}
	s.Bet = BetSlot{Phase: BetIdle, LastOutcome: outcomeRejected}
	msg := ev.Message
	if msg == "" {
		msg = "Failed to place bet."
	}
	return s, []Effect{betOutcome{Outcome: outcomeRejected}, failure(msg)}, true
}

// onPrintStatus is informational. A print failure never undoes a placed bet.
func onPrintStatus(s State, ev protocol.PrintStatus) (State, []Effect, bool) {
	if s.Bet.Phase == BetIdle {
		return s, nil, false
	}
	switch {
	case ev.Failed > 0:
		return s, []Effect{warning(fmt.Sprintf("%d ticket(s) failed to print", ev.Failed))}, true
	case ev.Message != "":
		return s, []Effect{info(ev.Message)}, true
	case ev.Successful > 0:
		return s, []Effect{info(fmt.Sprintf("%d ticket(s) printed", ev.Successful))}, true
	}
	return s, nil, true
}

// onBetTimeout closes the slot. Anything arriving for the request afterwards is ignored.
func onBetTimeout(s State, requestID string) (State, []Effect, bool) {
	if s.Bet.Phase == BetIdle || s.Bet.RequestID != requestID {
		return s, nil, false
	}
	if s.Bet.Phase == BetConfirmed {
		s.Bet = BetSlot{Phase: BetIdle, LastOutcome: s.Bet.LastOutcome}
		return s, nil, true
	}
	s.Bet = BetSlot{Phase: BetIdle, LastOutcome: outcomeTimedOut}
	return s, []Effect{
		betOutcome{Outcome: outcomeTimedOut},
		failure("Bet placement timed out. Please try again."),
	}, true
}

func setStake(s State, stake int) (State, []Effect, error) {
	if !ValidStake(stake) {
		return s, nil, ErrInvalidStake
	}
	s.Stake = stake
	return s, []Effect{persistPref{Key: PrefStake, Value: strconv.Itoa(stake)}}, nil
}
