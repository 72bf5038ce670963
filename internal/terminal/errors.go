package terminal

import (
	"errors"
	"fmt"

	"cashier-terminal/internal/transport/ws"
)

var (
	ErrClosed              = errors.New("terminal_closed")
	ErrNotConnected        = errors.New("not_connected")
	ErrNoSession           = errors.New("no_session")
	ErrNoCashier           = errors.New("no_cashier")
	ErrInvalidCartela      = errors.New("invalid_cartela")
	ErrCartelaPlaced       = errors.New("cartela_has_placed_bet")
	ErrAlreadySelected     = errors.New("already_selected")
	ErrNotSelected         = errors.New("not_selected")
	ErrIntentPending       = errors.New("intent_pending")
	ErrEmptySelection      = errors.New("empty_selection")
	ErrBetInFlight         = errors.New("bet_in_flight")
	ErrInvalidStake        = errors.New("invalid_stake")
	ErrGameNotWaiting      = errors.New("game_not_waiting")
	ErrGameNotActive       = errors.New("game_not_active")
	ErrDisplayDisconnected = errors.New("display_disconnected")
	ErrNotEnoughBets       = errors.New("not_enough_bets")
	ErrCannotEnd           = errors.New("cannot_end_game")
	ErrUnknownCommand      = errors.New("unknown_command")
	ErrSendFailed          = errors.New("send_failed")
)

// noticeText is the cashier-facing line for a rejected command.
func noticeText(err error) string {
	switch {
	case errors.Is(err, ErrNotConnected):
		return "Not connected to the game server."
	case errors.Is(err, ErrNoSession):
		return "No game session. Please log in again."
	case errors.Is(err, ErrNoCashier):
		return "Cashier identity is missing."
	case errors.Is(err, ErrInvalidCartela):
		return "Please enter a valid cartela ID (1-210)."
	case errors.Is(err, ErrCartelaPlaced):
		return "This cartela already has a placed bet."
	case errors.Is(err, ErrAlreadySelected):
		return "Cartela is already selected."
	case errors.Is(err, ErrNotSelected):
		return "Cartela is not selected."
	case errors.Is(err, ErrIntentPending):
		return "Waiting for the server to answer the previous request."
	case errors.Is(err, ErrGameNotWaiting):
		return "Game is not accepting bets."
	case errors.Is(err, ErrGameNotActive):
		return "Game is not active."
	case errors.Is(err, ErrDisplayDisconnected):
		return "Display is not connected."
	case errors.Is(err, ErrNotEnoughBets):
		return "At least 3 placed bets are required to start."
	case errors.Is(err, ErrCannotEnd):
		return "There is no game to end."
	case errors.Is(err, ErrInvalidStake):
		return "Stake must be between 5 and 1000."
	case errors.Is(err, ErrSendFailed):
		return "Could not reach the game server. Please try again."
	}
	return "Request failed. Please try again."
}

// ErrorText is the cashier-facing line for err, for callers outside the loop.
func ErrorText(err error) string { return noticeText(err) }

// sendError maps a socket write failure onto the terminal's sentinels.
func sendError(err error) error {
	if errors.Is(err, ws.ErrNotConnected) {
		return ErrNotConnected
	}
	return fmt.Errorf("%w: %v", ErrSendFailed, err)
}
