package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/protocol"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidTicketNumber = errors.New("invalid_ticket_number")
	ErrNoTicket            = errors.New("no_ticket")
	ErrInvalidMode         = errors.New("invalid_mode")
)

type Mode string

const (
	ModeCancel Mode = "cancel"
	ModeRedeem Mode = "redeem"
)

const cancelReason = "Cancelled by cashier"

// GateError carries the cashier-facing reason a ticket cannot be acted on.
type GateError struct {
	Reason string
}

func (e *GateError) Error() string { return e.Reason }

type Backend interface {
	SearchTicket(ctx context.Context, ticketNumber string) (gameapi.TicketInfo, error)
	CancelTicket(ctx context.Context, ticketNumber, reason string) error
	RedeemTicket(ctx context.Context, ticketNumber string) (gameapi.RedeemResult, error)
}

// Canceller is told about cancellations so the reconciled ledger frees the cartela.
type Canceller interface {
	TicketCancelled(ctx context.Context, cartelaID int, gameID string) error
}

type Result struct {
	Mode    Mode               `json:"mode"`
	Ticket  gameapi.TicketInfo `json:"ticket"`
	Message string             `json:"message"`
}

type Outcome struct {
	Mode         Mode    `json:"mode"`
	TicketNumber string  `json:"ticket_number"`
	Message      string  `json:"message"`
	IsWinner     bool    `json:"is_winner,omitempty"`
	PrizeAmount  float64 `json:"prize_amount,omitempty"`
}

// Flow holds the single in-flight lookup record. A new lookup replaces it.
type Flow struct {
	backend   Backend
	canceller Canceller

	mu      sync.Mutex
	current *Result
}

func NewFlow(backend Backend, canceller Canceller) *Flow {
	return &Flow{backend: backend, canceller: canceller}
}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeCancel:
		return ModeCancel, nil
	case ModeRedeem:
		return ModeRedeem, nil
	}
	return "", ErrInvalidMode
}

// Gate decides whether the looked-up ticket may be acted on in mode.
func Gate(mode Mode, t gameapi.TicketInfo) error {
	game := strings.ToLower(t.GameStatus)
	bet := strings.ToLower(t.BetStatus)
	switch mode {
	case ModeCancel:
		switch {
		case game == "completed":
			return &GateError{Reason: "Already Completed Game"}
		case game == "active":
			return &GateError{Reason: "Already Started Game"}
		case bet == "cancelled":
			return &GateError{Reason: "Already Canceled Ticket"}
		case !t.CanCancel:
			return &GateError{Reason: "This ticket cannot be cancelled"}
		}
	case ModeRedeem:
		switch {
		case game != "completed":
			return &GateError{Reason: "Only completed games can be redeemed"}
		case bet == "redeemed":
			return &GateError{Reason: "Already Redeemed"}
		case bet == "cancelled":
			return &GateError{Reason: "Cancelled tickets cannot be redeemed"}
		}
	default:
		return ErrInvalidMode
	}
	return nil
}

func foundMessage(mode Mode, t gameapi.TicketInfo) string {
	if mode == ModeCancel {
		return "Ticket found and can be cancelled"
	}
	switch {
	case strings.EqualFold(t.BetStatus, "lost"):
		return "Ticket found - Game completed (Ticket lost)"
	case t.RedemptionStatus == "already_redeemed":
		return "Ticket found - Game already redeemed"
	case t.CanRedeem:
		return "Ticket found - Winner! Can be redeemed"
	}
	return "Ticket found - Game completed"
}

// Lookup searches code and keeps the record if it passes the gate for mode.
// The previous record is dropped whatever the outcome.
func (f *Flow) Lookup(ctx context.Context, mode Mode, code string) (Result, error) {
	f.Clear()
	code = strings.TrimSpace(code)
	if !ValidTicketNumber(code) {
		return Result{}, ErrInvalidTicketNumber
	}
	info, err := f.backend.SearchTicket(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if err := Gate(mode, info); err != nil {
		log.Info().Str("ticket", code).Str("mode", string(mode)).Str("reason", err.Error()).Msg("ticket_gate_refused")
		return Result{}, err
	}
	if info.TicketNumber == "" {
		info.TicketNumber = protocol.FlexString(code)
	}
	res := Result{Mode: mode, Ticket: info, Message: foundMessage(mode, info)}
	f.mu.Lock()
	f.current = &res
	f.mu.Unlock()
	return res, nil
}

func (f *Flow) Current() (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Result{}, false
	}
	return *f.current, true
}

func (f *Flow) Clear() {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
}

// Confirm performs the action on the current record and clears it on success.
func (f *Flow) Confirm(ctx context.Context) (Outcome, error) {
	res, ok := f.Current()
	if !ok {
		return Outcome{}, ErrNoTicket
	}
	ticket := res.Ticket.TicketNumber.String()
	out := Outcome{Mode: res.Mode, TicketNumber: ticket}

	switch res.Mode {
	case ModeCancel:
		if err := f.backend.CancelTicket(ctx, ticket, cancelReason); err != nil {
			return Outcome{}, err
		}
		out.Message = fmt.Sprintf("Ticket %s cancelled successfully", ticket)
		if f.canceller != nil {
			if err := f.canceller.TicketCancelled(ctx, res.Ticket.CartelaID, res.Ticket.GameID.String()); err != nil {
				log.Warn().Err(err).Str("ticket", ticket).Msg("ticket_cancel_not_reconciled")
			}
		}
	case ModeRedeem:
		r, err := f.backend.RedeemTicket(ctx, ticket)
		if err != nil {
			return Outcome{}, err
		}
		out.IsWinner = r.IsWinner
		out.PrizeAmount = r.PrizeAmount
		if r.IsWinner {
			out.Message = fmt.Sprintf("Congratulations! Ticket %s won Br. %.2f!", ticket, r.PrizeAmount)
		} else {
			out.Message = fmt.Sprintf("Ticket %s redeemed successfully. Game already won by another ticket.", ticket)
		}
	}

	f.mu.Lock()
	if f.current != nil && f.current.Ticket.TicketNumber == res.Ticket.TicketNumber {
		f.current = nil
	}
	f.mu.Unlock()
	log.Info().Str("ticket", ticket).Str("mode", string(res.Mode)).Msg("ticket_action_done")
	return out, nil
}
