package httptransport

import (
	"errors"
	"net/http"

	"cashier-terminal/internal/auth"
	"cashier-terminal/internal/catalog"
	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/printer"
	"cashier-terminal/internal/reports"
	"cashier-terminal/internal/terminal"
	"cashier-terminal/internal/tickets"

	"github.com/rs/zerolog/log"
)

var errInvalidRequest = errors.New("invalid_request")

// errorBody is {"error": code} plus the cashier-facing message when there is one.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		log.Warn().Err(err).Int("status", status).Msg("api_request_failed")
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var (
		gate     *tickets.GateError
		invalid  *catalog.ValidationError
		badRange *reports.RangeError
		apiErr   *gameapi.APIError
	)
	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, errorBody{Error: errInvalidRequest.Error()}

	case errors.Is(err, terminal.ErrNotConnected):
		return http.StatusServiceUnavailable, terminalBody(terminal.ErrNotConnected, err)
	case errors.Is(err, terminal.ErrSendFailed):
		return http.StatusServiceUnavailable, terminalBody(terminal.ErrSendFailed, err)
	case errors.Is(err, terminal.ErrClosed):
		return http.StatusServiceUnavailable, errorBody{Error: terminal.ErrClosed.Error()}
	case errors.Is(err, terminal.ErrNoSession):
		return http.StatusUnauthorized, terminalBody(terminal.ErrNoSession, err)
	case errors.Is(err, terminal.ErrNoCashier):
		return http.StatusUnauthorized, terminalBody(terminal.ErrNoCashier, err)
	case errors.Is(err, terminal.ErrInvalidCartela):
		return http.StatusBadRequest, terminalBody(terminal.ErrInvalidCartela, err)
	case errors.Is(err, terminal.ErrInvalidStake):
		return http.StatusBadRequest, terminalBody(terminal.ErrInvalidStake, err)
	case errors.Is(err, terminal.ErrUnknownCommand):
		return http.StatusBadRequest, errorBody{Error: terminal.ErrUnknownCommand.Error()}
	case errors.Is(err, terminal.ErrCartelaPlaced),
		errors.Is(err, terminal.ErrAlreadySelected),
		errors.Is(err, terminal.ErrNotSelected),
		errors.Is(err, terminal.ErrIntentPending),
		errors.Is(err, terminal.ErrEmptySelection),
		errors.Is(err, terminal.ErrBetInFlight),
		errors.Is(err, terminal.ErrGameNotWaiting),
		errors.Is(err, terminal.ErrGameNotActive),
		errors.Is(err, terminal.ErrDisplayDisconnected),
		errors.Is(err, terminal.ErrNotEnoughBets),
		errors.Is(err, terminal.ErrCannotEnd):
		return http.StatusConflict, errorBody{Error: sentinelCode(err), Message: terminal.ErrorText(err)}

	case errors.Is(err, tickets.ErrInvalidTicketNumber):
		return http.StatusBadRequest, errorBody{Error: tickets.ErrInvalidTicketNumber.Error(), Message: "Ticket number must be 13 digits"}
	case errors.Is(err, tickets.ErrInvalidMode):
		return http.StatusBadRequest, errorBody{Error: tickets.ErrInvalidMode.Error()}
	case errors.Is(err, tickets.ErrNoTicket):
		return http.StatusConflict, errorBody{Error: tickets.ErrNoTicket.Error(), Message: "Look up a ticket first"}
	case errors.As(err, &gate):
		return http.StatusConflict, errorBody{Error: "ticket_not_eligible", Message: gate.Reason}

	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, errorBody{Error: catalog.ErrInvalid.Error(), Message: invalid.Message}
	case errors.As(err, &badRange):
		return http.StatusBadRequest, errorBody{Error: reports.ErrInvalidRange.Error(), Message: badRange.Message}
	case errors.Is(err, reports.ErrGameNotFound):
		return http.StatusNotFound, errorBody{Error: reports.ErrGameNotFound.Error()}
	case errors.Is(err, reports.ErrTicketNotFound):
		return http.StatusNotFound, errorBody{Error: reports.ErrTicketNotFound.Error()}

	case errors.Is(err, printer.ErrDisabled), errors.Is(err, printer.ErrNotStarted), errors.Is(err, printer.ErrQueueFull):
		return http.StatusServiceUnavailable, errorBody{Error: sentinelCode(err), Message: "Printer is not available"}

	case errors.Is(err, auth.ErrMissingIdentity):
		return http.StatusUnauthorized, errorBody{Error: auth.ErrMissingIdentity.Error()}

	case errors.As(err, &apiErr):
		return upstreamStatus(apiErr), errorBody{Error: apiErr.Kind.Error(), Message: gameapi.Message(err)}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal_error"}
}

func terminalBody(sentinel, err error) errorBody {
	return errorBody{Error: sentinel.Error(), Message: terminal.ErrorText(err)}
}

// sentinelCode unwraps to the innermost error so wrapped sentinels keep their code.
func sentinelCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func upstreamStatus(e *gameapi.APIError) int {
	switch {
	case errors.Is(e, gameapi.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(e, gameapi.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(e, gameapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(e, gameapi.ErrLocked):
		return http.StatusLocked
	case errors.Is(e, gameapi.ErrRejected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}
