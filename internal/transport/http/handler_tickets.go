package httptransport

import (
	"context"
	"net/http"

	"cashier-terminal/internal/tickets"
)

type Tickets interface {
	Lookup(ctx context.Context, mode tickets.Mode, code string) (tickets.Result, error)
	Current() (tickets.Result, bool)
	Clear()
	Confirm(ctx context.Context) (tickets.Outcome, error)
}

type TicketHandlers struct {
	flow Tickets
}

func NewTicketHandlers(flow Tickets) *TicketHandlers {
	return &TicketHandlers{flow: flow}
}

func (h *TicketHandlers) Lookup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode         string `json:"mode"`
			TicketNumber string `json:"ticket_number"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		mode, err := tickets.ParseMode(req.Mode)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := h.flow.Lookup(r.Context(), mode, req.TicketNumber)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *TicketHandlers) Current() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, ok := h.flow.Current()
		if !ok {
			writeError(w, tickets.ErrNoTicket)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *TicketHandlers) Clear() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.flow.Clear()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *TicketHandlers) Confirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.flow.Confirm(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
