package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"cashier-terminal/internal/terminal"

	"github.com/go-chi/chi/v5"
)

type Terminal interface {
	Snapshot() terminal.State
	Select(ctx context.Context, cartelaID int) error
	Deselect(ctx context.Context, cartelaID int) error
	SetSingleMode(ctx context.Context, on bool) error
	SetStake(ctx context.Context, stake int) error
	PlaceBet(ctx context.Context) (string, error)
	StartGame(ctx context.Context) error
	EndGame(ctx context.Context) error
	DrawNumber(ctx context.Context) error
	RefreshDisplay(ctx context.Context) error
	Refresh(ctx context.Context) error
	AutoDraw(ctx context.Context, cmd terminal.AutoDrawCommand) error
}

type TerminalHandlers struct {
	term Terminal
}

func NewTerminalHandlers(term Terminal) *TerminalHandlers {
	return &TerminalHandlers{term: term}
}

func (h *TerminalHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.term.Snapshot().View())
	}
}

// command runs fn and answers with the state it produced.
func (h *TerminalHandlers) command(fn func(ctx context.Context, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context(), r); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.term.Snapshot().View())
	}
}

func cartelaParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "cartela_id"))
	if err != nil {
		return 0, terminal.ErrInvalidCartela
	}
	return id, nil
}

func (h *TerminalHandlers) Select() http.HandlerFunc {
	return h.command(func(ctx context.Context, r *http.Request) error {
		id, err := cartelaParam(r)
		if err != nil {
			return err
		}
		return h.term.Select(ctx, id)
	})
}

func (h *TerminalHandlers) Deselect() http.HandlerFunc {
	return h.command(func(ctx context.Context, r *http.Request) error {
		id, err := cartelaParam(r)
		if err != nil {
			return err
		}
		return h.term.Deselect(ctx, id)
	})
}

func (h *TerminalHandlers) SingleMode() http.HandlerFunc {
	return h.command(func(ctx context.Context, r *http.Request) error {
		var req struct {
			Enabled *bool `json:"enabled"`
		}
		if err := decodeJSON(r, &req); err != nil || req.Enabled == nil {
			return errInvalidRequest
		}
		return h.term.SetSingleMode(ctx, *req.Enabled)
	})
}

func (h *TerminalHandlers) Stake() http.HandlerFunc {
	return h.command(func(ctx context.Context, r *http.Request) error {
		var req struct {
			Stake int `json:"stake"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return errInvalidRequest
		}
		return h.term.SetStake(ctx, req.Stake)
	})
}

// PlaceBet answers 202: confirmation arrives later on the event stream.
func (h *TerminalHandlers) PlaceBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, err := h.term.PlaceBet(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"request_id": requestID,
			"state":      h.term.Snapshot().View(),
		})
	}
}

func (h *TerminalHandlers) StartGame() http.HandlerFunc {
	return h.command(func(ctx context.Context, _ *http.Request) error { return h.term.StartGame(ctx) })
}

func (h *TerminalHandlers) EndGame() http.HandlerFunc {
	return h.command(func(ctx context.Context, _ *http.Request) error { return h.term.EndGame(ctx) })
}

func (h *TerminalHandlers) Draw() http.HandlerFunc {
	return h.command(func(ctx context.Context, _ *http.Request) error { return h.term.DrawNumber(ctx) })
}

func (h *TerminalHandlers) RefreshDisplay() http.HandlerFunc {
	return h.command(func(ctx context.Context, _ *http.Request) error { return h.term.RefreshDisplay(ctx) })
}

func (h *TerminalHandlers) Refresh() http.HandlerFunc {
	return h.command(func(ctx context.Context, _ *http.Request) error { return h.term.Refresh(ctx) })
}

func (h *TerminalHandlers) AutoDraw() http.HandlerFunc {
	return h.command(func(ctx context.Context, r *http.Request) error {
		return h.term.AutoDraw(ctx, terminal.AutoDrawCommand(chi.URLParam(r, "command")))
	})
}
