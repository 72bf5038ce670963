package httptransport

import (
	"context"
	"net/http"

	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/reports"

	"github.com/go-chi/chi/v5"
)

type Reports interface {
	Summary(ctx context.Context, from, to string) (gameapi.Summary, error)
	Games(ctx context.Context, params gameapi.GameSearchParams) (gameapi.GameSearchResult, error)
	Recall(ctx context.Context, q reports.RecallQuery) (reports.RecallList, error)
	Reprint(ctx context.Context, ticketNumber string) (string, error)
	PrintSummary(ctx context.Context, from, to string) (string, error)
	PrintResults(ctx context.Context, gameID string) (string, error)
}

type ReportHandlers struct {
	svc Reports
}

func NewReportHandlers(svc Reports) *ReportHandlers {
	return &ReportHandlers{svc: svc}
}

func (h *ReportHandlers) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sum, err := h.svc.Summary(r.Context(), q.Get("from"), q.Get("to"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func (h *ReportHandlers) PrintSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		jobID, err := h.svc.PrintSummary(r.Context(), req.From, req.To)
		writePrintJob(w, jobID, err)
	}
}

func (h *ReportHandlers) Games() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params gameapi.GameSearchParams
		if err := decodeJSON(r, &params); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		res, err := h.svc.Games(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *ReportHandlers) PrintResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GameID string `json:"gameId"`
		}
		if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
			writeError(w, errInvalidRequest)
			return
		}
		jobID, err := h.svc.PrintResults(r.Context(), req.GameID)
		writePrintJob(w, jobID, err)
	}
}

func (h *ReportHandlers) Recall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := h.svc.Recall(r.Context(), reports.RecallQuery{
			Status: q.Get("status"),
			Date:   q.Get("date"),
			SortBy: q.Get("sort_by"),
			Order:  q.Get("order"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (h *ReportHandlers) Reprint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := h.svc.Reprint(r.Context(), chi.URLParam(r, "ticket"))
		writePrintJob(w, jobID, err)
	}
}

func writePrintJob(w http.ResponseWriter, jobID string, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}
