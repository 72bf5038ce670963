package httptransport

import (
	"context"
	"math/rand/v2"
	"net/http"

	"cashier-terminal/internal/catalog"
	"cashier-terminal/internal/gameapi"

	"github.com/go-chi/chi/v5"
)

type Catalog interface {
	Cartelas(ctx context.Context) ([]gameapi.Cartela, error)
	CreateCartela(ctx context.Context, in gameapi.CartelaInput) (gameapi.Cartela, error)
	UpdateCartela(ctx context.Context, id string, in gameapi.CartelaInput) (gameapi.Cartela, error)
	DeleteCartela(ctx context.Context, id string) error
	ToggleCartela(ctx context.Context, id string, active bool) (gameapi.Cartela, error)
	NextCartelaID(ctx context.Context) (int, error)

	WinPatterns(ctx context.Context) ([]gameapi.WinPattern, error)
	CreateWinPattern(ctx context.Context, in gameapi.WinPatternInput) (gameapi.WinPattern, error)
	UpdateWinPattern(ctx context.Context, id string, in gameapi.WinPatternInput) (gameapi.WinPattern, error)
	DeleteWinPattern(ctx context.Context, id string) error
	ToggleWinPattern(ctx context.Context, id string, active bool) (gameapi.WinPattern, error)
}

type CatalogHandlers struct {
	svc Catalog
}

func NewCatalogHandlers(svc Catalog) *CatalogHandlers {
	return &CatalogHandlers{svc: svc}
}

func respond[T any](w http.ResponseWriter, status int, v T, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, v)
}

type toggleRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *CatalogHandlers) Cartelas() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.Cartelas(r.Context())
		respond(w, http.StatusOK, list, err)
	}
}

// Generate suggests a random card and the lowest free id for it.
func (h *CatalogHandlers) Generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next, err := h.svc.NextCartelaID(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		pattern := catalog.GeneratePattern(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		writeJSON(w, http.StatusOK, gameapi.CartelaInput{CartelaID: next, Pattern: pattern, IsActive: true})
	}
}

func (h *CatalogHandlers) CreateCartela() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gameapi.CartelaInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.CreateCartela(r.Context(), in)
		respond(w, http.StatusCreated, out, err)
	}
}

func (h *CatalogHandlers) UpdateCartela() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gameapi.CartelaInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.UpdateCartela(r.Context(), chi.URLParam(r, "id"), in)
		respond(w, http.StatusOK, out, err)
	}
}

func (h *CatalogHandlers) DeleteCartela() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeleteCartela(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *CatalogHandlers) ToggleCartela() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if err := decodeJSON(r, &req); err != nil || req.IsActive == nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.ToggleCartela(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
		respond(w, http.StatusOK, out, err)
	}
}

func (h *CatalogHandlers) WinPatterns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.WinPatterns(r.Context())
		respond(w, http.StatusOK, list, err)
	}
}

func (h *CatalogHandlers) CreateWinPattern() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gameapi.WinPatternInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.CreateWinPattern(r.Context(), in)
		respond(w, http.StatusCreated, out, err)
	}
}

func (h *CatalogHandlers) UpdateWinPattern() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gameapi.WinPatternInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.UpdateWinPattern(r.Context(), chi.URLParam(r, "id"), in)
		respond(w, http.StatusOK, out, err)
	}
}

func (h *CatalogHandlers) DeleteWinPattern() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.DeleteWinPattern(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *CatalogHandlers) ToggleWinPattern() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if err := decodeJSON(r, &req); err != nil || req.IsActive == nil {
			writeError(w, errInvalidRequest)
			return
		}
		out, err := h.svc.ToggleWinPattern(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
		respond(w, http.StatusOK, out, err)
	}
}
