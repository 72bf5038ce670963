package httptransport

import (
	"context"
	"net/http"

	"cashier-terminal/internal/auth"
	"cashier-terminal/internal/gameapi"
)

type Verifier interface {
	VerifyCartela(ctx context.Context, in gameapi.VerifyRequest) (gameapi.Verification, error)
	LockVerification(ctx context.Context, in gameapi.VerifyRequest) (gameapi.Verification, error)
}

type Sessions interface {
	Current() auth.Session
	Logout(ctx context.Context) error
}

type SessionHandlers struct {
	sessions Sessions
	verifier Verifier
}

func NewSessionHandlers(sessions Sessions, verifier Verifier) *SessionHandlers {
	return &SessionHandlers{sessions: sessions, verifier: verifier}
}

func (h *SessionHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// Session reports the signed-in cashier without the token.
func (h *SessionHandlers) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s := h.sessions.Current()
		if !s.Valid() {
			writeError(w, auth.ErrMissingIdentity)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"cashier_id":  s.CashierID,
			"session_id":  s.SessionID,
			"username":    s.Username,
			"full_name":   s.FullName,
			"display_url": s.DisplayURL,
		})
	}
}

func (h *SessionHandlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.sessions.Logout(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *SessionHandlers) verify(lock bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in gameapi.VerifyRequest
		if err := decodeJSON(r, &in); err != nil || in.CartelaID == 0 || in.GameID == "" {
			writeError(w, errInvalidRequest)
			return
		}
		call := h.verifier.VerifyCartela
		if lock {
			call = h.verifier.LockVerification
		}
		out, err := call(r.Context(), in)
		respond(w, http.StatusOK, out, err)
	}
}

func (h *SessionHandlers) Verify() http.HandlerFunc { return h.verify(false) }

func (h *SessionHandlers) Lock() http.HandlerFunc { return h.verify(true) }
