package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cashier-terminal/internal/auth"
	"cashier-terminal/internal/catalog"
	"cashier-terminal/internal/gameapi"
	"cashier-terminal/internal/reports"
	"cashier-terminal/internal/terminal"
	"cashier-terminal/internal/tickets"
	"cashier-terminal/internal/uistream"
)

type fakeTerminal struct {
	mu       sync.Mutex
	calls    []string
	err      error
	selected []int
}

func (f *fakeTerminal) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeTerminal) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeTerminal) selectedIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.selected...)
}

func (f *fakeTerminal) Snapshot() terminal.State { return terminal.NewState(false, 10) }

func (f *fakeTerminal) Select(_ context.Context, id int) error {
	f.mu.Lock()
	f.selected = append(f.selected, id)
	f.mu.Unlock()
	return f.record("select")
}

func (f *fakeTerminal) Deselect(context.Context, int) error { return f.record("deselect") }
func (f *fakeTerminal) SetSingleMode(context.Context, bool) error { return f.record("single_mode") }
func (f *fakeTerminal) SetStake(context.Context, int) error { return f.record("stake") }
func (f *fakeTerminal) StartGame(context.Context) error { return f.record("start") }
func (f *fakeTerminal) EndGame(context.Context) error { return f.record("end") }
func (f *fakeTerminal) DrawNumber(context.Context) error { return f.record("draw") }
func (f *fakeTerminal) RefreshDisplay(context.Context) error { return f.record("display") }
func (f *fakeTerminal) Refresh(context.Context) error { return f.record("refresh") }

func (f *fakeTerminal) AutoDraw(_ context.Context, cmd terminal.AutoDrawCommand) error {
	return f.record("auto_draw_" + string(cmd))
}

func (f *fakeTerminal) PlaceBet(context.Context) (string, error) {
	if err := f.record("place_bet"); err != nil {
		return "", err
	}
	return "bet_1", nil
}

type fakeTickets struct {
	current *tickets.Result
}

func (f *fakeTickets) Lookup(_ context.Context, mode tickets.Mode, code string) (tickets.Result, error) {
	if code == "1111111111111" {
		return tickets.Result{}, &tickets.GateError{Reason: "Already Started Game"}
	}
	res := tickets.Result{Mode: mode, Message: "Ticket found and can be cancelled"}
	f.current = &res
	return res, nil
}

func (f *fakeTickets) Current() (tickets.Result, bool) {
	if f.current == nil {
		return tickets.Result{}, false
	}
	return *f.current, true
}

func (f *fakeTickets) Clear() { f.current = nil }

func (f *fakeTickets) Confirm(context.Context) (tickets.Outcome, error) {
	if f.current == nil {
		return tickets.Outcome{}, tickets.ErrNoTicket
	}
	return tickets.Outcome{Mode: f.current.Mode, Message: "done"}, nil
}

type fakeReports struct{}

func (fakeReports) Summary(_ context.Context, from, _ string) (gameapi.Summary, error) {
	if from == "bad" {
		return gameapi.Summary{}, &reports.RangeError{Message: "Invalid date format"}
	}
	return gameapi.Summary{Tickets: 2}, nil
}

func (fakeReports) Games(context.Context, gameapi.GameSearchParams) (gameapi.GameSearchResult, error) {
	return gameapi.GameSearchResult{Total: 1}, nil
}

func (fakeReports) Recall(context.Context, reports.RecallQuery) (reports.RecallList, error) {
	return reports.RecallList{Bets: []gameapi.RecallBet{}}, nil
}

func (fakeReports) Reprint(_ context.Context, ticket string) (string, error) {
	return "ticket-" + ticket, nil
}

func (fakeReports) PrintSummary(context.Context, string, string) (string, error) {
	return "summary-1", nil
}

func (fakeReports) PrintResults(context.Context, string) (string, error) {
	return "", reports.ErrGameNotFound
}

type fakeCatalog struct{ catalog.Service }

type fakeSessions struct{ current auth.Session }

func (f *fakeSessions) Current() auth.Session { return f.current }

func (f *fakeSessions) Logout(context.Context) error {
	f.current = auth.Session{}
	return nil
}

type fakeVerifier struct{ locked bool }

func (f *fakeVerifier) VerifyCartela(_ context.Context, in gameapi.VerifyRequest) (gameapi.Verification, error) {
	return gameapi.Verification{CartelaID: in.CartelaID, Status: "checked"}, nil
}

func (f *fakeVerifier) LockVerification(_ context.Context, in gameapi.VerifyRequest) (gameapi.Verification, error) {
	f.locked = true
	return gameapi.Verification{CartelaID: in.CartelaID, Status: "locked"}, nil
}

type testEnv struct {
	srv      *httptest.Server
	term     *fakeTerminal
	tickets  *fakeTickets
	verifier *fakeVerifier
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{term: &fakeTerminal{}, tickets: &fakeTickets{}, verifier: &fakeVerifier{}}
	r := NewRouter(Deps{
		Terminal: env.term,
		Tickets:  env.tickets,
		Reports:  fakeReports{},
		Catalog:  &fakeCatalog{},
		Sessions: &fakeSessions{current: auth.Session{Token: "t", CashierID: "c1", Username: "cash1"}},
		Verifier: env.verifier,
		Stream:   uistream.NewBuffer(10),
	})
	env.srv = httptest.NewServer(r)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestSelectReturnsState(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/selection/7", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, body)
	}
	if _, ok := body["selected_cartelas"]; !ok {
		t.Fatalf("expected a state view, got %v", body)
	}
	if got := env.term.selectedIDs(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("unexpected select calls %v", got)
	}

	resp, body = env.do(t, http.MethodPost, "/api/selection/abc", "")
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid_cartela" {
		t.Fatalf("expected invalid_cartela, got %d %v", resp.StatusCode, body)
	}
}

func TestCommandErrorsCarryMessage(t *testing.T) {
	env := newEnv(t)
	env.term.err = terminal.ErrNotEnoughBets
	resp, body := env.do(t, http.MethodPost, "/api/game/start", "")
	if resp.StatusCode != http.StatusConflict || body["error"] != "not_enough_bets" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	if body["message"] != "At least 3 placed bets are required to start." {
		t.Fatalf("unexpected message %v", body["message"])
	}
}

func TestPlaceBetAccepted(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/bets", "")
	if resp.StatusCode != http.StatusAccepted || body["request_id"] != "bet_1" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
}

func TestSettingsValidation(t *testing.T) {
	env := newEnv(t)
	resp, _ := env.do(t, http.MethodPut, "/api/settings/single-mode", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing flag should be rejected, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPut, "/api/settings/single-mode", `{"enabled":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodPost, "/api/autodraw/start", "")
	if resp.StatusCode != http.StatusOK || env.term.lastCall() != "auto_draw_start" {
		t.Fatalf("auto draw not forwarded: %d %q", resp.StatusCode, env.term.lastCall())
	}
}

func TestTicketRoutes(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/tickets/lookup", `{"mode":"void","ticket_number":"1234567890123"}`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid_mode" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, body = env.do(t, http.MethodPost, "/api/tickets/lookup", `{"mode":"cancel","ticket_number":"1111111111111"}`)
	if resp.StatusCode != http.StatusConflict || body["message"] != "Already Started Game" {
		t.Fatalf("gate reason not surfaced: %d %v", resp.StatusCode, body)
	}
	resp, body = env.do(t, http.MethodPost, "/api/tickets/confirm", "")
	if resp.StatusCode != http.StatusConflict || body["error"] != "no_ticket" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, _ = env.do(t, http.MethodPost, "/api/tickets/lookup", `{"mode":"cancel","ticket_number":"1234567890123"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup failed: %d", resp.StatusCode)
	}
	resp, body = env.do(t, http.MethodPost, "/api/tickets/confirm", "")
	if resp.StatusCode != http.StatusOK || body["message"] != "done" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
}

func TestReportRoutes(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/reports/summary?from=bad", "")
	if resp.StatusCode != http.StatusBadRequest || body["message"] != "Invalid date format" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, body = env.do(t, http.MethodPost, "/api/reports/recall/1234567890123/reprint", "")
	if resp.StatusCode != http.StatusAccepted || body["job_id"] != "ticket-1234567890123" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, _ = env.do(t, http.MethodPost, "/api/reports/games/print", `{"gameId":"G1"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCatalogToggleNeedsFlag(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPatch, "/api/cartelas/abc/toggle", `{}`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid_request" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
}

func TestVerificationAndSession(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodPost, "/api/verification/lock", `{"cartelaId":5,"gameId":"G1"}`)
	if resp.StatusCode != http.StatusOK || body["status"] != "locked" || !env.verifier.locked {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, _ = env.do(t, http.MethodPost, "/api/verification/verify", `{"gameId":"G1"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing cartela should be rejected, got %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodGet, "/api/session", "")
	if resp.StatusCode != http.StatusOK || body["cashier_id"] != "c1" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	if _, leaked := body["token"]; leaked {
		t.Fatalf("token must not be exposed")
	}
	resp, _ = env.do(t, http.MethodPost, "/api/session/logout", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodGet, "/api/session", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	env := newEnv(t)
	resp, body := env.do(t, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK || body["ok"] != true {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
	resp, body = env.do(t, http.MethodGet, "/nope", "")
	if resp.StatusCode != http.StatusNotFound || body["error"] != "not_found" {
		t.Fatalf("unexpected %d %v", resp.StatusCode, body)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"wrapped terminal sentinel", fmt.Errorf("start: %w", terminal.ErrGameNotActive), http.StatusConflict, "game_not_active"},
		{"not connected", terminal.ErrNotConnected, http.StatusServiceUnavailable, "not_connected"},
		{"send failed", fmt.Errorf("%w: send_buffer_full", terminal.ErrSendFailed), http.StatusServiceUnavailable, "send_failed"},
		{"catalog", &catalog.ValidationError{Field: "pattern", Message: "bad"}, http.StatusUnprocessableEntity, "invalid_catalog_entry"},
		{"locked upstream", &gameapi.APIError{Kind: gameapi.ErrLocked, Status: 423, Message: "locked"}, http.StatusLocked, gameapi.ErrLocked.Error()},
		{"unavailable upstream", &gameapi.APIError{Kind: gameapi.ErrUnavailable}, http.StatusBadGateway, gameapi.ErrUnavailable.Error()},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		if status != tc.status || body.Error != tc.code {
			t.Fatalf("%s: got %d %q", tc.name, status, body.Error)
		}
	}
}
