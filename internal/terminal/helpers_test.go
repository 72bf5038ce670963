package terminal

import (
	"encoding/json"
	"slices"
	"testing"

	"cashier-terminal/internal/protocol"
)

func readyState() State {
	s := NewState(false, 10)
	s.Identity = Identity{CashierID: "c1", SessionID: "s1"}
	s.Connected = true
	s.Game.GameID = "A"
	s.Game.DisplayConnected = true
	s.Ledger.GameID = "A"
	return s
}

func decode(t *testing.T, name, raw string) protocol.Event {
	t.Helper()
	ev, err := protocol.Decode(name, json.RawMessage(raw))
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return ev
}

func apply(t *testing.T, s State, name, raw string) (State, []Effect) {
	t.Helper()
	next, effects, _ := reduceEvent(s, decode(t, name, raw), fixedNow)
	return next, effects
}

func sendsOf(effects []Effect, event string) []sendEffect {
	var out []sendEffect
	for _, e := range effects {
		if se, ok := e.(sendEffect); ok && se.Event == event {
			out = append(out, se)
		}
	}
	return out
}

func noticesOf(effects []Effect) []notify {
	var out []notify
	for _, e := range effects {
		if n, ok := e.(notify); ok {
			out = append(out, n)
		}
	}
	return out
}

func hasLedgerFetch(effects []Effect, gameID string) bool {
	for _, e := range effects {
		if f, ok := e.(fetchLedger); ok && f.GameID == gameID {
			return true
		}
	}
	return false
}

func assertDisjoint(t *testing.T, s State) {
	t.Helper()
	if s.Ledger.GameID != s.Game.GameID {
		return
	}
	for _, id := range s.Selection.IDs {
		if s.Ledger.Has(id) {
			t.Fatalf("cartela %d is both selected and placed: selection=%v", id, s.Selection.IDs)
		}
	}
}

func assertSelection(t *testing.T, s State, want ...int) {
	t.Helper()
	if want == nil {
		want = []int{}
	}
	if !slices.Equal(s.Selection.IDs, want) {
		t.Fatalf("expected selection %v, got %v", want, s.Selection.IDs)
	}
}
