package terminal

import (
	"testing"

	"cashier-terminal/internal/protocol"
)

func TestRefreshReplacesWholesaleKeepingDetails(t *testing.T) {
	s := readyState()
	s.Ledger = s.Ledger.add([]int{5, 12}, []string{"T5", "T12"}, 20, fixedNow)

	next, ok := refreshFromServer(s, "A", []int{12, 40}, fixedNow)
	if !ok {
		t.Fatalf("refresh for the tracked game should apply")
	}
	if next.Ledger.Has(5) {
		t.Fatalf("5 is no longer placed on the server")
	}
	if rec := next.Ledger.Records[12]; rec.TicketNumber != "T12" || rec.Stake != 20 {
		t.Fatalf("details of surviving id lost: %#v", rec)
	}
	if rec := next.Ledger.Records[40]; rec.Status != betStatusActive {
		t.Fatalf("new id not recorded: %#v", rec)
	}
	if s.Ledger.Has(40) {
		t.Fatalf("refresh mutated the previous state")
	}
}

func TestRefreshForSupersededGameDropped(t *testing.T) {
	s := readyState()
	s.Game.GameID = "B"
	s.Ledger = PlacedBets{GameID: "B", Records: map[int]PlacedBetRecord{}}
	next, ok := refreshFromServer(s, "A", []int{1, 2, 3}, fixedNow)
	if ok || len(next.Ledger.Records) != 0 {
		t.Fatalf("ledger for A must not land in B: %#v", next.Ledger)
	}
}

func TestRefreshNormalizesSelection(t *testing.T) {
	s := readyState()
	s.Selection.IDs = []int{4, 9}
	next, _ := refreshFromServer(s, "A", []int{9}, fixedNow)
	assertSelection(t, next, 4)
	assertDisjoint(t, next)
}

func TestPushedPlacement(t *testing.T) {
	s := readyState()
	s.Selection.IDs = []int{21}
	next, _ := apply(t, s, protocol.BetsPlaced, `{"cartelaIds":[21,22],"ticketNumbers":["T21",2200000000000],"stake":50,"gameId":"A"}`)
	if next.Ledger.Records[22].TicketNumber != "2200000000000" || next.Ledger.Records[21].Stake != 50 {
		t.Fatalf("unexpected ledger %#v", next.Ledger.Records)
	}
	assertSelection(t, next)
}

func TestPushedPlacementForStaleGameDropped(t *testing.T) {
	s := readyState()
	next, _, ok := reduceEvent(s, decode(t, protocol.BetPlaced, `{"cartelaIds":[3],"gameId":"old"}`), fixedNow)
	if ok || next.Ledger.Has(3) {
		t.Fatalf("stale placement must be dropped")
	}
}

func TestAdoptResetsForeignLedger(t *testing.T) {
	p := PlacedBets{GameID: "A", Records: map[int]PlacedBetRecord{1: {}}}
	if got := p.adopt("A"); len(got.Records) != 1 {
		t.Fatalf("same game must keep records")
	}
	if got := p.adopt("B"); got.GameID != "B" || len(got.Records) != 0 {
		t.Fatalf("new game must start empty: %#v", got)
	}
}

func TestPlacedBetsUpdatedRefetchesLedger(t *testing.T) {
	s := readyState()
	if _, effects := apply(t, s, protocol.PlacedBetsUpdated, `{"gameId":"A","sessionId":"s1"}`); !hasLedgerFetch(effects, "A") {
		t.Fatalf("expected ledger refetch, got %#v", effects)
	}
	if _, effects := apply(t, s, protocol.PlacedBetsUpdated, `{}`); !hasLedgerFetch(effects, "A") {
		t.Fatalf("unscoped update should refetch the tracked game")
	}
	for _, raw := range []string{`{"gameId":"B"}`, `{"sessionId":"s2"}`} {
		if _, _, ok := reduceEvent(s, decode(t, protocol.PlacedBetsUpdated, raw), fixedNow); ok {
			t.Fatalf("%s: foreign update must be dropped", raw)
		}
	}
}

func TestGameResetRefreshesOwnSession(t *testing.T) {
	s := readyState()
	if _, effects := apply(t, s, protocol.GameReset, `{"sessionId":"s1"}`); !hasLedgerFetch(effects, "A") {
		t.Fatalf("expected full refresh, got %#v", effects)
	}
	if _, _, ok := reduceEvent(s, decode(t, protocol.GameReset, `{"sessionId":"s9"}`), fixedNow); ok {
		t.Fatalf("reset for another session must be dropped")
	}
}
