package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeSelectionSnapshot(t *testing.T) {
	ev, err := Decode(CartelaSelectionSuccess, json.RawMessage(`{"cartelaId":14,"selectedCartelas":[14,22]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := ev.(SelectionConfirmed)
	if !ok {
		t.Fatalf("Decode() = %T, want SelectionConfirmed", ev)
	}
	if got.CartelaID != 14 || len(got.Selected) != 2 || got.Deselect {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if got.Name() != CartelaSelectionSuccess {
		t.Fatalf("Name() = %q", got.Name())
	}
}

func TestDecodeDeselectionSnapshotWithoutList(t *testing.T) {
	ev, err := Decode(CartelaDeselectionSuccess, json.RawMessage(`{"cartelaId":3}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := ev.(SelectionConfirmed)
	if !got.Deselect || got.Selected == nil || len(got.Selected) != 0 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestDecodeBetConfirmedNumericTickets(t *testing.T) {
	raw := `{"cartelaIds":[14,22],"ticketNumbers":[1234567890123,"T2"],"stake":10,"totalStake":20,"gameId":42}`
	ev, err := Decode(BetPlacedSuccess, json.RawMessage(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := ev.(BetConfirmed)
	if got.TicketNumbers[0] != "1234567890123" || got.TicketNumbers[1] != "T2" {
		t.Fatalf("ticket numbers = %v", got.TicketNumbers)
	}
	if got.GameID != "42" || got.Stake != 10 || got.TotalStake != 20 {
		t.Fatalf("unexpected bet: %+v", got)
	}
}

func TestDecodeGameSnapshotPrefersGameID(t *testing.T) {
	raw := `{"id":"old","gameId":"G7","status":"active","timestamp":1700000000000,"connectionStatus":{"displayConnected":true}}`
	ev, err := Decode(GameDataUpdated, json.RawMessage(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := ev.(GameSnapshot)
	if got.GameID != "G7" || got.Status != "active" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if got.DisplayConnected == nil || !*got.DisplayConnected {
		t.Fatalf("display connected = %v", got.DisplayConnected)
	}
	if !got.At.Equal(time.UnixMilli(1700000000000)) {
		t.Fatalf("At = %v", got.At)
	}
}

func TestDecodeLifecycleGameIDFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind LifecycleKind
		want string
	}{
		{GameComprehensiveReset, `{"newGameId":"B","sessionId":"s1"}`, LifecycleReset, "B"},
		{GameEnded, `{"gameId":"A","nextGameId":"B"}`, LifecycleEnded, "B"},
		{GameNewReady, `{"gameId":"B"}`, LifecycleNewReady, "B"},
		{GameIDUpdated, `{"newGameId":17}`, LifecycleIDUpdated, "17"},
		{CashierRefreshRequired, `{"gameId":"C","reason":"new game"}`, LifecycleRefreshRequire, "C"},
	}
	for _, tc := range cases {
		ev, err := Decode(tc.name, json.RawMessage(tc.raw))
		if err != nil {
			t.Fatalf("%s: Decode() error = %v", tc.name, err)
		}
		got := ev.(GameLifecycle)
		if got.Kind != tc.kind || got.GameID != tc.want {
			t.Fatalf("%s: got %+v, want kind=%s game=%s", tc.name, got, tc.kind, tc.want)
		}
	}
}

func TestDecodeDisplayVariants(t *testing.T) {
	ev, err := Decode(DisplayConnectionStatus, json.RawMessage(`{"connected":true,"sessionId":"s1"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := ev.(DisplayStatus); !got.Connected || got.SessionID != "s1" {
		t.Fatalf("unexpected status: %+v", got)
	}
	ev, err = Decode(ConnectionStatusUpdate, json.RawMessage(`{"displayConnected":true}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !ev.(DisplayStatus).Connected {
		t.Fatal("connection_status_update should map displayConnected")
	}
	ev, err = Decode(DisplayWaitingGame, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if ev.(DisplayStatus).Connected {
		t.Fatal("waiting_for_game should mean disconnected")
	}
}

func TestDecodeAutoDrawStats(t *testing.T) {
	raw := `{"cashierId":"c1","autoDrawStats":{"isActive":true,"totalDraws":4,"nextDrawTime":"2026-01-02T03:04:05Z"},"poolStats":{"totalNumbers":75,"drawnNumbers":4,"remainingNumbers":71}}`
	ev, err := Decode(AutoDrawStats, json.RawMessage(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := ev.(AutoDrawTelemetry)
	if got.CashierID != "c1" || got.Stats.TotalDraws != 4 || got.Pool.RemainingNumbers != 71 {
		t.Fatalf("unexpected telemetry: %+v", got)
	}
	if got.Stats.NextDrawTime.IsZero() {
		t.Fatal("next draw time not parsed")
	}
}

func TestDecodeUnknownAndMalformed(t *testing.T) {
	if _, err := Decode("made_up", nil); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("Decode(unknown) error = %v, want ErrUnknownEvent", err)
	}
	if _, err := Decode(CartelaSelected, json.RawMessage(`{"cartelaId":"x"}`)); err == nil {
		t.Fatal("Decode(malformed) expected error")
	}
}

func TestEveryInboundNameDecodes(t *testing.T) {
	for _, name := range Inbound {
		if _, err := Decode(name, json.RawMessage(`{}`)); err != nil {
			t.Fatalf("Decode(%s) error = %v", name, err)
		}
	}
}

func TestDecodeSnapshotCarriesTimestamp(t *testing.T) {
	ev, err := Decode(CartelaDeselectionSuccess, json.RawMessage(`{"cartelaId":3,"selectedCartelas":[],"timestamp":"2026-03-01T12:00:05Z"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)
	if got := ev.(SelectionConfirmed); !got.At.Equal(want) {
		t.Fatalf("At = %v, want %v", got.At, want)
	}
}

func TestDecodePlacedBetsUpdated(t *testing.T) {
	ev, err := Decode(PlacedBetsUpdated, json.RawMessage(`{"gameId":17,"sessionId":"s1"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := ev.(PlacedBetsChanged)
	if !ok || got.GameID != "17" || got.SessionID != "s1" {
		t.Fatalf("Decode() = %#v", ev)
	}
}

func TestDecodeGameResetIsRefresh(t *testing.T) {
	ev, err := Decode(GameReset, json.RawMessage(`{"sessionId":"s1"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got, ok := ev.(RefreshRequested); !ok || got.SessionID != "s1" {
		t.Fatalf("Decode() = %#v", ev)
	}
}
