package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.EventReceived("bet_placed_success")
	m.EventDropped("stale_game")
	m.SetConnected(true)
	m.BetOutcome("confirmed")
	m.ObserveREST("placed_bets", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	for _, want := range []string{
		`terminal_events_received_total{event="bet_placed_success"} 1`,
		`terminal_events_dropped_total{reason="stale_game"} 1`,
		`terminal_transport_connected 1`,
		`terminal_bet_placements_total{outcome="confirmed"} 1`,
		`terminal_rest_request_seconds_count{op="placed_bets",status="2xx"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.EventReceived("x")
	m.SetConnected(false)
	m.PrintQueue(3)
	m.ObserveREST("x", 500, time.Second)
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{0: "error", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
