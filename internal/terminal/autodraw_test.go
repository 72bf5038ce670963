package terminal

import (
	"errors"
	"testing"
	"time"

	"cashier-terminal/internal/protocol"
)

func TestAutoDrawGating(t *testing.T) {
	s := readyState()
	if _, _, err := autoDraw(s, AutoDrawStart); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("start needs an active game, got %v", err)
	}
	s.Game.Status = StatusActive
	s.Game.DisplayConnected = false
	if _, _, err := autoDraw(s, AutoDrawStart); !errors.Is(err, ErrDisplayDisconnected) {
		t.Fatalf("start needs a display, got %v", err)
	}
	if _, _, err := autoDraw(s, AutoDrawShuffle); !errors.Is(err, ErrGameNotWaiting) {
		t.Fatalf("shuffle needs a waiting game, got %v", err)
	}
	if _, _, err := autoDraw(s, "rewind"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected unknown command, got %v", err)
	}

	s.Game.DisplayConnected = true
	_, effects, err := autoDraw(s, AutoDrawStart)
	if err != nil || len(sendsOf(effects, protocol.AutoDrawStart)) != 1 {
		t.Fatalf("expected auto_draw_start, err=%v", err)
	}
	_, effects, _ = autoDraw(readyState(), AutoDrawShuffle)
	if len(sendsOf(effects, protocol.ShuffleNumberPool)) != 1 {
		t.Fatalf("expected shuffle_number_pool")
	}
}

func TestAckStartsTickersAndPullsStats(t *testing.T) {
	s := readyState()
	s, effects := apply(t, s, protocol.AutoDrawStarted, `{"success":true,"cashierId":"c1"}`)
	if !s.AutoDraw.Active {
		t.Fatalf("expected active")
	}
	var tickers bool
	for _, e := range effects {
		if tk, ok := e.(autoDrawTickers); ok && tk.On {
			tickers = true
		}
	}
	if !tickers || len(sendsOf(effects, protocol.GetAutoDrawStats)) != 1 {
		t.Fatalf("expected tickers on and an immediate stats pull: %#v", effects)
	}

	s, effects = apply(t, s, protocol.AutoDrawStopped, `{"success":true,"cashierId":"c1"}`)
	if s.AutoDraw.Active {
		t.Fatalf("expected inactive")
	}
	if len(sendsOf(effects, protocol.GetAutoDrawStats)) != 1 {
		t.Fatalf("stop ack should also pull stats")
	}
}

func TestAckForOtherCashierIgnored(t *testing.T) {
	s := readyState()
	if _, _, ok := reduceEvent(s, decode(t, protocol.AutoDrawStarted, `{"success":true,"cashierId":"c2"}`), fixedNow); ok {
		t.Fatalf("other cashier's ack must be ignored")
	}
}

func TestTelemetryMirror(t *testing.T) {
	s := readyState()
	next := fixedNow.Add(2500 * time.Millisecond).Format(time.RFC3339Nano)
	s, effects := apply(t, s, protocol.AutoDrawStats, `{"cashierId":"c1","autoDrawStats":{"isActive":true,"totalDraws":4,"nextDrawTime":"`+next+`"},"poolStats":{"totalNumbers":75,"drawnNumbers":4,"remainingNumbers":71}}`)
	if s.AutoDraw.Stats.TotalDraws != 4 || s.AutoDraw.Pool.RemainingNumbers != 71 {
		t.Fatalf("unexpected mirror %#v", s.AutoDraw)
	}
	if !s.AutoDraw.Active || s.AutoDraw.Countdown != 3 {
		t.Fatalf("expected active with 3s countdown, got %#v", s.AutoDraw)
	}
	if len(effects) != 1 {
		t.Fatalf("expected tickers effect, got %#v", effects)
	}
}

func TestCountdown(t *testing.T) {
	cases := []struct {
		next time.Time
		want int
	}{
		{time.Time{}, 0},
		{fixedNow.Add(-time.Second), 0},
		{fixedNow, 0},
		{fixedNow.Add(100 * time.Millisecond), 1},
		{fixedNow.Add(5 * time.Second), 5},
	}
	for _, tc := range cases {
		if got := countdown(tc.next, fixedNow); got != tc.want {
			t.Fatalf("countdown(%v) = %d, want %d", tc.next, got, tc.want)
		}
	}
}
