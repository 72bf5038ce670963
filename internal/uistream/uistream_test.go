package uistream

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBufferOrderAndReplay(t *testing.T) {
	buf := NewBuffer(10)
	buf.Publish("state", map[string]any{"v": 1})
	buf.Publish("notice", map[string]any{"v": 2})
	buf.Publish("state", map[string]any{"v": 3})

	replay := buf.ReplayAfter("1")
	if len(replay) != 2 || replay[0].EventID != "2" || replay[1].EventID != "3" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if got := buf.ReplayAfter("junk"); len(got) != 3 {
		t.Fatalf("bad id should replay everything, got %d", len(got))
	}
}

func TestBufferTrimsToMax(t *testing.T) {
	buf := NewBuffer(2)
	for i := 0; i < 5; i++ {
		buf.Publish("state", i)
	}
	replay := buf.ReplayAfter("")
	if len(replay) != 2 || replay[0].EventID != "4" {
		t.Fatalf("unexpected retained events: %+v", replay)
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	buf := NewBuffer(1)
	buf.Close()
	if _, ok := <-buf.Subscribe(); ok {
		t.Fatalf("subscribe after close should return a closed channel")
	}
	buf.Publish("state", 1)
	if len(buf.ReplayAfter("")) != 0 {
		t.Fatalf("closed buffer should drop events")
	}
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestHandlerSendsSnapshotThenLiveEvents(t *testing.T) {
	buf := NewBuffer(10)
	srv := httptest.NewServer(Handler(buf, func() any { return map[string]int{"version": 7} }))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	event, data := readEvent(t, r)
	if event != "state" || !strings.Contains(data, `"version":7`) {
		t.Fatalf("expected snapshot first, got %s %s", event, data)
	}

	buf.Publish("notice", map[string]string{"text": "hello"})
	event, data = readEvent(t, r)
	if event != "notice" || !strings.Contains(data, "hello") {
		t.Fatalf("expected live notice, got %s %s", event, data)
	}
}

func TestHandlerReplaysAfterLastEventID(t *testing.T) {
	buf := NewBuffer(10)
	buf.Publish("state", 1)
	buf.Publish("notice", "missed")
	srv := httptest.NewServer(Handler(buf, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	req.Header.Set("Last-Event-ID", "1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	event, data := readEvent(t, bufio.NewReader(resp.Body))
	if event != "notice" || !strings.Contains(data, "missed") {
		t.Fatalf("expected replayed notice, got %s %s", event, data)
	}
}

func TestResumeReportsGaps(t *testing.T) {
	buf := NewBuffer(2)
	for i := 0; i < 4; i++ {
		buf.Publish("state", i)
	}
	cases := []struct {
		last     string
		count    int
		complete bool
	}{
		{"2", 2, true},
		{"3", 1, true},
		{"4", 0, true},
		{"1", 2, false},
		{"9", 0, false},
		{"junk", 2, false},
	}
	for _, tc := range cases {
		events, complete := buf.Resume(tc.last)
		if len(events) != tc.count || complete != tc.complete {
			t.Fatalf("Resume(%q) = %d events complete=%v, want %d %v", tc.last, len(events), complete, tc.count, tc.complete)
		}
	}
}

func TestHandlerSendsSnapshotWhenReplayHasGap(t *testing.T) {
	buf := NewBuffer(1)
	buf.Publish("notice", "old")
	buf.Publish("notice", "kept")
	srv := httptest.NewServer(Handler(buf, func() any { return map[string]int{"version": 9} }))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	req.Header.Set("Last-Event-ID", "0")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	r := bufio.NewReader(resp.Body)
	if event, data := readEvent(t, r); event != "state" || !strings.Contains(data, `"version":9`) {
		t.Fatalf("expected snapshot first, got %s %s", event, data)
	}
	if event, data := readEvent(t, r); event != "notice" || !strings.Contains(data, "kept") {
		t.Fatalf("expected retained notice, got %s %s", event, data)
	}
}
