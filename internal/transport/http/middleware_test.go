package httptransport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCaptureWriterTruncates(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, maxBytes: 4}
	_, _ = cw.Write([]byte("ab"))
	_, _ = cw.Write([]byte("cdef"))
	_, _ = cw.Write([]byte("g"))

	if cw.body.String() != "abcd" || !cw.truncated {
		t.Fatalf("captured %q truncated=%v", cw.body.String(), cw.truncated)
	}
	if rec.Body.String() != "abcdefg" {
		t.Fatalf("client got %q", rec.Body.String())
	}
}

func TestBodyCaptureKeepsRequestBodyReadable(t *testing.T) {
	var seen string
	h := BodyCaptureMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = string(raw)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bets", strings.NewReader(`{"stake":20}`)))

	if seen != `{"stake":20}` {
		t.Fatalf("handler saw %q", seen)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIsSSERequest(t *testing.T) {
	stream := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	accept := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	accept.Header.Set("Accept", "text/event-stream")
	plain := httptest.NewRequest(http.MethodGet, "/api/state", nil)

	if !isSSERequest(stream) || !isSSERequest(accept) || isSSERequest(plain) {
		t.Fatalf("unexpected sse detection")
	}
}

func TestParseMaybeJSON(t *testing.T) {
	if v, ok := parseMaybeJSON([]byte(`{"a":1}`)).(map[string]any); !ok || v["a"] != float64(1) {
		t.Fatalf("expected decoded object")
	}
	if parseMaybeJSON([]byte("plain")) != "plain" || parseMaybeJSON(nil) != "" {
		t.Fatalf("expected raw strings")
	}
}
