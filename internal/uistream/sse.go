package uistream

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

var pingInterval = 15 * time.Second

// reconnectDelay is sent as the SSE retry hint so the browser comes back quickly
// after the terminal restarts.
const reconnectDelay = 2 * time.Second

// WriteSSE writes one frame in a single Write call.
func WriteSSE(w http.ResponseWriter, ev Event) error {
	return writeFrame(w, ev, 0)
}

func writeFrame(w http.ResponseWriter, ev Event, retry time.Duration) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if retry > 0 {
		buf.WriteString("retry: " + strconv.FormatInt(retry.Milliseconds(), 10) + "\n")
	}
	if ev.EventID != "" {
		buf.WriteString("id: " + ev.EventID + "\n")
	}
	buf.WriteString("event: " + ev.Event + "\n")
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	_, err = w.Write(buf.Bytes())
	return err
}

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

// Handler streams b to one browser. A fresh client gets the current state
// first; a reconnecting one gets what it missed, preceded by the state when
// the buffer no longer covers the gap.
func Handler(b *Buffer, snapshot func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, `{"error":"stream_not_supported"}`, http.StatusInternalServerError)
			return
		}
		SetSSEHeaders(w)

		ch := b.Subscribe()
		defer b.Unsubscribe(ch)

		var opening []Event
		complete := false
		if last := r.Header.Get("Last-Event-ID"); last != "" {
			opening, complete = b.Resume(last)
		}
		if !complete && snapshot != nil {
			state := Event{Event: "state", ServerTS: time.Now().UnixMilli(), Data: snapshot()}
			opening = append([]Event{state}, opening...)
		}
		for i, ev := range opening {
			retry := time.Duration(0)
			if i == 0 {
				retry = reconnectDelay
			}
			if err := writeFrame(w, ev, retry); err != nil {
				return
			}
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				if err := WriteSSE(w, Event{Event: "ping", ServerTS: now, Data: map[string]any{"ts": now}}); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
