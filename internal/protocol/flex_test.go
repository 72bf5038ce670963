package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"x","b":12,"c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "x" || v.B != "12" || v.C != "" {
		t.Fatalf("unexpected values: %+v", v)
	}
	if err := json.Unmarshal([]byte(`{"a":true}`), &v); err == nil {
		t.Fatal("expected error for bool")
	}
}

func TestFlexTimeRoundTrip(t *testing.T) {
	var v struct {
		At FlexTime `json:"at"`
	}
	if err := json.Unmarshal([]byte(`{"at":"2026-10-14T08:00:00Z"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	if !v.At.Equal(want) {
		t.Fatalf("At = %v, want %v", v.At, want)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"at":"2026-10-14T08:00:00Z"}` {
		t.Fatalf("marshal = %s", out)
	}
	zero, _ := json.Marshal(FlexTime{})
	if string(zero) != "null" {
		t.Fatalf("zero marshal = %s", zero)
	}
}
