package ids

import (
	"strings"
	"testing"
)

func TestNewIsMonotonic(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("id %s not greater than %s", next, prev)
		}
		prev = next
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("bet")
	if !strings.HasPrefix(id, "bet_") || len(id) != len("bet_")+26 {
		t.Fatalf("unexpected id %q", id)
	}
}
