package idgen

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateIDShape(t *testing.T) {
	now := time.Now().UTC()
	id := GenerateID("hop", "Checkout flow", "dana", now, DefaultLength, 0)

	if !strings.HasPrefix(id, "hop-") {
		t.Errorf("id = %q, want hop- prefix", id)
	}
	suffix := strings.TrimPrefix(id, "hop-")
	if len(suffix) != DefaultLength {
		t.Errorf("suffix length = %d, want %d", len(suffix), DefaultLength)
	}
	for _, c := range suffix {
		if !strings.ContainsRune(base36Alphabet, c) {
			t.Errorf("suffix char %q outside base36 alphabet", c)
		}
	}
}

func TestGenerateIDDeterministic(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	a := GenerateID("hop", "Checkout", "dana", ts, DefaultLength, 0)
	b := GenerateID("hop", "Checkout", "dana", ts, DefaultLength, 0)
	if a != b {
		t.Errorf("same inputs produced %q and %q", a, b)
	}
}

func TestGenerateIDNonceVaries(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	a := GenerateID("hop", "Checkout", "dana", ts, DefaultLength, 0)
	b := GenerateID("hop", "Checkout", "dana", ts, DefaultLength, 1)
	if a == b {
		t.Error("nonce did not change the id")
	}
}

func TestGenerateIDDistinctContent(t *testing.T) {
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seen := make(map[string]bool)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		id := GenerateID("hop", name, "", ts, DefaultLength, 0)
		if seen[id] {
			t.Errorf("collision at %q", id)
		}
		seen[id] = true
	}
}

func TestEncodeBase36(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		length int
	}{
		{"zero pads", []byte{0}, 6},
		{"small value", []byte{1}, 4},
		{"truncates to length", []byte{0xff, 0xff, 0xff, 0xff, 0xff}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeBase36(tt.data, tt.length)
			if len(got) != tt.length {
				t.Errorf("len = %d, want %d", len(got), tt.length)
			}
		})
	}
}
