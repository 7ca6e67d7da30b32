package leakhound

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestPickStringPrecedence(t *testing.T) {
	if got := pickString("cli", strPtr("local"), strPtr("global")); got != "cli" {
		t.Fatalf("cli should win, got %q", got)
	}
	if got := pickString("", strPtr("local"), strPtr("global")); got != "local" {
		t.Fatalf("local should win over global, got %q", got)
	}
	if got := pickString("", nil, strPtr("global")); got != "global" {
		t.Fatalf("global should apply last, got %q", got)
	}
	if got := pickString("", nil, nil); got != "" {
		t.Fatalf("expected empty fallback, got %q", got)
	}
}

func TestPickInt(t *testing.T) {
	if got := pickInt(0, intPtr(4), nil); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := pickInt(2, intPtr(4), nil); got != 2 {
		t.Fatalf("cli should win, got %d", got)
	}
}

func TestPickDuration(t *testing.T) {
	if got := pickDuration(time.Second, strPtr("5s"), nil); got != time.Second {
		t.Fatalf("cli should win, got %v", got)
	}
	if got := pickDuration(0, strPtr("5s"), nil); got != 5*time.Second {
		t.Fatalf("expected 5s from local config, got %v", got)
	}
	if got := pickDuration(0, strPtr("garbage"), strPtr("2s")); got != 2*time.Second {
		t.Fatalf("unparsable local should fall through to global, got %v", got)
	}
	if got := pickDuration(0, nil, nil); got != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if splitList("") != nil {
		t.Fatal("empty input should yield nil")
	}
}
