package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestRunFirstShortCircuits(t *testing.T) {
	calls := 0
	v, diag, ok := runFirst(context.Background(), []attempt[int]{
		{label: "a", fn: func(context.Context) (int, error) { calls++; return 0, errors.New("down") }},
		{label: "b", fn: func(context.Context) (int, error) { calls++; return 7, nil }},
		{label: "c", fn: func(context.Context) (int, error) { calls++; return 9, nil }},
	})
	if !ok || v != 7 {
		t.Fatalf("expected first success 7, got %v ok=%v", v, ok)
	}
	if calls != 2 {
		t.Fatalf("later attempts must not run, calls=%d", calls)
	}
	if diag != "a: down" {
		t.Fatalf("unexpected diagnostics %q", diag)
	}
}

func TestRunFirstAllFail(t *testing.T) {
	_, diag, ok := runFirst(context.Background(), []attempt[string]{
		{label: "x", fn: func(context.Context) (string, error) { return "", errors.New("one") }},
		{label: "y", fn: func(context.Context) (string, error) { return "", errors.New("two") }},
	})
	if ok {
		t.Fatalf("expected failure")
	}
	if diag != "x: one; y: two" {
		t.Fatalf("unexpected diagnostics %q", diag)
	}
}

func TestJoinDiags(t *testing.T) {
	if got := joinDiags("", "a", "", "b"); got != "a; b" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := joinDiags("", ""); got != "" {
		t.Fatalf("expected empty join, got %q", got)
	}
}
