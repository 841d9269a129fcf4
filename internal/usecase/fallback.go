package usecase

import (
	"context"
	"fmt"
	"strings"
)

// attempt is one named way of obtaining a value. The label shows up in the
// diagnostic trail when the attempt fails.
type attempt[T any] struct {
	label string
	fn    func(ctx context.Context) (T, error)
}

// runFirst tries the attempts in order and returns the first success together
// with the diagnostics accumulated from the attempts before it. When every
// attempt fails it returns the zero value, the full joined diagnostics and
// ok=false.
func runFirst[T any](ctx context.Context, attempts []attempt[T]) (T, string, bool) {
	var diags []string
	for _, a := range attempts {
		v, err := a.fn(ctx)
		if err == nil {
			return v, strings.Join(diags, "; "), true
		}
		diags = append(diags, fmt.Sprintf("%s: %v", a.label, err))
	}
	var zero T
	return zero, strings.Join(diags, "; "), false
}

func joinDiags(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}
