package core

import "testing"

func TestFirstResolved_StopsAtFirstSuccess(t *testing.T) {
	calls := 0
	step := func(v string, ok bool) Strategy[string] {
		return func() (string, bool) {
			calls++
			return v, ok
		}
	}

	got, ok := FirstResolved(step("", false), step("second", true), step("third", true))
	if !ok || got != "second" {
		t.Fatalf("expected second, got %q (ok=%v)", got, ok)
	}
	if calls != 2 {
		t.Fatalf("expected 2 strategy calls, got %d", calls)
	}
}

func TestFirstResolved_NoneResolved(t *testing.T) {
	got, ok := FirstResolved[int](func() (int, bool) { return 7, false })
	if ok || got != 0 {
		t.Fatalf("expected zero value and false, got %d (ok=%v)", got, ok)
	}
}
