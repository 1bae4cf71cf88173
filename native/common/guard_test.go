package common

import (
	"errors"
	"testing"
)

type pausedAll struct{}

func (pausedAll) IsPaused(string) bool { return true }

func TestGuardNilViewAllows(t *testing.T) {
	if err := Guard(nil, "market"); err != nil {
		t.Fatalf("nil view should allow: %v", err)
	}
}

func TestGuardPaused(t *testing.T) {
	if err := Guard(pausedAll{}, "market"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
}

func TestCallGuardRejectsNestedEntry(t *testing.T) {
	var g CallGuard
	if err := g.Enter(); err != nil {
		t.Fatalf("first entry: %v", err)
	}
	if err := g.Enter(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall, got %v", err)
	}
	g.Exit()
	if err := g.Enter(); err != nil {
		t.Fatalf("entry after exit: %v", err)
	}
}
