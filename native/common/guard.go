package common

import "errors"

var (
	ErrModulePaused  = errors.New("module paused")
	ErrReentrantCall = errors.New("reentrant call")
)

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// CallGuard rejects nested entry into a mutating operation. An external
// transfer performed mid-operation may call back into the engine before the
// original invocation returns; the guard makes that nested entry fail
// immediately instead of observing a half-applied transition.
type CallGuard struct {
	busy bool
}

// Enter marks the guard as busy, failing when an operation is already in
// flight. Callers must pair every successful Enter with Exit.
func (g *CallGuard) Enter() error {
	if g == nil {
		return nil
	}
	if g.busy {
		return ErrReentrantCall
	}
	g.busy = true
	return nil
}

// Exit releases the guard.
func (g *CallGuard) Exit() {
	if g == nil {
		return
	}
	g.busy = false
}
