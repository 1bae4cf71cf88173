package events

import "sync"

// Recorded pairs an emitted event with its assigned sequence number.
type Recorded struct {
	Sequence uint64
	Event    Event
}

// Recorder retains every emitted event in order, assigning a monotonically
// increasing sequence. It backs the RPC event log.
type Recorder struct {
	mu   sync.RWMutex
	next uint64
	log  []Recorded
}

// NewRecorder constructs an empty event recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, Recorded{Sequence: r.next, Event: evt})
	r.next++
}

// Events returns a snapshot of the recorded log. When limit is positive only
// the most recent entries up to limit are returned.
func (r *Recorder) Events(limit int) []Recorded {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	start := 0
	if limit > 0 && len(r.log) > limit {
		start = len(r.log) - limit
	}
	out := make([]Recorded, len(r.log)-start)
	copy(out, r.log[start:])
	return out
}
