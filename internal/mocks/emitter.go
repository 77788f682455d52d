package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/gorghs/Task-Management-System/internal/events"
)

// RecordingEmitter implements events.EventEmitter and records every emitted
// event. Emission in the task service is asynchronous, so tests use
// WaitForEvents to synchronize before asserting.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskEvent

	// EmitErr, when set, is returned from every EmitEvent call.
	EmitErr error
}

// Ensure RecordingEmitter implements events.EventEmitter
var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.EmitEvent
func (r *RecordingEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return r.EmitErr
}

// Events returns a snapshot of the recorded events.
func (r *RecordingEmitter) Events() []*events.TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.TaskEvent, len(r.events))
	copy(out, r.events)
	return out
}

// WaitForEvents polls until at least n events were recorded or the timeout
// elapses. Returns the recorded events either way.
func (r *RecordingEmitter) WaitForEvents(n int, timeout time.Duration) []*events.TaskEvent {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if evts := r.Events(); len(evts) >= n {
			return evts
		}
		time.Sleep(5 * time.Millisecond)
	}
	return r.Events()
}
