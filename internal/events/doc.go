// Package events provides the domain event types and the emitter used for
// fire-and-forget notifications about task lifecycle changes.
//
// Events are best-effort: the task service makes at most one delivery attempt
// per event, logs failures, and never fails the originating request because
// delivery failed.
package events
