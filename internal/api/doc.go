// Package api provides the HTTP handlers, request/response models, and the
// error-kind to status-code mapping for the task API. Handlers receive an
// already-authenticated user ID from the identity middleware and delegate all
// business rules to the service layer.
package api
