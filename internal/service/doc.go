// Package service provides application-level services for managing tasks and
// the analytics leaderboard. Services enforce ownership scoping, validate
// input before any I/O, decide the caching policy, orchestrate transactions,
// and translate store errors into the closed set of error kinds the API layer
// maps to transport codes.
package service
