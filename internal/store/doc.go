// Package store defines the persistence contracts for the task engine:
// store interfaces, sentinel errors, transaction handling, and the
// filter/cursor types used by the listing query.
package store
