// Package mocks provides hand-written test doubles for the store, cache, and
// event interfaces. Doubles expose Fn fields to override behavior per test.
package mocks
