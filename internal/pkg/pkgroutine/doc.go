// Package pkgroutine runs background work with bounded concurrency.
//
// A Manager hands out a limited number of slots, collects the errors its
// tasks return, turns panics into errors, and lets the caller Wait for
// everything before shutting down.
package pkgroutine
