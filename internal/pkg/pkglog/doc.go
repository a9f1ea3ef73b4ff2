// Package pkglog sets up slog for the backend and the two CLIs.
//
// Records are JSON with "ts"/"severity" keys and carry the service name plus
// whatever request or batch identifiers the context holds.
package pkglog
