// Package pkgrouter serves the backend's JSON endpoints on top of httprouter.
//
// Every route runs behind the same chain: panic recovery reported to the
// telemetry sink, a correlation id tied to the caller's trace, one APM
// transaction per request, and request logging with credentials masked.
package pkgrouter
