// Package rum is the client side of the demo. It plays the role of the
// browser page: each action mirrors one button of the original page and
// reports to the telemetry sink the way a RUM agent would, including trace
// propagation to the backend API.
package rum
