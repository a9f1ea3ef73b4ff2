// Package pkgtelemetry is the telemetry sink used by the backend and the RUM
// demo client.
//
// Code records errors, transactions and spans through the Sink interface and
// never talks to a vendor agent directly. The concrete sink is picked by
// Config.Driver:
//   - "otlp": OpenTelemetry SDK exporting OTLP/HTTP to the APM server.
//   - "sentry": the Sentry Go SDK.
//   - "memory": in-process recorder used by tests and offline runs.
//   - "noop": drops everything.
//
// Middleware-style helpers live next to the transports that use them: the
// HTTP client side is Transport, the server side lives in pkgrouter.
package pkgtelemetry
