// Package pkgconfig provides a small abstraction for reading configuration values.
//
// The backend expects config values to come from a concrete implementation
// (Viper). Business code depends on the Config interface so it stays easy to
// test and does not care whether a value came from the YAML file, a default,
// or an environment variable such as APM_SERVER_URL.
package pkgconfig
