package pkgconfig

import "time"

// Config is the read-only view of application configuration used by modules.
type Config interface {
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetArray(key string) []string
	GetMap(key string) map[string]string
	Close() error
}
