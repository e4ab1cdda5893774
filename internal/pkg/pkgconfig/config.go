package pkgconfig

import (
	"io"
	"time"
)

// Config abstracts read access to configuration values.
//
// Application code depends on this interface instead of a concrete loader so
// tests can swap in a stub and callers never care whether a value came from
// the config file, an environment variable, or a default.
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetFloat(key string) float64
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetBinary(key string) []byte
	GetArray(key string) []string
	GetMap(key string) map[string]string
	io.Closer
}
