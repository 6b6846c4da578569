package ai

import "sync/atomic"

// debugLoggingEnabled gates the per-rule decision logs of Evaluator.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging turns per-rule decision logging on or off.
// Call it once during startup, after the config is loaded.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether decision logging is on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
