package battle

import "sync/atomic"

var debugLoggingEnabled atomic.Bool

// EnableDebugLogging turns per-turn debug logs of the battle loop on or off.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether per-turn debug logging is on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
