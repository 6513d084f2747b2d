package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionTelemetryKey returns the cache key for a session's buffered
// per-question telemetry (hash: question index -> delta JSON).
func (r *CacheKeyStruct) SessionTelemetryKey(sessionID string) string {
	return fmt.Sprintf("session:%s:telemetry", sessionID)
}

// MonitorChannel returns the Redis PubSub channel for session lifecycle
// events consumed by the monitor websocket.
func (r *CacheKeyStruct) MonitorChannel() string {
	return "sessions:monitor"
}

var CacheKey = NewCacheKeyStruct()
