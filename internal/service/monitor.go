package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MonitorEvent is broadcast on every session state change so operators can
// watch the pipeline live over the monitor websocket.
type MonitorEvent struct {
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Category  string             `json:"category"`
	State     model.SessionState `json:"state"`
	At        time.Time          `json:"at"`
}

// MonitorPublisher fans session state changes out to monitoring clients.
// Publishing is best effort; a failed publish never fails the operation
// that triggered it.
type MonitorPublisher interface {
	Publish(ctx context.Context, event MonitorEvent)
}

// RedisMonitor publishes monitor events on a Redis pub/sub channel.
type RedisMonitor struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisMonitor creates a RedisMonitor.
func NewRedisMonitor(rdb *redis.Client, log zerolog.Logger) *RedisMonitor {
	return &RedisMonitor{
		rdb: rdb,
		log: log.With().Str("component", "monitor").Logger(),
	}
}

func (m *RedisMonitor) Publish(ctx context.Context, event MonitorEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to marshal monitor event")
		return
	}
	if err := m.rdb.Publish(ctx, config.CacheKey.MonitorChannel(), payload).Err(); err != nil {
		m.log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to publish monitor event")
	}
}

// nopMonitor drops every event.
type nopMonitor struct{}

// NewNopMonitor returns a publisher that discards events.
func NewNopMonitor() MonitorPublisher { return nopMonitor{} }

func (nopMonitor) Publish(context.Context, MonitorEvent) {}
