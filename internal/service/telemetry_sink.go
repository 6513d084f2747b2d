package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// TelemetrySink receives per-answer telemetry events as they arrive.
type TelemetrySink interface {
	Record(ctx context.Context, event model.TelemetryEvent) error
}

// RedisTelemetrySink buffers events in a per-session hash for live
// inspection and pushes every event onto the persistence queue consumed by
// the telemetry worker.
type RedisTelemetrySink struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisTelemetrySink creates a RedisTelemetrySink. The hash TTL tracks
// the session TTL so abandoned sessions do not leak buffered telemetry.
func NewRedisTelemetrySink(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisTelemetrySink {
	return &RedisTelemetrySink{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "telemetry_sink").Logger(),
	}
}

func (s *RedisTelemetrySink) Record(ctx context.Context, event model.TelemetryEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}

	key := config.CacheKey.SessionTelemetryKey(event.SessionID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(event.QuestionIndex), payload)
	pipe.Expire(ctx, key, s.ttl)
	pipe.RPush(ctx, config.WorkerKey.PersistTelemetryQueue, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record telemetry: %w", err)
	}
	return nil
}

// nopTelemetrySink discards events. Used when Redis is not configured.
type nopTelemetrySink struct{}

// NewNopTelemetrySink returns a sink that drops every event.
func NewNopTelemetrySink() TelemetrySink { return nopTelemetrySink{} }

func (nopTelemetrySink) Record(context.Context, model.TelemetryEvent) error { return nil }
