package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prooftalent/assessment-backend/internal/config"
	"github.com/prooftalent/assessment-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // must be >= 1s to satisfy Redis
)

// TelemetryWorker drains per-answer telemetry deltas from the Redis queue
// and persists them in batches. Telemetry is an audit trail; the scoring
// path never reads these rows, so the worker trades latency for batch
// throughput.
type TelemetryWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewTelemetryWorker creates a TelemetryWorker.
func NewTelemetryWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *TelemetryWorker {
	return &TelemetryWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "telemetry_worker").Logger(),
	}
}

// Start runs the drain loop until the context is cancelled.
func (w *TelemetryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("telemetry worker started")

	buffer := make([]*model.TelemetryEvent, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistTelemetryQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty, loop back to the flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var event model.TelemetryEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			// Malformed JSON can never succeed on retry. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("discarding malformed telemetry event")
			continue
		}

		buffer = append(buffer, &event)
	}
}

// flushSafe attempts bulk insert, then row-by-row fallback, then requeue.
func (w *TelemetryWorker) flushSafe(ctx context.Context, batch []*model.TelemetryEvent) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *TelemetryWorker) bulkInsert(ctx context.Context, batch []*model.TelemetryEvent) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, e := range batch {
		sessionID, err := uuid.Parse(e.SessionID)
		if err != nil {
			// Trigger fallback, which drops the bad row individually.
			return err
		}
		rows = append(rows, []interface{}{
			sessionID, e.QuestionIndex, e.AnswerSeconds, e.SwitchCount, time.Unix(e.RecordedAt, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"telemetry_events"},
		[]string{"session_id", "question_index", "answer_seconds", "switch_count", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *TelemetryWorker) fallbackInsert(ctx context.Context, batch []*model.TelemetryEvent) {
	requeueList := make([]*model.TelemetryEvent, 0)

	for _, e := range batch {
		sessionID, err := uuid.Parse(e.SessionID)
		if err != nil {
			w.log.Error().Str("session_id", e.SessionID).Msg("dropping telemetry event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO telemetry_events (session_id, question_index, answer_seconds, switch_count, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			sessionID, e.QuestionIndex, e.AnswerSeconds, e.SwitchCount, time.Unix(e.RecordedAt, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", e.SessionID).Msg("insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *TelemetryWorker) requeue(ctx context.Context, items []*model.TelemetryEvent) {
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.PersistTelemetryQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: failed to requeue telemetry, data loss occurred")
	} else {
		w.log.Info().Int("count", len(items)).Msg("requeued failed telemetry events")
		// Back off so we do not thrash while the database is down.
		time.Sleep(2 * time.Second)
	}
}

func (w *TelemetryWorker) shutdown(buffer []*model.TelemetryEvent) {
	w.log.Info().Msg("telemetry worker stopping, flushing remaining buffer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
