package worker

import (
	"context"
	"time"

	"github.com/prooftalent/assessment-backend/internal/repository"
	"github.com/rs/zerolog"
)

const expirySweepInterval = 1 * time.Minute

// ExpiryWorker periodically rejects sessions whose TTL lapsed before
// submission. The lazy check on every session access handles the window
// between sweeps; the sweep keeps abandoned sessions from lingering
// indefinitely.
type ExpiryWorker struct {
	sessions *repository.SessionRepository
	log      zerolog.Logger
}

// NewExpiryWorker creates an ExpiryWorker.
func NewExpiryWorker(sessions *repository.SessionRepository, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessions: sessions,
		log:      log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("expiry worker started")

	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("expiry worker stopping")
			return
		case <-ticker.C:
			n, err := w.sessions.ExpireStale(ctx, time.Now())
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int64("count", n).Msg("expired stale sessions")
			}
		}
	}
}
