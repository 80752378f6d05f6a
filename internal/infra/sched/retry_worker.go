package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"applecare-activation/internal/usecase"
)

// RetryWorker periodically re-queues side effects for approved requests
// whose activation mail has not gone out, so a transient SMTP or osTicket
// outage heals without operator action.
type RetryWorker struct {
	interval  time.Duration
	requestUC usecase.RequestUseCase
	log       *zerolog.Logger
}

func NewRetryWorker(interval time.Duration, requestUC usecase.RequestUseCase, logger *zerolog.Logger) *RetryWorker {
	retryLog := logger.With().Str("component", "RetryWorker").Logger()
	return &RetryWorker{
		interval:  interval,
		requestUC: requestUC,
		log:       &retryLog,
	}
}

func (w *RetryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting retry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.requestUC.RetryPending(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("retry worker error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("pending requests re-queued")
			}
		}
	}
}
