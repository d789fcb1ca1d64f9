package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/features/raffle/repository"
)

// ReservationReconciler periodically rewrites lapsed reservations as
// available. It is optional: reads already treat lapsed holds as available,
// so the reconciler only keeps stored statuses tidy for reporting.
type ReservationReconciler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	numbers  repository.NumberRepository
	interval time.Duration
	now      Clock
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

func NewReservationReconciler(numbers repository.NumberRepository, interval time.Duration, now Clock, logger zerolog.Logger) *ReservationReconciler {
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReservationReconciler{
		ctx:      ctx,
		cancel:   cancel,
		numbers:  numbers,
		interval: interval,
		now:      now,
		logger:   logger,
	}
}

// Start launches the background loop. A non-positive interval disables it.
func (r *ReservationReconciler) Start() {
	if r.interval <= 0 {
		r.logger.Info().Msg("reservation reconciler disabled")
		return
	}
	r.logger.Info().Dur("interval", r.interval).Msg("starting reservation reconciler")
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := r.RunOnce(r.ctx); err != nil {
					r.logger.Error().Err(err).Msg("reservation reconciliation failed")
				}
			case <-r.ctx.Done():
				return
			}
		}
	}()
}

func (r *ReservationReconciler) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info().Msg("reservation reconciler stopped")
}

// RunOnce performs a single reconciliation pass.
func (r *ReservationReconciler) RunOnce(ctx context.Context) (int64, error) {
	released, err := r.numbers.ReleaseExpired(ctx, r.now())
	if err != nil {
		return 0, err
	}
	if released > 0 {
		r.logger.Info().Int64("released", released).Msg("released lapsed reservations")
	}
	return released, nil
}
