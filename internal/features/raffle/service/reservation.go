package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/common/validation"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

type ReserveRequest struct {
	RaffleID string
	// SellerID is optional; when set the seller must be active in the raffle
	// and is stamped on the reserved rows.
	SellerID string
	Numbers  []int
	Buyer    models.Buyer
	TTLDays  int
}

type ReserveResult struct {
	ParticipantID string    `json:"participant_id"`
	Numbers       []int     `json:"numbers"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ReservationManager creates time-bound holds. Holds are never released by a
// write: once ExpiresAt passes, every read treats the number as available.
type ReservationManager struct {
	store  repository.Store
	pool   *NumberPool
	events EventPublisher
	now    Clock
	logger zerolog.Logger
}

func NewReservationManager(store repository.Store, pool *NumberPool, events EventPublisher, now Clock, logger zerolog.Logger) *ReservationManager {
	if now == nil {
		now = time.Now
	}
	return &ReservationManager{store: store, pool: pool, events: events, now: now, logger: logger}
}

// Reserve moves every requested number from available to reserved for the
// buyer, or none of them. A number that is not effectively available fails
// the whole call with a conflict listing the offending numbers.
func (m *ReservationManager) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	if req.RaffleID == "" {
		return nil, errors.NewFatalError("raffle id is required")
	}
	numbers, err := validation.Numbers(req.Numbers)
	if err != nil {
		return nil, err
	}
	buyer, err := normaliseBuyer(req.Buyer)
	if err != nil {
		return nil, err
	}
	if req.TTLDays <= 0 {
		return nil, errors.NewValidationError("ttl_days", "must be greater than zero")
	}
	if req.SellerID != "" {
		if _, err := activeSeller(ctx, m.store.Sellers(), req.RaffleID, req.SellerID); err != nil {
			return nil, err
		}
	}

	now := m.now()
	rows, err := m.store.Numbers().GetNumbers(ctx, req.RaffleID, numbers)
	if err != nil {
		return nil, errors.NewStorageError("load numbers", err)
	}
	if _, err := requireKnown(numbers, rows); err != nil {
		return nil, err
	}
	// Fail before registering a participant when the outcome is already known.
	// The guarded write below is what actually enforces availability.
	var taken []int
	for _, r := range rows {
		if r.EffectiveStatus(now) != models.NumberStatusAvailable {
			taken = append(taken, r.Number)
		}
	}
	if len(taken) > 0 {
		return nil, errors.NewConflictError(taken)
	}

	participant, err := resolveParticipant(ctx, m.store.Participants(), req.RaffleID, buyer, now)
	if err != nil {
		return nil, err
	}

	expires := now.Add(time.Duration(req.TTLDays) * 24 * time.Hour)
	failed, err := m.store.Numbers().Reserve(ctx, req.RaffleID, numbers, models.Hold{
		ParticipantID: participant.ID,
		SellerID:      req.SellerID,
		BuyerName:     buyer.Name,
		BuyerPhone:    buyer.Phone,
		ExpiresAt:     expires,
	}, now)
	if err != nil {
		return nil, errors.NewStorageError("reserve numbers", err)
	}
	if len(failed) > 0 {
		m.logger.Info().
			Str("raffle_id", req.RaffleID).
			Ints("conflicts", failed).
			Msg("reservation lost a race")
		return nil, errors.NewConflictError(failed)
	}

	m.pool.Invalidate(ctx, req.RaffleID)
	publish(ctx, m.events, m.logger, models.Event{
		Type:          models.EventNumbersReserved,
		RaffleID:      req.RaffleID,
		SellerID:      req.SellerID,
		ParticipantID: participant.ID,
		BuyerName:     buyer.Name,
		Numbers:       numbers,
		At:            now,
	})

	m.logger.Info().
		Str("raffle_id", req.RaffleID).
		Str("participant_id", participant.ID).
		Ints("numbers", numbers).
		Time("expires_at", expires).
		Msg("numbers reserved")

	return &ReserveResult{ParticipantID: participant.ID, Numbers: numbers, ExpiresAt: expires}, nil
}
