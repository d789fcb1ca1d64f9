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

type ConflictReason string

const (
	ReasonSold     ConflictReason = "sold"
	ReasonReserved ConflictReason = "reserved_by_other"
	ReasonUnknown  ConflictReason = "unknown_number"
)

type AvailabilityRequest struct {
	RaffleID string
	SellerID string
	Numbers  []int
	// BuyerPhone identifies the buyer the seller is acting for. Numbers
	// reserved by that buyer are available to the caller.
	BuyerPhone string
}

type NumberConflict struct {
	Number int                 `json:"number"`
	Status models.NumberStatus `json:"status,omitempty"`
	Reason ConflictReason      `json:"reason"`
}

type AvailabilityResult struct {
	Available []int            `json:"available"`
	Conflicts []NumberConflict `json:"conflicts"`
}

func (r *AvailabilityResult) OK() bool { return len(r.Conflicts) == 0 }

func (r *AvailabilityResult) ConflictNumbers() []int {
	out := make([]int, len(r.Conflicts))
	for i, c := range r.Conflicts {
		out[i] = c.Number
	}
	return out
}

// Err returns a ConflictError for the conflicting numbers, or nil.
func (r *AvailabilityResult) Err() error {
	if r.OK() {
		return nil
	}
	return errors.NewConflictError(r.ConflictNumbers())
}

// ConflictDetector re-reads the requested numbers straight from storage and
// reports which ones the caller can no longer take. It is advisory: the
// payment commit re-checks under row locks.
type ConflictDetector struct {
	store  repository.Store
	now    Clock
	logger zerolog.Logger
}

func NewConflictDetector(store repository.Store, now Clock, logger zerolog.Logger) *ConflictDetector {
	if now == nil {
		now = time.Now
	}
	return &ConflictDetector{store: store, now: now, logger: logger}
}

func (d *ConflictDetector) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	if req.RaffleID == "" {
		return nil, errors.NewFatalError("raffle id is required")
	}
	numbers, err := validation.Numbers(req.Numbers)
	if err != nil {
		return nil, err
	}

	var participantID string
	if req.BuyerPhone != "" {
		phone := validation.NormalizePhone(req.BuyerPhone)
		p, err := d.store.Participants().GetByPhone(ctx, req.RaffleID, phone)
		if err != nil {
			return nil, errors.NewStorageError("find participant", err)
		}
		if p != nil {
			participantID = p.ID
		}
	}

	rows, err := d.store.Numbers().GetNumbers(ctx, req.RaffleID, numbers)
	if err != nil {
		return nil, errors.NewStorageError("load numbers", err)
	}
	index := make(map[int]models.RaffleNumber, len(rows))
	for _, r := range rows {
		index[r.Number] = r
	}

	now := d.now()
	result := &AvailabilityResult{Available: []int{}, Conflicts: []NumberConflict{}}
	for _, n := range numbers {
		row, ok := index[n]
		if !ok {
			result.Conflicts = append(result.Conflicts, NumberConflict{Number: n, Reason: ReasonUnknown})
			continue
		}
		switch status := row.EffectiveStatus(now); status {
		case models.NumberStatusAvailable:
			result.Available = append(result.Available, n)
		case models.NumberStatusReserved:
			if row.OwnedBy(participantID) {
				result.Available = append(result.Available, n)
			} else {
				result.Conflicts = append(result.Conflicts, NumberConflict{Number: n, Status: status, Reason: ReasonReserved})
			}
		default:
			result.Conflicts = append(result.Conflicts, NumberConflict{Number: n, Status: status, Reason: ReasonSold})
		}
	}

	if !result.OK() {
		d.logger.Debug().
			Str("raffle_id", req.RaffleID).
			Str("seller_id", req.SellerID).
			Ints("conflicts", result.ConflictNumbers()).
			Msg("availability check found conflicts")
	}
	return result, nil
}
