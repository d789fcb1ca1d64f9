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

// ProofFile is an uploaded proof of payment.
type ProofFile struct {
	Name string
	Data []byte
}

type PaymentRequest struct {
	RaffleID      string
	SellerID      string
	Numbers       []int
	Buyer         models.Buyer
	PaymentMethod string
	// Proof is optional; cash sales have none.
	Proof *ProofFile
}

type PaymentResult struct {
	ParticipantID string    `json:"participant_id"`
	Numbers       []int     `json:"numbers"`
	ProofURL      string    `json:"proof_url,omitempty"`
	PaidAt        time.Time `json:"paid_at"`
}

// PaymentCoordinator runs the sale commit. Every check before the final
// write is a pre-flight that leaves storage untouched; the final write is a
// single guarded transition to sold that either applies to all numbers or
// to none.
type PaymentCoordinator struct {
	store     repository.Store
	pool      *NumberPool
	conflicts *ConflictDetector
	proofs    ProofStore
	events    EventPublisher
	now       Clock
	logger    zerolog.Logger
}

func NewPaymentCoordinator(
	store repository.Store,
	pool *NumberPool,
	conflicts *ConflictDetector,
	proofs ProofStore,
	events EventPublisher,
	now Clock,
	logger zerolog.Logger,
) *PaymentCoordinator {
	if now == nil {
		now = time.Now
	}
	return &PaymentCoordinator{
		store:     store,
		pool:      pool,
		conflicts: conflicts,
		proofs:    proofs,
		events:    events,
		now:       now,
		logger:    logger,
	}
}

func (c *PaymentCoordinator) CompletePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if req.RaffleID == "" {
		return nil, errors.NewFatalError("raffle id is required")
	}
	if req.SellerID == "" {
		return nil, errors.NewFatalError("seller id is required")
	}
	numbers, err := validation.Numbers(req.Numbers)
	if err != nil {
		return nil, err
	}
	buyer, err := normaliseBuyer(req.Buyer)
	if err != nil {
		return nil, err
	}
	method, err := validation.Text("payment_method", req.PaymentMethod, validation.MaxPaymentMethodLength, true)
	if err != nil {
		return nil, err
	}

	log := c.logger.With().
		Str("raffle_id", req.RaffleID).
		Str("seller_id", req.SellerID).
		Ints("numbers", numbers).
		Logger()

	// 1. Quota.
	link, err := activeSeller(ctx, c.store.Sellers(), req.RaffleID, req.SellerID)
	if err != nil {
		return nil, err
	}
	rows, err := c.pool.Fresh(ctx, req.RaffleID)
	if err != nil {
		return nil, err
	}
	index, err := requireKnown(numbers, rows)
	if err != nil {
		return nil, err
	}
	remaining := inventoryFor(Summarize(rows).Remaining(), numbers, index)
	if err := CheckQuota(link.CantMax, remaining, 0, len(numbers)); err != nil {
		return nil, err
	}

	// 2. Advisory conflict check, so that no proof is stored for a sale that
	// cannot succeed.
	check, err := c.conflicts.CheckAvailability(ctx, AvailabilityRequest{
		RaffleID:   req.RaffleID,
		SellerID:   req.SellerID,
		Numbers:    numbers,
		BuyerPhone: buyer.Phone,
	})
	if err != nil {
		return nil, err
	}
	if err := check.Err(); err != nil {
		log.Info().Ints("conflicts", check.ConflictNumbers()).Msg("payment rejected by availability check")
		return nil, err
	}

	// 3. Proof.
	var proofURL string
	if req.Proof != nil && len(req.Proof.Data) > 0 {
		if c.proofs == nil {
			return nil, errors.NewStorageError("upload proof", errors.New(errors.ErrCodeInternal, "proof storage is not configured"))
		}
		proofURL, err = c.proofs.Upload(ctx, req.Proof.Data, req.Proof.Name)
		if err != nil {
			if _, ok := errors.AsAppError(err); ok {
				return nil, err
			}
			return nil, errors.NewStorageError("upload proof", err)
		}
	}

	// 4. Participant.
	now := c.now()
	participant, err := resolveParticipant(ctx, c.store.Participants(), req.RaffleID, buyer, now)
	if err != nil {
		return nil, err
	}

	// 5. Commit.
	failed, err := c.store.Numbers().MarkSold(ctx, req.RaffleID, numbers, models.Sale{
		ParticipantID:   participant.ID,
		SellerID:        req.SellerID,
		BuyerName:       buyer.Name,
		BuyerPhone:      buyer.Phone,
		PaymentMethod:   method,
		PaymentProofURL: proofURL,
		PaymentDate:     now,
	}, now)
	if err != nil {
		log.Error().Err(err).Msg("payment commit failed")
		return nil, errors.NewStorageError("mark numbers sold", err)
	}
	if len(failed) > 0 {
		log.Info().Ints("conflicts", failed).Msg("payment lost a race")
		return nil, errors.NewConflictError(failed)
	}

	c.pool.Invalidate(ctx, req.RaffleID)
	publish(ctx, c.events, c.logger, models.Event{
		Type:          models.EventNumbersSold,
		RaffleID:      req.RaffleID,
		SellerID:      req.SellerID,
		ParticipantID: participant.ID,
		BuyerName:     buyer.Name,
		Numbers:       numbers,
		At:            now,
	})
	log.Info().Str("participant_id", participant.ID).Msg("payment completed")

	return &PaymentResult{
		ParticipantID: participant.ID,
		Numbers:       numbers,
		ProofURL:      proofURL,
		PaidAt:        now,
	}, nil
}
