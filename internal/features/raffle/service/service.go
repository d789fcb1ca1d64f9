package service

import (
	"context"

	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

// Dependencies are the collaborators of the raffle sales service. Cache,
// Selections, Events and Proofs may be nil.
type Dependencies struct {
	Store      repository.Store
	Cache      PoolCache
	Selections SelectionStore
	Events     EventPublisher
	Proofs     ProofStore
	Now        Clock
	Logger     zerolog.Logger
}

type salesService struct {
	pool         *NumberPool
	selection    *SelectionService
	reservations *ReservationManager
	conflicts    *ConflictDetector
	payments     *PaymentCoordinator
	fraud        *FraudReportDeduplicator
	logger       zerolog.Logger
}

func NewSalesService(deps Dependencies) SalesService {
	log := deps.Logger
	pool := NewNumberPool(deps.Store.Numbers(), deps.Cache, deps.Now, log.With().Str("component", "number_pool").Logger())
	conflicts := NewConflictDetector(deps.Store, deps.Now, log.With().Str("component", "conflict_detector").Logger())
	return &salesService{
		pool:         pool,
		selection:    NewSelectionService(pool, deps.Store.Sellers(), deps.Selections, log.With().Str("component", "selection").Logger()),
		reservations: NewReservationManager(deps.Store, pool, deps.Events, deps.Now, log.With().Str("component", "reservations").Logger()),
		conflicts:    conflicts,
		payments:     NewPaymentCoordinator(deps.Store, pool, conflicts, deps.Proofs, deps.Events, deps.Now, log.With().Str("component", "payments").Logger()),
		fraud:        NewFraudReportDeduplicator(deps.Store.Participants(), deps.Store.FraudReports(), deps.Events, deps.Now, log.With().Str("component", "fraud_reports").Logger()),
		logger:       log,
	}
}

func (s *salesService) ListNumbers(ctx context.Context, raffleID string) ([]models.RaffleNumber, error) {
	return s.pool.ListByRaffle(ctx, raffleID)
}

func (s *salesService) Summary(ctx context.Context, raffleID string) (models.PoolSummary, error) {
	return s.pool.Summary(ctx, raffleID)
}

func (s *salesService) ReservationGroups(ctx context.Context, raffleID string) ([]models.ReservationGroup, error) {
	return s.pool.ReservationGroups(ctx, raffleID)
}

func (s *salesService) CurrentSelection(ctx context.Context, raffleID, sellerID string) (*SelectionView, error) {
	return s.selection.View(ctx, raffleID, sellerID)
}

func (s *salesService) Select(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error) {
	return s.selection.SelectInSession(ctx, raffleID, sellerID, numbers)
}

func (s *salesService) Deselect(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error) {
	return s.selection.DeselectInSession(ctx, raffleID, sellerID, numbers)
}

func (s *salesService) ClearSelection(ctx context.Context, raffleID, sellerID string) error {
	return s.selection.ClearSession(ctx, raffleID, sellerID)
}

func (s *salesService) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	return s.reservations.Reserve(ctx, req)
}

func (s *salesService) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	return s.conflicts.CheckAvailability(ctx, req)
}

// CompletePayment commits the sale and then clears the seller's selection.
// A failure to clear is logged; the sale stands.
func (s *salesService) CompletePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	result, err := s.payments.CompletePayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.selection.ClearSession(ctx, req.RaffleID, req.SellerID); err != nil {
		s.logger.Warn().Err(err).
			Str("raffle_id", req.RaffleID).
			Str("seller_id", req.SellerID).
			Msg("failed to clear selection after payment")
	}
	return result, nil
}

func (s *salesService) ReportFraud(ctx context.Context, req FraudReportRequest) (models.ReportOutcome, error) {
	return s.fraud.Report(ctx, req)
}
