package service

import (
	"context"
	"time"

	"raffle-sales-backend/internal/features/raffle/models"
)

// SalesService is everything the HTTP layer needs from the raffle feature.
type SalesService interface {
	ListNumbers(ctx context.Context, raffleID string) ([]models.RaffleNumber, error)
	Summary(ctx context.Context, raffleID string) (models.PoolSummary, error)
	ReservationGroups(ctx context.Context, raffleID string) ([]models.ReservationGroup, error)

	CurrentSelection(ctx context.Context, raffleID, sellerID string) (*SelectionView, error)
	Select(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error)
	Deselect(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error)
	ClearSelection(ctx context.Context, raffleID, sellerID string) error

	Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error)
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error)
	CompletePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	ReportFraud(ctx context.Context, req FraudReportRequest) (models.ReportOutcome, error)
}

// PoolCache holds raw rows of a raffle for a short time. Implementations must
// not normalise rows; NumberPool does that after every read.
//
// Generation is read before loading rows from the database and handed back
// to Set, which must discard the rows if Invalidate ran in between.
type PoolCache interface {
	Get(ctx context.Context, raffleID string) ([]models.RaffleNumber, bool, error)
	Generation(ctx context.Context, raffleID string) (int64, error)
	Set(ctx context.Context, raffleID string, generation int64, rows []models.RaffleNumber) error
	Invalidate(ctx context.Context, raffleID string) error
}

// SelectionStore persists a seller's in-progress selection between requests.
// Update applies fn to the stored selection atomically: concurrent updates
// for the same seller never overwrite each other. An error from fn aborts
// the update and is returned unchanged.
type SelectionStore interface {
	Load(ctx context.Context, raffleID, sellerID string) ([]int, error)
	Update(ctx context.Context, raffleID, sellerID string, fn func(current []int) ([]int, error)) ([]int, error)
	Clear(ctx context.Context, raffleID, sellerID string) error
}

// EventPublisher receives domain events after successful writes. Publish
// failures are logged and never fail the write that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, e models.Event) error
}

// ProofStore uploads payment proof files and returns a retrievable URL.
type ProofStore interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
}

// Clock returns the current time. Every service reads time through one so
// tests can pin it.
type Clock func() time.Time
