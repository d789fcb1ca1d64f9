package repository

import (
	"context"
	"errors"
	"time"

	"raffle-sales-backend/internal/features/raffle/models"
)

var (
	ErrDuplicateReport      = errors.New("fraud report already exists")
	ErrDuplicateParticipant = errors.New("participant already exists")
)

// NumberRepository is the tabular store behind the number pool. Reserve and
// MarkSold are guarded, all-or-nothing multi-row writes: they return the
// subset of numbers that failed the guard, and when that subset is non-empty
// no row has been changed.
type NumberRepository interface {
	ListByRaffle(ctx context.Context, raffleID string) ([]models.RaffleNumber, error)
	GetNumbers(ctx context.Context, raffleID string, numbers []int) ([]models.RaffleNumber, error)

	// Reserve moves numbers from effectively available to reserved.
	Reserve(ctx context.Context, raffleID string, numbers []int, hold models.Hold, now time.Time) ([]int, error)
	// MarkSold moves numbers to sold when each one is effectively available
	// or reserved by sale.ParticipantID.
	MarkSold(ctx context.Context, raffleID string, numbers []int, sale models.Sale, now time.Time) ([]int, error)
	// ReleaseExpired rewrites lapsed reservations as available. Only the
	// optional reconciler calls it; reads never depend on it.
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
}

type SellerRepository interface {
	// GetLink returns nil, nil when the seller is not assigned to the raffle.
	GetLink(ctx context.Context, raffleID, sellerID string) (*models.SellerLink, error)
}

type ParticipantRepository interface {
	// GetByPhone returns nil, nil when no participant has the phone.
	GetByPhone(ctx context.Context, raffleID, phone string) (*models.Participant, error)
	GetByID(ctx context.Context, id string) (*models.Participant, error)
	// Create returns ErrDuplicateParticipant when the phone is already
	// registered for the raffle.
	Create(ctx context.Context, p *models.Participant) error
}

type FraudReportRepository interface {
	// Find returns nil, nil when no report exists for the triple.
	Find(ctx context.Context, participantID, raffleID, sellerID string) (*models.FraudReport, error)
	// Insert returns ErrDuplicateReport when the triple already exists.
	Insert(ctx context.Context, r *models.FraudReport) error
}

// Store groups every repository the raffle feature needs.
type Store interface {
	Numbers() NumberRepository
	Sellers() SellerRepository
	Participants() ParticipantRepository
	FraudReports() FraudReportRepository
}
