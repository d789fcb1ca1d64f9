package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

func TestMarkSoldIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewStore()
	s.AddRaffle("r1", 10)

	failed, err := s.Numbers().MarkSold(ctx, "r1", []int{3}, models.Sale{ParticipantID: "pa", PaymentMethod: "cash", PaymentDate: now}, now)
	require.NoError(t, err)
	require.Empty(t, failed)

	failed, err = s.Numbers().MarkSold(ctx, "r1", []int{3, 4, 5}, models.Sale{ParticipantID: "pb", PaymentMethod: "cash", PaymentDate: now}, now)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, failed)

	for _, num := range []int{4, 5} {
		n, _ := s.Stored("r1", num)
		assert.Equal(t, models.NumberStatusAvailable, n.Status, "number %d", num)
	}
	n, _ := s.Stored("r1", 3)
	assert.Equal(t, "pa", *n.ParticipantID)
}

func TestReserveOverLapsedHold(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewStore()
	s.AddRaffle("r1", 10)
	expired := now.Add(-time.Minute)
	other := "old"
	s.Put(models.RaffleNumber{RaffleID: "r1", Number: 2, Status: models.NumberStatusReserved, ParticipantID: &other, ReservationExpiresAt: &expired})

	failed, err := s.Numbers().Reserve(ctx, "r1", []int{2}, models.Hold{ParticipantID: "new", ExpiresAt: now.Add(time.Hour)}, now)
	require.NoError(t, err)
	assert.Empty(t, failed)

	n, _ := s.Stored("r1", 2)
	assert.Equal(t, "new", *n.ParticipantID)
}

func TestUnknownNumbersFailTheGuard(t *testing.T) {
	s := NewStore()
	s.AddRaffle("r1", 5)

	failed, err := s.Numbers().Reserve(context.Background(), "r1", []int{1, 99}, models.Hold{ParticipantID: "p"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int{99}, failed)
	n, _ := s.Stored("r1", 1)
	assert.Equal(t, models.NumberStatusAvailable, n.Status)
}

func TestReleaseExpired(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.AddRaffle("r1", 3)
	past, future := now.Add(-time.Second), now.Add(time.Hour)
	p := "p"
	s.Put(models.RaffleNumber{RaffleID: "r1", Number: 0, Status: models.NumberStatusReserved, ParticipantID: &p, ReservationExpiresAt: &past})
	s.Put(models.RaffleNumber{RaffleID: "r1", Number: 1, Status: models.NumberStatusReserved, ParticipantID: &p, ReservationExpiresAt: &future})

	released, err := s.Numbers().ReleaseExpired(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, released)

	n0, _ := s.Stored("r1", 0)
	assert.Equal(t, models.NumberStatusAvailable, n0.Status)
	assert.Nil(t, n0.ParticipantID)
	n1, _ := s.Stored("r1", 1)
	assert.Equal(t, models.NumberStatusReserved, n1.Status)
}

func TestDuplicateInserts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Participants().Create(ctx, &models.Participant{ID: "a", RaffleID: "r1", Phone: "555"}))
	assert.ErrorIs(t, s.Participants().Create(ctx, &models.Participant{ID: "b", RaffleID: "r1", Phone: "555"}), repository.ErrDuplicateParticipant)
	require.NoError(t, s.Participants().Create(ctx, &models.Participant{ID: "c", RaffleID: "r2", Phone: "555"}))

	rep := &models.FraudReport{ID: "f1", ParticipantID: "a", RaffleID: "r1", SellerID: "s"}
	require.NoError(t, s.FraudReports().Insert(ctx, rep))
	assert.ErrorIs(t, s.FraudReports().Insert(ctx, &models.FraudReport{ID: "f2", ParticipantID: "a", RaffleID: "r1", SellerID: "s"}), repository.ErrDuplicateReport)
	assert.Equal(t, 1, s.ReportCount())
}
