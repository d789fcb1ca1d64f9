package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/features/raffle/models"
)

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t, 10, 10)
	ctx := context.Background()

	res, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{2}, Buyer: ana(), TTLDays: 1})
	require.NoError(t, err)
	f.store.Put(soldRow(3))
	f.store.Put(reservedRow(4, "p-other", t0.Add(time.Hour)))
	f.store.Put(reservedRow(5, "p-other", t0.Add(-time.Hour)))

	got, err := f.detector.CheckAvailability(ctx, AvailabilityRequest{
		RaffleID:   "r1",
		SellerID:   "s1",
		Numbers:    []int{1, 2, 3, 4, 5, 42},
		BuyerPhone: "0414 555 1234",
	})
	require.NoError(t, err)
	assert.False(t, got.OK())
	assert.Equal(t, []int{1, 2, 5}, got.Available)
	assert.Equal(t, []NumberConflict{
		{Number: 3, Status: models.NumberStatusSold, Reason: ReasonSold},
		{Number: 4, Status: models.NumberStatusReserved, Reason: ReasonReserved},
		{Number: 42, Reason: ReasonUnknown},
	}, got.Conflicts)

	err = got.Err()
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, []int{3, 4, 42}, errors.ConflictNumbers(err))

	row, _ := f.store.Stored("r1", 2)
	assert.True(t, row.OwnedBy(res.ParticipantID), "checks never mutate")
}

func TestCheckAvailabilityWithoutBuyerContext(t *testing.T) {
	f := newFixture(t, 10, 10)
	ctx := context.Background()

	_, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{2}, Buyer: ana(), TTLDays: 1})
	require.NoError(t, err)

	got, err := f.detector.CheckAvailability(ctx, AvailabilityRequest{RaffleID: "r1", SellerID: "s1", Numbers: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.Available)
	assert.Equal(t, []int{2}, got.ConflictNumbers())

	got, err = f.detector.CheckAvailability(ctx, AvailabilityRequest{RaffleID: "r1", SellerID: "s1", Numbers: []int{2}, BuyerPhone: luis().Phone})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got.ConflictNumbers(), "another buyer cannot take the hold")
}

func TestCheckAvailabilityAllClear(t *testing.T) {
	f := newFixture(t, 10, 10)

	got, err := f.detector.CheckAvailability(context.Background(), AvailabilityRequest{RaffleID: "r1", Numbers: []int{0, 9}})
	require.NoError(t, err)
	assert.True(t, got.OK())
	assert.NoError(t, got.Err())
	assert.Equal(t, []int{0, 9}, got.Available)
}

func TestCheckAvailabilityErrors(t *testing.T) {
	f := newFixture(t, 10, 10)

	_, err := f.detector.CheckAvailability(context.Background(), AvailabilityRequest{Numbers: []int{1}})
	assert.True(t, errors.IsFatal(err))

	_, err = f.detector.CheckAvailability(context.Background(), AvailabilityRequest{RaffleID: "r1"})
	assert.True(t, errors.IsValidation(err))
}
