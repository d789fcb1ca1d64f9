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

func TestReserve(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	res, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", SellerID: "s1", Numbers: []int{8, 7}, Buyer: ana(), TTLDays: 5})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, res.Numbers)
	assert.Equal(t, t0.Add(5*24*time.Hour), res.ExpiresAt)

	p, err := f.store.Participants().GetByPhone(ctx, "r1", "04145551234")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, p.ID, res.ParticipantID)
	assert.Equal(t, "Ana Perez", p.Name)

	for _, n := range []int{7, 8} {
		row, _ := f.store.Stored("r1", n)
		assert.Equal(t, models.NumberStatusReserved, row.Status)
		assert.True(t, row.OwnedBy(p.ID))
		assert.Equal(t, "s1", *row.SellerID)
		assert.Equal(t, res.ExpiresAt, *row.ReservationExpiresAt)
	}

	assert.Equal(t, []models.EventType{models.EventNumbersReserved}, f.events.Types())
	assert.Contains(t, f.cache.invalidated, "r1")
}

func TestReserveReusesParticipantByPhone(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	first, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{1}, Buyer: ana(), TTLDays: 1})
	require.NoError(t, err)

	again := ana()
	again.Phone = "04145551234"
	second, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{2}, Buyer: again, TTLDays: 1})
	require.NoError(t, err)
	assert.Equal(t, first.ParticipantID, second.ParticipantID)

	groups, err := f.pool.ReservationGroups(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{1, 2}, groups[0].Numbers)
}

func TestReserveValidation(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	noName := ana()
	noName.Name = ""
	noPhone := ana()
	noPhone.Phone = " "

	tests := []struct {
		name string
		req  ReserveRequest
	}{
		{"no numbers", ReserveRequest{RaffleID: "r1", Buyer: ana(), TTLDays: 5}},
		{"no name", ReserveRequest{RaffleID: "r1", Numbers: []int{1}, Buyer: noName, TTLDays: 5}},
		{"no phone", ReserveRequest{RaffleID: "r1", Numbers: []int{1}, Buyer: noPhone, TTLDays: 5}},
		{"no ttl", ReserveRequest{RaffleID: "r1", Numbers: []int{1}, Buyer: ana()}},
		{"unknown number", ReserveRequest{RaffleID: "r1", Numbers: []int{99}, Buyer: ana(), TTLDays: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reserver.Reserve(ctx, tt.req)
			assert.True(t, errors.IsValidation(err), "got %v", err)
		})
	}

	p, _ := f.store.Participants().GetByPhone(ctx, "r1", "04145551234")
	assert.Nil(t, p, "validation failures write nothing")
	assert.Equal(t, models.NumberStatusAvailable, f.status(t, 1))

	_, err := f.reserver.Reserve(ctx, ReserveRequest{Numbers: []int{1}, Buyer: ana(), TTLDays: 5})
	assert.True(t, errors.IsFatal(err))
}

func TestReserveConflictMutatesNothing(t *testing.T) {
	f := newFixture(t, 20, 10)
	f.store.Put(soldRow(8))
	f.store.Put(reservedRow(9, "p-other", t0.Add(time.Hour)))
	ctx := context.Background()

	_, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{7, 8, 9}, Buyer: ana(), TTLDays: 5})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, []int{8, 9}, errors.ConflictNumbers(err))

	assert.Equal(t, models.NumberStatusAvailable, f.status(t, 7))
	p, _ := f.store.Participants().GetByPhone(ctx, "r1", "04145551234")
	assert.Nil(t, p)
	assert.Empty(t, f.events.Types())
}

func TestReserveOwnLiveHoldIsConflict(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	_, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{3}, Buyer: ana(), TTLDays: 1})
	require.NoError(t, err)

	_, err = f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{3}, Buyer: ana(), TTLDays: 1})
	assert.True(t, errors.IsConflict(err))
}

func TestReservationLapsesWithoutWrite(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	_, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{7, 8}, Buyer: ana(), TTLDays: 5})
	require.NoError(t, err)

	f.clock.Advance(5*24*time.Hour - time.Second)
	assert.Equal(t, models.NumberStatusReserved, f.status(t, 7))

	f.clock.Advance(time.Second)
	assert.Equal(t, models.NumberStatusAvailable, f.status(t, 7))

	res, err := f.reserver.Reserve(ctx, ReserveRequest{RaffleID: "r1", Numbers: []int{7}, Buyer: luis(), TTLDays: 1})
	require.NoError(t, err, "a lapsed hold can be taken by another buyer")

	row, _ := f.store.Stored("r1", 7)
	assert.True(t, row.OwnedBy(res.ParticipantID))
}

func TestReserveRequiresActiveSellerWhenGiven(t *testing.T) {
	f := newFixture(t, 20, 10)
	_, err := f.reserver.Reserve(context.Background(), ReserveRequest{RaffleID: "r1", SellerID: "ghost", Numbers: []int{1}, Buyer: ana(), TTLDays: 1})
	assert.True(t, errors.IsFatal(err))
}

func TestReservePublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, 20, 10)
	f.events.err = errBoom

	_, err := f.reserver.Reserve(context.Background(), ReserveRequest{RaffleID: "r1", Numbers: []int{1}, Buyer: ana(), TTLDays: 1})
	assert.NoError(t, err)
}
