package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/features/raffle/models"
)

func TestReconcilerRunOnce(t *testing.T) {
	f := newFixture(t, 5, 10)
	f.store.Put(reservedRow(1, "p1", t0.Add(-time.Minute)))
	f.store.Put(reservedRow(2, "p1", t0.Add(time.Hour)))

	r := NewReservationReconciler(f.store.Numbers(), time.Minute, f.clock.Now, zerolog.Nop())
	released, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	row, _ := f.store.Stored("r1", 1)
	assert.Equal(t, models.NumberStatusAvailable, row.Status)
	assert.Nil(t, row.ParticipantID)

	row, _ = f.store.Stored("r1", 2)
	assert.Equal(t, models.NumberStatusReserved, row.Status)
}

func TestReconcilerLoop(t *testing.T) {
	f := newFixture(t, 5, 10)
	f.store.Put(reservedRow(1, "p1", t0.Add(-time.Minute)))

	r := NewReservationReconciler(f.store.Numbers(), 10*time.Millisecond, f.clock.Now, zerolog.Nop())
	r.Start()
	defer r.Stop()

	assert.Eventually(t, func() bool {
		row, _ := f.store.Stored("r1", 1)
		return row.Status == models.NumberStatusAvailable
	}, time.Second, 10*time.Millisecond)
}

func TestReconcilerDisabled(t *testing.T) {
	f := newFixture(t, 5, 10)
	f.store.Put(reservedRow(1, "p1", t0.Add(-time.Minute)))

	r := NewReservationReconciler(f.store.Numbers(), 0, f.clock.Now, zerolog.Nop())
	r.Start()
	r.Stop()

	row, _ := f.store.Stored("r1", 1)
	assert.Equal(t, models.NumberStatusReserved, row.Status)
}
