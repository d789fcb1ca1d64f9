package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/features/raffle/models"
)

func TestSelectAddsNumbers(t *testing.T) {
	f := newFixture(t, 20, 10)

	got, err := f.selection.Select(context.Background(), "r1", "s1", []int{3}, []int{9, 1, 9})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 9}, got)

	got, err = f.selection.Select(context.Background(), "r1", "s1", got, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 9}, got, "reselecting is a no-op")
}

func TestSelectQuotaIsAllOrNothing(t *testing.T) {
	f := newFixture(t, 20, 3)
	current := []int{1, 2}

	got, err := f.selection.Select(context.Background(), "r1", "s1", current, []int{3, 4})
	require.Error(t, err)
	assert.True(t, errors.IsQuotaExceeded(err))
	assert.Equal(t, []int{1, 2}, got)

	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 1, appErr.Details["limit"])
}

func TestSelectStaleSelectionCountsAgainstInventory(t *testing.T) {
	f := newFixture(t, 10, 10)
	for n := 0; n < 7; n++ {
		f.store.Put(soldRow(n))
	}
	// 8 was sold to someone else after it was selected.
	f.store.Put(soldRow(8))

	_, err := f.selection.Select(context.Background(), "r1", "s1", []int{7, 8}, []int{9})
	assert.True(t, errors.IsQuotaExceeded(err))
}

func TestSelectExpandsReservationGroups(t *testing.T) {
	f := newFixture(t, 20, 10)
	f.store.Put(reservedRow(4, "p1", t0.Add(time.Hour)))
	f.store.Put(reservedRow(5, "p1", t0.Add(time.Hour)))
	f.store.Put(reservedRow(11, "p1", t0.Add(time.Hour)))
	f.store.Put(reservedRow(6, "p2", t0.Add(-time.Hour)))
	f.store.Put(reservedRow(7, "p2", t0.Add(-time.Hour)))

	got, err := f.selection.Select(context.Background(), "r1", "s1", nil, []int{5})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 11}, got)

	got, err = f.selection.Select(context.Background(), "r1", "s1", nil, []int{6})
	require.NoError(t, err)
	assert.Equal(t, []int{6}, got, "a lapsed group is not expanded")
}

func TestSelectGroupCountsTowardQuota(t *testing.T) {
	f := newFixture(t, 20, 2)
	f.store.Put(reservedRow(4, "p1", t0.Add(time.Hour)))
	f.store.Put(reservedRow(5, "p1", t0.Add(time.Hour)))
	f.store.Put(reservedRow(6, "p1", t0.Add(time.Hour)))

	_, err := f.selection.Select(context.Background(), "r1", "s1", nil, []int{4})
	assert.True(t, errors.IsQuotaExceeded(err))
}

func TestSelectRejects(t *testing.T) {
	f := newFixture(t, 10, 10)
	f.store.Put(soldRow(2))
	f.store.Put(soldRow(3))
	f.store.LinkSeller(models.SellerLink{RaffleID: "r1", SellerID: "off", Active: false, CantMax: 10})
	ctx := context.Background()

	_, err := f.selection.Select(ctx, "r1", "s1", nil, []int{1, 2, 3})
	assert.True(t, errors.IsConflict(err))
	assert.Equal(t, []int{2, 3}, errors.ConflictNumbers(err))

	_, err = f.selection.Select(ctx, "r1", "s1", nil, []int{42})
	assert.True(t, errors.IsValidation(err))

	_, err = f.selection.Select(ctx, "r1", "s1", nil, nil)
	assert.True(t, errors.IsValidation(err))

	_, err = f.selection.Select(ctx, "r1", "off", nil, []int{1})
	assert.True(t, errors.IsFatal(err))

	_, err = f.selection.Select(ctx, "r1", "ghost", nil, []int{1})
	assert.True(t, errors.IsFatal(err))

	_, err = f.selection.Select(ctx, "", "s1", nil, []int{1})
	assert.True(t, errors.IsFatal(err))
}

func TestDeselectAlwaysSucceeds(t *testing.T) {
	f := newFixture(t, 10, 1)

	assert.Equal(t, []int{1, 5}, f.selection.Deselect([]int{5, 3, 1}, []int{3, 8}))
	assert.Empty(t, f.selection.Deselect([]int{1}, []int{1}))
}

func TestSelectionSession(t *testing.T) {
	f := newFixture(t, 20, 5)
	ctx := context.Background()

	view, err := f.selection.SelectInSession(ctx, "r1", "s1", []int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, view.Numbers)
	assert.Equal(t, 5, view.CantMax)
	assert.Equal(t, 20, view.Remaining)
	assert.Equal(t, 3, view.MaxSelectable)

	other, err := f.selection.View(ctx, "r1", "s2")
	require.NoError(t, err)
	assert.Empty(t, other.Numbers, "selections are per seller")

	_, err = f.selection.SelectInSession(ctx, "r1", "s1", []int{4, 5, 6, 7})
	assert.True(t, errors.IsQuotaExceeded(err))
	view, err = f.selection.View(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, view.Numbers, "rejected selection leaves the session unchanged")

	view, err = f.selection.DeselectInSession(ctx, "r1", "s1", []int{2})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, view.Numbers)

	view, err = f.selection.DeselectInSession(ctx, "r1", "s1", nil)
	require.NoError(t, err)
	assert.Empty(t, view.Numbers)
}

func TestSelectionSessionConcurrentSelectsKeepEveryNumber(t *testing.T) {
	f := newFixture(t, 20, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 1; n <= 6; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.selection.SelectInSession(ctx, "r1", "s1", []int{n})
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()

	view, err := f.selection.View(ctx, "r1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, view.Numbers)
}
