package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func numberRows(numbers ...int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"number"})
	for _, n := range numbers {
		rows.AddRow(n)
	}
	return rows
}

func TestMarkSoldCommitsWhenEveryNumberPasses(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(numberRows(1, 2, 3))
	mock.ExpectQuery(`SET status='sold'`).WillReturnRows(numberRows(1, 2, 3))
	mock.ExpectCommit()

	failed, err := store.Numbers().MarkSold(context.Background(), "r1", []int{1, 2, 3},
		models.Sale{ParticipantID: "p1", PaymentMethod: "transfer", PaymentDate: now}, now)
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSoldRollsBackOnPartialGuard(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(numberRows(3, 4, 5))
	mock.ExpectQuery(`SET status='sold'`).WillReturnRows(numberRows(4, 5))
	mock.ExpectRollback()

	failed, err := store.Numbers().MarkSold(context.Background(), "r1", []int{5, 3, 4},
		models.Sale{ParticipantID: "p2", PaymentMethod: "cash", PaymentDate: now}, now)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveRollsBackOnUpdateError(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(numberRows(7))
	mock.ExpectQuery(`SET status='reserved'`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := store.Numbers().Reserve(context.Background(), "r1", []int{7},
		models.Hold{ParticipantID: "p1", ExpiresAt: time.Now().Add(time.Hour)}, time.Now())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByRaffleScansNullableColumns(t *testing.T) {
	store, mock := newMock(t)
	paid := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"raffle_id", "number", "status", "seller_id", "participant_id", "buyer_name",
		"buyer_phone", "payment_method", "payment_proof_url", "payment_date", "reservation_expires_at"}).
		AddRow("r1", 0, "available", nil, nil, "", "", nil, nil, nil, nil).
		AddRow("r1", 1, "sold", "s1", "p1", "Ana", "5551234", "cash", nil, paid, nil)
	mock.ExpectQuery(`FROM raffle_numbers WHERE raffle_id=\$1 ORDER BY number`).WillReturnRows(rows)

	got, err := store.Numbers().ListByRaffle(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.NumberStatusAvailable, got[0].Status)
	assert.Nil(t, got[0].ParticipantID)
	assert.Equal(t, models.NumberStatusSold, got[1].Status)
	assert.Equal(t, "p1", *got[1].ParticipantID)
	assert.Equal(t, "cash", got[1].PaymentMethod)
	assert.Equal(t, paid, *got[1].PaymentDate)
}

func TestGetLinkMissing(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`FROM raffle_sellers`).WillReturnRows(sqlmock.NewRows([]string{"active", "cant_max"}))

	link, err := store.Sellers().GetLink(context.Background(), "r1", "s1")
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestUniqueViolationsMapToSentinels(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO participants`).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(`INSERT INTO fraud_reports`).WillReturnError(&pq.Error{Code: "23505"})

	err := store.Participants().Create(context.Background(), &models.Participant{ID: "p", RaffleID: "r1", Phone: "555"})
	assert.ErrorIs(t, err, repository.ErrDuplicateParticipant)

	err = store.FraudReports().Insert(context.Background(), &models.FraudReport{ID: "f", ParticipantID: "p", RaffleID: "r1", SellerID: "s"})
	assert.ErrorIs(t, err, repository.ErrDuplicateReport)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseExpiredReturnsAffectedRows(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`SET status='available'`).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.Numbers().ReleaseExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}
