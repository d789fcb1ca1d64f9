package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"raffle-sales-backend/internal/features/raffle/models"
)

type numberRepository struct {
	db *sql.DB
}

const numberColumns = `raffle_id, number, status, seller_id, participant_id, buyer_name, buyer_phone,
	payment_method, payment_proof_url, payment_date, reservation_expires_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNumber(row rowScanner) (models.RaffleNumber, error) {
	var (
		n                       models.RaffleNumber
		sellerID, participantID sql.NullString
		method, proofURL        sql.NullString
		paymentDate, expiresAt  sql.NullTime
	)
	if err := row.Scan(&n.RaffleID, &n.Number, &n.Status, &sellerID, &participantID, &n.BuyerName, &n.BuyerPhone,
		&method, &proofURL, &paymentDate, &expiresAt); err != nil {
		return n, err
	}
	if sellerID.Valid {
		n.SellerID = &sellerID.String
	}
	if participantID.Valid {
		n.ParticipantID = &participantID.String
	}
	n.PaymentMethod = method.String
	n.PaymentProofURL = proofURL.String
	if paymentDate.Valid {
		n.PaymentDate = &paymentDate.Time
	}
	if expiresAt.Valid {
		n.ReservationExpiresAt = &expiresAt.Time
	}
	return n, nil
}

func (r *numberRepository) query(ctx context.Context, q string, args ...interface{}) ([]models.RaffleNumber, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.RaffleNumber
	for rows.Next() {
		n, err := scanNumber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ListByRaffle returns the stored rows ordered by number.
func (r *numberRepository) ListByRaffle(ctx context.Context, raffleID string) ([]models.RaffleNumber, error) {
	q := `SELECT ` + numberColumns + ` FROM raffle_numbers WHERE raffle_id=$1 ORDER BY number`
	out, err := r.query(ctx, q, raffleID)
	if err != nil {
		return nil, fmt.Errorf("list raffle numbers: %w", err)
	}
	return out, nil
}

// GetNumbers returns the existing rows among numbers, ordered by number.
func (r *numberRepository) GetNumbers(ctx context.Context, raffleID string, numbers []int) ([]models.RaffleNumber, error) {
	q := `SELECT ` + numberColumns + ` FROM raffle_numbers WHERE raffle_id=$1 AND number = ANY($2) ORDER BY number`
	out, err := r.query(ctx, q, raffleID, pq.Array(toInt64(numbers)))
	if err != nil {
		return nil, fmt.Errorf("get raffle numbers: %w", err)
	}
	return out, nil
}

const qLockNumbers = `
	SELECT number FROM raffle_numbers
	WHERE raffle_id=$1 AND number = ANY($2)
	ORDER BY number
	FOR UPDATE`

const qReserve = `
	UPDATE raffle_numbers
	SET status='reserved', participant_id=$3, seller_id=NULLIF($4, ''), buyer_name=$5, buyer_phone=$6,
	    reservation_expires_at=$7, payment_method=NULL, payment_proof_url=NULL, payment_date=NULL, updated_at=$8
	WHERE raffle_id=$1 AND number = ANY($2)
	  AND (status='available' OR (status='reserved' AND reservation_expires_at <= $8))
	RETURNING number`

const qMarkSold = `
	UPDATE raffle_numbers
	SET status='sold', participant_id=$3, seller_id=NULLIF($4, ''), buyer_name=$5, buyer_phone=$6,
	    payment_method=$7, payment_proof_url=NULLIF($8, ''), payment_date=$9, reservation_expires_at=NULL, updated_at=$10
	WHERE raffle_id=$1 AND number = ANY($2)
	  AND (status='available'
	       OR (status='reserved' AND (reservation_expires_at <= $10 OR participant_id=$3)))
	RETURNING number`

const qReleaseExpired = `
	UPDATE raffle_numbers
	SET status='available', seller_id=NULL, participant_id=NULL, buyer_name='', buyer_phone='',
	    reservation_expires_at=NULL, updated_at=$1
	WHERE status='reserved' AND reservation_expires_at <= $1`

// Reserve applies qReserve under guardedUpdate.
func (r *numberRepository) Reserve(ctx context.Context, raffleID string, numbers []int, hold models.Hold, now time.Time) ([]int, error) {
	return r.guardedUpdate(ctx, raffleID, numbers, qReserve,
		raffleID, pq.Array(toInt64(numbers)), hold.ParticipantID, hold.SellerID, hold.BuyerName, hold.BuyerPhone,
		hold.ExpiresAt.UTC(), now.UTC())
}

// MarkSold applies qMarkSold under guardedUpdate.
func (r *numberRepository) MarkSold(ctx context.Context, raffleID string, numbers []int, sale models.Sale, now time.Time) ([]int, error) {
	return r.guardedUpdate(ctx, raffleID, numbers, qMarkSold,
		raffleID, pq.Array(toInt64(numbers)), sale.ParticipantID, sale.SellerID, sale.BuyerName, sale.BuyerPhone,
		sale.PaymentMethod, sale.PaymentProofURL, sale.PaymentDate.UTC(), now.UTC())
}

// guardedUpdate locks the target rows in number order, runs the conditional
// update and commits only if every requested number was returned. Ordered
// locking keeps two overlapping requests from deadlocking; a request that
// waited on a row re-evaluates the guard against the committed state.
func (r *numberRepository) guardedUpdate(ctx context.Context, raffleID string, numbers []int, update string, args ...interface{}) (failed []int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lockRows, err := tx.QueryContext(ctx, qLockNumbers, raffleID, pq.Array(toInt64(numbers)))
	if err != nil {
		return nil, fmt.Errorf("lock numbers: %w", err)
	}
	for lockRows.Next() {
	}
	if err := lockRows.Err(); err != nil {
		lockRows.Close()
		return nil, fmt.Errorf("lock numbers: %w", err)
	}
	lockRows.Close()

	rows, err := tx.QueryContext(ctx, update, args...)
	if err != nil {
		return nil, fmt.Errorf("update numbers: %w", err)
	}
	updated := make(map[int]struct{}, len(numbers))
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan updated number: %w", err)
		}
		updated[n] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("update numbers: %w", err)
	}
	rows.Close()

	for _, n := range numbers {
		if _, ok := updated[n]; !ok {
			failed = append(failed, n)
		}
	}
	if len(failed) > 0 {
		sort.Ints(failed)
		return failed, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil, nil
}

func (r *numberRepository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, qReleaseExpired, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("release expired reservations: %w", err)
	}
	return res.RowsAffected()
}

func toInt64(numbers []int) []int64 {
	out := make([]int64, len(numbers))
	for i, n := range numbers {
		out[i] = int64(n)
	}
	return out
}
