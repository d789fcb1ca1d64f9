package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

const uniqueViolation = "23505"

// Store is the Postgres-backed raffle store.
type Store struct {
	numbers      *numberRepository
	sellers      *sellerRepository
	participants *participantRepository
	reports      *fraudReportRepository
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{
		numbers:      &numberRepository{db: db},
		sellers:      &sellerRepository{db: db},
		participants: &participantRepository{db: db},
		reports:      &fraudReportRepository{db: db},
	}
}

func (s *Store) Numbers() repository.NumberRepository           { return s.numbers }
func (s *Store) Sellers() repository.SellerRepository           { return s.sellers }
func (s *Store) Participants() repository.ParticipantRepository { return s.participants }
func (s *Store) FraudReports() repository.FraudReportRepository { return s.reports }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type sellerRepository struct {
	db *sql.DB
}

func (r *sellerRepository) GetLink(ctx context.Context, raffleID, sellerID string) (*models.SellerLink, error) {
	const q = `SELECT active, cant_max FROM raffle_sellers WHERE raffle_id=$1 AND seller_id=$2`
	link := models.SellerLink{RaffleID: raffleID, SellerID: sellerID}
	err := r.db.QueryRowContext(ctx, q, raffleID, sellerID).Scan(&link.Active, &link.CantMax)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get seller link: %w", err)
	}
	return &link, nil
}

type participantRepository struct {
	db *sql.DB
}

const participantColumns = `id, raffle_id, name, phone, cedula, address, created_at`

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	if err := row.Scan(&p.ID, &p.RaffleID, &p.Name, &p.Phone, &p.Cedula, &p.Address, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) GetByPhone(ctx context.Context, raffleID, phone string) (*models.Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants WHERE raffle_id=$1 AND phone=$2`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, q, raffleID, phone))
	if err != nil {
		return nil, fmt.Errorf("get participant by phone: %w", err)
	}
	return p, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	q := `SELECT ` + participantColumns + ` FROM participants WHERE id=$1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	const q = `
	INSERT INTO participants (id, raffle_id, name, phone, cedula, address, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.RaffleID, p.Name, p.Phone, p.Cedula, p.Address, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateParticipant
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

type fraudReportRepository struct {
	db *sql.DB
}

func (r *fraudReportRepository) Find(ctx context.Context, participantID, raffleID, sellerID string) (*models.FraudReport, error) {
	const q = `
	SELECT id, participant_id, raffle_id, seller_id, message, state, created_at
	FROM fraud_reports WHERE participant_id=$1 AND raffle_id=$2 AND seller_id=$3`
	var rep models.FraudReport
	err := r.db.QueryRowContext(ctx, q, participantID, raffleID, sellerID).
		Scan(&rep.ID, &rep.ParticipantID, &rep.RaffleID, &rep.SellerID, &rep.Message, &rep.State, &rep.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find fraud report: %w", err)
	}
	return &rep, nil
}

func (r *fraudReportRepository) Insert(ctx context.Context, rep *models.FraudReport) error {
	const q = `
	INSERT INTO fraud_reports (id, participant_id, raffle_id, seller_id, message, state, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.ExecContext(ctx, q, rep.ID, rep.ParticipantID, rep.RaffleID, rep.SellerID, rep.Message, rep.State, rep.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateReport
		}
		return fmt.Errorf("insert fraud report: %w", err)
	}
	return nil
}
