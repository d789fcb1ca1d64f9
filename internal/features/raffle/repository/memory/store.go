// Package memory is an in-process implementation of the raffle store with
// the same guarded, all-or-nothing write semantics as the Postgres one. It
// backs tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

type Store struct {
	mu           sync.Mutex
	numbers      map[string]map[int]*models.RaffleNumber
	sellers      map[string]models.SellerLink
	participants map[string]*models.Participant
	reports      map[string]*models.FraudReport
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		numbers:      make(map[string]map[int]*models.RaffleNumber),
		sellers:      make(map[string]models.SellerLink),
		participants: make(map[string]*models.Participant),
		reports:      make(map[string]*models.FraudReport),
	}
}

func (s *Store) Numbers() repository.NumberRepository           { return numberRepo{s} }
func (s *Store) Sellers() repository.SellerRepository           { return sellerRepo{s} }
func (s *Store) Participants() repository.ParticipantRepository { return participantRepo{s} }
func (s *Store) FraudReports() repository.FraudReportRepository { return fraudRepo{s} }

// AddRaffle creates numbers 0..total-1, all available.
func (s *Store) AddRaffle(raffleID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool := make(map[int]*models.RaffleNumber, total)
	for i := 0; i < total; i++ {
		pool[i] = &models.RaffleNumber{RaffleID: raffleID, Number: i, Status: models.NumberStatusAvailable}
	}
	s.numbers[raffleID] = pool
}

func (s *Store) LinkSeller(link models.SellerLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sellers[link.RaffleID+"/"+link.SellerID] = link
}

// Put overwrites a stored row as is. Tests use it to stage states such as
// lapsed reservations.
func (s *Store) Put(n models.RaffleNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.numbers[n.RaffleID]
	if !ok {
		pool = make(map[int]*models.RaffleNumber)
		s.numbers[n.RaffleID] = pool
	}
	cp := n
	pool[n.Number] = &cp
}

// Stored returns the raw row, without expiry normalisation.
func (s *Store) Stored(raffleID string, number int) (models.RaffleNumber, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.numbers[raffleID][number]
	if !ok {
		return models.RaffleNumber{}, false
	}
	return *n, true
}

// ReportCount returns how many fraud reports are stored.
func (s *Store) ReportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type numberRepo struct{ s *Store }

func (r numberRepo) ListByRaffle(_ context.Context, raffleID string) ([]models.RaffleNumber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pool := r.s.numbers[raffleID]
	out := make([]models.RaffleNumber, 0, len(pool))
	for _, n := range pool {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r numberRepo) GetNumbers(_ context.Context, raffleID string, numbers []int) ([]models.RaffleNumber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pool := r.s.numbers[raffleID]
	out := make([]models.RaffleNumber, 0, len(numbers))
	for _, num := range numbers {
		if n, ok := pool[num]; ok {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// guardedUpdate checks guard for every number under the lock and applies
// apply only when all pass.
func (r numberRepo) guardedUpdate(raffleID string, numbers []int, guard func(*models.RaffleNumber) bool, apply func(*models.RaffleNumber)) []int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pool := r.s.numbers[raffleID]
	var failed []int
	for _, num := range numbers {
		n, ok := pool[num]
		if !ok || !guard(n) {
			failed = append(failed, num)
		}
	}
	if len(failed) > 0 {
		sort.Ints(failed)
		return failed
	}
	for _, num := range numbers {
		apply(pool[num])
	}
	return nil
}

func (r numberRepo) Reserve(_ context.Context, raffleID string, numbers []int, hold models.Hold, now time.Time) ([]int, error) {
	expires := hold.ExpiresAt
	return r.guardedUpdate(raffleID, numbers,
		func(n *models.RaffleNumber) bool {
			return n.EffectiveStatus(now) == models.NumberStatusAvailable
		},
		func(n *models.RaffleNumber) {
			*n = models.RaffleNumber{
				RaffleID:             n.RaffleID,
				Number:               n.Number,
				Status:               models.NumberStatusReserved,
				SellerID:             optional(hold.SellerID),
				ParticipantID:        optional(hold.ParticipantID),
				BuyerName:            hold.BuyerName,
				BuyerPhone:           hold.BuyerPhone,
				ReservationExpiresAt: &expires,
			}
		}), nil
}

func (r numberRepo) MarkSold(_ context.Context, raffleID string, numbers []int, sale models.Sale, now time.Time) ([]int, error) {
	paid := sale.PaymentDate
	return r.guardedUpdate(raffleID, numbers,
		func(n *models.RaffleNumber) bool {
			switch n.EffectiveStatus(now) {
			case models.NumberStatusAvailable:
				return true
			case models.NumberStatusReserved:
				return n.OwnedBy(sale.ParticipantID)
			}
			return false
		},
		func(n *models.RaffleNumber) {
			*n = models.RaffleNumber{
				RaffleID:        n.RaffleID,
				Number:          n.Number,
				Status:          models.NumberStatusSold,
				SellerID:        optional(sale.SellerID),
				ParticipantID:   optional(sale.ParticipantID),
				BuyerName:       sale.BuyerName,
				BuyerPhone:      sale.BuyerPhone,
				PaymentMethod:   sale.PaymentMethod,
				PaymentProofURL: sale.PaymentProofURL,
				PaymentDate:     &paid,
			}
		}), nil
}

func (r numberRepo) ReleaseExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var released int64
	for _, pool := range r.s.numbers {
		for num, n := range pool {
			if n.ReservationExpired(now) {
				eff := n.Effective(now)
				pool[num] = &eff
				released++
			}
		}
	}
	return released, nil
}

type sellerRepo struct{ s *Store }

func (r sellerRepo) GetLink(_ context.Context, raffleID, sellerID string) (*models.SellerLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	link, ok := r.s.sellers[raffleID+"/"+sellerID]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

type participantRepo struct{ s *Store }

func (r participantRepo) GetByPhone(_ context.Context, raffleID, phone string) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.RaffleID == raffleID && p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r participantRepo) GetByID(_ context.Context, id string) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r participantRepo) Create(_ context.Context, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.RaffleID == p.RaffleID && existing.Phone == p.Phone {
			return repository.ErrDuplicateParticipant
		}
	}
	cp := *p
	r.s.participants[p.ID] = &cp
	return nil
}

type fraudRepo struct{ s *Store }

func reportKey(participantID, raffleID, sellerID string) string {
	return participantID + "/" + raffleID + "/" + sellerID
}

func (r fraudRepo) Find(_ context.Context, participantID, raffleID, sellerID string) (*models.FraudReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[reportKey(participantID, raffleID, sellerID)]
	if !ok {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r fraudRepo) Insert(_ context.Context, rep *models.FraudReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := reportKey(rep.ParticipantID, rep.RaffleID, rep.SellerID)
	if _, ok := r.s.reports[key]; ok {
		return repository.ErrDuplicateReport
	}
	cp := *rep
	r.s.reports[key] = &cp
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
