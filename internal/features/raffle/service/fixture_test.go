package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository/memory"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (r *recordedEvents) Publish(_ context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordedEvents) Types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type mapCache struct {
	mu          sync.Mutex
	rows        map[string][]models.RaffleNumber
	generations map[string]int64
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{rows: make(map[string][]models.RaffleNumber), generations: make(map[string]int64)}
}

func (c *mapCache) Get(_ context.Context, raffleID string) ([]models.RaffleNumber, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, ok := c.rows[raffleID]
	return rows, ok, nil
}

func (c *mapCache) Generation(_ context.Context, raffleID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[raffleID], nil
}

func (c *mapCache) Set(_ context.Context, raffleID string, generation int64, rows []models.RaffleNumber) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[raffleID] != generation {
		return nil
	}
	c.rows[raffleID] = rows
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, raffleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[raffleID]++
	delete(c.rows, raffleID)
	c.invalidated = append(c.invalidated, raffleID)
	return nil
}

type mapSelections struct {
	mu   sync.Mutex
	sets map[string][]int
}

func newMapSelections() *mapSelections { return &mapSelections{sets: make(map[string][]int)} }

func (s *mapSelections) Load(_ context.Context, raffleID, sellerID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.sets[raffleID+"/"+sellerID]...), nil
}

func (s *mapSelections) Update(_ context.Context, raffleID, sellerID string, fn func([]int) ([]int, error)) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := raffleID + "/" + sellerID
	next, err := fn(append([]int(nil), s.sets[key]...))
	if err != nil {
		return nil, err
	}
	cp := append([]int(nil), next...)
	sort.Ints(cp)
	s.sets[key] = cp
	return cp, nil
}

func (s *mapSelections) Clear(_ context.Context, raffleID, sellerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, raffleID+"/"+sellerID)
	return nil
}

type fakeProofs struct {
	mu      sync.Mutex
	uploads []string
	err     error
}

func (p *fakeProofs) Upload(_ context.Context, _ []byte, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.uploads = append(p.uploads, name)
	return "https://files.test/proofs/" + name, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	store      *memory.Store
	clock      *testClock
	events     *recordedEvents
	cache      *mapCache
	selections *mapSelections
	proofs     *fakeProofs
	pool       *NumberPool
	detector   *ConflictDetector
	reserver   *ReservationManager
	payments   *PaymentCoordinator
	selection  *SelectionService
}

// newFixture builds raffle "r1" with numbers 0..total-1 and two active
// sellers, "s1" and "s2", each allowed cantMax numbers.
func newFixture(t *testing.T, total, cantMax int) *fixture {
	t.Helper()
	f := &fixture{
		store:      memory.NewStore(),
		clock:      &testClock{now: t0},
		events:     &recordedEvents{},
		cache:      newMapCache(),
		selections: newMapSelections(),
		proofs:     &fakeProofs{},
	}
	f.store.AddRaffle("r1", total)
	f.store.LinkSeller(models.SellerLink{RaffleID: "r1", SellerID: "s1", Active: true, CantMax: cantMax})
	f.store.LinkSeller(models.SellerLink{RaffleID: "r1", SellerID: "s2", Active: true, CantMax: cantMax})

	log := zerolog.Nop()
	f.pool = NewNumberPool(f.store.Numbers(), f.cache, f.clock.Now, log)
	f.detector = NewConflictDetector(f.store, f.clock.Now, log)
	f.reserver = NewReservationManager(f.store, f.pool, f.events, f.clock.Now, log)
	f.payments = NewPaymentCoordinator(f.store, f.pool, f.detector, f.proofs, f.events, f.clock.Now, log)
	f.selection = NewSelectionService(f.pool, f.store.Sellers(), f.selections, log)
	return f
}

func (f *fixture) status(t *testing.T, number int) models.NumberStatus {
	t.Helper()
	row, ok := f.store.Stored("r1", number)
	require.True(t, ok)
	return row.EffectiveStatus(f.clock.Now())
}

// reservedRow stages a reservation owned by participantID.
func reservedRow(number int, participantID string, expires time.Time) models.RaffleNumber {
	return models.RaffleNumber{
		RaffleID:             "r1",
		Number:               number,
		Status:               models.NumberStatusReserved,
		ParticipantID:        &participantID,
		BuyerName:            "Buyer " + participantID,
		ReservationExpiresAt: &expires,
	}
}

func soldRow(number int) models.RaffleNumber {
	paid := t0.Add(-time.Hour)
	return models.RaffleNumber{RaffleID: "r1", Number: number, Status: models.NumberStatusSold, PaymentDate: &paid}
}

func ana() models.Buyer {
	return models.Buyer{Name: "Ana Perez", Phone: "0414-555-1234", Cedula: "V-123", Address: "Caracas"}
}

func luis() models.Buyer {
	return models.Buyer{Name: "Luis Diaz", Phone: "0424-777-9876"}
}
