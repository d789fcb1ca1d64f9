package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

// NumberPool is the read side of a raffle's numbers. Every row it returns is
// normalised to its effective status, so a lapsed reservation is reported
// as available whether the row came from the cache or the database.
type NumberPool struct {
	numbers repository.NumberRepository
	cache   PoolCache
	now     Clock
	logger  zerolog.Logger
}

func NewNumberPool(numbers repository.NumberRepository, cache PoolCache, now Clock, logger zerolog.Logger) *NumberPool {
	if now == nil {
		now = time.Now
	}
	return &NumberPool{numbers: numbers, cache: cache, now: now, logger: logger}
}

// ListByRaffle returns all numbers of the raffle ordered by number.
func (p *NumberPool) ListByRaffle(ctx context.Context, raffleID string) ([]models.RaffleNumber, error) {
	rows, err := p.rows(ctx, raffleID, true)
	if err != nil {
		return nil, err
	}
	return normalise(rows, p.now()), nil
}

// Fresh is ListByRaffle without the cache. Write paths use it for checks
// that must see committed state.
func (p *NumberPool) Fresh(ctx context.Context, raffleID string) ([]models.RaffleNumber, error) {
	rows, err := p.rows(ctx, raffleID, false)
	if err != nil {
		return nil, err
	}
	return normalise(rows, p.now()), nil
}

// RemainingAvailable is total - sold - live reservations.
func (p *NumberPool) RemainingAvailable(ctx context.Context, raffleID string) (int, error) {
	summary, err := p.Summary(ctx, raffleID)
	if err != nil {
		return 0, err
	}
	return summary.Remaining(), nil
}

func (p *NumberPool) Summary(ctx context.Context, raffleID string) (models.PoolSummary, error) {
	rows, err := p.ListByRaffle(ctx, raffleID)
	if err != nil {
		return models.PoolSummary{}, err
	}
	return Summarize(rows), nil
}

// ReservationGroups groups live reservations by participant, ordered by the
// group's lowest number.
func (p *NumberPool) ReservationGroups(ctx context.Context, raffleID string) ([]models.ReservationGroup, error) {
	rows, err := p.ListByRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	return GroupReservations(rows), nil
}

// Invalidate drops the cached rows of a raffle after a write.
func (p *NumberPool) Invalidate(ctx context.Context, raffleID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Invalidate(ctx, raffleID); err != nil {
		p.logger.Warn().Err(err).Str("raffle_id", raffleID).Msg("failed to invalidate pool cache")
	}
}

func (p *NumberPool) rows(ctx context.Context, raffleID string, cached bool) ([]models.RaffleNumber, error) {
	if raffleID == "" {
		return nil, errors.NewFatalError("raffle id is required")
	}

	var (
		generation int64
		fill       bool
	)
	if p.cache != nil {
		if cached {
			rows, ok, err := p.cache.Get(ctx, raffleID)
			if err != nil {
				p.logger.Warn().Err(err).Str("raffle_id", raffleID).Msg("pool cache read failed, falling back to database")
			} else if ok {
				return rows, nil
			}
		}
		// Taken before the query so a write committed meanwhile voids the fill.
		g, err := p.cache.Generation(ctx, raffleID)
		if err != nil {
			p.logger.Warn().Err(err).Str("raffle_id", raffleID).Msg("pool cache generation read failed")
		} else {
			generation, fill = g, true
		}
	}

	rows, err := p.numbers.ListByRaffle(ctx, raffleID)
	if err != nil {
		return nil, errors.NewStorageError("list raffle numbers", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewNotFoundError("raffle", raffleID)
	}

	if fill {
		if err := p.cache.Set(ctx, raffleID, generation, rows); err != nil {
			p.logger.Warn().Err(err).Str("raffle_id", raffleID).Msg("failed to cache raffle numbers")
		}
	}
	return rows, nil
}

func normalise(rows []models.RaffleNumber, now time.Time) []models.RaffleNumber {
	out := make([]models.RaffleNumber, len(rows))
	for i, r := range rows {
		out[i] = r.Effective(now)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Summarize counts already normalised rows by status.
func Summarize(rows []models.RaffleNumber) models.PoolSummary {
	s := models.PoolSummary{Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case models.NumberStatusAvailable:
			s.Available++
		case models.NumberStatusReserved:
			s.Reserved++
		case models.NumberStatusSold:
			s.Sold++
		}
	}
	return s
}

// GroupReservations builds reservation groups from normalised rows.
func GroupReservations(rows []models.RaffleNumber) []models.ReservationGroup {
	byParticipant := make(map[string]*models.ReservationGroup)
	var order []string
	for _, r := range rows {
		if r.Status != models.NumberStatusReserved || r.ParticipantID == nil {
			continue
		}
		pid := *r.ParticipantID
		g, ok := byParticipant[pid]
		if !ok {
			g = &models.ReservationGroup{
				ParticipantID: pid,
				BuyerName:     r.BuyerName,
				BuyerPhone:    r.BuyerPhone,
			}
			if r.SellerID != nil {
				g.SellerID = *r.SellerID
			}
			byParticipant[pid] = g
			order = append(order, pid)
		}
		g.Numbers = append(g.Numbers, r.Number)
		if r.ReservationExpiresAt != nil && (g.ExpiresAt.IsZero() || r.ReservationExpiresAt.Before(g.ExpiresAt)) {
			g.ExpiresAt = *r.ReservationExpiresAt
		}
	}

	groups := make([]models.ReservationGroup, 0, len(order))
	for _, pid := range order {
		g := byParticipant[pid]
		sort.Ints(g.Numbers)
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Numbers[0] < groups[j].Numbers[0] })
	return groups
}
