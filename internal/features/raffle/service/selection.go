package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/common/validation"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

// SelectionView is a seller's selection together with the quota figures the
// client needs to render it.
type SelectionView struct {
	RaffleID      string `json:"raffle_id"`
	SellerID      string `json:"seller_id"`
	Numbers       []int  `json:"numbers"`
	CantMax       int    `json:"cant_max"`
	Remaining     int    `json:"remaining"`
	MaxSelectable int    `json:"max_selectable"`
}

// SelectionService applies select and deselect operations to a seller's
// selection. Select and Deselect are pure with respect to the selection:
// the caller passes the current set and gets the new one back. The
// *Session methods load and store it through a SelectionStore.
type SelectionService struct {
	pool    *NumberPool
	sellers repository.SellerRepository
	store   SelectionStore
	logger  zerolog.Logger
}

func NewSelectionService(pool *NumberPool, sellers repository.SellerRepository, store SelectionStore, logger zerolog.Logger) *SelectionService {
	return &SelectionService{pool: pool, sellers: sellers, store: store, logger: logger}
}

// Select adds numbers to current. A reserved number pulls in every number
// of its participant's reservation group; a sold number is a conflict. The
// whole request is rejected when it would exceed the seller's quota, and
// current is then returned to the caller unchanged.
func (s *SelectionService) Select(ctx context.Context, raffleID, sellerID string, current, numbers []int) ([]int, error) {
	if raffleID == "" {
		return current, errors.NewFatalError("raffle id is required")
	}
	requested, err := validation.Numbers(numbers)
	if err != nil {
		return current, err
	}
	link, err := activeSeller(ctx, s.sellers, raffleID, sellerID)
	if err != nil {
		return current, err
	}

	rows, err := s.pool.ListByRaffle(ctx, raffleID)
	if err != nil {
		return current, err
	}
	index, err := requireKnown(requested, rows)
	if err != nil {
		return current, err
	}

	expanded, err := expandGroups(requested, index, rows)
	if err != nil {
		return current, err
	}

	selected := toSet(current)
	var additions []int
	for _, n := range expanded {
		if _, ok := selected[n]; !ok {
			additions = append(additions, n)
		}
	}
	if len(additions) == 0 {
		return sortedCopy(current), nil
	}

	union := append(sortedCopy(current), additions...)
	remaining := inventoryFor(Summarize(rows).Remaining(), union, index)
	if err := CheckQuota(link.CantMax, remaining, len(current), len(additions)); err != nil {
		s.logger.Debug().
			Str("raffle_id", raffleID).
			Str("seller_id", sellerID).
			Ints("requested", additions).
			Msg("selection rejected by quota")
		return current, err
	}

	sort.Ints(union)
	return union, nil
}

// Deselect removes numbers from current. It never fails.
func (s *SelectionService) Deselect(current, numbers []int) []int {
	drop := toSet(numbers)
	out := make([]int, 0, len(current))
	for _, n := range current {
		if _, ok := drop[n]; !ok {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// View returns the stored selection of a seller and its quota figures.
func (s *SelectionService) View(ctx context.Context, raffleID, sellerID string) (*SelectionView, error) {
	if raffleID == "" {
		return nil, errors.NewFatalError("raffle id is required")
	}
	link, err := activeSeller(ctx, s.sellers, raffleID, sellerID)
	if err != nil {
		return nil, err
	}
	current, err := s.load(ctx, raffleID, sellerID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, link, current)
}

// SelectInSession applies Select to the stored selection. The read-modify-write
// runs inside SelectionStore.Update, so two requests from the same seller
// cannot drop each other's numbers.
func (s *SelectionService) SelectInSession(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error) {
	if err := s.update(ctx, raffleID, sellerID, func(current []int) ([]int, error) {
		return s.Select(ctx, raffleID, sellerID, current, numbers)
	}); err != nil {
		return nil, err
	}
	return s.View(ctx, raffleID, sellerID)
}

// DeselectInSession removes numbers from the stored selection. An empty
// list clears it.
func (s *SelectionService) DeselectInSession(ctx context.Context, raffleID, sellerID string, numbers []int) (*SelectionView, error) {
	if len(numbers) == 0 {
		if err := s.ClearSession(ctx, raffleID, sellerID); err != nil {
			return nil, err
		}
		return s.View(ctx, raffleID, sellerID)
	}
	if err := s.update(ctx, raffleID, sellerID, func(current []int) ([]int, error) {
		return s.Deselect(current, numbers), nil
	}); err != nil {
		return nil, err
	}
	return s.View(ctx, raffleID, sellerID)
}

func (s *SelectionService) ClearSession(ctx context.Context, raffleID, sellerID string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx, raffleID, sellerID); err != nil {
		return errors.NewStorageError("clear selection", err)
	}
	return nil
}

func (s *SelectionService) view(ctx context.Context, link *models.SellerLink, current []int) (*SelectionView, error) {
	rows, err := s.pool.ListByRaffle(ctx, link.RaffleID)
	if err != nil {
		return nil, err
	}
	index := make(map[int]models.RaffleNumber, len(rows))
	for _, r := range rows {
		index[r.Number] = r
	}
	remaining := Summarize(rows).Remaining()
	return &SelectionView{
		RaffleID:      link.RaffleID,
		SellerID:      link.SellerID,
		Numbers:       current,
		CantMax:       link.CantMax,
		Remaining:     remaining,
		MaxSelectable: MaxSelectable(link.CantMax, inventoryFor(remaining, current, index), len(current)),
	}, nil
}

func (s *SelectionService) load(ctx context.Context, raffleID, sellerID string) ([]int, error) {
	if s.store == nil {
		return nil, nil
	}
	current, err := s.store.Load(ctx, raffleID, sellerID)
	if err != nil {
		return nil, errors.NewStorageError("load selection", err)
	}
	return current, nil
}

func (s *SelectionService) update(ctx context.Context, raffleID, sellerID string, fn func([]int) ([]int, error)) error {
	if s.store == nil {
		_, err := fn(nil)
		return err
	}
	if _, err := s.store.Update(ctx, raffleID, sellerID, fn); err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.NewStorageError("update selection", err)
	}
	return nil
}

// expandGroups replaces every reserved number by its participant's whole
// group and rejects sold numbers.
func expandGroups(requested []int, index map[int]models.RaffleNumber, rows []models.RaffleNumber) ([]int, error) {
	var sold []int
	out := make(map[int]struct{}, len(requested))
	for _, n := range requested {
		row := index[n]
		switch row.Status {
		case models.NumberStatusSold:
			sold = append(sold, n)
		case models.NumberStatusReserved:
			out[n] = struct{}{}
			if row.ParticipantID == nil {
				continue
			}
			for _, r := range rows {
				if r.Status == models.NumberStatusReserved && r.OwnedBy(*row.ParticipantID) {
					out[r.Number] = struct{}{}
				}
			}
		default:
			out[n] = struct{}{}
		}
	}
	if len(sold) > 0 {
		return nil, errors.NewConflictError(sold)
	}
	numbers := make([]int, 0, len(out))
	for n := range out {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// inventoryFor is the remaining-inventory operand of the quota for a set of
// numbers: live reservations among them are added back, since taking a
// reserved number over does not consume free inventory.
func inventoryFor(remaining int, numbers []int, index map[int]models.RaffleNumber) int {
	for _, n := range numbers {
		if r, ok := index[n]; ok && r.Status == models.NumberStatusReserved {
			remaining++
		}
	}
	return remaining
}

func toSet(numbers []int) map[int]struct{} {
	set := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return set
}
