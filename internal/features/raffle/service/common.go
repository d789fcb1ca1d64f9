package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"raffle-sales-backend/internal/common/errors"
	"raffle-sales-backend/internal/common/validation"
	"raffle-sales-backend/internal/features/raffle/models"
	"raffle-sales-backend/internal/features/raffle/repository"
)

// activeSeller loads the seller's link to the raffle. A seller that is not
// linked or not active cannot act on the raffle at all.
func activeSeller(ctx context.Context, sellers repository.SellerRepository, raffleID, sellerID string) (*models.SellerLink, error) {
	if sellerID == "" {
		return nil, errors.NewFatalError("seller id is required")
	}
	link, err := sellers.GetLink(ctx, raffleID, sellerID)
	if err != nil {
		return nil, errors.NewStorageError("load seller link", err)
	}
	if link == nil || !link.Active {
		return nil, errors.NewFatalError(fmt.Sprintf("seller %s is not active in raffle %s", sellerID, raffleID))
	}
	return link, nil
}

// normaliseBuyer validates buyer fields and returns a copy with the phone in
// canonical form.
func normaliseBuyer(b models.Buyer) (models.Buyer, error) {
	if err := validation.Struct("buyer", b); err != nil {
		return b, err
	}
	b.Phone = validation.NormalizePhone(b.Phone)
	if err := validation.ValidatePhone("buyer.phone", b.Phone); err != nil {
		return b, err
	}
	return b, nil
}

// resolveParticipant finds the buyer by phone within the raffle or registers
// them. A concurrent registration of the same phone is resolved by reading
// the winner's row.
func resolveParticipant(ctx context.Context, repo repository.ParticipantRepository, raffleID string, buyer models.Buyer, now time.Time) (*models.Participant, error) {
	existing, err := repo.GetByPhone(ctx, raffleID, buyer.Phone)
	if err != nil {
		return nil, errors.NewStorageError("find participant", err)
	}
	if existing != nil {
		return existing, nil
	}

	p := &models.Participant{
		ID:        uuid.New().String(),
		RaffleID:  raffleID,
		Name:      buyer.Name,
		Phone:     buyer.Phone,
		Cedula:    buyer.Cedula,
		Address:   buyer.Address,
		CreatedAt: now,
	}
	err = repo.Create(ctx, p)
	if stderrors.Is(err, repository.ErrDuplicateParticipant) {
		existing, err = repo.GetByPhone(ctx, raffleID, buyer.Phone)
		if err != nil {
			return nil, errors.NewStorageError("find participant", err)
		}
		if existing == nil {
			return nil, errors.NewStorageError("create participant", repository.ErrDuplicateParticipant)
		}
		return existing, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("create participant", err)
	}
	return p, nil
}

// requireKnown fails with a validation error naming the first requested
// number that does not exist in rows.
func requireKnown(numbers []int, rows []models.RaffleNumber) (map[int]models.RaffleNumber, error) {
	index := make(map[int]models.RaffleNumber, len(rows))
	for _, r := range rows {
		index[r.Number] = r
	}
	for _, n := range numbers {
		if _, ok := index[n]; !ok {
			return nil, errors.NewValidationError("numbers", fmt.Sprintf("number %d does not exist in raffle", n))
		}
	}
	return index, nil
}

func publish(ctx context.Context, events EventPublisher, logger zerolog.Logger, e models.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, e); err != nil {
		logger.Warn().Err(err).Str("event", string(e.Type)).Str("raffle_id", e.RaffleID).Msg("failed to publish event")
	}
}

func sortedCopy(numbers []int) []int {
	out := append([]int(nil), numbers...)
	sort.Ints(out)
	return out
}
