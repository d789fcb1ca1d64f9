package service

import "raffle-sales-backend/internal/common/errors"

// MaxSelectable is how many more numbers a seller may take:
// min(cantMax, remaining) - alreadySelected, floored at zero.
func MaxSelectable(cantMax, remaining, alreadySelected int) int {
	limit := min(cantMax, remaining) - alreadySelected
	if limit < 0 {
		return 0
	}
	return limit
}

// CheckQuota rejects the whole request when it would exceed MaxSelectable.
// There is no partial acceptance.
func CheckQuota(cantMax, remaining, alreadySelected, requested int) error {
	limit := MaxSelectable(cantMax, remaining, alreadySelected)
	if requested > limit {
		return errors.NewQuotaExceededError(limit, requested)
	}
	return nil
}
