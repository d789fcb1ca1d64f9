package http

import (
	"fmt"
	"strconv"
	"strings"

	"raffle-sales-backend/internal/common/errors"
)

// parseNumbers accepts form values that are single numbers or comma
// separated lists, e.g. ["1,2", "3"].
func parseNumbers(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, errors.NewValidationError("numbers", fmt.Sprintf("%q is not a number", part))
			}
			out = append(out, n)
		}
	}
	return out, nil
}
