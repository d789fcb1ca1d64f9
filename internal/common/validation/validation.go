package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"raffle-sales-backend/internal/common/errors"
)

const (
	MaxMessageLength       = 1000
	MaxPaymentMethodLength = 32
	MinPhoneDigits         = 7
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json field names instead of Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s by its `validate` tags. The first failing field is
// reported as a VALIDATION_ERROR prefixed with prefix.
func Struct(prefix string, s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		if prefix != "" {
			field = prefix + "." + field
		}
		return errors.NewValidationError(field, describe(fe))
	}
	return errors.Wrap(err, errors.ErrCodeValidation, "validation failed")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// NormalizePhone keeps digits and a leading plus so that "0414-555 1234"
// and "04145551234" identify the same buyer.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhone checks a normalized phone.
func ValidatePhone(field, phone string) error {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < MinPhoneDigits {
		return errors.NewValidationError(field, fmt.Sprintf("must contain at least %d digits", MinPhoneDigits))
	}
	return nil
}

// Numbers sorts and de-duplicates requested ticket numbers. An empty or
// negative list is a validation error.
func Numbers(numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, errors.NewValidationError("numbers", "at least one number is required")
	}
	seen := make(map[int]struct{}, len(numbers))
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		if n < 0 {
			return nil, errors.NewValidationError("numbers", fmt.Sprintf("invalid number %d", n))
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// Text trims s and enforces a maximum length.
func Text(field, s string, max int, required bool) (string, error) {
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", errors.NewValidationError(field, "is required")
	}
	if len([]rune(s)) > max {
		return "", errors.NewValidationError(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return s, nil
}
