package dto

import (
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// parseRequiredDate parses a YYYY-MM-DD value, reporting failures against field.
func parseRequiredDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.NewValidationError(field, "is required")
	}
	return parseDate(field, value)
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// FormatDate renders a calendar date in the wire format.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
