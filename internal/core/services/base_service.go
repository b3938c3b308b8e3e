package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Clock    clock.Clock
	Location *time.Location // ledger time zone
}

func newBaseService(clk clock.Clock, loc *time.Location) BaseService {
	if clk == nil {
		clk = clock.System{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return BaseService{Clock: clk, Location: loc}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// LogOutcome logs err at Debug when it is an expected domain outcome and at Error otherwise.
func (s *BaseService) LogOutcome(ctx context.Context, err error, msg string, keyvals ...any) {
	if apperrors.IsDomainError(err) {
		s.LogDebug(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}

// AuthorizeOwner checks that the principal may act on the owner's ledger.
func (s *BaseService) AuthorizeOwner(ctx context.Context, principal domain.Principal, ownerID string) error {
	if principal.CanAccess(ownerID) {
		return nil
	}
	s.LogWarn(ctx, "Principal not allowed to access ledger",
		slog.String("principal_id", principal.ID),
		slog.String("owner_id", ownerID))
	return apperrors.ErrForbidden
}

// Today returns the current calendar date in the ledger time zone.
func (s *BaseService) Today() time.Time {
	return domain.CalendarDate(s.Clock.Now(), s.Location)
}

// checkEffectiveDate normalizes a caller supplied date and rejects dates after today.
func (s *BaseService) checkEffectiveDate(field string, t time.Time) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, apperrors.NewValidationError(field, "is required")
	}
	d := domain.CalendarDate(t, t.Location())
	if d.After(s.Today()) {
		return time.Time{}, apperrors.NewValidationError(field, "must not be in the future")
	}
	return d, nil
}
