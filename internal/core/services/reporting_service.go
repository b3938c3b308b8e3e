package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/export"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	ledgerRepo   portsrepo.LedgerReader
	categoryRepo portsrepo.CategoryReader
	ownerRepo    portsrepo.OwnerDirectory
	currency     string
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock sets the clock and ledger time zone used for period defaults.
func WithReportingClock(clk clock.Clock, loc *time.Location) ReportingServiceOption {
	return func(s *reportingService) {
		s.BaseService = newBaseService(clk, loc)
	}
}

// WithReportingCurrency sets the ISO currency used when exporting.
func WithReportingCurrency(code string) ReportingServiceOption {
	return func(s *reportingService) {
		s.currency = code
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(ledgerRepo portsrepo.LedgerReader, categoryRepo portsrepo.CategoryReader, ownerRepo portsrepo.OwnerDirectory, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:  newBaseService(nil, nil),
		ledgerRepo:   ledgerRepo,
		categoryRepo: categoryRepo,
		ownerRepo:    ownerRepo,
		currency:     "IDR",
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// period resolves the inclusive date range of a report.
func (s *reportingService) period(filter domain.ReportFilter) (time.Time, time.Time, error) {
	first, last := domain.MonthBounds(s.Clock.Now(), s.Location)
	start, end := first, last
	if !filter.StartDate.IsZero() {
		start = domain.CalendarDate(filter.StartDate, filter.StartDate.Location())
	}
	if !filter.EndDate.IsZero() {
		end = domain.CalendarDate(filter.EndDate, filter.EndDate.Location())
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("startDate", "must not be after endDate")
	}
	return start, end, nil
}

// Generate implements portssvc.ReportingService.
// The category and owner breakdowns are built from the filtered transactions, so a
// category filter narrows them too; the beginning balance ignores it.
func (s *reportingService) Generate(ctx context.Context, principal domain.Principal, filter domain.ReportFilter) (*domain.Report, error) {
	start, end, err := s.period(filter)
	if err != nil {
		s.LogDebug(ctx, "Report filter rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	scope := domain.ScopeFor(principal, filter.OwnerID)
	if !principal.IsAdmin && filter.OwnerID != "" && filter.OwnerID != principal.ID {
		s.LogDebug(ctx, "Ignoring owner filter for non-administrator",
			slog.String("principal_id", principal.ID),
			slog.String("requested_owner_id", filter.OwnerID))
	}

	// The three reads are independent and run against the pool concurrently.
	var (
		txns        []domain.Transaction
		periodFunds []domain.Fund
		before      decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.ledgerRepo.TransactionsOf(gctx, domain.LedgerFilter{Scope: scope, From: &start, To: &end, CategoryID: filter.CategoryID})
		if err != nil {
			return fmt.Errorf("failed to read period transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		periodFunds, err = s.ledgerRepo.FundsOf(gctx, domain.LedgerFilter{Scope: scope, From: &start, To: &end})
		if err != nil {
			return fmt.Errorf("failed to read period funds: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		before, err = scopeBalance(gctx, s.ledgerRepo, scope, &start)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to read ledger for report",
			slog.String("principal_id", principal.ID),
			slog.String("start", start.Format(domain.DateLayout)),
			slog.String("end", end.Format(domain.DateLayout)))
		return nil, err
	}
	accounting.SortTransactionsNewestFirst(txns)

	categories, ownerNames, err := s.resolveNames(ctx, txns, principal.IsAdmin)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve report names", slog.String("principal_id", principal.ID))
		return nil, err
	}

	entries := make([]domain.ReportEntry, 0, len(txns))
	for _, t := range txns {
		e := domain.ReportEntry{Transaction: t, CategoryName: domain.UncategorizedLabel}
		if c, ok := categories[t.CategoryID]; ok {
			e.CategoryName = c.Name
		}
		if principal.IsAdmin {
			e.OwnerName = accounting.OwnerName(ownerNames, t.OwnerID)
		}
		entries = append(entries, e)
	}

	totalAmount := accounting.SumTransactions(txns)
	beginning := before.Add(accounting.SumFunds(periodFunds))
	summary := domain.ReportSummary{
		TotalCount:       len(txns),
		TotalAmount:      totalAmount,
		BeginningBalance: beginning,
		EndingBalance:    beginning.Sub(totalAmount),
		ByCategory:       accounting.TotalsByCategory(txns, categories),
	}
	if principal.IsAdmin {
		summary.ByOwner = accounting.TotalsByOwner(txns, ownerNames)
	}

	report := &domain.Report{
		StartDate:    start,
		EndDate:      end,
		CategoryID:   filter.CategoryID,
		AdminView:    principal.IsAdmin,
		GeneratedAt:  s.Clock.Now(),
		Transactions: entries,
		Summary:      summary,
	}
	if principal.IsAdmin {
		report.OwnerID = filter.OwnerID
	} else {
		report.OwnerID = principal.ID
	}

	s.LogInfo(ctx, "Report generated",
		slog.String("principal_id", principal.ID),
		slog.String("start", start.Format(domain.DateLayout)),
		slog.String("end", end.Format(domain.DateLayout)),
		slog.Int("transaction_count", summary.TotalCount),
		slog.String("total_amount", utils.FormatWithPrecision(totalAmount, utils.LedgerPrecision)))
	return report, nil
}

// resolveNames looks up category and, for administrators, owner names for the entries.
func (s *reportingService) resolveNames(ctx context.Context, txns []domain.Transaction, withOwners bool) (map[string]domain.Category, map[string]string, error) {
	categoryIDs := make([]string, 0)
	ownerIDs := make([]string, 0)
	seenCategory := make(map[string]bool)
	seenOwner := make(map[string]bool)
	for _, t := range txns {
		if t.CategoryID != "" && !seenCategory[t.CategoryID] {
			seenCategory[t.CategoryID] = true
			categoryIDs = append(categoryIDs, t.CategoryID)
		}
		if !seenOwner[t.OwnerID] {
			seenOwner[t.OwnerID] = true
			ownerIDs = append(ownerIDs, t.OwnerID)
		}
	}

	categories := map[string]domain.Category{}
	if len(categoryIDs) > 0 {
		found, err := s.categoryRepo.FindCategoriesByIDs(ctx, categoryIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve categories: %w", err)
		}
		categories = found
	}

	ownerNames := map[string]string{}
	if withOwners && len(ownerIDs) > 0 {
		found, err := s.ownerRepo.FindOwnerNames(ctx, ownerIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve owner names: %w", err)
		}
		ownerNames = found
	}
	return categories, ownerNames, nil
}

// Export implements portssvc.ReportingService.
func (s *reportingService) Export(ctx context.Context, principal domain.Principal, filter domain.ReportFilter, format domain.ExportFormat) ([]byte, string, error) {
	report, err := s.Generate(ctx, principal, filter)
	if err != nil {
		return nil, "", err
	}
	out, err := export.Render(report, principal, format, export.Options{Currency: s.currency, Location: s.Location})
	if err != nil {
		s.LogError(ctx, err, "Failed to render report export",
			slog.String("principal_id", principal.ID), slog.String("format", string(format)))
		return nil, "", fmt.Errorf("failed to render report export: %w", err)
	}
	return out, export.FileName(report, format), nil
}
