package main

import (
	"flag"
	"fmt"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
)

// reportFlags selects the viewer and the period of a report.
type reportFlags struct {
	owner    string
	admin    bool
	ledger   string
	start    string
	end      string
	category string
}

func (r *reportFlags) register(f *flag.FlagSet) {
	f.StringVar(&r.owner, "owner", "", "Owner ID acting as the viewer.")
	f.BoolVar(&r.admin, "admin", false, "View as an administrator (all ledgers).")
	f.StringVar(&r.ledger, "ledger", "", "Administrators only: restrict the report to this owner's ledger.")
	f.StringVar(&r.start, "start", "", "Inclusive start date (YYYY-MM-DD). Defaults to the first day of the current month.")
	f.StringVar(&r.end, "end", "", "Inclusive end date (YYYY-MM-DD). Defaults to the last day of the current month.")
	f.StringVar(&r.category, "category", "", "Only include this category.")
}

func (r *reportFlags) resolve() (domain.Principal, domain.ReportFilter, error) {
	if r.owner == "" {
		return domain.Principal{}, domain.ReportFilter{}, fmt.Errorf("-owner is required")
	}
	filter, err := dto.ReportParams{
		StartDate:  r.start,
		EndDate:    r.end,
		CategoryID: r.category,
		OwnerID:    r.ledger,
	}.ToFilter()
	if err != nil {
		return domain.Principal{}, domain.ReportFilter{}, err
	}
	return domain.Principal{ID: r.owner, IsAdmin: r.admin}, filter, nil
}
