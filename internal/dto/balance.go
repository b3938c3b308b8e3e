package dto

import (
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceParams are the query parameters of GET /balance.
type BalanceParams struct {
	OwnerID string `form:"ownerId"` // administrators only
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	OwnerID string          `json:"ownerID,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// OverviewResponse is the dashboard view.
type OverviewResponse struct {
	OwnerID              string                 `json:"ownerID"`
	CurrentBalance       decimal.Decimal        `json:"currentBalance"`
	TotalFunds           decimal.Decimal        `json:"totalFunds"`
	TotalExpenses        decimal.Decimal        `json:"totalExpenses"`
	CurrentMonthSpending decimal.Decimal        `json:"currentMonthSpending"`
	RecentTransactions   []TransactionResponse  `json:"recentTransactions"`
	SpendingByCategory   []domain.CategoryTotal `json:"spendingByCategory"`
	HasInitialFund       bool                   `json:"hasInitialFund"`
}

// ToOverviewResponse converts a domain.LedgerOverview; receiptURL resolves receipt links.
func ToOverviewResponse(o *domain.LedgerOverview, receiptURL func(domain.Transaction) string) OverviewResponse {
	recent := make([]TransactionResponse, len(o.RecentTransactions))
	for i, t := range o.RecentTransactions {
		recent[i] = ToTransactionResponse(t, receiptURL(t))
	}
	return OverviewResponse{
		OwnerID:              o.OwnerID,
		CurrentBalance:       o.CurrentBalance,
		TotalFunds:           o.TotalFunds,
		TotalExpenses:        o.TotalExpenses,
		CurrentMonthSpending: o.CurrentMonthSpending,
		RecentTransactions:   recent,
		SpendingByCategory:   o.SpendingByCategory,
		HasInitialFund:       o.HasInitialFund,
	}
}
