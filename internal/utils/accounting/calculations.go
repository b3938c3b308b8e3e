package accounting

import (
	"cmp"
	"slices"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxEntryAmount is the largest amount a single fund or transaction may carry.
var MaxEntryAmount = decimal.RequireFromString("9999999.99")

// MinEntryAmount is the smallest accepted amount.
var MinEntryAmount = decimal.RequireFromString("0.01")

// SumFunds totals the amounts of the given funds.
func SumFunds(funds []domain.Fund) decimal.Decimal {
	total := decimal.Zero
	for _, f := range funds {
		total = total.Add(f.Amount)
	}
	return total
}

// SumTransactions totals the amounts of the given transactions.
func SumTransactions(txns []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

// Balance is funds minus transactions over the full history it is given.
func Balance(funds []domain.Fund, txns []domain.Transaction) decimal.Decimal {
	return SumFunds(funds).Sub(SumTransactions(txns))
}

// BalanceBefore is Balance restricted to entries dated strictly before cutoff.
// It is zero when cutoff precedes every entry.
func BalanceBefore(funds []domain.Fund, txns []domain.Transaction, cutoff time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, f := range funds {
		if f.EffectiveDate.Before(cutoff) {
			total = total.Add(f.Amount)
		}
	}
	for _, t := range txns {
		if t.EffectiveDate.Before(cutoff) {
			total = total.Sub(t.Amount)
		}
	}
	return total
}

// BalanceAfterEdit is the hypothetical balance once a transaction of oldAmount is re-recorded as newAmount.
func BalanceAfterEdit(current, oldAmount, newAmount decimal.Decimal) decimal.Decimal {
	return current.Add(oldAmount).Sub(newAmount)
}

// CanAfford reports whether spending amount keeps balance non-negative.
func CanAfford(balance, amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(balance)
}

// ValidateAmount enforces the entry amount rules: positive, bounded, at most two decimals.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.LessThan(MinEntryAmount) {
		return apperrors.NewValidationError(field, "must be at least "+MinEntryAmount.StringFixed(2))
	}
	if amount.GreaterThan(MaxEntryAmount) {
		return apperrors.NewValidationError(field, "must not exceed "+MaxEntryAmount.StringFixed(2))
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.NewValidationError(field, "must have at most two decimal places")
	}
	return nil
}

// SortTransactionsNewestFirst orders by effective date then creation time, both descending.
func SortTransactionsNewestFirst(txns []domain.Transaction) {
	slices.SortStableFunc(txns, func(a, b domain.Transaction) int {
		if c := b.EffectiveDate.Compare(a.EffectiveDate); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.TransactionID, a.TransactionID)
	})
}

// SortFundsNewestFirst orders by effective date then creation time, both descending.
func SortFundsNewestFirst(funds []domain.Fund) {
	slices.SortStableFunc(funds, func(a, b domain.Fund) int {
		if c := b.EffectiveDate.Compare(a.EffectiveDate); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.FundID, a.FundID)
	})
}

// TotalsByCategory groups transactions per category, sorted by total descending.
// names resolves category IDs; missing IDs render as the uncategorized label.
func TotalsByCategory(txns []domain.Transaction, categories map[string]domain.Category) []domain.CategoryTotal {
	index := make(map[string]int)
	totals := []domain.CategoryTotal{}
	for _, t := range txns {
		i, ok := index[t.CategoryID]
		if !ok {
			row := domain.CategoryTotal{CategoryID: t.CategoryID, CategoryName: domain.UncategorizedLabel, Total: decimal.Zero}
			if c, found := categories[t.CategoryID]; found {
				row.CategoryName = c.Name
				row.Color = c.Color
			}
			totals = append(totals, row)
			i = len(totals) - 1
			index[t.CategoryID] = i
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
		totals[i].Count++
	}
	slices.SortStableFunc(totals, func(a, b domain.CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryName, b.CategoryName)
	})
	return totals
}

// TotalsByOwner groups transactions per owner, sorted by total descending.
func TotalsByOwner(txns []domain.Transaction, names map[string]string) []domain.OwnerTotal {
	index := make(map[string]int)
	totals := []domain.OwnerTotal{}
	for _, t := range txns {
		i, ok := index[t.OwnerID]
		if !ok {
			totals = append(totals, domain.OwnerTotal{OwnerID: t.OwnerID, OwnerName: OwnerName(names, t.OwnerID), Total: decimal.Zero})
			i = len(totals) - 1
			index[t.OwnerID] = i
		}
		totals[i].Total = totals[i].Total.Add(t.Amount)
		totals[i].Count++
	}
	slices.SortStableFunc(totals, func(a, b domain.OwnerTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.OwnerName, b.OwnerName)
	})
	return totals
}

// OwnerName resolves a display name, falling back to the owner ID.
func OwnerName(names map[string]string, ownerID string) string {
	if n, ok := names[ownerID]; ok && n != "" {
		return n
	}
	return ownerID
}
