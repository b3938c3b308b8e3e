package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger event kinds. They double as routing keys.
const (
	EventFundAdded          = "ledger.fund.added"
	EventTransactionPosted  = "ledger.transaction.posted"
	EventTransactionEdited  = "ledger.transaction.edited"
	EventTransactionDeleted = "ledger.transaction.deleted"
)

// LedgerEvent announces a committed ledger mutation to downstream consumers.
type LedgerEvent struct {
	EventID       string          `json:"eventID"`
	Kind          string          `json:"kind"`
	OwnerID       string          `json:"ownerID"`
	EntryID       string          `json:"entryID"` // fund or transaction id
	Amount        decimal.Decimal `json:"amount"`
	EffectiveDate string          `json:"effectiveDate"` // YYYY-MM-DD
	ActorID       string          `json:"actorID"`
	OccurredAt    time.Time       `json:"occurredAt"`
}
