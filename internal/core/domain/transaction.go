package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a debit entry (an expense) against the owner's float.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"`
	Amount        decimal.Decimal `json:"amount"` // Always positive, two decimals
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryID"` // Empty when uncategorized
	EffectiveDate time.Time       `json:"effectiveDate"`
	ReceiptRef    string          `json:"-"` // Opaque reference owned by the receipt store
	AuditFields
}

// HasReceipt is derived from the persisted reference and never stored.
func (t Transaction) HasReceipt() bool {
	return t.ReceiptRef != ""
}

// ReceiptUpload is a binary attachment handed to the receipt store.
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TransactionDraft carries the user supplied part of a new transaction.
type TransactionDraft struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"required,max=200"`
	CategoryID    string          `json:"categoryID" validate:"required"`
	EffectiveDate time.Time       `json:"effectiveDate" validate:"required"`
	Receipt       *ReceiptUpload  `json:"-" validate:"-"`
}

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description" validate:"omitempty,max=200"`
	CategoryID    *string          `json:"categoryID" validate:"omitempty,min=1"`
	EffectiveDate *time.Time       `json:"effectiveDate"`
	Receipt       *ReceiptUpload   `json:"-" validate:"-"`
	RemoveReceipt bool             `json:"removeReceipt"`
}

// ChangesBalance reports whether applying the patch can move the owner's balance.
func (p TransactionPatch) ChangesBalance(current Transaction) bool {
	return p.Amount != nil && !p.Amount.Equal(current.Amount)
}

// Apply returns a copy of t with the patch fields applied. Receipt changes are
// handled by the caller because they involve the receipt store.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.EffectiveDate != nil {
		t.EffectiveDate = *p.EffectiveDate
	}
	return t
}

// ReceiptCleanup is a durable marker for a receipt reference that must be released.
type ReceiptCleanup struct {
	CleanupID     string     `json:"cleanupID"`
	ReceiptRef    string     `json:"receiptRef"`
	OwnerID       string     `json:"ownerID"`
	TransactionID string     `json:"transactionID"`
	Reason        string     `json:"reason"`
	Attempts      int        `json:"attempts"`
	LastError     string     `json:"lastError"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastAttemptAt *time.Time `json:"lastAttemptAt,omitempty"`
}

// Reasons recorded on receipt cleanups.
const (
	CleanupReasonDeleted   = "TRANSACTION_DELETED"
	CleanupReasonReplaced  = "RECEIPT_REPLACED"
	CleanupReasonRemoved   = "RECEIPT_REMOVED"
	CleanupReasonAbandoned = "UPLOAD_ABANDONED" // stored but never committed to the ledger
)
