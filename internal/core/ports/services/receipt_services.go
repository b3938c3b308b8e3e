package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// ReceiptStore persists receipt binaries behind opaque references.
type ReceiptStore interface {
	// Store saves the upload and returns its reference.
	Store(ctx context.Context, upload domain.ReceiptUpload) (string, error)

	// Delete releases a reference. Deleting a missing reference is not an error.
	Delete(ctx context.Context, ref string) error

	// Replace stores the upload and then releases oldRef.
	Replace(ctx context.Context, oldRef string, upload domain.ReceiptUpload) (string, error)

	// URLOf resolves the public URL of a reference.
	URLOf(ref string) string

	// Exists reports whether the reference is still stored. The cleanup sweep
	// clears markers whose reference is already gone.
	Exists(ctx context.Context, ref string) (bool, error)
}

// SweepResult summarizes one pass over pending receipt cleanups.
type SweepResult struct {
	Attempted int `json:"attempted"`
	Released  int `json:"released"`
	Failed    int `json:"failed"`
}

// ReceiptCleanupSvc retries receipt releases that could not complete synchronously.
type ReceiptCleanupSvc interface {
	SweepPendingCleanups(ctx context.Context, limit int) (SweepResult, error)
}
