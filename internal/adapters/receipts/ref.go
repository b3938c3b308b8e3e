// Package receipts holds the receipt store adapters. References are opaque to the
// ledger: a generated file name that never encodes caller input besides the extension.
package receipts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/google/uuid"
)

const defaultExtension = ".jpg"

// newRef derives a fresh reference from the uploaded file name.
func newRef(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 || strings.ContainsAny(ext[1:], `./\`) {
		ext = defaultExtension
	}
	return "receipt_" + uuid.NewString() + ext
}

// checkRef rejects references that could escape the store's namespace.
func checkRef(ref string) error {
	if ref == "" || ref != filepath.Base(ref) || strings.ContainsAny(ref, `/\`) || strings.HasPrefix(ref, ".") {
		return fmt.Errorf("%w: invalid receipt reference %q", apperrors.ErrValidation, ref)
	}
	return nil
}

func joinURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + ref
}
