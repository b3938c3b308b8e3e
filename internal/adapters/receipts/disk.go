package receipts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
)

// DiskStore keeps receipts as files in a single directory served under baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

var _ portssvc.ReceiptStore = (*DiskStore)(nil)

// NewDiskStore creates dir when missing.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

// Dir is the directory receipts are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Store writes the upload to a temporary file and renames it into place.
func (s *DiskStore) Store(ctx context.Context, upload domain.ReceiptUpload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := newRef(upload.Filename)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp receipt: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(upload.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write receipt %s: %w", ref, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close receipt %s: %w", ref, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, ref)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move receipt %s into place: %w", ref, err)
	}
	return ref, nil
}

// Delete removes the file. A missing file is not an error.
func (s *DiskStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRef(ref); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete receipt %s: %w", ref, err)
	}
	return nil
}

// Replace stores the upload first. When releasing oldRef fails the new reference is
// still returned together with the error so the caller can keep it.
func (s *DiskStore) Replace(ctx context.Context, oldRef string, upload domain.ReceiptUpload) (string, error) {
	return replace(ctx, s, oldRef, upload)
}

// URLOf implements portssvc.ReceiptStore.
func (s *DiskStore) URLOf(ref string) string {
	return joinURL(s.baseURL, ref)
}

// Exists implements portssvc.ReceiptStore.
func (s *DiskStore) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkRef(ref); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.dir, ref))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat receipt %s: %w", ref, err)
	}
}

func replace(ctx context.Context, s portssvc.ReceiptStore, oldRef string, upload domain.ReceiptUpload) (string, error) {
	ref, err := s.Store(ctx, upload)
	if err != nil {
		return "", err
	}
	if oldRef == "" {
		return ref, nil
	}
	if err := s.Delete(ctx, oldRef); err != nil {
		return ref, fmt.Errorf("release replaced receipt %s: %w", oldRef, err)
	}
	return ref, nil
}
