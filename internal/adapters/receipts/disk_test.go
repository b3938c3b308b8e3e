package receipts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "receipts"), "/receipts/")
	require.NoError(t, err)
	return store
}

func TestDiskStore_StoreAndExists(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStore(t)

	ref, err := store.Store(ctx, domain.ReceiptUpload{Filename: "Nota.PNG", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "receipt_"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	data, err := os.ReadFile(filepath.Join(store.Dir(), ref))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "/receipts/"+ref, store.URLOf(ref))
	assert.Empty(t, store.URLOf(""))
}

func TestDiskStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStore(t)

	ref, err := store.Store(ctx, domain.ReceiptUpload{Filename: "a.jpg", Data: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ref))
	require.NoError(t, store.Delete(ctx, ref))

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDiskStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStore(t)

	oldRef, err := store.Store(ctx, domain.ReceiptUpload{Filename: "old.jpg", Data: []byte("old")})
	require.NoError(t, err)

	newRef, err := store.Replace(ctx, oldRef, domain.ReceiptUpload{Filename: "new.pdf", Data: []byte("new")})
	require.NoError(t, err)
	assert.NotEqual(t, oldRef, newRef)

	oldExists, err := store.Exists(ctx, oldRef)
	require.NoError(t, err)
	assert.False(t, oldExists)
	newExists, err := store.Exists(ctx, newRef)
	require.NoError(t, err)
	assert.True(t, newExists)
}

func TestDiskStore_RejectsEscapingRefs(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStore(t)

	for _, ref := range []string{"../secret", "a/b.jpg", ".hidden", ""} {
		err := store.Delete(ctx, ref)
		assert.ErrorIs(t, err, apperrors.ErrValidation, ref)
		_, err = store.Exists(ctx, ref)
		assert.ErrorIs(t, err, apperrors.ErrValidation, ref)
	}
}

func TestNewRef_Extension(t *testing.T) {
	tests := []struct {
		filename string
		suffix   string
	}{
		{"scan.JPEG", ".jpeg"},
		{"receipt", defaultExtension},
		{"weird.toolongext", defaultExtension},
		{"", defaultExtension},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ref := newRef(tt.filename)
			assert.True(t, strings.HasSuffix(ref, tt.suffix), ref)
			assert.NoError(t, checkRef(ref))
		})
	}
}
