package receipts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gstorage "google.golang.org/api/storage/v1"
)

const gcsPublicURL = "https://storage.googleapis.com"

// GCSStore keeps receipts as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	svc     *gstorage.Service
	bucket  string
	prefix  string
	baseURL string
}

var _ portssvc.ReceiptStore = (*GCSStore)(nil)

// GCSConfig configures NewGCSStore. CredentialsFile falls back to
// GOOGLE_APPLICATION_CREDENTIALS; BaseURL defaults to the public bucket URL.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
	BaseURL         string
}

// NewGCSStore builds the storage service from service account credentials.
func NewGCSStore(ctx context.Context, cfg GCSConfig, opts ...goption.ClientOption) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("missing GCS bucket")
	}

	credentialsFile := cfg.CredentialsFile
	if credentialsFile == "" {
		credentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentialsFile != "" {
		slog.InfoContext(ctx, "Reading GCS credentials from file", "path", credentialsFile)
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		opts = append(opts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gstorage.DevstorageReadWriteScope))
	}

	svc, err := gstorage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gcsPublicURL + "/" + cfg.Bucket
		if cfg.Prefix != "" {
			baseURL += "/" + cfg.Prefix
		}
	}
	return &GCSStore{svc: svc, bucket: cfg.Bucket, prefix: cfg.Prefix, baseURL: baseURL}, nil
}

func (s *GCSStore) objectName(ref string) string {
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// Store uploads the receipt as a new object.
func (s *GCSStore) Store(ctx context.Context, upload domain.ReceiptUpload) (string, error) {
	ref := newRef(upload.Filename)
	obj := &gstorage.Object{
		Name:        s.objectName(ref),
		ContentType: upload.ContentType,
	}
	_, err := s.svc.Objects.Insert(s.bucket, obj).
		Media(bytes.NewReader(upload.Data), googleapi.ContentType(upload.ContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload receipt %s: %w", ref, err)
	}
	return ref, nil
}

// Delete removes the object. A missing object is not an error.
func (s *GCSStore) Delete(ctx context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	err := s.svc.Objects.Delete(s.bucket, s.objectName(ref)).Context(ctx).Do()
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete receipt %s: %w", ref, err)
	}
	return nil
}

// Replace implements portssvc.ReceiptStore.
func (s *GCSStore) Replace(ctx context.Context, oldRef string, upload domain.ReceiptUpload) (string, error) {
	return replace(ctx, s, oldRef, upload)
}

// URLOf implements portssvc.ReceiptStore.
func (s *GCSStore) URLOf(ref string) string {
	return joinURL(s.baseURL, ref)
}

// Exists implements portssvc.ReceiptStore.
func (s *GCSStore) Exists(ctx context.Context, ref string) (bool, error) {
	if err := checkRef(ref); err != nil {
		return false, err
	}
	_, err := s.svc.Objects.Get(s.bucket, s.objectName(ref)).Fields("name").Context(ctx).Do()
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("stat receipt %s: %w", ref, err)
	}
}
