package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// MaxReceiptSize caps a single receipt upload.
const MaxReceiptSize = 5 << 20

const receiptField = "receipt"

var allowedReceiptTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readReceipt returns the uploaded receipt, or nil when the request carries none.
func readReceipt(c *gin.Context) (*domain.ReceiptUpload, error) {
	header, err := c.FormFile(receiptField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperrors.NewValidationError(receiptField, "could not be read")
	}
	if header.Size > MaxReceiptSize {
		return nil, apperrors.NewValidationError(receiptField, fmt.Sprintf("must be at most %d bytes", MaxReceiptSize))
	}
	data, err := readUpload(header)
	if err != nil {
		return nil, err
	}
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !slices.Contains(allowedReceiptTypes, contentType) {
		return nil, apperrors.NewValidationError(receiptField, "must be a JPEG, PNG, GIF, WebP image or a PDF")
	}
	return &domain.ReceiptUpload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open receipt upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt upload: %w", err)
	}
	if len(data) > MaxReceiptSize {
		return nil, apperrors.NewValidationError(receiptField, fmt.Sprintf("must be at most %d bytes", MaxReceiptSize))
	}
	return data, nil
}
