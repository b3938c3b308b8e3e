package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/handlers"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var (
	ani   = domain.Principal{ID: "ani", Name: "Ani"}
	admin = domain.Principal{ID: "rina", Name: "Rina", IsAdmin: true}
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// --- Test Suite ---
type LedgerHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	jwtSecret    string
	balance      *MockBalanceService
	funds        *MockFundService
	transactions *MockTransactionService
	categories   *MockCategoryService
	reporting    *MockReportingService
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}

func (s *LedgerHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.balance = new(MockBalanceService)
	s.funds = new(MockFundService)
	s.transactions = new(MockTransactionService)
	s.categories = new(MockCategoryService)
	s.reporting = new(MockReportingService)
	s.transactions.On("ReceiptURL", mock.Anything, mock.Anything).Return("").Maybe()

	s.router = gin.New()
	v1 := s.router.Group("/api/v1", middleware.AuthMiddleware(s.jwtSecret, ""))
	handlers.RegisterLedgerRoutes(v1, &portssvc.ServiceContainer{
		Balance:     s.balance,
		Fund:        s.funds,
		Transaction: s.transactions,
		Category:    s.categories,
		Reporting:   s.reporting,
	}, middleware.ContextIdentityProvider{})
}

func (s *LedgerHandlerTestSuite) TearDownTest() {
	s.balance.AssertExpectations(s.T())
	s.funds.AssertExpectations(s.T())
	s.transactions.AssertExpectations(s.T())
	s.categories.AssertExpectations(s.T())
	s.reporting.AssertExpectations(s.T())
}

// generateTestToken creates a JWT for the principal.
func (s *LedgerHandlerTestSuite) generateTestToken(p domain.Principal) string {
	claims := middleware.LedgerClaims{
		Name:  p.Name,
		Admin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	s.Require().NoError(err)
	return signed
}

func (s *LedgerHandlerTestSuite) do(p domain.Principal, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(p))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *LedgerHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		TransactionID: "txn-1",
		OwnerID:       "ani",
		Amount:        decimal.NewFromInt(150000),
		Description:   "Office paper",
		CategoryID:    "office-supplies",
		EffectiveDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func (s *LedgerHandlerTestSuite) TestMissingTokenIsUnauthorized() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *LedgerHandlerTestSuite) TestCreateTransaction_JSON() {
	s.transactions.On("Post", mock.Anything, ani, mock.MatchedBy(func(d domain.TransactionDraft) bool {
		return d.Amount.Equal(decimal.NewFromInt(150000)) &&
			d.Description == "Office paper" &&
			d.EffectiveDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) &&
			d.Receipt == nil
	})).Return(sampleTransaction(), nil).Once()

	body := []byte(`{"amount": 150000, "description": "Office paper", "categoryID": "office-supplies", "effectiveDate": "2024-03-05"}`)
	w := s.do(ani, http.MethodPost, "/api/v1/transactions", body, "application/json")

	s.Equal(http.StatusCreated, w.Code)
	resp := s.decode(w)
	s.Equal("txn-1", resp["transactionID"])
	s.Equal("2024-03-05", resp["effectiveDate"])
	s.Equal(false, resp["hasReceipt"])
}

func (s *LedgerHandlerTestSuite) TestCreateTransaction_InsufficientFunds() {
	s.transactions.On("Post", mock.Anything, ani, mock.Anything).
		Return(nil, apperrors.NewInsufficientFundsError(decimal.NewFromInt(100000))).Once()

	body := []byte(`{"amount": 150000, "description": "Printer", "categoryID": "office-supplies", "effectiveDate": "2024-03-05"}`)
	w := s.do(ani, http.MethodPost, "/api/v1/transactions", body, "application/json")

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("100000.00", s.decode(w)["available"])
}

func (s *LedgerHandlerTestSuite) TestCreateTransaction_InvalidDate() {
	body := []byte(`{"amount": 10, "description": "Tea", "categoryID": "other", "effectiveDate": "05/03/2024"}`)
	w := s.do(ani, http.MethodPost, "/api/v1/transactions", body, "application/json")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("effectiveDate", s.decode(w)["field"])
	s.transactions.AssertNotCalled(s.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
}

func multipartBody(s *LedgerHandlerTestSuite, fields map[string]string, receipt []byte) ([]byte, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	if receipt != nil {
		fw, err := mw.CreateFormFile("receipt", "nota.png")
		s.Require().NoError(err)
		_, err = fw.Write(receipt)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func (s *LedgerHandlerTestSuite) TestCreateTransaction_MultipartWithReceipt() {
	txn := sampleTransaction()
	txn.ReceiptRef = "receipt_abc.png"
	s.transactions.On("Post", mock.Anything, ani, mock.MatchedBy(func(d domain.TransactionDraft) bool {
		return d.Receipt != nil &&
			d.Receipt.ContentType == "image/png" &&
			d.Receipt.Filename == "nota.png" &&
			d.Amount.Equal(decimal.RequireFromString("150000.50"))
	})).Return(txn, nil).Once()

	body, ct := multipartBody(s, map[string]string{
		"amount":        "150000.50",
		"description":   "Office paper",
		"categoryID":    "office-supplies",
		"effectiveDate": "2024-03-05",
	}, pngHeader)
	w := s.do(ani, http.MethodPost, "/api/v1/transactions", body, ct)

	s.Equal(http.StatusCreated, w.Code)
	s.Equal(true, s.decode(w)["hasReceipt"])
}

func (s *LedgerHandlerTestSuite) TestCreateTransaction_RejectsUnsupportedReceipt() {
	body, ct := multipartBody(s, map[string]string{
		"amount":        "10",
		"description":   "Tea",
		"categoryID":    "other",
		"effectiveDate": "2024-03-05",
	}, []byte("just some text"))
	w := s.do(ani, http.MethodPost, "/api/v1/transactions", body, ct)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("receipt", s.decode(w)["field"])
}

func (s *LedgerHandlerTestSuite) TestGetTransaction_ErrorMapping() {
	s.transactions.On("GetTransaction", mock.Anything, ani, "theirs").Return(nil, apperrors.ErrForbidden).Once()
	s.transactions.On("GetTransaction", mock.Anything, ani, "gone").Return(nil, apperrors.ErrNotFound).Once()
	s.transactions.On("GetTransaction", mock.Anything, ani, "broken").
		Return(nil, apperrors.NewAppError(500, "db down", errors.New("connection refused"))).Once()

	s.Equal(http.StatusForbidden, s.do(ani, http.MethodGet, "/api/v1/transactions/theirs", nil, "").Code)
	s.Equal(http.StatusNotFound, s.do(ani, http.MethodGet, "/api/v1/transactions/gone", nil, "").Code)

	w := s.do(ani, http.MethodGet, "/api/v1/transactions/broken", nil, "")
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "connection refused")
}

func (s *LedgerHandlerTestSuite) TestUpdateTransaction_PartialJSON() {
	updated := sampleTransaction()
	updated.Amount = decimal.NewFromInt(250)
	s.transactions.On("Edit", mock.Anything, ani, "txn-1", mock.MatchedBy(func(p domain.TransactionPatch) bool {
		return p.Amount != nil && p.Amount.Equal(decimal.NewFromInt(250)) &&
			p.Description == nil && p.EffectiveDate == nil && !p.RemoveReceipt
	})).Return(updated, nil).Once()

	w := s.do(ani, http.MethodPut, "/api/v1/transactions/txn-1", []byte(`{"amount": 250}`), "application/json")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("250", s.decode(w)["amount"])
}

func (s *LedgerHandlerTestSuite) TestUpdateTransaction_MultipartRemoveReceipt() {
	s.transactions.On("Edit", mock.Anything, ani, "txn-1", mock.MatchedBy(func(p domain.TransactionPatch) bool {
		return p.RemoveReceipt && p.Receipt == nil && p.Description != nil && *p.Description == "Taxi"
	})).Return(sampleTransaction(), nil).Once()

	body, ct := multipartBody(s, map[string]string{"removeReceipt": "true", "description": "Taxi"}, nil)
	w := s.do(ani, http.MethodPut, "/api/v1/transactions/txn-1", body, ct)
	s.Equal(http.StatusOK, w.Code)
}

func (s *LedgerHandlerTestSuite) TestDeleteTransactionAndReceipt() {
	s.transactions.On("Delete", mock.Anything, ani, "txn-1").Return(nil).Once()
	s.transactions.On("RemoveReceipt", mock.Anything, ani, "txn-2").Return(sampleTransaction(), nil).Once()

	s.Equal(http.StatusNoContent, s.do(ani, http.MethodDelete, "/api/v1/transactions/txn-1", nil, "").Code)
	s.Equal(http.StatusOK, s.do(ani, http.MethodDelete, "/api/v1/transactions/txn-2/receipt", nil, "").Code)
}

func (s *LedgerHandlerTestSuite) TestListTransactions_PassesFilter() {
	s.transactions.On("ListTransactions", mock.Anything, admin, mock.MatchedBy(func(f domain.TransactionListFilter) bool {
		return f.OwnerID == "ani" && f.Limit == 5 && f.StartDate != nil && f.StartDate.Day() == 1 && f.EndDate == nil
	})).Return([]domain.Transaction{*sampleTransaction()}, nil).Once()

	w := s.do(admin, http.MethodGet, "/api/v1/transactions?ownerId=ani&limit=5&startDate=2024-03-01", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.decode(w)["transactions"], 1)
}

func (s *LedgerHandlerTestSuite) TestGetBalance() {
	s.balance.On("GetBalance", mock.Anything, admin, "ani").Return(decimal.NewFromInt(700000), nil).Once()

	w := s.do(admin, http.MethodGet, "/api/v1/balance?ownerId=ani", nil, "")
	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	s.Equal("700000", resp["balance"])
	s.Equal("ani", resp["ownerID"])
}

func (s *LedgerHandlerTestSuite) TestAddFund() {
	s.funds.On("AddFund", mock.Anything, ani, mock.MatchedBy(func(d domain.FundDraft) bool {
		return d.Amount.Equal(decimal.NewFromInt(1000000)) && d.Note == "March float"
	})).Return(&domain.Fund{FundID: "fund-1", OwnerID: "ani", Amount: decimal.NewFromInt(1000000)}, nil).Once()

	body := []byte(`{"amount": 1000000, "note": "March float", "effectiveDate": "2024-03-01"}`)
	w := s.do(ani, http.MethodPost, "/api/v1/funds", body, "application/json")
	s.Equal(http.StatusCreated, w.Code)
	s.Equal("fund-1", s.decode(w)["fundID"])
}

func (s *LedgerHandlerTestSuite) TestListCategories() {
	s.categories.On("ListCategories", mock.Anything, ani).Return(domain.DefaultCategories(), nil).Once()

	w := s.do(ani, http.MethodGet, "/api/v1/categories", nil, "")
	s.Equal(http.StatusOK, w.Code)
	var resp []map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp, len(domain.DefaultCategories()))
	s.Equal(true, resp[0]["isDefault"])
}

func (s *LedgerHandlerTestSuite) TestGetReport_InvalidDate() {
	w := s.do(ani, http.MethodGet, "/api/v1/reports?startDate=yesterday", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.reporting.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerHandlerTestSuite) TestExportReport() {
	csvData := []byte("\ufeffPETTY CASH REPORT\n")
	s.reporting.On("Export", mock.Anything, ani, mock.MatchedBy(func(f domain.ReportFilter) bool {
		return f.StartDate.Day() == 1 && f.EndDate.Day() == 10
	}), domain.ExportCSV).Return(csvData, "petty-cash-report_2024-03-01_2024-03-10.csv", nil).Once()

	w := s.do(ani, http.MethodGet, "/api/v1/reports/export?startDate=2024-03-01&endDate=2024-03-10", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.True(strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	s.Contains(w.Header().Get("Content-Disposition"), "petty-cash-report_2024-03-01_2024-03-10.csv")
	s.Equal(csvData, w.Body.Bytes())
}

func (s *LedgerHandlerTestSuite) TestExportReport_XLSX() {
	s.reporting.On("Export", mock.Anything, ani, mock.Anything, domain.ExportXLSX).
		Return([]byte("PK"), "petty-cash-report_2024-03-01_2024-03-31.xlsx", nil).Once()

	w := s.do(ani, http.MethodGet, "/api/v1/reports/export?format=XLSX", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(domain.ExportXLSX.ContentType(), w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
}

func (s *LedgerHandlerTestSuite) TestExportReport_UnknownFormat() {
	w := s.do(ani, http.MethodGet, "/api/v1/reports/export?format=pdf", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), `"field":"format"`)
	s.reporting.AssertNotCalled(s.T(), "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
