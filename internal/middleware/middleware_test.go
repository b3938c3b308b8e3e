package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims middleware.LedgerClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthRouter(captured *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, "petty-cash"))
	r.GET("/me", func(c *gin.Context) {
		p, err := middleware.ContextIdentityProvider{}.CurrentPrincipal(c.Request.Context())
		if err != nil {
			c.Status(http.StatusUnauthorized)
			return
		}
		*captured = p
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware_ResolvesPrincipal(t *testing.T) {
	var got domain.Principal
	r := newAuthRouter(&got)

	token := signToken(t, middleware.LedgerClaims{
		Name:  "Rina",
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner-1",
			Issuer:    "petty-cash",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Principal{ID: "owner-1", Name: "Rina", IsAdmin: true}, got)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	valid := jwt.RegisteredClaims{Subject: "owner-1", Issuer: "petty-cash", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"missing header", func(t *testing.T) string { return "" }},
		{"wrong scheme", func(t *testing.T) string { return "Basic abc" }},
		{"bad signature", func(t *testing.T) string {
			return "Bearer " + signToken(t, middleware.LedgerClaims{RegisteredClaims: valid}, "other-secret")
		}},
		{"expired", func(t *testing.T) string {
			c := valid
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return "Bearer " + signToken(t, middleware.LedgerClaims{RegisteredClaims: c}, testSecret)
		}},
		{"wrong issuer", func(t *testing.T) string {
			c := valid
			c.Issuer = "someone-else"
			return "Bearer " + signToken(t, middleware.LedgerClaims{RegisteredClaims: c}, testSecret)
		}},
		{"missing subject", func(t *testing.T) string {
			c := valid
			c.Subject = ""
			return "Bearer " + signToken(t, middleware.LedgerClaims{RegisteredClaims: c}, testSecret)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Principal
			r := newAuthRouter(&got)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, got.ID)
		})
	}
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := middleware.NewLimiter("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewLimiter_InvalidRate(t *testing.T) {
	_, err := middleware.NewLimiter("lots")
	assert.Error(t, err)
}

func TestStructuredLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.Default()))
	r.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, middleware.GetLoggerFromCtx(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
