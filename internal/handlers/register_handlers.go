package handlers

import (
	"net/http"
	"strings"

	"github.com/SscSPs/petty_cash_ledger/cmd/docs"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/SscSPs/petty_cash_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// rateLimiter may be nil to disable rate limiting.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Locally stored receipts are served by the API itself
	if cfg.ReceiptBackend == config.ReceiptBackendDisk && strings.HasPrefix(cfg.ReceiptBaseURL, "/") {
		r.Static(strings.TrimRight(cfg.ReceiptBaseURL, "/"), cfg.ReceiptDir)
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}
	RegisterLedgerRoutes(v1, services, middleware.ContextIdentityProvider{})

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// RegisterLedgerRoutes delegates route registration to the specific handlers.
func RegisterLedgerRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, identity portssvc.IdentityProvider) {
	registerBalanceRoutes(rg, services.Balance, services.Transaction, identity)
	registerFundRoutes(rg, services.Fund, identity)
	registerCategoryRoutes(rg, services.Category, identity)
	registerTransactionRoutes(rg, services.Transaction, identity)
	registerReportingRoutes(rg, services.Reporting, identity)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
