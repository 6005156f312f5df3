// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"pharmabill/internal/domain/auth"
	"pharmabill/internal/domain/catalogs/item"
	"pharmabill/internal/domain/catalogs/party"
	"pharmabill/internal/domain/catalogs/pharmacy"
	"pharmabill/internal/domain/documents/purchase_invoice"
	"pharmabill/internal/domain/documents/sales_invoice"
	"pharmabill/internal/domain/importer"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/internal/domain/reports"
	"pharmabill/internal/domain/rules"
	"pharmabill/internal/infrastructure/http/v1/handlers"
	"pharmabill/internal/infrastructure/http/v1/middleware"
	"pharmabill/internal/infrastructure/storage/postgres"
	"pharmabill/internal/infrastructure/storage/postgres/catalog_repo"
	"pharmabill/internal/infrastructure/storage/postgres/document_repo"
	"pharmabill/internal/infrastructure/storage/postgres/register_repo"
	"pharmabill/internal/infrastructure/storage/postgres/report_repo"
	"pharmabill/internal/metadata"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency store)
	Pool *postgres.Pool

	// TxManager is the process-wide transaction manager
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document and item number generation
	Numerator numerator.Generator

	// RuleEngine evaluates invoice rules at post time
	RuleEngine *rules.Engine

	// PostingPolicy guards closed accounting periods. Nil means open.
	PostingPolicy posting.Policy

	// Audit records document lifecycle actions. Nil disables the trail.
	Audit *postgres.AuditService

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes need the database but not a JWT
		registerAuthRoutes(v1, cfg)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Database(cfg.TxManager)) // 1. Attach TxManager
		protected.Use(middleware.Auth(cfg.JWTValidator))  // 2. Validate JWT
		protected.Use(middleware.UserContext())           // 3. Add UserID to context for domain layer

		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, 10*time.Minute)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerMetaRoutes(protected)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.Database(cfg.TxManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Database(cfg.TxManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.Use(middleware.UserContext())

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Note: repos and services are created once; the TxManager is resolved
	// from the request context per call.

	// --- ITEMS ---
	{
		repo := catalog_repo.NewItemRepo()
		service := item.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewItemHandler(baseHandler, service)

		group := catalogs.Group("/items")
		group.GET("/search", middleware.RequirePermission("catalog:item:read"), handler.Search)
		group.GET("/barcode/:barcode", middleware.RequirePermission("catalog:item:read"), handler.FindByBarcode)
		RegisterCatalogRoutes(group, handler, "catalog:item")
	}

	// --- PARTIES ---
	{
		repo := catalog_repo.NewPartyRepo()
		service := party.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewPartyHandler(baseHandler, service)

		group := catalogs.Group("/parties")
		group.GET("/by-phone", middleware.RequirePermission("catalog:party:read"), handler.FindByPhone)
		RegisterCatalogRoutes(group, handler, "catalog:party")
	}

	// --- PHARMACIES ---
	{
		repo := catalog_repo.NewPharmacyRepo()
		service := pharmacy.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewPharmacyHandler(baseHandler, service)

		group := catalogs.Group("/pharmacies")
		group.GET("/default", middleware.RequirePermission("catalog:pharmacy:read"), handler.GetDefault)
		RegisterCatalogRoutes(group, handler, "catalog:pharmacy")
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// Shared dependencies
	stockRepo := register_repo.NewStockRepo()
	stockService := stock.NewService(stockRepo)

	policy := cfg.PostingPolicy
	if policy == nil {
		policy = posting.OpenPolicy{}
	}
	postingEngine := posting.NewEngine(stockService, policy, cfg.TxManager).
		WithEvents(postgres.NewOutboxEventSink(cfg.TxManager))
	if cfg.Audit != nil {
		postingEngine.WithEvents(postgres.NewAuditEventSink(cfg.Audit))
	}

	// Schedule lookup for prescription rules comes from the item catalog.
	itemRepo := catalog_repo.NewItemRepo()
	itemService := item.NewService(itemRepo, cfg.Numerator, cfg.TxManager)

	// --- SALES INVOICE ---
	{
		repo := document_repo.NewSalesInvoiceRepo()
		service := sales_invoice.NewService(
			repo, postingEngine, cfg.Numerator, cfg.TxManager,
			cfg.RuleEngine, itemService.ScheduleOf,
		)
		handler := handlers.NewSalesInvoiceHandler(baseHandler, service)
		group := docsGroup.Group("/sales-invoice")
		registerHistoryRoute(group, cfg, baseHandler, "SalesInvoice", "document:sales_invoice:read")
		RegisterDocumentRoutes(group, handler, "document:sales_invoice")
	}

	// --- PURCHASE INVOICE ---
	{
		repo := document_repo.NewPurchaseInvoiceRepo()
		service := purchase_invoice.NewService(repo, postingEngine, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewPurchaseInvoiceHandler(baseHandler, service)
		group := docsGroup.Group("/purchase-invoice")
		registerHistoryRoute(group, cfg, baseHandler, "PurchaseInvoice", "document:purchase_invoice:read")
		RegisterDocumentRoutes(group, handler, "document:purchase_invoice")
	}
}

// registerHistoryRoute exposes the audit trail for one document type.
func registerHistoryRoute(group *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, docType, perm string) {
	if cfg.Audit == nil {
		return
	}
	historyHandler := handlers.NewAuditHistoryHandler(base, cfg.Audit, docType)
	group.GET("/:id/history", middleware.RequirePermission(perm), historyHandler.History)
}

// registerRegisterRoutes registers stock register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	stockRepo := register_repo.NewStockRepo()
	stockService := stock.NewService(stockRepo)
	stockHandler := handlers.NewStockHandler(baseHandler, stockService)

	stockGroup := registers.Group("/stock")
	read := middleware.RequirePermission("register:stock:read")
	stockGroup.GET("/records", read, stockHandler.ListRecords)
	stockGroup.GET("/records/:itemCode", read, stockHandler.GetRecord)
	stockGroup.GET("/availability/:itemCode", read, stockHandler.GetAvailability)
	stockGroup.GET("/expiring", read, stockHandler.GetExpiring)
	stockGroup.GET("/below-reorder", read, stockHandler.GetBelowReorder)
	stockGroup.GET("/movements/:itemCode", read, stockHandler.GetMovements)

	// Opening stock import
	imp := importer.New(stockService, cfg.TxManager, cfg.Numerator, 0)
	importHandler := handlers.NewStockImportHandler(baseHandler, imp)
	stockGroup.POST("/import", middleware.RequirePermission("register:stock:import"), importHandler.Import)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	stockRepo := register_repo.NewStockRepo()
	stockService := stock.NewService(stockRepo)

	reportRepo := report_repo.NewReportRepo()
	reportService := reports.NewService(reportRepo, stockService)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	read := middleware.RequirePermission("report:read")
	reportsGroup.GET("/gst-summary", read, reportHandler.GetGSTSummary)
	reportsGroup.GET("/profit", read, reportHandler.GetProfitAnalysis)
	reportsGroup.GET("/low-stock", read, reportHandler.GetLowStock)
	reportsGroup.GET("/expiry", read, reportHandler.GetExpiry)
	reportsGroup.GET("/daily-sales", read, reportHandler.GetDailySales)
}

// registerMetaRoutes exposes entity definitions for form builders and
// API consumers.
func registerMetaRoutes(rg *gin.RouterGroup) {
	registry := metadata.NewRegistry()
	registry.Register(metadata.Inspect(&item.Item{}, "item", metadata.TypeCatalog))
	registry.Register(metadata.Inspect(&party.Party{}, "party", metadata.TypeCatalog))
	registry.Register(metadata.Inspect(&pharmacy.Pharmacy{}, "pharmacy", metadata.TypeCatalog))
	registry.Register(metadata.Inspect(&sales_invoice.SalesInvoice{}, "salesInvoice", metadata.TypeDocument))
	registry.Register(metadata.Inspect(&purchase_invoice.PurchaseInvoice{}, "purchaseInvoice", metadata.TypeDocument))

	handler := handlers.NewMetadataHandler(registry)
	meta := rg.Group("/meta")
	meta.GET("", handler.ListEntities)
	meta.GET("/:name", handler.GetEntity)
}
