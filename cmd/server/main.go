// Package main is the entry point for the pharmabill API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmabill/internal/domain/auth"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/rules"
	v1 "pharmabill/internal/infrastructure/http/v1"
	"pharmabill/internal/infrastructure/storage/postgres"
	"pharmabill/internal/infrastructure/storage/postgres/auth_repo"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting pharmabill server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Auth Service ---
	// Auth repos resolve the TxManager from the request context.
	userRepo := auth_repo.NewUserRepo()
	roleRepo := auth_repo.NewRoleRepo()
	permRepo := auth_repo.NewPermissionRepo()
	tokenRepo := auth_repo.NewTokenRepo()

	authConfig := auth.DefaultServiceConfig()
	authService := auth.NewService(
		userRepo,
		roleRepo,
		permRepo,
		tokenRepo,
		txManager,
		jwtService,
		authConfig,
	)

	// --- Numerator Service ---
	// Numbers are assigned outside business transactions, so the
	// numerator queries the pool directly.
	numeratorService := numerator.New(pool)

	// --- Invoice rule engine ---
	ruleEngine, err := loadRuleEngine(getEnv("RULES_FILE", ""))
	if err != nil {
		log.Fatalw("failed to load invoice rules", "error", err)
	}

	// --- Posting policy ---
	// CLOSED_UNTIL locks documents dated before it, typically the first
	// day after the last filed GST period.
	var policy posting.Policy = posting.OpenPolicy{}
	if closedUntil := getEnv("CLOSED_UNTIL", ""); closedUntil != "" {
		parsed, err := time.Parse("2006-01-02", closedUntil)
		if err != nil {
			log.Fatalw("invalid CLOSED_UNTIL date", "value", closedUntil, "error", err)
		}
		policy = posting.NewStrictPolicy(parsed)
		log.Infow("posting policy: strict", "closed_until", closedUntil)
	}

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		Numerator:          numeratorService,
		RuleEngine:         ruleEngine,
		PostingPolicy:      policy,
		Audit:              auditService,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "false") == "true",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// loadRuleEngine compiles the invoice rule set. An empty path runs the
// default rules; a file holds a JSON array of rules.
func loadRuleEngine(path string) (*rules.Engine, error) {
	ruleSet := rules.DefaultRules()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rules file: %w", err)
		}
		ruleSet = nil
		if err := json.Unmarshal(data, &ruleSet); err != nil {
			return nil, fmt.Errorf("parse rules file: %w", err)
		}
	}

	return rules.NewEngine(ruleSet)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
