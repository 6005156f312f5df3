// Package main is the entry point for the pharmabill background worker.
// It relays outbox events and sweeps expired sessions and idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pharmabill/internal/infrastructure/storage/postgres"
	"pharmabill/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting pharmabill worker")

	pool, err := pgxpool.New(ctx, mustEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}

	worker := NewWorker(pool, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker processes background jobs: the outbox relay and periodic
// cleanup of expired refresh tokens and idempotency keys.
type Worker struct {
	pool  *pgxpool.Pool
	relay *postgres.OutboxRelay
	log   *logger.Logger
}

func NewWorker(pool *pgxpool.Pool, log *logger.Logger) *Worker {
	w := &Worker{
		pool: pool,
		log:  log.WithComponent("worker"),
	}
	w.relay = postgres.NewOutboxRelay(pool, 100, w)
	return w
}

// Handle processes one outbox message. There is no external broker in a
// single-store deployment; events are logged and acknowledged so the
// table does not grow unbounded. Integrations hook in here.
func (w *Worker) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	w.log.Infow("outbox event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
	)
	return nil
}

// Run drives the relay and cleanup loops until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	relayTicker := time.NewTicker(500 * time.Millisecond)
	defer relayTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-relayTicker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanupSessions(ctx)
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox relay failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("processed outbox batch", "count", processed)
	}
}

func (w *Worker) cleanupSessions(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "count", result.RowsAffected())
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
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
