// Package main is a CLI for importing opening stock from an xlsx file.
//
// Usage:
//
//	DATABASE_URL=postgres://... importer -file stock.xlsx [-dry-run] [-page-size 200]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"pharmabill/internal/domain/importer"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/internal/infrastructure/storage/postgres"
	"pharmabill/internal/infrastructure/storage/postgres/register_repo"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

func main() {
	var (
		filePath = flag.String("file", "", "path to the xlsx file (required)")
		dryRun   = flag.Bool("dry-run", false, "reconcile and report without writing")
		pageSize = flag.Int("page-size", 0, "rows per transaction (default 200)")
		jsonOut  = flag.Bool("json", false, "print the full report as JSON")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	ctx = postgres.WithTxManager(ctx, txManager)

	stockService := stock.NewService(register_repo.NewStockRepo())
	imp := importer.New(stockService, txManager, numerator.New(pool), *pageSize)

	report, err := imp.ImportFile(ctx, *filePath, *dryRun)
	if err != nil {
		if report != nil {
			printSummary(report)
		}
		log.Fatalw("import failed", "error", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalw("failed to encode report", "error", err)
		}
		return
	}

	printSummary(report)
	for _, row := range report.Rows {
		if row.Action == importer.ActionFailed || row.Action == importer.ActionSkipped {
			fmt.Printf("  row %d: %s %s\n", row.RowNo, row.Action, row.Message)
		}
	}
}

func printSummary(r *importer.Report) {
	fmt.Printf("created=%d incremented=%d merged=%d skipped=%d failed=%d\n",
		r.Created, r.Incremented, r.Merged, r.Skipped, r.Failed)
}
