// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pharmabill/internal/core/id"
	"pharmabill/internal/infrastructure/storage/postgres"
	"pharmabill/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed admin user
	if _, err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pharmabill.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	// Create admin user
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Pharmacy profile - printed on invoice headers
	_, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_pharmacies (
			id, code, name, address, phone, email, gstin, dl_number, is_default,
			version, deletion_mark, attributes
		)
		VALUES ($1, 'PH-001', 'City Care Pharmacy',
			'12 MG Road, Bengaluru 560001', '+91 80 2345 6789', 'citycare@pharmabill.local',
			'29ABCDE1234F1Z5', 'KA-B-123456', true, 1, false, '{}')
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, id.New())
	if err != nil {
		log.Warnw("failed to seed pharmacy profile", "error", err)
	}

	// 2. Parties: supplier distributors and walk-in regulars
	parties := []struct {
		name  string
		ptype string
		gstin *string
		phone string
	}{
		{"MedPlus Distributors", "supplier", str("29AABCM1234D1Z3"), "+91 80 4000 1111"},
		{"Karnataka Pharma Agencies", "supplier", str("29AAKPA5678E1Z7"), "+91 80 4000 2222"},
		{"Ravi Kumar", "customer", nil, "+91 98450 12345"},
		{"Lakshmi Devi", "customer", nil, "+91 98450 67890"},
	}

	for i, p := range parties {
		code := fmt.Sprintf("PT-%03d", i+1)
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_parties (
				id, code, name, type, gstin, phone, credit_limit,
				version, deletion_mark, attributes
			)
			VALUES ($1, $2, $3, $4, $5, $6, 0, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), code, p.name, p.ptype, p.gstin, p.phone)
		if err != nil {
			log.Warnw("failed to seed party", "name", p.name, "error", err)
		}
	}

	// 3. Items: a small medicine master covering the GST slabs and
	// schedule classes the rule engine cares about
	items := []struct {
		name     string
		generic  string
		category string
		schedule string
		hsn      string
		barcode  string
		packSize string
		cgst     string
		sgst     string
	}{
		{"Dolo 650 Tablet", "Paracetamol 650mg", "Analgesic", "", "30049099", "8901234500011", "15 tablets", "6", "6"},
		{"Azithral 500 Tablet", "Azithromycin 500mg", "Antibiotic", "H", "30042020", "8901234500028", "5 tablets", "6", "6"},
		{"Alprax 0.5 Tablet", "Alprazolam 0.5mg", "Psychiatry", "H1", "30049079", "8901234500035", "15 tablets", "6", "6"},
		{"Benadryl Cough Syrup", "Diphenhydramine", "Cough & Cold", "", "30049069", "8901234500042", "100ml", "6", "6"},
		{"Cetaphil Moisturising Lotion", "", "Dermatology", "", "33049990", "8901234500059", "250ml", "9", "9"},
		{"Accu-Chek Active Strips", "", "Diabetes Care", "", "38220090", "8901234500066", "50 strips", "6", "6"},
	}

	for i, it := range items {
		code := fmt.Sprintf("ITM-%05d", i+1)
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_items (
				id, code, name, generic_name, category, schedule,
				hsn_code, barcode, pack_size, reorder_level,
				default_cgst, default_sgst,
				version, deletion_mark, attributes
			)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, 10, $10, $11, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), code, it.name, it.generic, it.category, it.schedule,
			it.hsn, it.barcode, it.packSize, it.cgst, it.sgst)
		if err != nil {
			log.Warnw("failed to seed item", "name", it.name, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func str(s string) *string { return &s }
