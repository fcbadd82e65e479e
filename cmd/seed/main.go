// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the dev company (STIR 123456789) already exists.
// When STAFF_JWT_PRIVATE_KEY is set, it also prints a staff access token for trying staff routes.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abdul-rozzaq/StaffFlow-backend/internal/config"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/db"
	"github.com/abdul-rozzaq/StaffFlow-backend/internal/security"
)

const (
	devCompanyStir  = "123456789"
	devCompanyPhone = "+998901111111"
	devCompanyName  = "Dev Company MChJ"
	devStaffID      = "dev-staff-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	companyID, created, err := seedCompany(ctx, conn)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if created {
		fmt.Printf("Seeded company id=%d stir=%s phone=%s\n", companyID, devCompanyStir, devCompanyPhone)
	} else {
		fmt.Printf("Dev company already present (id=%d); skipping inserts\n", companyID)
	}

	if pem := os.Getenv("STAFF_JWT_PRIVATE_KEY"); pem != "" {
		tok, err := issueStaffToken(pem, cfg)
		if err != nil {
			log.Fatalf("staff token: %v", err)
		}
		fmt.Printf("Staff token (%s, privileged): %s\n", devStaffID, tok)
	}
}

func seedCompany(ctx context.Context, conn *sql.DB) (int64, bool, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO companies (name, stir, phone_number, status, region, district)
		 VALUES ($1, $2, $3, 'active', 'Toshkent', 'Yunusobod')
		 ON CONFLICT (stir) DO NOTHING
		 RETURNING id`,
		devCompanyName, devCompanyStir, devCompanyPhone).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		if err := tx.QueryRowContext(ctx, `SELECT id FROM companies WHERE stir = $1`, devCompanyStir).Scan(&id); err != nil {
			return 0, false, err
		}
		return id, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	requests := []struct {
		priority, description, status string
		long, lat                     float64
	}{
		{"high", "Ishchi kuchi kerak: omborxona", "pending", 69.2797, 41.3111},
		{"low", "Tozalash xizmati", "done", 69.2401, 41.2995},
	}
	for _, r := range requests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO requests (company_id, priority, description, long, lat, status) VALUES ($1, $2, $3, $4, $5, $6)`,
			id, r.priority, r.description, r.long, r.lat, r.status); err != nil {
			return 0, false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func issueStaffToken(pem string, cfg *config.Config) (string, error) {
	key, err := security.ParsePrivateKey(pem)
	if err != nil {
		return "", err
	}
	signer := security.NewStaffSigner(key, cfg.StaffJWTIssuer, cfg.StaffJWTAudience, 24*time.Hour)
	return signer.Issue(devStaffID, true)
}
