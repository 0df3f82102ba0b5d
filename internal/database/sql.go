package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/adevbeo/hr-management-platform/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// WorkforceSQL holds an optional SQL connection to an external HR system of record.
// DB is nil when the workforce data lives in mongo.
type WorkforceSQL struct {
	DB      *sql.DB
	Dialect string // "postgres" or "mysql"
}

// NewWorkforceSQL opens the SQL workforce connection when WORKFORCE_DRIVER asks for one.
func NewWorkforceSQL(lc fx.Lifecycle, cfg *config.Config) (*WorkforceSQL, error) {
	driver := cfg.WorkforceDriver
	if driver == "postgresql" {
		driver = "postgres"
	}
	if driver != "postgres" && driver != "mysql" {
		return &WorkforceSQL{}, nil
	}
	if cfg.WorkforceDSN == "" {
		return nil, fmt.Errorf("WORKFORCE_DSN is required for workforce driver %q", driver)
	}

	db, err := sql.Open(driver, cfg.WorkforceDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open workforce database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping workforce database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Printf("Connected to %s workforce database", driver)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return &WorkforceSQL{DB: db, Dialect: driver}, nil
}
