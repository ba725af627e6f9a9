package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB *sql.DB
}

// New opens the receipt journal database. Queries are traced through otelsql.
func New(ctx context.Context, cfg *config.Config) (*Repository, ReceiptRepository, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, receiptSchema); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to prepare receipts table: %w", err)
	}

	return &Repository{DB: db}, NewReceiptRepo(db), nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}
