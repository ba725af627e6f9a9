package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
)

const receiptSchema = `
	CREATE TABLE IF NOT EXISTS receipts (
		id             UUID PRIMARY KEY,
		sale_id        TEXT NOT NULL,
		sale_number    TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		customer_name  TEXT NOT NULL DEFAULT '',
		subtotal       NUMERIC(14, 5) NOT NULL,
		total_discount NUMERIC(14, 5) NOT NULL,
		tax            NUMERIC(14, 5) NOT NULL,
		grand_total    NUMERIC(14, 5) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`

// ReceiptRepository is a local journal of sales the backend accepted.
type ReceiptRepository interface {
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error)
}

type receiptRepository struct {
	DB *sql.DB
}

func NewReceiptRepo(db *sql.DB) ReceiptRepository {
	return &receiptRepository{DB: db}
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO receipts (id, sale_id, sale_number, payment_method, customer_name, subtotal, total_discount, tax, grand_total, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(dbCtx, query, receipt.ID, receipt.SaleID, receipt.SaleNumber, receipt.PaymentMethod, receipt.CustomerName,
		receipt.Subtotal, receipt.TotalDiscount, receipt.Tax, receipt.GrandTotal, receipt.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting receipt: %w", err)
	}

	return nil
}

func (r *receiptRepository) ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM receipts`

	err := r.DB.QueryRowContext(dbCtx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	// Offset
	offset := (page - 1) * size

	query := `
		SELECT id, sale_id, sale_number, payment_method, customer_name,
		subtotal, total_discount, tax, grand_total, created_at
		FROM receipts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, size, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	var receipts []*models.Receipt

	for rows.Next() {
		receipt := &models.Receipt{}

		err := rows.Scan(&receipt.ID, &receipt.SaleID, &receipt.SaleNumber, &receipt.PaymentMethod, &receipt.CustomerName,
			&receipt.Subtotal, &receipt.TotalDiscount, &receipt.Tax, &receipt.GrandTotal, &receipt.CreatedAt)
		if err != nil {
			return nil, 0, err
		}

		receipts = append(receipts, receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}
