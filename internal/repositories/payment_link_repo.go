package repositories

import (
	"context"
	"fmt"

	"propertyms/internal/common"
	"propertyms/internal/models"
)

type PaymentLinkRepository interface {
	Create(ctx context.Context, link *models.PaymentLink) error
	List(ctx context.Context, status string, limit, offset int) ([]*models.PaymentLink, int, error)
}

type paymentLinkRepo struct {
	db DB
}

func NewPaymentLinkRepo(db DB) PaymentLinkRepository {
	return &paymentLinkRepo{db: db}
}

func (r *paymentLinkRepo) Create(ctx context.Context, link *models.PaymentLink) error {
	query := `
		INSERT INTO payment_links (order_no, cust_name, amount, payment_url, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, link.OrderNo, link.CustName, link.Amount, link.PaymentURL, link.Status, link.CreatedBy).
		Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return common.Conflict("Payment link order number already exists")
		}
		return fmt.Errorf("insert payment link: %w", err)
	}
	return nil
}

// List returns a page of links, newest first, plus the total matching count.
func (r *paymentLinkRepo) List(ctx context.Context, status string, limit, offset int) ([]*models.PaymentLink, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payment_links WHERE ($1 = '' OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment links: %w", err)
	}

	query := `
		SELECT id, order_no, cust_name, amount, payment_url, status, created_by, created_at, updated_at
		FROM payment_links
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment links: %w", err)
	}
	defer rows.Close()

	var links []*models.PaymentLink
	for rows.Next() {
		link := &models.PaymentLink{}
		if err := rows.Scan(&link.ID, &link.OrderNo, &link.CustName, &link.Amount, &link.PaymentURL, &link.Status, &link.CreatedBy, &link.CreatedAt, &link.UpdatedAt); err != nil {
			return nil, 0, err
		}
		links = append(links, link)
	}
	return links, total, rows.Err()
}
