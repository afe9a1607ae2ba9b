package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository persists checkout attempts
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (
			id, booking_id, customer_id, gateway_invoice_id, amount, currency,
			status, failure_reason, payment_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		p.ID, p.BookingID, p.CustomerID, p.GatewayInvoiceID, p.Amount, p.Currency,
		string(p.Status), p.FailureReason, p.PaymentURL, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByInvoiceID(ctx context.Context, invoiceID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `
		SELECT id, booking_id, customer_id, gateway_invoice_id, amount, currency,
			status, failure_reason, payment_url, created_at, updated_at
		FROM payments
		WHERE gateway_invoice_id = $1
	`, invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkResult settles a pending payment. Settling an already settled payment
// yields ErrAlreadySettled, which makes webhook retries harmless.
func (r *Repository) MarkResult(ctx context.Context, p *Payment, status Status, failureReason string) error {
	reason := sql.NullString{String: failureReason, Valid: failureReason != ""}
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET
			status = $1,
			failure_reason = $2,
			updated_at = now()
		WHERE id = $3 AND status = $4
	`, string(status), reason, p.ID, string(StatusPending))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadySettled
	}
	p.Status = status
	p.FailureReason = reason
	return nil
}
