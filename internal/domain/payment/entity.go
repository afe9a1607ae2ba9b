package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of one checkout attempt
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Payment is one checkout attempt against a booking. A booking may accumulate
// several failed attempts and at most one succeeded payment.
type Payment struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	BookingID        uuid.UUID       `db:"booking_id" json:"booking_id"`
	CustomerID       uuid.UUID       `db:"customer_id" json:"customer_id"`
	GatewayInvoiceID string          `db:"gateway_invoice_id" json:"gateway_invoice_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Currency         string          `db:"currency" json:"currency"`
	Status           Status          `db:"status" json:"status"`
	FailureReason    sql.NullString  `db:"failure_reason" json:"failure_reason,omitempty"`
	PaymentURL       string          `db:"payment_url" json:"payment_url"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
