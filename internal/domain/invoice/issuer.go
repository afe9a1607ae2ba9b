// Package invoice hands confirmed bookings to the invoicing collaborator.
// Document rendering and tax-authority submission happen outside this service.
package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Invoice carries the final, settled figures of a confirmed booking
type Invoice struct {
	BookingID      uuid.UUID       `json:"booking_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	PaidAt         time.Time       `json:"paid_at"`
}

// Issuer receives invoices for confirmed bookings
type Issuer interface {
	Issue(ctx context.Context, inv Invoice) error
}

// LogIssuer records the issuance intent in the log. The production deployment
// replaces it with the ZATCA submission pipeline.
type LogIssuer struct{}

func (LogIssuer) Issue(_ context.Context, inv Invoice) error {
	log.Info().
		Str("booking_id", inv.BookingID.String()).
		Str("total_amount", inv.TotalAmount.String()).
		Str("tax_amount", inv.TaxAmount.String()).
		Str("currency", inv.Currency).
		Msg("Invoice issuance requested")
	return nil
}
