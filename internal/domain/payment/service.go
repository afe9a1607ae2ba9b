package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qasr/qasr-api/internal/domain/booking"
	"github.com/qasr/qasr-api/internal/pkg/moyasar"
)

// Store persists checkout attempts
type Store interface {
	Create(ctx context.Context, p *Payment) error
	GetByInvoiceID(ctx context.Context, invoiceID string) (*Payment, error)
	MarkResult(ctx context.Context, p *Payment, status Status, failureReason string) error
}

// BookingService is what the payment domain needs from the booking orchestrator
type BookingService interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	OnPaymentResult(ctx context.Context, bookingID uuid.UUID, success bool, note string) error
}

// Gateway is the hosted-invoice side of the payment provider
type Gateway interface {
	CreateInvoice(ctx context.Context, req moyasar.CreateInvoiceRequest) (*moyasar.Invoice, error)
	VerifySignature(payload []byte, signature string) bool
}

// URLs the gateway redirects the customer to after checkout
type RedirectURLs struct {
	Callback string
	Success  string
	Back     string
}

// Service turns ready-for-payment bookings into gateway invoices and maps
// gateway webhooks back onto the booking workflow.
type Service struct {
	repo     Store
	bookings BookingService
	gateway  Gateway
	urls     RedirectURLs
	now      func() time.Time
}

func NewService(repo Store, bookings BookingService, gateway Gateway, urls RedirectURLs) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		gateway:  gateway,
		urls:     urls,
		now:      time.Now,
	}
}

// Checkout is what the customer needs to complete payment
type Checkout struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	PaymentURL string    `json:"payment_url"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
}

// CreateCheckout opens a hosted invoice for a booking in ReadyForPayment.
// Bookings with unresolved vendor rejections are not payable until the
// customer replaces the vendor or declines.
func (s *Service) CreateCheckout(ctx context.Context, bookingID uuid.UUID, actor booking.Actor) (*Checkout, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID && !actor.Admin {
		return nil, booking.ErrNotAllowed
	}
	if b.Status != booking.StatusReadyForPayment {
		return nil, fmt.Errorf("%w: %s is not payable", booking.ErrInvalidTransition, b.Status)
	}
	if !b.CanProceedToPayment {
		return nil, booking.ErrRejectedVendorsPending
	}

	// Moyasar amounts are in halalas; totals are already rounded to 2 places
	halalas := b.TotalAmount.Shift(2).IntPart()

	inv, err := s.gateway.CreateInvoice(ctx, moyasar.CreateInvoiceRequest{
		Amount:      halalas,
		Currency:    b.Currency,
		Description: fmt.Sprintf("Booking %s", b.ID),
		CallbackURL: s.urls.Callback,
		SuccessURL:  s.urls.Success,
		BackURL:     s.urls.Back,
		Metadata:    map[string]string{"booking_id": b.ID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway invoice: %w", err)
	}

	now := s.now()
	p := &Payment{
		ID:               uuid.New(),
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		GatewayInvoiceID: inv.ID,
		Amount:           b.TotalAmount,
		Currency:         b.Currency,
		Status:           StatusPending,
		PaymentURL:       inv.URL,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("payment_id", p.ID.String()).
		Str("booking_id", b.ID.String()).
		Str("invoice_id", inv.ID).
		Msg("Checkout created")

	return &Checkout{
		PaymentID:  p.ID,
		BookingID:  b.ID,
		PaymentURL: inv.URL,
		Amount:     b.TotalAmount.StringFixed(2),
		Currency:   b.Currency,
	}, nil
}

// webhookPayload is the gateway's webhook envelope
type webhookPayload struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data moyasar.Invoice `json:"data"`
}

// HandleWebhook verifies, settles and forwards a gateway webhook. Duplicate
// deliveries are acknowledged without re-processing.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.gateway.VerifySignature(payload, signature) {
		return ErrInvalidSignature
	}

	var wh webhookPayload
	if err := json.Unmarshal(payload, &wh); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}

	var (
		success bool
		settled Status
	)
	switch wh.Data.Status {
	case moyasar.InvoiceStatusPaid:
		success = true
		settled = StatusSucceeded
	case moyasar.InvoiceStatusFailed, moyasar.InvoiceStatusExpired, moyasar.InvoiceStatusCanceled:
		settled = StatusFailed
	default:
		// Intermediate statuses carry no decision
		log.Debug().Str("invoice_status", wh.Data.Status).Msg("Ignoring non-final webhook")
		return nil
	}

	p, err := s.repo.GetByInvoiceID(ctx, wh.Data.ID)
	if err != nil {
		return err
	}

	note := ""
	if !success {
		note = fmt.Sprintf("gateway reported %s", wh.Data.Status)
	}

	if err := s.repo.MarkResult(ctx, p, settled, note); err != nil {
		if err != ErrAlreadySettled {
			return err
		}
		// The row may have settled on a delivery whose booking-side forward
		// failed; the gateway retries until acknowledged, and the booking
		// handler is idempotent, so forward again rather than dropping the
		// result.
		log.Info().
			Str("payment_id", p.ID.String()).
			Str("invoice_id", wh.Data.ID).
			Msg("Duplicate webhook, payment already settled")
	}

	return s.bookings.OnPaymentResult(ctx, p.BookingID, success, note)
}
