package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qasr/qasr-api/internal/domain/booking"
	"github.com/qasr/qasr-api/internal/pkg/moyasar"
)

type memStore struct {
	byInvoice map[string]*Payment
}

func newMemStore() *memStore {
	return &memStore{byInvoice: make(map[string]*Payment)}
}

func (s *memStore) Create(_ context.Context, p *Payment) error {
	s.byInvoice[p.GatewayInvoiceID] = p
	return nil
}

func (s *memStore) GetByInvoiceID(_ context.Context, invoiceID string) (*Payment, error) {
	p, ok := s.byInvoice[invoiceID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) MarkResult(_ context.Context, p *Payment, status Status, failureReason string) error {
	stored := s.byInvoice[p.GatewayInvoiceID]
	if stored == nil {
		return ErrPaymentNotFound
	}
	if stored.Status != StatusPending {
		return ErrAlreadySettled
	}
	stored.Status = status
	p.Status = status
	return nil
}

type fakeBookings struct {
	booking  *booking.Booking
	results  []bool
	failNext error
}

func (f *fakeBookings) GetBooking(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, booking.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookings) OnPaymentResult(_ context.Context, _ uuid.UUID, success bool, _ string) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.results = append(f.results, success)
	return nil
}

type fakeGateway struct {
	invoices int
	lastReq  moyasar.CreateInvoiceRequest
	secret   string
}

func (g *fakeGateway) CreateInvoice(_ context.Context, req moyasar.CreateInvoiceRequest) (*moyasar.Invoice, error) {
	g.invoices++
	g.lastReq = req
	return &moyasar.Invoice{
		ID:       fmt.Sprintf("inv_%d", g.invoices),
		Status:   moyasar.InvoiceStatusInitiated,
		Amount:   req.Amount,
		Currency: req.Currency,
		URL:      "https://moyasar.test/pay/inv_1",
	}, nil
}

func (g *fakeGateway) VerifySignature(_ []byte, signature string) bool {
	return signature == g.secret
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func readyBooking(customerID uuid.UUID) *booking.Booking {
	return &booking.Booking{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		Status:              booking.StatusReadyForPayment,
		CanProceedToPayment: true,
		TotalAmount:         dec("5290.00"),
		Currency:            "SAR",
	}
}

func newTestService(b *booking.Booking) (*Service, *memStore, *fakeBookings, *fakeGateway) {
	store := newMemStore()
	bookings := &fakeBookings{booking: b}
	gateway := &fakeGateway{secret: "valid-signature"}
	svc := NewService(store, bookings, gateway, RedirectURLs{
		Callback: "https://api.qasr.test/webhooks/moyasar",
		Success:  "https://qasr.test/payment-success",
		Back:     "https://qasr.test/bookings",
	})
	svc.now = func() time.Time { return time.Date(2027, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, store, bookings, gateway
}

func TestCreateCheckoutOpensInvoiceInHalalas(t *testing.T) {
	customerID := uuid.New()
	b := readyBooking(customerID)
	svc, store, _, gateway := newTestService(b)

	checkout, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gateway.lastReq.Amount != 529000 {
		t.Fatalf("expected 529000 halalas, got %d", gateway.lastReq.Amount)
	}
	if gateway.lastReq.Metadata["booking_id"] != b.ID.String() {
		t.Fatalf("expected booking id in metadata, got %v", gateway.lastReq.Metadata)
	}
	if checkout.PaymentURL == "" {
		t.Fatalf("expected a hosted payment url")
	}

	p, err := store.GetByInvoiceID(context.Background(), "inv_1")
	if err != nil {
		t.Fatalf("payment row not persisted: %v", err)
	}
	if p.Status != StatusPending || !p.Amount.Equal(b.TotalAmount) {
		t.Fatalf("unexpected payment row: %+v", p)
	}
}

func TestCreateCheckoutOnlyForPayableBookings(t *testing.T) {
	customerID := uuid.New()

	b := readyBooking(customerID)
	b.Status = booking.StatusVendorsApproving
	svc, _, _, _ := newTestService(b)
	_, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID})
	if !errors.Is(err, booking.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	b = readyBooking(customerID)
	b.CanProceedToPayment = false
	svc, _, _, _ = newTestService(b)
	_, err = svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID})
	if !errors.Is(err, booking.ErrRejectedVendorsPending) {
		t.Fatalf("expected ErrRejectedVendorsPending, got %v", err)
	}
}

func TestCreateCheckoutByStrangerForbidden(t *testing.T) {
	b := readyBooking(uuid.New())
	svc, _, _, _ := newTestService(b)

	_, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: uuid.New()})
	if !errors.Is(err, booking.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
}

func webhookBody(invoiceID, status string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","type":"invoice_updated","data":{"id":%q,"status":%q}}`, invoiceID, status))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	b := readyBooking(uuid.New())
	svc, _, _, _ := newTestService(b)

	err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "paid"), "forged")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestHandleWebhookPaidSettlesAndForwards(t *testing.T) {
	customerID := uuid.New()
	b := readyBooking(customerID)
	svc, store, bookings, _ := newTestService(b)

	if _, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "paid"), "valid-signature"); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	p, _ := store.GetByInvoiceID(context.Background(), "inv_1")
	if p.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", p.Status)
	}
	if len(bookings.results) != 1 || !bookings.results[0] {
		t.Fatalf("expected one success forwarded, got %v", bookings.results)
	}

	// The gateway retries webhooks; a redelivery is acknowledged, does not
	// re-settle the row and forwards again (the booking side is idempotent)
	if err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "paid"), "valid-signature"); err != nil {
		t.Fatalf("duplicate webhook failed: %v", err)
	}
	if len(bookings.results) != 2 || !bookings.results[1] {
		t.Fatalf("redelivery was not forwarded: %v", bookings.results)
	}
}

func TestHandleWebhookRedeliveryRecoversFailedForward(t *testing.T) {
	customerID := uuid.New()
	b := readyBooking(customerID)
	svc, store, bookings, _ := newTestService(b)

	if _, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// First delivery settles the row but the booking update fails transiently
	bookings.failNext = booking.ErrVersionConflict
	err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "paid"), "valid-signature")
	if !errors.Is(err, booking.ErrVersionConflict) {
		t.Fatalf("expected the forward failure to surface, got %v", err)
	}
	p, _ := store.GetByInvoiceID(context.Background(), "inv_1")
	if p.Status != StatusSucceeded {
		t.Fatalf("expected the row settled despite the failed forward, got %s", p.Status)
	}
	if len(bookings.results) != 0 {
		t.Fatalf("no result should have landed yet: %v", bookings.results)
	}

	// The gateway redelivers after the 500; the booking must still confirm
	if err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "paid"), "valid-signature"); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if len(bookings.results) != 1 || !bookings.results[0] {
		t.Fatalf("redelivery did not forward the payment success: %v", bookings.results)
	}
}

func TestHandleWebhookFailureForwardsFailure(t *testing.T) {
	customerID := uuid.New()
	b := readyBooking(customerID)
	svc, store, bookings, _ := newTestService(b)

	if _, err := svc.CreateCheckout(context.Background(), b.ID, booking.Actor{ID: customerID}); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "expired"), "valid-signature"); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}

	p, _ := store.GetByInvoiceID(context.Background(), "inv_1")
	if p.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", p.Status)
	}
	if len(bookings.results) != 1 || bookings.results[0] {
		t.Fatalf("expected one failure forwarded, got %v", bookings.results)
	}
}

func TestHandleWebhookIgnoresIntermediateStatuses(t *testing.T) {
	b := readyBooking(uuid.New())
	svc, _, bookings, _ := newTestService(b)

	if err := svc.HandleWebhook(context.Background(), webhookBody("inv_1", "initiated"), "valid-signature"); err != nil {
		t.Fatalf("webhook failed: %v", err)
	}
	if len(bookings.results) != 0 {
		t.Fatalf("intermediate status must not forward, got %v", bookings.results)
	}
}
