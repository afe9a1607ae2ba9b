// Package notification carries booking lifecycle events to the delivery tier.
// Delivery is fire-and-forget with at-least-once semantics; consumers must be
// idempotent.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle event types
const (
	TypeBookingCreated  = "booking.created"
	TypeHallApproved    = "booking.hall_approved"
	TypeHallRejected    = "booking.hall_rejected"
	TypeVendorDecided   = "booking.vendor_decided"
	TypeVendorReplaced  = "booking.vendor_replaced"
	TypeReadyForPayment = "booking.ready_for_payment"
	TypePaymentFailed   = "booking.payment_failed"
	TypeConfirmed       = "booking.confirmed"
	TypeCancelled       = "booking.cancelled"
	TypeDeclined        = "booking.declined"
)

// Event is one booking lifecycle notification
type Event struct {
	Type       string            `json:"type"`
	BookingID  uuid.UUID         `json:"booking_id"`
	Status     string            `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

// Notifier publishes events to interested consumers
type Notifier interface {
	Publish(ctx context.Context, ev Event)
}

// Noop discards all events; used when no broker is configured
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
