package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qasr/qasr-api/internal/domain/hall"
)

// Status is the lifecycle status of a booking. Transitions happen only through
// the state machine in statemachine.go.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusPending          Status = "pending"
	StatusHallApproved     Status = "hall_approved"
	StatusVendorsApproving Status = "vendors_approving"
	StatusReadyForPayment  Status = "ready_for_payment"
	StatusPaid             Status = "paid"
	StatusConfirmed        Status = "confirmed"
	StatusCancelled        Status = "cancelled"
	StatusHallRejected     Status = "hall_rejected"
	StatusVendorRejected   Status = "vendor_rejected"
)

// Terminal reports whether no further transition can leave this status
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusHallRejected, StatusVendorRejected:
		return true
	}
	return false
}

// Blocking reports whether a booking in this status occupies its time slot.
// Negative outcomes free the slot for other customers.
func (s Status) Blocking() bool {
	switch s {
	case StatusCancelled, StatusHallRejected, StatusVendorRejected:
		return false
	}
	return true
}

// PaymentStatus tracks money state independently of the workflow status
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// ApprovalStatus is a single approver's decision
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Booking is the aggregate root of one reservation attempt. It is never deleted;
// cancellation is a terminal status.
type Booking struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	HallID           uuid.UUID    `db:"hall_id" json:"hall_id"`
	CustomerID       uuid.UUID    `db:"customer_id" json:"customer_id"`
	EventDate        time.Time    `db:"event_date" json:"event_date"`
	StartTime        time.Time    `db:"start_time" json:"start_time"`
	EndTime          time.Time    `db:"end_time" json:"end_time"`
	GuestCount       int          `db:"guest_count" json:"guest_count"`
	GenderPreference hall.Segment `db:"gender_preference" json:"gender_preference"`

	Status              Status         `db:"status" json:"status"`
	HallApproval        ApprovalStatus `db:"hall_approval" json:"hall_approval"`
	HallRejectReason    sql.NullString `db:"hall_reject_reason" json:"hall_reject_reason,omitempty"`
	CanProceedToPayment bool           `db:"can_proceed_to_payment" json:"can_proceed_to_payment"`

	// Financial snapshot, frozen by the pricing engine
	HallCost           decimal.Decimal `db:"hall_cost" json:"hall_cost"`
	VendorServicesCost decimal.Decimal `db:"vendor_services_cost" json:"vendor_services_cost"`
	Subtotal           decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountCode       sql.NullString  `db:"discount_code" json:"discount_code,omitempty"`
	DiscountAmount     decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxRate            decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	TaxAmount          decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TotalAmount        decimal.Decimal `db:"total_amount" json:"total_amount"`
	Currency           string          `db:"currency" json:"currency"`

	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`

	// Version implements optimistic concurrency: saves CAS on it
	Version int `db:"version" json:"-"`

	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	PaidAt      sql.NullTime `db:"paid_at" json:"paid_at,omitempty"`
	CancelledAt sql.NullTime `db:"cancelled_at" json:"cancelled_at,omitempty"`

	VendorBookings []VendorBooking `db:"-" json:"vendor_bookings,omitempty"`
}

// VendorBookingStatus tracks one vendor's commitment within a booking
type VendorBookingStatus string

const (
	VendorBookingPending   VendorBookingStatus = "pending"
	VendorBookingApproved  VendorBookingStatus = "approved"
	VendorBookingRejected  VendorBookingStatus = "rejected"
	VendorBookingCancelled VendorBookingStatus = "cancelled"
	VendorBookingCompleted VendorBookingStatus = "completed"
)

// VendorBooking is a vendor's commitment record inside a Booking
type VendorBooking struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	BookingID    uuid.UUID           `db:"booking_id" json:"booking_id"`
	VendorID     uuid.UUID           `db:"vendor_id" json:"vendor_id"`
	StartTime    time.Time           `db:"start_time" json:"start_time"`
	EndTime      time.Time           `db:"end_time" json:"end_time"`
	Status       VendorBookingStatus `db:"status" json:"status"`
	RejectReason sql.NullString      `db:"reject_reason" json:"reject_reason,omitempty"`
	TotalAmount  decimal.Decimal     `db:"total_amount" json:"total_amount"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`

	Services []VendorBookingService `db:"-" json:"services,omitempty"`
}

// VendorBookingService is one priced line item of a vendor booking
type VendorBookingService struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	VendorBookingID uuid.UUID       `db:"vendor_booking_id" json:"vendor_booking_id"`
	ServiceItemID   uuid.UUID       `db:"service_item_id" json:"service_item_id"`
	Name            string          `db:"name" json:"name"`
	Quantity        int             `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice      decimal.Decimal `db:"total_price" json:"total_price"`
}

// PriceBreakdown is the deterministic, auditable output of the pricing engine.
// Discount applies before tax, never after.
type PriceBreakdown struct {
	HallCost           decimal.Decimal `json:"hall_cost"`
	VendorServicesCost decimal.Decimal `json:"vendor_services_cost"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxableAmount      decimal.Decimal `json:"taxable_amount"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Currency           string          `json:"currency"`
}

// HasVendors reports whether any vendor commitment still counts toward the
// approval aggregation (cancelled ones are superseded and ignored)
func (b *Booking) HasVendors() bool {
	for i := range b.VendorBookings {
		if b.VendorBookings[i].Status != VendorBookingCancelled {
			return true
		}
	}
	return false
}

// AllVendorsResolved reports whether every counted vendor booking has a decision
func (b *Booking) AllVendorsResolved() bool {
	for i := range b.VendorBookings {
		if b.VendorBookings[i].Status == VendorBookingPending {
			return false
		}
	}
	return true
}

// AnyVendorRejected reports whether at least one counted vendor booking was rejected
func (b *Booking) AnyVendorRejected() bool {
	for i := range b.VendorBookings {
		if b.VendorBookings[i].Status == VendorBookingRejected {
			return true
		}
	}
	return false
}

// FindVendorBooking returns the vendor booking with the given id, or nil
func (b *Booking) FindVendorBooking(id uuid.UUID) *VendorBooking {
	for i := range b.VendorBookings {
		if b.VendorBookings[i].ID == id {
			return &b.VendorBookings[i]
		}
	}
	return nil
}

// Window returns the booked time interval
func (b *Booking) Window() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}
