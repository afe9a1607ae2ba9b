package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorSelectionRequest is one vendor with the selected service items
type VendorSelectionRequest struct {
	VendorID       string   `json:"vendor_id" validate:"required,uuid"`
	ServiceItemIDs []string `json:"service_item_ids" validate:"required,min=1,dive,uuid"`
}

// CreateBookingRequest for POST /bookings
type CreateBookingRequest struct {
	HallID           string                   `json:"hall_id" validate:"required,uuid"`
	EventDate        string                   `json:"event_date" validate:"required,date"`
	StartTime        string                   `json:"start_time" validate:"required,hhmm"`
	EndTime          string                   `json:"end_time" validate:"required,hhmm"`
	GuestCount       int                      `json:"guest_count" validate:"required,min=1"`
	GenderPreference string                   `json:"gender_preference" validate:"required,gender_preference"`
	Vendors          []VendorSelectionRequest `json:"vendors" validate:"omitempty,max=10,dive"`
	DiscountCode     string                   `json:"discount_code" validate:"omitempty,max=50"`
}

// QuoteRequest for POST /bookings/quote
type QuoteRequest struct {
	HallID           string   `json:"hall_id" validate:"required,uuid"`
	EventDate        string   `json:"event_date" validate:"required,date"`
	StartTime        string   `json:"start_time" validate:"required,hhmm"`
	EndTime          string   `json:"end_time" validate:"required,hhmm"`
	GenderPreference string   `json:"gender_preference" validate:"required,gender_preference"`
	ServiceItemIDs   []string `json:"service_item_ids" validate:"omitempty,dive,uuid"`
	DiscountCode     string   `json:"discount_code" validate:"omitempty,max=50"`
}

// RejectRequest carries the reason of a hall or vendor rejection
type RejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ReplaceVendorRequest for POST /bookings/{id}/vendor-bookings/{vbID}/replace
type ReplaceVendorRequest struct {
	NewVendorID    string   `json:"new_vendor_id" validate:"required,uuid"`
	ServiceItemIDs []string `json:"service_item_ids" validate:"required,min=1,dive,uuid"`
}

// ServiceLineResponse is one priced line item of a vendor booking
type ServiceLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ServiceItemID uuid.UUID       `json:"service_item_id"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// VendorBookingResponse is one vendor commitment of a booking
type VendorBookingResponse struct {
	ID           uuid.UUID             `json:"id"`
	VendorID     uuid.UUID             `json:"vendor_id"`
	Status       string                `json:"status"`
	RejectReason *string               `json:"reject_reason,omitempty"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Services     []ServiceLineResponse `json:"services,omitempty"`
}

// BookingResponse is the API shape of a booking aggregate
type BookingResponse struct {
	ID                  uuid.UUID  `json:"id"`
	HallID              uuid.UUID  `json:"hall_id"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	EventDate           string     `json:"event_date"`
	StartTime           string     `json:"start_time"`
	EndTime             string     `json:"end_time"`
	GuestCount          int        `json:"guest_count"`
	GenderPreference    string     `json:"gender_preference"`
	Status              string     `json:"status"`
	HallApproval        string     `json:"hall_approval"`
	HallRejectReason    *string    `json:"hall_reject_reason,omitempty"`
	CanProceedToPayment bool       `json:"can_proceed_to_payment"`
	PaymentStatus       string     `json:"payment_status"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	HallCost           decimal.Decimal `json:"hall_cost"`
	VendorServicesCost decimal.Decimal `json:"vendor_services_cost"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountCode       *string         `json:"discount_code,omitempty"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Currency           string          `json:"currency"`

	VendorBookings []VendorBookingResponse `json:"vendor_bookings,omitempty"`
}

// FreeSlotResponse is one free gap of a resource's day
type FreeSlotResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BookingResponseFromEntity converts booking entity to API response
func BookingResponseFromEntity(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                  b.ID,
		HallID:              b.HallID,
		CustomerID:          b.CustomerID,
		EventDate:           b.EventDate.Format("2006-01-02"),
		StartTime:           b.StartTime.Format("15:04"),
		EndTime:             b.EndTime.Format("15:04"),
		GuestCount:          b.GuestCount,
		GenderPreference:    string(b.GenderPreference),
		Status:              string(b.Status),
		HallApproval:        string(b.HallApproval),
		HallRejectReason:    nullString(b.HallRejectReason),
		CanProceedToPayment: b.CanProceedToPayment,
		PaymentStatus:       string(b.PaymentStatus),
		PaidAt:              nullTime(b.PaidAt),
		CancelledAt:         nullTime(b.CancelledAt),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		HallCost:            b.HallCost,
		VendorServicesCost:  b.VendorServicesCost,
		Subtotal:            b.Subtotal,
		DiscountCode:        nullString(b.DiscountCode),
		DiscountAmount:      b.DiscountAmount,
		TaxRate:             b.TaxRate,
		TaxAmount:           b.TaxAmount,
		TotalAmount:         b.TotalAmount,
		Currency:            b.Currency,
	}
	for i := range b.VendorBookings {
		resp.VendorBookings = append(resp.VendorBookings, vendorBookingResponse(&b.VendorBookings[i]))
	}
	return resp
}

func vendorBookingResponse(vb *VendorBooking) VendorBookingResponse {
	resp := VendorBookingResponse{
		ID:           vb.ID,
		VendorID:     vb.VendorID,
		Status:       string(vb.Status),
		RejectReason: nullString(vb.RejectReason),
		TotalAmount:  vb.TotalAmount,
	}
	for _, svc := range vb.Services {
		resp.Services = append(resp.Services, ServiceLineResponse{
			ID:            svc.ID,
			ServiceItemID: svc.ServiceItemID,
			Name:          svc.Name,
			Quantity:      svc.Quantity,
			UnitPrice:     svc.UnitPrice,
			TotalPrice:    svc.TotalPrice,
		})
	}
	return resp
}

// FreeSlotsResponseFromIntervals formats free gaps as HH:MM pairs
func FreeSlotsResponseFromIntervals(slots []Interval) []FreeSlotResponse {
	out := make([]FreeSlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, FreeSlotResponse{
			Start: s.Start.Format("15:04"),
			End:   s.End.Format("15:04"),
		})
	}
	return out
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
