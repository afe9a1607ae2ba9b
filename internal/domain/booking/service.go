package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/qasr/qasr-api/internal/domain/hall"
	"github.com/qasr/qasr-api/internal/domain/invoice"
	"github.com/qasr/qasr-api/internal/domain/notification"
	"github.com/qasr/qasr-api/internal/domain/vendor"
	"github.com/qasr/qasr-api/internal/pkg/slotlock"
)

// HallSource resolves halls and their rate cards
type HallSource interface {
	GetHall(ctx context.Context, id uuid.UUID) (*hall.Hall, error)
	GetTariff(ctx context.Context, hallID uuid.UUID, segment hall.Segment) (*hall.Tariff, error)
}

// VendorSource resolves vendors and their service items
type VendorSource interface {
	GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	ListServiceItems(ctx context.Context, ids []uuid.UUID) ([]vendor.ServiceItem, error)
}

// Actor identifies who is performing an operation. Authorization beyond
// ownership (roles, accounts) lives outside this core.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// Service is the booking orchestrator: it sequences availability validation,
// pricing and workflow transitions, and talks to the external collaborators.
type Service struct {
	repo         Repository
	availability *AvailabilityEngine
	pricing      *PricingEngine
	halls        HallSource
	vendors      VendorSource
	locker       slotlock.Locker
	notifier     notification.Notifier
	issuer       invoice.Issuer
	now          func() time.Time
}

func NewService(
	repo Repository,
	availability *AvailabilityEngine,
	pricing *PricingEngine,
	halls HallSource,
	vendors VendorSource,
	locker slotlock.Locker,
	notifier notification.Notifier,
	issuer invoice.Issuer,
) *Service {
	return &Service{
		repo:         repo,
		availability: availability,
		pricing:      pricing,
		halls:        halls,
		vendors:      vendors,
		locker:       locker,
		notifier:     notifier,
		issuer:       issuer,
		now:          time.Now,
	}
}

// VendorSelection is one vendor with the service items the customer picked
type VendorSelection struct {
	VendorID       uuid.UUID
	ServiceItemIDs []uuid.UUID
}

// CreateBookingInput carries a fully parsed booking request
type CreateBookingInput struct {
	CustomerID       uuid.UUID
	HallID           uuid.UUID
	EventDate        time.Time
	StartTime        time.Time
	EndTime          time.Time
	GuestCount       int
	GenderPreference hall.Segment
	Vendors          []VendorSelection
	DiscountCode     string
}

// CreateBooking validates availability of the hall and every selected vendor,
// prices the booking and persists it in Pending. The availability check and
// the insert run under per-(resource, date) locks.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*Booking, error) {
	h, err := s.halls.GetHall(ctx, in.HallID)
	if err != nil {
		return nil, err
	}
	if !h.Active {
		return nil, fmt.Errorf("%w: hall is inactive", ErrValidation)
	}

	tariff, err := s.halls.GetTariff(ctx, in.HallID, in.GenderPreference)
	if err != nil {
		if errors.Is(err, hall.ErrTariffNotFound) {
			return nil, fmt.Errorf("%w: segment %s of hall %s", ErrTariffUnavailable, in.GenderPreference, in.HallID)
		}
		return nil, err
	}
	if !tariff.Active {
		return nil, fmt.Errorf("%w: segment %s of hall %s", ErrTariffUnavailable, in.GenderPreference, in.HallID)
	}
	if in.GuestCount < tariff.MinCapacity || in.GuestCount > tariff.MaxCapacity {
		return nil, fmt.Errorf("%w: guest count %d outside hall capacity %d-%d",
			ErrValidation, in.GuestCount, tariff.MinCapacity, tariff.MaxCapacity)
	}

	vendorItems := make(map[uuid.UUID][]vendor.ServiceItem, len(in.Vendors))
	resources := []uuid.UUID{in.HallID}
	for _, sel := range in.Vendors {
		if _, dup := vendorItems[sel.VendorID]; dup {
			return nil, fmt.Errorf("%w: vendor %s selected more than once", ErrValidation, sel.VendorID)
		}
		v, err := s.vendors.GetVendor(ctx, sel.VendorID)
		if err != nil {
			return nil, err
		}
		if !v.Active {
			return nil, fmt.Errorf("%w: vendor %s is inactive", ErrValidation, v.ID)
		}

		items, err := s.resolveVendorItems(ctx, sel.VendorID, sel.ServiceItemIDs)
		if err != nil {
			return nil, err
		}
		vendorItems[sel.VendorID] = items
		resources = append(resources, sel.VendorID)
	}

	var b *Booking
	err = s.withSlotLocks(ctx, resources, in.EventDate, func() error {
		if err := s.availability.ValidateWindow(ctx, in.HallID, in.EventDate, in.StartTime, in.EndTime, uuid.Nil); err != nil {
			return err
		}
		for _, sel := range in.Vendors {
			if err := s.availability.ValidateWindow(ctx, sel.VendorID, in.EventDate, in.StartTime, in.EndTime, uuid.Nil); err != nil {
				return err
			}
		}

		var allItemIDs []uuid.UUID
		for _, sel := range in.Vendors {
			allItemIDs = append(allItemIDs, sel.ServiceItemIDs...)
		}
		breakdown, err := s.pricing.Quote(ctx, QuoteInput{
			HallID:           in.HallID,
			GenderPreference: in.GenderPreference,
			Start:            in.StartTime,
			End:              in.EndTime,
			ServiceItemIDs:   allItemIDs,
			DiscountCode:     in.DiscountCode,
		})
		if err != nil {
			return err
		}

		b = s.buildBooking(in, breakdown, vendorItems)
		decision, err := Decide(b, EventSubmit)
		if err != nil {
			return err
		}
		b.Status = decision.Next

		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("hall_id", b.HallID.String()).
		Int("vendors", len(b.VendorBookings)).
		Str("total_amount", b.TotalAmount.String()).
		Msg("Booking created")
	s.publish(ctx, notification.TypeBookingCreated, b, nil)

	return b, nil
}

func (s *Service) buildBooking(in CreateBookingInput, breakdown *PriceBreakdown, vendorItems map[uuid.UUID][]vendor.ServiceItem) *Booking {
	now := s.now()
	b := &Booking{
		ID:                 uuid.New(),
		HallID:             in.HallID,
		CustomerID:         in.CustomerID,
		EventDate:          in.EventDate,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		GuestCount:         in.GuestCount,
		GenderPreference:   in.GenderPreference,
		Status:             StatusDraft,
		HallApproval:       ApprovalPending,
		HallCost:           breakdown.HallCost,
		VendorServicesCost: breakdown.VendorServicesCost,
		Subtotal:           breakdown.Subtotal,
		DiscountAmount:     breakdown.DiscountAmount,
		TaxRate:            breakdown.TaxRate,
		TaxAmount:          breakdown.TaxAmount,
		TotalAmount:        breakdown.TotalAmount,
		Currency:           breakdown.Currency,
		PaymentStatus:      PaymentUnpaid,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.DiscountCode != "" {
		b.DiscountCode = sql.NullString{String: in.DiscountCode, Valid: true}
	}

	for _, sel := range in.Vendors {
		b.VendorBookings = append(b.VendorBookings, s.buildVendorBooking(b, sel.VendorID, vendorItems[sel.VendorID]))
	}
	return b
}

func (s *Service) buildVendorBooking(b *Booking, vendorID uuid.UUID, items []vendor.ServiceItem) VendorBooking {
	now := s.now()
	vb := VendorBooking{
		ID:          uuid.New(),
		BookingID:   b.ID,
		VendorID:    vendorID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Status:      VendorBookingPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range items {
		price := it.EffectivePrice()
		vb.Services = append(vb.Services, VendorBookingService{
			ID:              uuid.New(),
			VendorBookingID: vb.ID,
			ServiceItemID:   it.ID,
			Name:            it.Name,
			Quantity:        1,
			UnitPrice:       price,
			TotalPrice:      price,
		})
		vb.TotalAmount = vb.TotalAmount.Add(price)
	}
	vb.TotalAmount = vb.TotalAmount.Round(2)
	return vb
}

// resolveVendorItems resolves the selected items of one vendor. Unknown and
// unavailable ids are dropped, but a vendor selection that resolves to nothing
// is a hard error: there would be nothing to approve.
func (s *Service) resolveVendorItems(ctx context.Context, vendorID uuid.UUID, itemIDs []uuid.UUID) ([]vendor.ServiceItem, error) {
	resolved, err := s.pricing.ResolveServiceItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	items := resolved[:0]
	for _, it := range resolved {
		if it.VendorID == vendorID {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no available service items selected for vendor %s", ErrValidation, vendorID)
	}
	return items, nil
}

// GetBooking loads a booking aggregate
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// GetFreeSlots lists the free gaps of a hall's or vendor's day
func (s *Service) GetFreeSlots(ctx context.Context, resourceID uuid.UUID, date time.Time) ([]Interval, error) {
	return s.availability.GetFreeSlots(ctx, resourceID, date)
}

// Quote prices a prospective booking without persisting anything
func (s *Service) Quote(ctx context.Context, in QuoteInput) (*PriceBreakdown, error) {
	return s.pricing.Quote(ctx, in)
}

// HallApprove records the hall owner's approval. With no vendors selected the
// booking goes straight to ReadyForPayment (after re-validating the slot);
// otherwise vendor approvals begin.
func (s *Service) HallApprove(ctx context.Context, bookingID uuid.UUID, actor Actor) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHallManager(ctx, b, actor); err != nil {
		return nil, err
	}
	if b.HallApproval != ApprovalPending {
		return nil, ErrAlreadyDecided
	}

	decision, err := Decide(b, EventHallApprove)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, b, decision, func() {
		b.HallApproval = ApprovalApproved
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.TypeHallApproved, b, nil)
	if b.Status == StatusReadyForPayment {
		s.publish(ctx, notification.TypeReadyForPayment, b, nil)
	}
	return b, nil
}

// HallReject terminates the workflow before any vendor approval is solicited
func (s *Service) HallReject(ctx context.Context, bookingID uuid.UUID, actor Actor, reason string) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHallManager(ctx, b, actor); err != nil {
		return nil, err
	}
	if b.HallApproval != ApprovalPending {
		return nil, ErrAlreadyDecided
	}

	decision, err := Decide(b, EventHallReject)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, b, decision, func() {
		b.HallApproval = ApprovalRejected
		b.HallRejectReason = sql.NullString{String: reason, Valid: reason != ""}
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.TypeHallRejected, b, map[string]string{"reason": reason})
	return b, nil
}

// VendorDecision records one vendor's approval or rejection and aggregates:
// the booking advances once every vendor booking is resolved. A decision
// arriving after cancellation is recorded but does not change booking status.
func (s *Service) VendorDecision(ctx context.Context, bookingID, vendorBookingID uuid.UUID, actor Actor, approve bool, reason string) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	vb := b.FindVendorBooking(vendorBookingID)
	if vb == nil {
		return nil, ErrVendorBookingNotFound
	}
	if err := s.authorizeVendorManager(ctx, vb, actor); err != nil {
		return nil, err
	}
	if vb.Status != VendorBookingPending {
		return nil, ErrAlreadyDecided
	}

	// Late decision on a cancelled booking: accept it for the vendor's records,
	// leave the booking status untouched
	if b.Status == StatusCancelled {
		applyVendorDecision(vb, approve, reason, s.now())
		if err := s.repo.Update(ctx, b, b.Version); err != nil {
			return nil, err
		}
		s.publish(ctx, notification.TypeVendorDecided, b, vendorDecisionData(vb, approve, reason))
		return b, nil
	}

	ev := EventVendorApprove
	if !approve {
		ev = EventVendorReject
	}

	// Record the decision on the snapshot first: the aggregation guard reads
	// the post-decision state. Nothing is persisted unless the full transition
	// commits.
	applyVendorDecision(vb, approve, reason, s.now())

	decision, err := Decide(b, ev)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, b, decision, nil); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.TypeVendorDecided, b, vendorDecisionData(vb, approve, reason))
	if b.Status == StatusReadyForPayment {
		s.publish(ctx, notification.TypeReadyForPayment, b, nil)
	}
	return b, nil
}

func applyVendorDecision(vb *VendorBooking, approve bool, reason string, now time.Time) {
	if approve {
		vb.Status = VendorBookingApproved
	} else {
		vb.Status = VendorBookingRejected
		vb.RejectReason = sql.NullString{String: reason, Valid: reason != ""}
	}
	vb.UpdatedAt = now
}

func vendorDecisionData(vb *VendorBooking, approve bool, reason string) map[string]string {
	data := map[string]string{
		"vendor_booking_id": vb.ID.String(),
		"vendor_id":         vb.VendorID.String(),
		"approved":          fmt.Sprintf("%t", approve),
	}
	if reason != "" {
		data["reason"] = reason
	}
	return data
}

// ReplaceVendorInput selects the replacement vendor and its services
type ReplaceVendorInput struct {
	NewVendorID    uuid.UUID
	ServiceItemIDs []uuid.UUID
}

// ReplaceVendor swaps a rejected or cancelled vendor booking for a new vendor:
// validates the new vendor's availability for the same window, re-quotes the
// aggregate price and puts the booking back into VendorsApproving until the
// replacement resolves.
func (s *Service) ReplaceVendor(ctx context.Context, bookingID, oldVendorBookingID uuid.UUID, in ReplaceVendorInput, actor Actor) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID && !actor.Admin {
		return nil, ErrNotAllowed
	}
	if b.Status != StatusVendorsApproving && b.Status != StatusReadyForPayment {
		return nil, fmt.Errorf("%w: %s does not accept vendor replacement", ErrInvalidTransition, b.Status)
	}

	old := b.FindVendorBooking(oldVendorBookingID)
	if old == nil {
		return nil, ErrVendorBookingNotFound
	}
	if old.Status != VendorBookingRejected && old.Status != VendorBookingCancelled {
		return nil, fmt.Errorf("%w: only rejected or cancelled vendor bookings can be replaced", ErrValidation)
	}

	v, err := s.vendors.GetVendor(ctx, in.NewVendorID)
	if err != nil {
		return nil, err
	}
	if !v.Active {
		return nil, fmt.Errorf("%w: vendor %s is inactive", ErrValidation, v.ID)
	}

	items, err := s.resolveVendorItems(ctx, in.NewVendorID, in.ServiceItemIDs)
	if err != nil {
		return nil, err
	}

	err = s.withSlotLocks(ctx, []uuid.UUID{in.NewVendorID}, b.EventDate, func() error {
		if err := s.availability.ValidateWindow(ctx, in.NewVendorID, b.EventDate, b.StartTime, b.EndTime, b.ID); err != nil {
			return err
		}

		// The old commitment is superseded: it no longer counts toward
		// approval aggregation or cost
		old.Status = VendorBookingCancelled
		old.UpdatedAt = s.now()

		newVB := s.buildVendorBooking(b, in.NewVendorID, items)
		b.VendorBookings = append(b.VendorBookings, newVB)

		servicesCost := decimal.Zero
		for i := range b.VendorBookings {
			switch b.VendorBookings[i].Status {
			case VendorBookingCancelled, VendorBookingRejected:
			default:
				servicesCost = servicesCost.Add(b.VendorBookings[i].TotalAmount)
			}
		}

		breakdown, err := s.pricing.Compose(ctx, b.HallCost, servicesCost.Round(2), b.DiscountCode.String)
		if err != nil {
			return err
		}
		b.VendorServicesCost = breakdown.VendorServicesCost
		b.Subtotal = breakdown.Subtotal
		b.DiscountAmount = breakdown.DiscountAmount
		b.TaxAmount = breakdown.TaxAmount
		b.TotalAmount = breakdown.TotalAmount

		b.Status = StatusVendorsApproving
		b.CanProceedToPayment = false
		b.UpdatedAt = s.now()

		return s.repo.Update(ctx, b, b.Version)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("old_vendor_booking_id", oldVendorBookingID.String()).
		Str("new_vendor_id", in.NewVendorID.String()).
		Msg("Vendor replaced on booking")
	s.publish(ctx, notification.TypeVendorReplaced, b, map[string]string{
		"old_vendor_booking_id": oldVendorBookingID.String(),
		"new_vendor_id":         in.NewVendorID.String(),
	})
	return b, nil
}

// Cancel terminates a booking unconditionally. Allowed for the owning customer
// or an admin, from any non-terminal status.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID, actor Actor) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID && !actor.Admin {
		return nil, ErrNotAllowed
	}

	decision, err := Decide(b, EventCancel)
	if err != nil {
		return nil, err
	}

	// Vendor bookings are left as they are: the terminal booking status frees
	// every slot, and a vendor's late decision can still be recorded
	now := s.now()
	if err := s.commit(ctx, b, decision, func() {
		b.CancelledAt = sql.NullTime{Time: now, Valid: true}
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.TypeCancelled, b, nil)
	return b, nil
}

// Decline lets the customer walk away from a booking whose vendors rejected,
// instead of paying or replacing them
func (s *Service) Decline(ctx context.Context, bookingID uuid.UUID, actor Actor) (*Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actor.ID != b.CustomerID && !actor.Admin {
		return nil, ErrNotAllowed
	}

	decision, err := Decide(b, EventCustomerDecline)
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, b, decision, nil); err != nil {
		return nil, err
	}

	s.publish(ctx, notification.TypeDeclined, b, nil)
	return b, nil
}

// OnPaymentResult maps the payment collaborator's callback onto the workflow.
// Failures leave the booking retryable in ReadyForPayment; success confirms it
// and triggers invoicing.
func (s *Service) OnPaymentResult(ctx context.Context, bookingID uuid.UUID, success bool, note string) error {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return err
	}

	if !success {
		log.Warn().
			Str("booking_id", b.ID.String()).
			Str("note", note).
			Msg("Payment failed, booking stays ready for payment")
		s.publish(ctx, notification.TypePaymentFailed, b, map[string]string{"note": note})
		return nil
	}

	// Idempotent: a duplicate success callback is a no-op
	if b.Status == StatusConfirmed && b.PaymentStatus == PaymentPaid {
		return nil
	}

	decision, err := Decide(b, EventPaymentSucceeded)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.commit(ctx, b, decision, func() {
		b.PaymentStatus = PaymentPaid
		b.PaidAt = sql.NullTime{Time: now, Valid: true}
	}); err != nil {
		return err
	}

	log.Info().Str("booking_id", b.ID.String()).Msg("Booking confirmed")
	s.publish(ctx, notification.TypeConfirmed, b, nil)
	s.issueInvoice(b)
	return nil
}

// commit finalizes a decided transition: re-validates availability when the
// decision demands it (holding the slot locks through the save), applies the
// mutation and CAS-saves. On any failure the booking is left untouched.
func (s *Service) commit(ctx context.Context, b *Booking, decision Decision, mutate func()) error {
	save := func() error {
		b.Status = decision.Next
		if b.Status == StatusReadyForPayment {
			b.CanProceedToPayment = !b.AnyVendorRejected()
		}
		if mutate != nil {
			mutate()
		}
		b.UpdatedAt = s.now()
		return s.repo.Update(ctx, b, b.Version)
	}

	if !decision.Revalidate {
		return save()
	}

	resources := []uuid.UUID{b.HallID}
	for i := range b.VendorBookings {
		switch b.VendorBookings[i].Status {
		case VendorBookingPending, VendorBookingApproved:
			resources = append(resources, b.VendorBookings[i].VendorID)
		}
	}

	return s.withSlotLocks(ctx, resources, b.EventDate, func() error {
		for _, res := range resources {
			if err := s.availability.ValidateWindow(ctx, res, b.EventDate, b.StartTime, b.EndTime, b.ID); err != nil {
				return err
			}
		}
		return save()
	})
}

// withSlotLocks acquires the (resource, date) locks in a stable order, runs fn
// and releases. A lock held elsewhere surfaces as a slot conflict: the caller
// retries with fresh data.
func (s *Service) withSlotLocks(ctx context.Context, resourceIDs []uuid.UUID, date time.Time, fn func() error) error {
	ids := make([]uuid.UUID, len(resourceIDs))
	copy(ids, resourceIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	type held struct {
		id    uuid.UUID
		token string
	}
	var acquired []held
	release := func() {
		for _, h := range acquired {
			if err := s.locker.Release(ctx, h.id, date, h.token); err != nil {
				log.Error().Err(err).Str("resource_id", h.id.String()).Msg("Failed to release slot lock")
			}
		}
	}
	defer release()

	for _, id := range ids {
		token, err := s.locker.Acquire(ctx, id, date)
		if err != nil {
			if errors.Is(err, slotlock.ErrLockHeld) {
				return fmt.Errorf("%w: a concurrent booking attempt holds this slot", ErrSlotUnavailable)
			}
			return err
		}
		acquired = append(acquired, held{id: id, token: token})
	}

	return fn()
}

// authorizeHallManager allows the hall's owner or an admin
func (s *Service) authorizeHallManager(ctx context.Context, b *Booking, actor Actor) error {
	if actor.Admin {
		return nil
	}
	h, err := s.halls.GetHall(ctx, b.HallID)
	if err != nil {
		return err
	}
	if actor.ID != h.OwnerID {
		return ErrNotAllowed
	}
	return nil
}

// authorizeVendorManager allows the vendor's owner or an admin
func (s *Service) authorizeVendorManager(ctx context.Context, vb *VendorBooking, actor Actor) error {
	if actor.Admin {
		return nil
	}
	v, err := s.vendors.GetVendor(ctx, vb.VendorID)
	if err != nil {
		return err
	}
	if actor.ID != v.OwnerID {
		return ErrNotAllowed
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *Booking, data map[string]string) {
	s.notifier.Publish(ctx, notification.Event{
		Type:       eventType,
		BookingID:  b.ID,
		Status:     string(b.Status),
		OccurredAt: s.now(),
		Data:       data,
	})
}

// issueInvoice hands the confirmed booking to the invoicing collaborator,
// fire-and-forget with its own deadline
func (s *Service) issueInvoice(b *Booking) {
	inv := invoice.Invoice{
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		Subtotal:       b.Subtotal,
		DiscountAmount: b.DiscountAmount,
		TaxRate:        b.TaxRate,
		TaxAmount:      b.TaxAmount,
		TotalAmount:    b.TotalAmount,
		Currency:       b.Currency,
		PaidAt:         b.PaidAt.Time,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.issuer.Issue(ctx, inv); err != nil {
			log.Error().Err(err).Str("booking_id", inv.BookingID.String()).Msg("Invoice issuance failed")
		}
	}()
}
