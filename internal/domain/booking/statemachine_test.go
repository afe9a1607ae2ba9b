package booking

import (
	"errors"
	"testing"
)

func bookingIn(status Status, vbStatuses ...VendorBookingStatus) *Booking {
	b := &Booking{Status: status}
	for _, s := range vbStatuses {
		b.VendorBookings = append(b.VendorBookings, VendorBooking{Status: s})
	}
	return b
}

func TestDecideSubmitRequiresRevalidation(t *testing.T) {
	d, err := Decide(bookingIn(StatusDraft), EventSubmit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusPending || !d.Revalidate {
		t.Fatalf("expected Pending with revalidation, got %+v", d)
	}
}

func TestDecideHallApproveSettlesByVendorPresence(t *testing.T) {
	// No vendors: straight to ReadyForPayment, slot re-checked
	d, err := Decide(bookingIn(StatusPending), EventHallApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusReadyForPayment || !d.Revalidate {
		t.Fatalf("expected ReadyForPayment with revalidation, got %+v", d)
	}

	// With vendors: approvals begin, no availability change yet
	d, err = Decide(bookingIn(StatusPending, VendorBookingPending), EventHallApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusVendorsApproving || d.Revalidate {
		t.Fatalf("expected VendorsApproving without revalidation, got %+v", d)
	}

	// Cancelled vendor bookings are superseded and do not count
	d, err = Decide(bookingIn(StatusPending, VendorBookingCancelled), EventHallApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusReadyForPayment {
		t.Fatalf("expected ReadyForPayment, got %+v", d)
	}
}

func TestDecideVendorAggregation(t *testing.T) {
	// One vendor still pending: booking stays put
	d, err := Decide(bookingIn(StatusVendorsApproving, VendorBookingApproved, VendorBookingPending), EventVendorApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusVendorsApproving {
		t.Fatalf("expected VendorsApproving, got %+v", d)
	}

	// All resolved, mixed outcomes: advance to ReadyForPayment with re-check
	d, err = Decide(bookingIn(StatusVendorsApproving, VendorBookingApproved, VendorBookingRejected), EventVendorReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusReadyForPayment || !d.Revalidate {
		t.Fatalf("expected ReadyForPayment with revalidation, got %+v", d)
	}
}

func TestDecidePaymentSettlesToConfirmed(t *testing.T) {
	d, err := Decide(bookingIn(StatusReadyForPayment), EventPaymentSucceeded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusConfirmed {
		t.Fatalf("expected Confirmed, got %+v", d)
	}
}

func TestDecideCustomerDeclineGuard(t *testing.T) {
	// Nothing rejected: nothing to decline
	_, err := Decide(bookingIn(StatusReadyForPayment, VendorBookingApproved), EventCustomerDecline)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	d, err := Decide(bookingIn(StatusReadyForPayment, VendorBookingRejected), EventCustomerDecline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Next != StatusVendorRejected {
		t.Fatalf("expected VendorRejected, got %+v", d)
	}
}

func TestDecideCancelFromAnyNonTerminalStatus(t *testing.T) {
	for _, status := range AllStatuses {
		d, err := Decide(bookingIn(status), EventCancel)
		if status.Terminal() {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s: expected ErrInvalidTransition on cancel, got %v", status, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if d.Next != StatusCancelled {
			t.Fatalf("%s: expected Cancelled, got %+v", status, d)
		}
	}
}

// Every (status, event) pair either resolves to a defined status or fails with
// ErrInvalidTransition. Nothing panics, nothing falls through.
func TestDecideTotality(t *testing.T) {
	defined := make(map[Status]bool, len(AllStatuses))
	for _, s := range AllStatuses {
		defined[s] = true
	}

	for _, status := range AllStatuses {
		for _, ev := range AllEvents {
			d, err := Decide(bookingIn(status, VendorBookingRejected), ev)
			if err != nil {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("(%s, %s): unexpected error type: %v", status, ev, err)
				}
				continue
			}
			if !defined[d.Next] {
				t.Fatalf("(%s, %s): resolved to undefined status %q", status, ev, d.Next)
			}
			if status.Terminal() {
				t.Fatalf("(%s, %s): terminal status accepted an event", status, ev)
			}
		}
	}
}

func TestDecideNeverMutates(t *testing.T) {
	b := bookingIn(StatusVendorsApproving, VendorBookingApproved, VendorBookingPending)

	if _, err := Decide(b, EventVendorApprove); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Status != StatusVendorsApproving {
		t.Fatalf("Decide mutated booking status to %s", b.Status)
	}
	if b.VendorBookings[1].Status != VendorBookingPending {
		t.Fatalf("Decide mutated vendor booking status")
	}
}
