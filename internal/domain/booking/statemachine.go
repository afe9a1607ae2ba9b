package booking

import (
	"fmt"
)

// Event is a workflow trigger applied to a booking
type Event string

const (
	EventSubmit           Event = "submit"
	EventHallApprove      Event = "hall_approve"
	EventHallReject       Event = "hall_reject"
	EventVendorApprove    Event = "vendor_approve"
	EventVendorReject     Event = "vendor_reject"
	EventPaymentSucceeded Event = "payment_succeeded"
	EventCustomerDecline  Event = "customer_decline"
	EventCancel           Event = "cancel"
)

// Decision is the outcome of applying an event: the settled next status and
// whether availability must be re-validated before the transition may commit.
type Decision struct {
	Next       Status
	Revalidate bool
}

type resolver func(b *Booking) (Decision, error)

// transitions is the authoritative table. Vendor decisions are recorded on the
// vendor booking before Decide is called, so the aggregation guards read the
// post-decision snapshot. Cancel is handled separately: it applies to every
// non-terminal status.
var transitions = map[Status]map[Event]resolver{
	StatusDraft: {
		EventSubmit: func(b *Booking) (Decision, error) {
			return Decision{Next: StatusPending, Revalidate: true}, nil
		},
	},
	StatusPending: {
		EventHallApprove: func(b *Booking) (Decision, error) {
			return Decision{Next: StatusHallApproved}, nil
		},
		EventHallReject: func(b *Booking) (Decision, error) {
			return Decision{Next: StatusHallRejected}, nil
		},
	},
	StatusVendorsApproving: {
		EventVendorApprove: vendorDecisionResolver,
		EventVendorReject:  vendorDecisionResolver,
	},
	StatusReadyForPayment: {
		EventPaymentSucceeded: func(b *Booking) (Decision, error) {
			return Decision{Next: StatusPaid}, nil
		},
		EventCustomerDecline: func(b *Booking) (Decision, error) {
			if !b.AnyVendorRejected() {
				return Decision{}, fmt.Errorf("%w: nothing to decline, no vendor rejected", ErrInvalidTransition)
			}
			return Decision{Next: StatusVendorRejected}, nil
		},
	},
}

// vendorDecisionResolver aggregates vendor decisions: the booking leaves
// VendorsApproving only once every vendor booking is resolved, regardless of
// whether the decisions were approvals or rejections.
func vendorDecisionResolver(b *Booking) (Decision, error) {
	if !b.AllVendorsResolved() {
		return Decision{Next: StatusVendorsApproving}, nil
	}
	return Decision{Next: StatusReadyForPayment, Revalidate: true}, nil
}

// Decide computes the transition for (booking status, event). It is pure: it
// never mutates the booking, and any pair outside the table yields
// ErrInvalidTransition. Transient statuses settle automatically:
// HallApproved advances to VendorsApproving (or ReadyForPayment when no
// vendors were selected) and Paid advances to Confirmed.
func Decide(b *Booking, ev Event) (Decision, error) {
	if ev == EventCancel {
		if b.Status.Terminal() {
			return Decision{}, fmt.Errorf("%w: booking is already %s", ErrInvalidTransition, b.Status)
		}
		return Decision{Next: StatusCancelled}, nil
	}

	events, ok := transitions[b.Status]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s does not accept %s", ErrInvalidTransition, b.Status, ev)
	}
	resolve, ok := events[ev]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s does not accept %s", ErrInvalidTransition, b.Status, ev)
	}

	d, err := resolve(b)
	if err != nil {
		return Decision{}, err
	}
	return settle(b, d), nil
}

// settle applies the automatic pass-through transitions
func settle(b *Booking, d Decision) Decision {
	switch d.Next {
	case StatusHallApproved:
		if !b.HasVendors() {
			return Decision{Next: StatusReadyForPayment, Revalidate: true}
		}
		return Decision{Next: StatusVendorsApproving}
	case StatusPaid:
		return Decision{Next: StatusConfirmed}
	}
	return d
}

// AllStatuses enumerates every defined booking status (used by totality tests)
var AllStatuses = []Status{
	StatusDraft, StatusPending, StatusHallApproved, StatusVendorsApproving,
	StatusReadyForPayment, StatusPaid, StatusConfirmed, StatusCancelled,
	StatusHallRejected, StatusVendorRejected,
}

// AllEvents enumerates every defined workflow event
var AllEvents = []Event{
	EventSubmit, EventHallApprove, EventHallReject, EventVendorApprove,
	EventVendorReject, EventPaymentSucceeded, EventCustomerDecline, EventCancel,
}
