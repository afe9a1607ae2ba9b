package booking

import "errors"

var (
	// ErrValidation marks malformed input; always wrapped with the failing rule
	ErrValidation = errors.New("validation failed")

	// ErrSlotUnavailable means the requested window conflicts with an existing
	// booking, or stopped being free between quote and commit
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrVersionConflict means a concurrent transition won the optimistic save;
	// callers must reload and retry
	ErrVersionConflict = errors.New("booking was modified concurrently")

	// ErrInvalidTransition marks a (status, event) pair outside the transition table
	ErrInvalidTransition = errors.New("invalid booking state transition")

	// ErrTariffUnavailable means the selected gender segment has no active rate card
	ErrTariffUnavailable = errors.New("tariff segment is unavailable")

	ErrBookingNotFound       = errors.New("booking not found")
	ErrVendorBookingNotFound = errors.New("vendor booking not found")
	ErrAlreadyDecided        = errors.New("approval already decided")
	ErrNotAllowed            = errors.New("actor is not allowed to perform this action")

	// ErrRejectedVendorsPending blocks checkout while rejected vendor services
	// are neither replaced nor explicitly declined
	ErrRejectedVendorsPending = errors.New("booking has rejected vendor services pending a customer decision")
)
