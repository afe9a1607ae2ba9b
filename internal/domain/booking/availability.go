package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open time window [Start, End) on a single day
type Interval struct {
	Start time.Time `db:"start" json:"start"`
	End   time.Time `db:"end" json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
// Touching boundaries (a.End == b.Start) are not a conflict.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// FreeSlots returns the maximal free gaps between opening and closing given the
// existing booked intervals, in chronological order. Booked intervals may be
// unsorted and may overlap each other.
func FreeSlots(opening, closing time.Time, booked []Interval) []Interval {
	sorted := make([]Interval, len(booked))
	copy(sorted, booked)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	free := []Interval{}
	cursor := opening
	for _, b := range sorted {
		if b.End.Before(opening) || !b.Start.Before(closing) {
			continue
		}
		if cursor.Before(b.Start) {
			end := b.Start
			if end.After(closing) {
				end = closing
			}
			free = append(free, Interval{Start: cursor, End: end})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(closing) {
		free = append(free, Interval{Start: cursor, End: closing})
	}
	return free
}

// OverlapQuerier loads the booked intervals of a resource (hall or vendor) on a
// date, excluding terminal-negative bookings and, when given, one booking id
// (so re-validation does not conflict with the booking's own window).
type OverlapQuerier interface {
	QueryOverlapping(ctx context.Context, resourceID uuid.UUID, date time.Time, excludeBookingID uuid.UUID) ([]Interval, error)
}

// AvailabilityConfig carries the composite window rules
type AvailabilityConfig struct {
	OpeningHour    int
	ClosingHour    int
	MinDuration    time.Duration
	MaxDuration    time.Duration
	BookingHorizon time.Duration
}

// AvailabilityEngine decides whether a time window on a resource is bookable.
// It is the authoritative guard against double-booking: callers must not
// proceed past a failed validation.
type AvailabilityEngine struct {
	repo OverlapQuerier
	cfg  AvailabilityConfig
	now  func() time.Time
}

func NewAvailabilityEngine(repo OverlapQuerier, cfg AvailabilityConfig) *AvailabilityEngine {
	return &AvailabilityEngine{repo: repo, cfg: cfg, now: time.Now}
}

// OperatingHours returns the opening and closing instants of a date
func (e *AvailabilityEngine) OperatingHours(date time.Time) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.Add(time.Duration(e.cfg.OpeningHour) * time.Hour),
		day.Add(time.Duration(e.cfg.ClosingHour) * time.Hour)
}

// IsAvailable reports whether the window conflicts with no existing booking of
// the resource on that date
func (e *AvailabilityEngine) IsAvailable(ctx context.Context, resourceID uuid.UUID, date, start, end time.Time, excludeBookingID uuid.UUID) (bool, error) {
	existing, err := e.repo.QueryOverlapping(ctx, resourceID, date, excludeBookingID)
	if err != nil {
		return false, err
	}
	requested := Interval{Start: start, End: end}
	for _, b := range existing {
		if Overlaps(requested, b) {
			return false, nil
		}
	}
	return true, nil
}

// GetFreeSlots returns the free gaps of a resource's day within operating hours
func (e *AvailabilityEngine) GetFreeSlots(ctx context.Context, resourceID uuid.UUID, date time.Time) ([]Interval, error) {
	existing, err := e.repo.QueryOverlapping(ctx, resourceID, date, uuid.Nil)
	if err != nil {
		return nil, err
	}
	opening, closing := e.OperatingHours(date)
	return FreeSlots(opening, closing, existing), nil
}

// ValidateWindow runs the composite rule check and returns the first failing
// rule wrapped in ErrValidation, or ErrSlotUnavailable on a time conflict.
func (e *AvailabilityEngine) ValidateWindow(ctx context.Context, resourceID uuid.UUID, date, start, end time.Time, excludeBookingID uuid.UUID) error {
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location())

	if date.Before(today) {
		return fmt.Errorf("%w: event date is in the past", ErrValidation)
	}
	if date.After(now.Add(e.cfg.BookingHorizon)) {
		return fmt.Errorf("%w: event date is too far in the future", ErrValidation)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}

	duration := end.Sub(start)
	if duration < e.cfg.MinDuration {
		return fmt.Errorf("%w: booking must last at least %s", ErrValidation, e.cfg.MinDuration)
	}
	if duration > e.cfg.MaxDuration {
		return fmt.Errorf("%w: booking may last at most %s", ErrValidation, e.cfg.MaxDuration)
	}

	opening, closing := e.OperatingHours(date)
	if start.Before(opening) || end.After(closing) {
		return fmt.Errorf("%w: window is outside operating hours (%02d:00-%02d:00)",
			ErrValidation, e.cfg.OpeningHour, e.cfg.ClosingHour)
	}

	available, err := e.IsAvailable(ctx, resourceID, date, start, end, excludeBookingID)
	if err != nil {
		return err
	}
	if !available {
		return ErrSlotUnavailable
	}
	return nil
}
