package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func day(hour, min int) time.Time {
	return time.Date(2027, 3, 5, hour, min, 0, 0, time.UTC)
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a := Interval{Start: day(10, 0), End: day(14, 0)}
	b := Interval{Start: day(12, 0), End: day(16, 0)}

	if !Overlaps(a, b) || !Overlaps(b, a) {
		t.Fatalf("expected %v and %v to overlap both ways", a, b)
	}
}

func TestOverlapsTouchingBoundariesDoNotConflict(t *testing.T) {
	a := Interval{Start: day(10, 0), End: day(14, 0)}
	b := Interval{Start: day(14, 0), End: day(18, 0)}

	if Overlaps(a, b) || Overlaps(b, a) {
		t.Fatalf("back-to-back intervals must not conflict")
	}
}

func TestFreeSlotsBetweenBookings(t *testing.T) {
	opening, closing := day(8, 0), day(23, 0)
	booked := []Interval{
		{Start: day(14, 0), End: day(18, 0)},
		{Start: day(8, 0), End: day(12, 0)},
	}

	free := FreeSlots(opening, closing, booked)

	want := []Interval{
		{Start: day(12, 0), End: day(14, 0)},
		{Start: day(18, 0), End: day(23, 0)},
	}
	if len(free) != len(want) {
		t.Fatalf("expected %d free slots, got %d: %v", len(want), len(free), free)
	}
	for i := range want {
		if !free[i].Start.Equal(want[i].Start) || !free[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d: expected %v-%v, got %v-%v",
				i, want[i].Start, want[i].End, free[i].Start, free[i].End)
		}
	}
}

func TestFreeSlotsEmptyDayIsOneSlot(t *testing.T) {
	free := FreeSlots(day(8, 0), day(23, 0), nil)

	if len(free) != 1 {
		t.Fatalf("expected one free slot, got %v", free)
	}
	if !free[0].Start.Equal(day(8, 0)) || !free[0].End.Equal(day(23, 0)) {
		t.Fatalf("expected full operating day, got %v-%v", free[0].Start, free[0].End)
	}
}

func TestFreeSlotsFullyBookedDayIsEmpty(t *testing.T) {
	free := FreeSlots(day(8, 0), day(23, 0), []Interval{{Start: day(8, 0), End: day(23, 0)}})

	if len(free) != 0 {
		t.Fatalf("expected no free slots, got %v", free)
	}
}

func TestFreeSlotsHandlesOverlappingBookings(t *testing.T) {
	booked := []Interval{
		{Start: day(9, 0), End: day(13, 0)},
		{Start: day(11, 0), End: day(15, 0)},
	}

	free := FreeSlots(day(8, 0), day(23, 0), booked)

	want := []Interval{
		{Start: day(8, 0), End: day(9, 0)},
		{Start: day(15, 0), End: day(23, 0)},
	}
	if len(free) != len(want) {
		t.Fatalf("expected %d slots, got %v", len(want), free)
	}
	for i := range want {
		if !free[i].Start.Equal(want[i].Start) || !free[i].End.Equal(want[i].End) {
			t.Fatalf("slot %d: expected %v-%v, got %v-%v",
				i, want[i].Start, want[i].End, free[i].Start, free[i].End)
		}
	}
}

// fakeOverlapQuerier serves canned intervals per resource
type fakeOverlapQuerier struct {
	intervals map[uuid.UUID][]Interval
}

func (f *fakeOverlapQuerier) QueryOverlapping(_ context.Context, resourceID uuid.UUID, _ time.Time, _ uuid.UUID) ([]Interval, error) {
	return f.intervals[resourceID], nil
}

func newTestEngine(querier OverlapQuerier) *AvailabilityEngine {
	e := NewAvailabilityEngine(querier, AvailabilityConfig{
		OpeningHour:    8,
		ClosingHour:    23,
		MinDuration:    2 * time.Hour,
		MaxDuration:    16 * time.Hour,
		BookingHorizon: 8760 * time.Hour,
	})
	e.now = func() time.Time { return time.Date(2027, 3, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func TestValidateWindowRules(t *testing.T) {
	hallID := uuid.New()
	engine := newTestEngine(&fakeOverlapQuerier{})
	date := time.Date(2027, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		date       time.Time
		start, end time.Time
	}{
		{"past date", time.Date(2027, 2, 20, 0, 0, 0, 0, time.UTC), day(10, 0), day(14, 0)},
		{"beyond horizon", time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC), day(10, 0), day(14, 0)},
		{"start after end", date, day(14, 0), day(10, 0)},
		{"too short", date, day(10, 0), day(11, 0)},
		{"before opening", date, day(6, 0), day(10, 0)},
		{"after closing", date, day(20, 0), day(23, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.ValidateWindow(context.Background(), hallID, tt.date, tt.start, tt.end, uuid.Nil)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateWindowConflict(t *testing.T) {
	hallID := uuid.New()
	engine := newTestEngine(&fakeOverlapQuerier{
		intervals: map[uuid.UUID][]Interval{
			hallID: {{Start: day(12, 0), End: day(16, 0)}},
		},
	})
	date := time.Date(2027, 3, 5, 0, 0, 0, 0, time.UTC)

	err := engine.ValidateWindow(context.Background(), hallID, date, day(14, 0), day(18, 0), uuid.Nil)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// Adjacent window is fine
	if err := engine.ValidateWindow(context.Background(), hallID, date, day(16, 0), day(20, 0), uuid.Nil); err != nil {
		t.Fatalf("expected adjacent window to validate, got %v", err)
	}
}

func TestValidateWindowAcceptsFullOperatingDay(t *testing.T) {
	engine := newTestEngine(&fakeOverlapQuerier{})
	date := time.Date(2027, 3, 5, 0, 0, 0, 0, time.UTC)

	// 08:00-23:00 is 15h, within the 16h maximum
	if err := engine.ValidateWindow(context.Background(), uuid.New(), date, day(8, 0), day(23, 0), uuid.Nil); err != nil {
		t.Fatalf("expected full operating day to validate, got %v", err)
	}
}
