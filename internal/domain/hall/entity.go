package hall

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Segment is a gender segment a hall rents out separately
type Segment string

const (
	SegmentMale   Segment = "male"
	SegmentFemale Segment = "female"
	SegmentBoth   Segment = "both"
)

// Hall represents a rentable venue
type Hall struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Tariff is the rate card of one hall segment. Weekend means Friday/Saturday
// (Saudi week), priced per hour.
type Tariff struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	HallID      uuid.UUID       `db:"hall_id" json:"hall_id"`
	Segment     Segment         `db:"segment" json:"segment"`
	WeekdayRate decimal.Decimal `db:"weekday_rate" json:"weekday_rate"`
	WeekendRate decimal.Decimal `db:"weekend_rate" json:"weekend_rate"`
	MinCapacity int             `db:"min_capacity" json:"min_capacity"`
	MaxCapacity int             `db:"max_capacity" json:"max_capacity"`
	Active      bool            `db:"active" json:"active"`
}
