package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists booking aggregates
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	// Update saves the aggregate with compare-and-swap on the version column;
	// a lost race yields ErrVersionConflict and nothing is written.
	Update(ctx context.Context, b *Booking, expectedVersion int) error
	QueryOverlapping(ctx context.Context, resourceID uuid.UUID, date time.Time, excludeBookingID uuid.UUID) ([]Interval, error)
}

// PostgresRepository is the sqlx-backed Repository
type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, hall_id, customer_id, event_date, start_time, end_time,
			guest_count, gender_preference, status, hall_approval, hall_reject_reason,
			can_proceed_to_payment, hall_cost, vendor_services_cost, subtotal,
			discount_code, discount_amount, tax_rate, tax_amount, total_amount,
			currency, payment_status, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
	`,
		b.ID, b.HallID, b.CustomerID, b.EventDate, b.StartTime, b.EndTime,
		b.GuestCount, string(b.GenderPreference), string(b.Status), string(b.HallApproval), b.HallRejectReason,
		b.CanProceedToPayment, b.HallCost, b.VendorServicesCost, b.Subtotal,
		b.DiscountCode, b.DiscountAmount, b.TaxRate, b.TaxAmount, b.TotalAmount,
		b.Currency, string(b.PaymentStatus), b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for i := range b.VendorBookings {
		if err := insertVendorBooking(ctx, tx, &b.VendorBookings[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertVendorBooking(ctx context.Context, tx *sqlx.Tx, vb *VendorBooking) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vendor_bookings (
			id, booking_id, vendor_id, start_time, end_time, status,
			reject_reason, total_amount, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reject_reason = EXCLUDED.reject_reason,
			total_amount = EXCLUDED.total_amount,
			updated_at = EXCLUDED.updated_at
	`,
		vb.ID, vb.BookingID, vb.VendorID, vb.StartTime, vb.EndTime, string(vb.Status),
		vb.RejectReason, vb.TotalAmount, vb.CreatedAt, vb.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, svc := range vb.Services {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vendor_booking_services (
				id, vendor_booking_id, service_item_id, name, quantity, unit_price, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, svc.ID, svc.VendorBookingID, svc.ServiceItemID, svc.Name, svc.Quantity, svc.UnitPrice, svc.TotalPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `
		SELECT id, hall_id, customer_id, event_date, start_time, end_time,
			guest_count, gender_preference, status, hall_approval, hall_reject_reason,
			can_proceed_to_payment, hall_cost, vendor_services_cost, subtotal,
			discount_code, discount_amount, tax_rate, tax_amount, total_amount,
			currency, payment_status, version, created_at, updated_at, paid_at, cancelled_at
		FROM bookings
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.db.SelectContext(ctx, &b.VendorBookings, `
		SELECT id, booking_id, vendor_id, start_time, end_time, status,
			reject_reason, total_amount, created_at, updated_at
		FROM vendor_bookings
		WHERE booking_id = $1
		ORDER BY created_at, id
	`, id); err != nil {
		return nil, err
	}

	for i := range b.VendorBookings {
		if err := r.db.SelectContext(ctx, &b.VendorBookings[i].Services, `
			SELECT id, vendor_booking_id, service_item_id, name, quantity, unit_price, total_price
			FROM vendor_booking_services
			WHERE vendor_booking_id = $1
			ORDER BY name, id
		`, b.VendorBookings[i].ID); err != nil {
			return nil, err
		}
	}

	return &b, nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *Booking, expectedVersion int) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET
			status = $1,
			hall_approval = $2,
			hall_reject_reason = $3,
			can_proceed_to_payment = $4,
			vendor_services_cost = $5,
			subtotal = $6,
			discount_amount = $7,
			tax_amount = $8,
			total_amount = $9,
			payment_status = $10,
			paid_at = $11,
			cancelled_at = $12,
			version = version + 1,
			updated_at = now()
		WHERE id = $13 AND version = $14
	`,
		string(b.Status), string(b.HallApproval), b.HallRejectReason,
		b.CanProceedToPayment, b.VendorServicesCost, b.Subtotal,
		b.DiscountAmount, b.TaxAmount, b.TotalAmount,
		string(b.PaymentStatus), b.PaidAt, b.CancelledAt,
		b.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	for i := range b.VendorBookings {
		if err := insertVendorBooking(ctx, tx, &b.VendorBookings[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	b.Version = expectedVersion + 1
	return nil
}

// QueryOverlapping returns the booked intervals of a resource on a date.
// The resource id may identify a hall or a vendor; bookings in non-blocking
// statuses and rejected/cancelled vendor commitments are excluded.
func (r *PostgresRepository) QueryOverlapping(ctx context.Context, resourceID uuid.UUID, date time.Time, excludeBookingID uuid.UUID) ([]Interval, error) {
	intervals := []Interval{}
	err := r.db.SelectContext(ctx, &intervals, `
		SELECT start_time AS start, end_time AS "end"
		FROM bookings
		WHERE hall_id = $1
		  AND event_date = $2
		  AND id <> $3
		  AND status NOT IN ('cancelled', 'hall_rejected', 'vendor_rejected')
		UNION ALL
		SELECT vb.start_time AS start, vb.end_time AS "end"
		FROM vendor_bookings vb
		JOIN bookings b ON b.id = vb.booking_id
		WHERE vb.vendor_id = $1
		  AND b.event_date = $2
		  AND b.id <> $3
		  AND vb.status NOT IN ('rejected', 'cancelled')
		  AND b.status NOT IN ('cancelled', 'hall_rejected', 'vendor_rejected')
		ORDER BY start
	`, resourceID, date, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return intervals, nil
}
