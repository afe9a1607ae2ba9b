package hall

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetHall(ctx context.Context, id uuid.UUID) (*Hall, error) {
	var h Hall
	err := r.db.GetContext(ctx, &h, `
		SELECT id, owner_id, name, city, active, created_at, updated_at
		FROM halls
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHallNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetTariff returns the rate card of one hall segment
func (r *Repository) GetTariff(ctx context.Context, hallID uuid.UUID, segment Segment) (*Tariff, error) {
	var t Tariff
	err := r.db.GetContext(ctx, &t, `
		SELECT id, hall_id, segment, weekday_rate, weekend_rate, min_capacity, max_capacity, active
		FROM hall_tariffs
		WHERE hall_id = $1 AND segment = $2
	`, hallID, string(segment))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTariffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
