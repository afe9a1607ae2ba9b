package discount

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetRule looks up an active discount code. Returns (nil, nil) for unknown or
// inactive codes: an unknown code is not an error, it just yields no discount.
func (r *Repository) GetRule(ctx context.Context, code string) (*Rule, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	var rule Rule
	err := r.db.GetContext(ctx, &rule, `
		SELECT code, percentage, max_amount, min_subtotal, active
		FROM discount_codes
		WHERE code = $1 AND active = true
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
