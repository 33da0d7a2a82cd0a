package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

// ThrottleRepository stores the last accepted send per sender key.
type ThrottleRepository interface {
	LastSentAt(ctx context.Context, key domain.ThrottleKey) (*time.Time, error)
	// Claim records at as the key's last send only if at least minDelay has passed since the stored mark.
	// It reports false when another send already holds the window.
	Claim(ctx context.Context, key domain.ThrottleKey, at time.Time, minDelay time.Duration) (bool, error)
}

type throttleRepository struct {
	db *sqlx.DB
}

func NewThrottleRepository(db *sqlx.DB) ThrottleRepository {
	return &throttleRepository{db: db}
}

func (r *throttleRepository) LastSentAt(ctx context.Context, key domain.ThrottleKey) (*time.Time, error) {
	var at time.Time
	query := `SELECT last_sent_at FROM send_throttle WHERE throttle_key = $1`

	err := r.db.GetContext(ctx, &at, query, key.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func (r *throttleRepository) Claim(ctx context.Context, key domain.ThrottleKey, at time.Time, minDelay time.Duration) (bool, error) {
	query := `
		INSERT INTO send_throttle (throttle_key, last_sent_at)
		VALUES ($1, $2)
		ON CONFLICT (throttle_key) DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at
		WHERE send_throttle.last_sent_at <= EXCLUDED.last_sent_at - make_interval(secs => $3)`

	res, err := r.db.ExecContext(ctx, query, key.String(), at, minDelay.Seconds())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
