package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

type SendAttemptRepository interface {
	Create(ctx context.Context, ip string, outcome domain.AttemptOutcome) error
	CountByOutcomeSince(ctx context.Context, outcome domain.AttemptOutcome, since time.Time) (int64, error)
}

type sendAttemptRepository struct {
	db *sqlx.DB
}

func NewSendAttemptRepository(db *sqlx.DB) SendAttemptRepository {
	return &sendAttemptRepository{db: db}
}

func (r *sendAttemptRepository) Create(ctx context.Context, ip string, outcome domain.AttemptOutcome) error {
	query := `INSERT INTO send_attempts (ip, outcome) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, ip, outcome)
	return err
}

func (r *sendAttemptRepository) CountByOutcomeSince(ctx context.Context, outcome domain.AttemptOutcome, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM send_attempts WHERE outcome = $1 AND created_at >= $2`
	err := r.db.GetContext(ctx, &count, query, outcome, since)
	return count, err
}
