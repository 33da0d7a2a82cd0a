package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

type QRCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.QRCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QRCode, error)
	CreateInactive(ctx context.Context, codes []string) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByStatus(ctx context.Context, status domain.QRStatus) (int64, error)
}

type qrCodeRepository struct {
	db *sqlx.DB
}

func NewQRCodeRepository(db *sqlx.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) GetByCode(ctx context.Context, code string) (*domain.QRCode, error) {
	var qr domain.QRCode
	query := `SELECT * FROM qr_codes WHERE code = $1`

	err := r.db.GetContext(ctx, &qr, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QRCode, error) {
	var qr domain.QRCode
	query := `SELECT * FROM qr_codes WHERE qr_code_id = $1`

	err := r.db.GetContext(ctx, &qr, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &qr, nil
}

// CreateInactive inserts a provisioning batch in one transaction; a duplicate code fails the whole batch.
func (r *qrCodeRepository) CreateInactive(ctx context.Context, codes []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO qr_codes (code, status) VALUES ($1, 'inactive')`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, code := range codes {
		if _, err := stmt.ExecContext(ctx, code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *qrCodeRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM qr_codes WHERE code = $1)`
	err := r.db.GetContext(ctx, &exists, query, code)
	return exists, err
}

func (r *qrCodeRepository) CountByStatus(ctx context.Context, status domain.QRStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM qr_codes WHERE status = $1`
	err := r.db.GetContext(ctx, &count, query, status)
	return count, err
}
