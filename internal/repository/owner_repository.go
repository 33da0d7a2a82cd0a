package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

type OwnerRepository interface {
	Register(ctx context.Context, owner *domain.Owner) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
	GetByQRCodeID(ctx context.Context, qrCodeID uuid.UUID) (*domain.Owner, error)
	UpdateProfile(ctx context.Context, owner *domain.Owner) error
	SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) error
	SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error
	SetPushSubscription(ctx context.Context, id uuid.UUID, subscription *string) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error)
}

type ownerRepository struct {
	db *sqlx.DB
}

func NewOwnerRepository(db *sqlx.DB) OwnerRepository {
	return &ownerRepository{db: db}
}

// Register inserts the owner and activates its QR code in one transaction.
// Activation is a conditional update; if the code is no longer inactive nothing is written.
func (r *ownerRepository) Register(ctx context.Context, owner *domain.Owner) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := `
		INSERT INTO owners (owner_id, qr_code_id, name, surname, photo_url, phone, telegram, profile_open, lang)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err = tx.QueryRowxContext(ctx, insert,
		owner.ID, owner.QRCodeID, owner.Name, owner.Surname, owner.PhotoURL,
		owner.Phone, owner.Telegram, owner.ProfileOpen, owner.Lang,
	).Scan(&owner.CreatedAt, &owner.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrQRCodeNotInactive
	}
	if err != nil {
		return err
	}

	activate := `UPDATE qr_codes SET status = 'active', owner_id = $1 WHERE qr_code_id = $2 AND status = 'inactive'`
	res, err := tx.ExecContext(ctx, activate, owner.ID, owner.QRCodeID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQRCodeNotInactive
	}

	return tx.Commit()
}

func (r *ownerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	var owner domain.Owner
	query := `SELECT * FROM owners WHERE owner_id = $1`

	err := r.db.GetContext(ctx, &owner, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerRepository) GetByQRCodeID(ctx context.Context, qrCodeID uuid.UUID) (*domain.Owner, error) {
	var owner domain.Owner
	query := `SELECT * FROM owners WHERE qr_code_id = $1`

	err := r.db.GetContext(ctx, &owner, query, qrCodeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *ownerRepository) UpdateProfile(ctx context.Context, owner *domain.Owner) error {
	query := `
		UPDATE owners
		SET name = :name, surname = :surname, phone = :phone, telegram = :telegram,
			photo_url = :photo_url, lang = :lang, updated_at = NOW()
		WHERE owner_id = :owner_id`

	_, err := r.db.NamedExecContext(ctx, query, owner)
	return err
}

func (r *ownerRepository) SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) error {
	query := `UPDATE owners SET telegram = $2, updated_at = NOW() WHERE owner_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, telegram)
	return err
}

func (r *ownerRepository) SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error {
	query := `UPDATE owners SET at_car = $2, updated_at = NOW() WHERE owner_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, atCar)
	return err
}

func (r *ownerRepository) SetPushSubscription(ctx context.Context, id uuid.UUID, subscription *string) error {
	query := `UPDATE owners SET push_subscription = $2 WHERE owner_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, subscription)
	return err
}

func (r *ownerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM owners`)
	return count, err
}

func (r *ownerRepository) List(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error) {
	params.Validate()

	owners := []domain.OwnerSummary{}
	query := `
		SELECT owner_id, name, surname, photo_url, phone, telegram, created_at
		FROM owners
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &owners, query, params.Limit, params.Offset)
	return owners, err
}
