package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByLogin(ctx context.Context, login string) (*domain.Admin, error)
	Exists(ctx context.Context) (bool, error)
}

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (admin_id, login, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query, admin.ID, admin.Login, admin.PasswordHash).Scan(&admin.CreatedAt)
}

func (r *adminRepository) GetByLogin(ctx context.Context, login string) (*domain.Admin, error) {
	var admin domain.Admin
	query := `SELECT * FROM admins WHERE login = $1`

	err := r.db.GetContext(ctx, &admin, query, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM admins)`)
	return exists, err
}
