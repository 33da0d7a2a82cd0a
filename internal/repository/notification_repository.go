package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"exelix/internal/domain"
)

type NotificationEventRepository interface {
	Create(ctx context.Context, event *domain.NotificationEvent) error
	// ListSenderTypesSince returns the type tags of every event from the sender since the given instant.
	// A nil fingerprint matches only events stored without one.
	ListSenderTypesSince(ctx context.Context, senderIP string, fingerprint *string, since time.Time) ([]domain.NotificationTypes, error)
	CountForQRCodeSince(ctx context.Context, qrCodeID uuid.UUID, since time.Time) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type notificationEventRepository struct {
	db *sqlx.DB
}

func NewNotificationEventRepository(db *sqlx.DB) NotificationEventRepository {
	return &notificationEventRepository{db: db}
}

func (r *notificationEventRepository) Create(ctx context.Context, event *domain.NotificationEvent) error {
	query := `
		INSERT INTO notification_events (event_id, qr_code_id, sender_ip, fingerprint, types, is_critical)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		event.ID, event.QRCodeID, event.SenderIP, event.Fingerprint, event.Types, event.IsCritical,
	).Scan(&event.CreatedAt)
}

func (r *notificationEventRepository) ListSenderTypesSince(ctx context.Context, senderIP string, fingerprint *string, since time.Time) ([]domain.NotificationTypes, error) {
	var types []domain.NotificationTypes
	query := `
		SELECT types FROM notification_events
		WHERE sender_ip = $1 AND fingerprint IS NOT DISTINCT FROM $2 AND created_at >= $3`

	err := r.db.SelectContext(ctx, &types, query, senderIP, fingerprint, since)
	return types, err
}

func (r *notificationEventRepository) CountForQRCodeSince(ctx context.Context, qrCodeID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notification_events WHERE qr_code_id = $1 AND created_at >= $2`
	err := r.db.GetContext(ctx, &count, query, qrCodeID, since)
	return count, err
}

func (r *notificationEventRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notification_events`)
	return count, err
}
