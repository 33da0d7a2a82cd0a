package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"exelix/internal/domain"
)

type NotificationEventRepository struct {
	mock.Mock
}

func (m *NotificationEventRepository) Create(ctx context.Context, event *domain.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *NotificationEventRepository) ListSenderTypesSince(ctx context.Context, senderIP string, fingerprint *string, since time.Time) ([]domain.NotificationTypes, error) {
	args := m.Called(ctx, senderIP, fingerprint, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationTypes), args.Error(1)
}

func (m *NotificationEventRepository) CountForQRCodeSince(ctx context.Context, qrCodeID uuid.UUID, since time.Time) (int64, error) {
	args := m.Called(ctx, qrCodeID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationEventRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
