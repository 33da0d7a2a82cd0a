package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"exelix/internal/domain"
)

type OwnerRepository struct {
	mock.Mock
}

func (m *OwnerRepository) Register(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *OwnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *OwnerRepository) GetByQRCodeID(ctx context.Context, qrCodeID uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, qrCodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *OwnerRepository) UpdateProfile(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *OwnerRepository) SetTelegram(ctx context.Context, id uuid.UUID, telegram *string) error {
	args := m.Called(ctx, id, telegram)
	return args.Error(0)
}

func (m *OwnerRepository) SetAtCar(ctx context.Context, id uuid.UUID, atCar bool) error {
	args := m.Called(ctx, id, atCar)
	return args.Error(0)
}

func (m *OwnerRepository) SetPushSubscription(ctx context.Context, id uuid.UUID, subscription *string) error {
	args := m.Called(ctx, id, subscription)
	return args.Error(0)
}

func (m *OwnerRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OwnerRepository) List(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.OwnerSummary), args.Error(1)
}
