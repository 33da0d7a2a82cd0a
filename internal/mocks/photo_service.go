package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"exelix/internal/service/photo"
)

type PhotoService struct {
	mock.Mock
}

func (m *PhotoService) Upload(ctx context.Context, file photo.File) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *PhotoService) Remove(ctx context.Context, publicURL string) error {
	return m.Called(ctx, publicURL).Error(0)
}
