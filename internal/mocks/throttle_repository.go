package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"exelix/internal/domain"
)

type ThrottleRepository struct {
	mock.Mock
}

func (m *ThrottleRepository) LastSentAt(ctx context.Context, key domain.ThrottleKey) (*time.Time, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *ThrottleRepository) Claim(ctx context.Context, key domain.ThrottleKey, at time.Time, minDelay time.Duration) (bool, error) {
	args := m.Called(ctx, key, at, minDelay)
	return args.Bool(0), args.Error(1)
}
