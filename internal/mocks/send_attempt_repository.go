package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"exelix/internal/domain"
)

type SendAttemptRepository struct {
	mock.Mock
}

func (m *SendAttemptRepository) Create(ctx context.Context, ip string, outcome domain.AttemptOutcome) error {
	args := m.Called(ctx, ip, outcome)
	return args.Error(0)
}

func (m *SendAttemptRepository) CountByOutcomeSince(ctx context.Context, outcome domain.AttemptOutcome, since time.Time) (int64, error) {
	args := m.Called(ctx, outcome, since)
	return args.Get(0).(int64), args.Error(1)
}
