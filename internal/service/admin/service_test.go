package admin_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"exelix/internal/domain"
	"exelix/internal/mocks"
	"exelix/internal/repository"
	"exelix/internal/service/admin"
)

type repoMocks struct {
	qr      *mocks.QRCodeRepository
	owner   *mocks.OwnerRepository
	event   *mocks.NotificationEventRepository
	attempt *mocks.SendAttemptRepository
	repos   *repository.Repositories
}

func newRepoMocks() *repoMocks {
	m := &repoMocks{
		qr:      new(mocks.QRCodeRepository),
		owner:   new(mocks.OwnerRepository),
		event:   new(mocks.NotificationEventRepository),
		attempt: new(mocks.SendAttemptRepository),
	}
	m.repos = &repository.Repositories{QRCode: m.qr, Owner: m.owner, Event: m.event, Attempt: m.attempt}
	return m
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAdmin_GetStatsCached(t *testing.T) {
	ctx := context.Background()
	m := newRepoMocks()
	m.owner.On("Count", ctx).Return(int64(7), nil).Once()
	m.qr.On("CountByStatus", ctx, domain.QRStatusInactive).Return(int64(93), nil).Once()
	m.event.On("CountAll", ctx).Return(int64(40), nil).Once()
	m.attempt.On("CountByOutcomeSince", ctx, domain.AttemptSuccess, mock.Anything).Return(int64(5), nil).Once()
	m.attempt.On("CountByOutcomeSince", ctx, domain.AttemptFail, mock.Anything).Return(int64(2), nil).Once()

	svc := admin.NewService(m.repos, newRedis(t), "https://exelix.kg/")

	first, err := svc.GetStats(ctx)
	require.NoError(t, err)
	second, err := svc.GetStats(ctx)
	require.NoError(t, err)

	want := &domain.AdminStats{Users: 7, SuccessfulRequests: 5, UnsuccessfulRequests: 2, TotalRequests: 40, InactiveQRCount: 93}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	m.owner.AssertNumberOfCalls(t, "Count", 1)
}

func TestAdmin_GenerateCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("Default batch", func(t *testing.T) {
		m := newRepoMocks()
		m.qr.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		m.qr.On("CreateInactive", ctx, mock.MatchedBy(func(codes []string) bool { return len(codes) == admin.DefaultBatchSize })).Return(nil).Once()

		out, err := admin.NewService(m.repos, nil, "https://exelix.kg/").GenerateCodes(ctx, 0)

		require.NoError(t, err)
		require.Len(t, out, admin.DefaultBatchSize)
		seen := map[string]bool{}
		for _, c := range out {
			assert.True(t, strings.HasPrefix(c.Code, "ex"))
			assert.Equal(t, "https://exelix.kg/q/"+c.Code, c.URL)
			assert.False(t, seen[c.Code])
			seen[c.Code] = true
		}
	})

	t.Run("Skips existing codes", func(t *testing.T) {
		m := newRepoMocks()
		m.qr.On("ExistsByCode", ctx, mock.Anything).Return(true, nil).Once()
		m.qr.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		m.qr.On("CreateInactive", ctx, mock.Anything).Return(nil).Once()

		out, err := admin.NewService(m.repos, nil, "http://x").GenerateCodes(ctx, 3)

		require.NoError(t, err)
		assert.Len(t, out, 3)
		m.qr.AssertNumberOfCalls(t, "ExistsByCode", 4)
	})

	t.Run("Clamped to max", func(t *testing.T) {
		m := newRepoMocks()
		m.qr.On("ExistsByCode", ctx, mock.Anything).Return(false, nil)
		m.qr.On("CreateInactive", ctx, mock.MatchedBy(func(codes []string) bool { return len(codes) == admin.MaxBatchSize })).Return(nil).Once()

		out, err := admin.NewService(m.repos, nil, "http://x").GenerateCodes(ctx, 5000)

		require.NoError(t, err)
		assert.Len(t, out, admin.MaxBatchSize)
	})
}

func TestAdmin_ListOwnersClampsParams(t *testing.T) {
	ctx := context.Background()
	m := newRepoMocks()
	m.owner.On("List", ctx, domain.OffsetParams{Offset: 0, Limit: 100}).Return([]domain.OwnerSummary{}, nil).Once()

	_, err := admin.NewService(m.repos, nil, "").ListOwners(ctx, domain.OffsetParams{Offset: -5, Limit: 500})

	assert.NoError(t, err)
	m.owner.AssertExpectations(t)
}
