package admin

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"exelix/internal/domain"
	"exelix/internal/repository"
	"exelix/internal/service/guard"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = time.Minute

	DefaultBatchSize = 100
	MaxBatchSize     = 1000
)

type Service interface {
	GetStats(ctx context.Context) (*domain.AdminStats, error)
	ListOwners(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error)
	// GenerateCodes provisions a batch of inactive codes and returns their public URLs.
	GenerateCodes(ctx context.Context, count int) ([]domain.ProvisionedCode, error)
}

type service struct {
	repos   *repository.Repositories
	redis   *redis.Client
	siteURL string
	now     func() time.Time
}

func NewService(repos *repository.Repositories, redis *redis.Client, siteURL string) Service {
	return &service{
		repos:   repos,
		redis:   redis,
		siteURL: strings.TrimRight(siteURL, "/"),
		now:     time.Now,
	}
}

func (s *service) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats domain.AdminStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	users, err := s.repos.Owner.Count(ctx)
	if err != nil {
		return nil, err
	}

	inactive, err := s.repos.QRCode.CountByStatus(ctx, domain.QRStatusInactive)
	if err != nil {
		return nil, err
	}

	total, err := s.repos.Event.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	today := guard.StartOfDay(s.now())
	succeeded, err := s.repos.Attempt.CountByOutcomeSince(ctx, domain.AttemptSuccess, today)
	if err != nil {
		return nil, err
	}

	failed, err := s.repos.Attempt.CountByOutcomeSince(ctx, domain.AttemptFail, today)
	if err != nil {
		return nil, err
	}

	stats := &domain.AdminStats{
		Users:                users,
		SuccessfulRequests:   succeeded,
		UnsuccessfulRequests: failed,
		TotalRequests:        total,
		InactiveQRCount:      inactive,
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, statsCacheKey, statsJSON, statsCacheTTL).Err()
		}
	}

	return stats, nil
}

func (s *service) ListOwners(ctx context.Context, params domain.OffsetParams) ([]domain.OwnerSummary, error) {
	params.Validate()
	return s.repos.Owner.List(ctx, params)
}

func (s *service) GenerateCodes(ctx context.Context, count int) ([]domain.ProvisionedCode, error) {
	switch {
	case count <= 0:
		count = DefaultBatchSize
	case count > MaxBatchSize:
		count = MaxBatchSize
	}

	seen := make(map[string]bool, count)
	codes := make([]string, 0, count)
	stamp := strconv.FormatInt(s.now().UnixMilli(), 36)

	for len(codes) < count {
		suffix, err := randomBase36(6)
		if err != nil {
			return nil, err
		}
		code := fmt.Sprintf("ex%s%d%s", stamp, len(codes), suffix)
		if seen[code] {
			continue
		}

		exists, err := s.repos.QRCode.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		seen[code] = true
		codes = append(codes, code)
	}

	if err := s.repos.QRCode.CreateInactive(ctx, codes); err != nil {
		return nil, fmt.Errorf("failed to provision codes: %w", err)
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, statsCacheKey).Err()
	}

	out := make([]domain.ProvisionedCode, len(codes))
	for i, code := range codes {
		out[i] = domain.ProvisionedCode{Code: code, URL: s.siteURL + "/q/" + code}
	}
	return out, nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36[idx.Int64()])
	}
	return b.String(), nil
}
