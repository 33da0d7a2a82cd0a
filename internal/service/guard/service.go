// Package guard decides whether an anonymous sender may notify an owner right now.
// It combines a per-key send delay, a per-sender daily quota split into regular
// and critical tags, and a per-owner daily quota. Each check can veto on its own.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"exelix/internal/domain"
	"exelix/internal/repository"
)

var (
	ErrTooFast       = errors.New("send delay has not elapsed")
	ErrLimitRegular  = errors.New("sender regular daily limit reached")
	ErrLimitCritical = errors.New("sender critical daily limit reached")
	ErrOwnerLimit    = errors.New("owner daily limit reached")
)

type Limits struct {
	SendDelay      time.Duration
	SenderRegular  int
	SenderCritical int
	OwnerPerDay    int
}

func DefaultLimits() Limits {
	return Limits{
		SendDelay:      4 * time.Second,
		SenderRegular:  3,
		SenderCritical: 2,
		OwnerPerDay:    10,
	}
}

type Service interface {
	CheckThrottle(ctx context.Context, key domain.ThrottleKey) error
	CheckSenderQuota(ctx context.Context, key domain.ThrottleKey, types domain.NotificationTypes) error
	CheckOwnerQuota(ctx context.Context, qrCodeID uuid.UUID) error
	// MarkSent claims the throttle window for key. ErrTooFast means a concurrent send won it.
	MarkSent(ctx context.Context, key domain.ThrottleKey) error
}

type service struct {
	eventRepo    repository.NotificationEventRepository
	throttleRepo repository.ThrottleRepository
	limits       Limits
	now          func() time.Time
}

func NewService(eventRepo repository.NotificationEventRepository, throttleRepo repository.ThrottleRepository, limits Limits) Service {
	return NewServiceWithClock(eventRepo, throttleRepo, limits, time.Now)
}

func NewServiceWithClock(eventRepo repository.NotificationEventRepository, throttleRepo repository.ThrottleRepository, limits Limits, now func() time.Time) Service {
	return &service{
		eventRepo:    eventRepo,
		throttleRepo: throttleRepo,
		limits:       limits,
		now:          now,
	}
}

func (s *service) CheckThrottle(ctx context.Context, key domain.ThrottleKey) error {
	last, err := s.throttleRepo.LastSentAt(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read throttle mark: %w", err)
	}
	if last == nil {
		return nil
	}

	if s.now().Sub(*last) < s.limits.SendDelay {
		return ErrTooFast
	}
	return nil
}

// CheckSenderQuota counts today's tags from the same (ip, fingerprint) plus the incoming ones.
// A sender may reach a limit exactly but never exceed it.
func (s *service) CheckSenderQuota(ctx context.Context, key domain.ThrottleKey, types domain.NotificationTypes) error {
	history, err := s.eventRepo.ListSenderTypesSince(ctx, key.SenderIP, key.Fingerprint, StartOfDay(s.now()))
	if err != nil {
		return fmt.Errorf("failed to load sender history: %w", err)
	}

	regular, critical := types.Split()
	for _, past := range history {
		r, c := past.Split()
		regular += r
		critical += c
	}

	if regular > s.limits.SenderRegular {
		return ErrLimitRegular
	}
	if critical > s.limits.SenderCritical {
		return ErrLimitCritical
	}
	return nil
}

func (s *service) CheckOwnerQuota(ctx context.Context, qrCodeID uuid.UUID) error {
	count, err := s.eventRepo.CountForQRCodeSince(ctx, qrCodeID, StartOfDay(s.now()))
	if err != nil {
		return fmt.Errorf("failed to count owner events: %w", err)
	}

	if count >= int64(s.limits.OwnerPerDay) {
		return ErrOwnerLimit
	}
	return nil
}

func (s *service) MarkSent(ctx context.Context, key domain.ThrottleKey) error {
	claimed, err := s.throttleRepo.Claim(ctx, key, s.now(), s.limits.SendDelay)
	if err != nil {
		return fmt.Errorf("failed to store throttle mark: %w", err)
	}
	if !claimed {
		return ErrTooFast
	}
	return nil
}

// StartOfDay is midnight UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
