// Package admission decides whether an anonymous notification request is accepted,
// commits it to the ledger, and hands the owner off to background delivery.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"exelix/internal/domain"
	"exelix/internal/repository"
	"exelix/internal/service/captcha"
	"exelix/internal/service/guard"
)

type Request struct {
	QRCode       string   `json:"qrCode"`
	Types        []string `json:"types"`
	Fingerprint  string   `json:"fingerprint"`
	CaptchaToken string   `json:"hcaptchaToken"`
	SenderIP     string   `json:"-"`
}

type Dispatcher interface {
	Dispatch(owner domain.Owner, types domain.NotificationTypes)
}

type Service interface {
	// Submit returns nil when the notification was accepted and *Rejection for a client-facing refusal.
	// Any other error is an infrastructure failure.
	Submit(ctx context.Context, req Request) error
	// RecordRejected counts a send refused before it reached Submit, such as by the API rate limiter.
	RecordRejected(ctx context.Context, senderIP string)
}

type service struct {
	qrRepo      repository.QRCodeRepository
	ownerRepo   repository.OwnerRepository
	eventRepo   repository.NotificationEventRepository
	attemptRepo repository.SendAttemptRepository
	guard       guard.Service
	captcha     captcha.Service
	dispatcher  Dispatcher
}

func NewService(
	repos *repository.Repositories,
	guardSvc guard.Service,
	captchaSvc captcha.Service,
	dispatcher Dispatcher,
) Service {
	return &service{
		qrRepo:      repos.QRCode,
		ownerRepo:   repos.Owner,
		eventRepo:   repos.Event,
		attemptRepo: repos.Attempt,
		guard:       guardSvc,
		captcha:     captchaSvc,
		dispatcher:  dispatcher,
	}
}

func (s *service) Submit(ctx context.Context, req Request) error {
	committed := false
	defer func() {
		if !committed {
			s.recordAttempt(ctx, req.SenderIP, domain.AttemptFail)
		}
	}()

	code := strings.TrimSpace(req.QRCode)
	if code == "" || len(req.Types) == 0 {
		return reject(KindInvalidRequest).withMessage("qrCode and types[] required")
	}

	types := domain.ParseNotificationTypes(req.Types)
	if len(types) == 0 {
		return reject(KindInvalidTypes)
	}

	var fingerprint *string
	if fp := strings.TrimSpace(req.Fingerprint); fp != "" {
		fingerprint = &fp
	}
	key := domain.ThrottleKey{SenderIP: req.SenderIP, Fingerprint: fingerprint}

	if err := s.guard.CheckThrottle(ctx, key); err != nil {
		return guardRejection(err)
	}

	if err := s.captcha.Verify(ctx, req.CaptchaToken, req.SenderIP); err != nil {
		return captchaRejection(err)
	}

	if err := s.guard.CheckSenderQuota(ctx, key, types); err != nil {
		return guardRejection(err)
	}

	qr, err := s.qrRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to resolve qr code: %w", err)
	}
	if qr == nil || !qr.IsActive() {
		return reject(KindQRNotFound)
	}

	owner, err := s.ownerRepo.GetByQRCodeID(ctx, qr.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve owner: %w", err)
	}
	if owner == nil {
		log.Printf("[admission] active qr code %s has no owner", qr.ID)
		return reject(KindNoOwner)
	}

	if err := s.guard.CheckOwnerQuota(ctx, qr.ID); err != nil {
		return guardRejection(err)
	}

	if err := s.guard.MarkSent(ctx, key); err != nil {
		return guardRejection(err)
	}

	event := domain.NewNotificationEvent(qr.ID, req.SenderIP, fingerprint, types)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to store notification event: %w", err)
	}
	committed = true

	s.recordAttempt(ctx, req.SenderIP, domain.AttemptSuccess)
	s.dispatcher.Dispatch(*owner, types)

	return nil
}

func (s *service) RecordRejected(ctx context.Context, senderIP string) {
	s.recordAttempt(ctx, senderIP, domain.AttemptFail)
}

func (s *service) recordAttempt(ctx context.Context, ip string, outcome domain.AttemptOutcome) {
	if err := s.attemptRepo.Create(context.WithoutCancel(ctx), ip, outcome); err != nil {
		log.Printf("[admission] failed to record %s attempt from %s: %v", outcome, ip, err)
	}
}

func guardRejection(err error) error {
	switch {
	case errors.Is(err, guard.ErrTooFast):
		return reject(KindTooFast).withMessage("SEND_DELAY")
	case errors.Is(err, guard.ErrLimitRegular):
		return reject(KindSenderLimit).withCode(CodeLimitRegular).withMessage("LIMIT_REACHED")
	case errors.Is(err, guard.ErrLimitCritical):
		return reject(KindSenderLimit).withCode(CodeLimitCritical).withMessage("LIMIT_REACHED")
	case errors.Is(err, guard.ErrOwnerLimit):
		return reject(KindOwnerLimit).withMessage("OWNER_LIMIT_REACHED")
	default:
		return err
	}
}

func captchaRejection(err error) error {
	switch {
	case errors.Is(err, captcha.ErrRequired):
		return reject(KindCaptchaRequired)
	case errors.Is(err, captcha.ErrFailed):
		return reject(KindCaptchaFailed)
	case errors.Is(err, captcha.ErrUnavailable):
		return reject(KindCaptchaError)
	default:
		return err
	}
}
