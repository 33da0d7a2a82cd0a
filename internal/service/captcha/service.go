// Package captcha verifies hCaptcha response tokens against the provider's siteverify endpoint.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultVerifyURL = "https://hcaptcha.com/siteverify"

var (
	ErrRequired    = errors.New("captcha token required")
	ErrFailed      = errors.New("captcha verification failed")
	ErrUnavailable = errors.New("captcha provider unavailable")
)

type Config struct {
	Secret    string
	SiteKey   string
	VerifyURL string
	Timeout   time.Duration
}

type Service interface {
	// Enabled reports whether both the secret and the site key are configured.
	Enabled() bool
	SiteKey() string
	Verify(ctx context.Context, token, remoteIP string) error
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

type service struct {
	cfg Config
}

func NewService(cfg Config) Service {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultVerifyURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &service{cfg: cfg}
}

func (s *service) Enabled() bool {
	return s.cfg.Secret != "" && s.cfg.SiteKey != ""
}

func (s *service) SiteKey() string {
	if !s.Enabled() {
		return ""
	}
	return s.cfg.SiteKey
}

func (s *service) Verify(ctx context.Context, token, remoteIP string) error {
	if !s.Enabled() {
		return nil
	}
	if token == "" {
		return ErrRequired
	}

	timeout := s.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("%w: %v", ErrUnavailable, context.DeadlineExceeded)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("secret", s.cfg.Secret)
	args.Set("response", token)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	var resp verifyResponse
	code, _, errs := fiber.Post(s.cfg.VerifyURL).Form(args).Timeout(timeout).Struct(&resp)
	if len(errs) > 0 {
		log.Printf("[captcha] verify request failed: %v", errs[0])
		return fmt.Errorf("%w: %v", ErrUnavailable, errs[0])
	}
	if code >= 500 {
		log.Printf("[captcha] provider returned status %d", code)
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}

	if !resp.Success {
		return ErrFailed
	}
	return nil
}
