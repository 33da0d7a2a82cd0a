// Package push delivers notifications as Web Push messages signed with the server's VAPID keys.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"exelix/internal/domain"
)

const messageTTL = 60 * 60

type Config struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

type Sender struct {
	cfg    Config
	client webpush.HTTPClient
}

func NewSender(cfg Config) *Sender {
	cfg.Subscriber = strings.TrimPrefix(cfg.Subscriber, "mailto:")
	return &Sender{cfg: cfg}
}

// WithHTTPClient overrides the transport used to reach push services.
func (s *Sender) WithHTTPClient(client webpush.HTTPClient) *Sender {
	s.client = client
	return s
}

func (s *Sender) Name() string {
	return "push"
}

func (s *Sender) Enabled() bool {
	return s.cfg.PublicKey != "" && s.cfg.PrivateKey != ""
}

func (s *Sender) Send(ctx context.Context, owner *domain.Owner, text string) error {
	if !s.Enabled() || !owner.HasPushSubscription() {
		return nil
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(*owner.PushSubscription), &sub); err != nil {
		return fmt.Errorf("invalid push subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return fmt.Errorf("invalid push subscription: missing endpoint")
	}

	resp, err := webpush.SendNotificationWithContext(ctx, []byte(text), &sub, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             messageTTL,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
