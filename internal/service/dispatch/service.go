// Package dispatch delivers an accepted notification to every channel the owner has configured.
// Delivery is best-effort: channel failures are logged and never reach the sender.
package dispatch

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"exelix/internal/domain"
	"exelix/internal/pkg/i18n"
)

const greetingKey = "greeting"

// Channel is one outbound delivery path. Send returns nil without doing anything
// when the channel is unconfigured or the owner has no address on it.
type Channel interface {
	Name() string
	Send(ctx context.Context, owner *domain.Owner, text string) error
}

type Service interface {
	Compose(lang domain.Lang, types domain.NotificationTypes) string
	// Deliver fans out to every channel and blocks until all of them finish.
	Deliver(ctx context.Context, owner *domain.Owner, types domain.NotificationTypes)
	// Dispatch runs Deliver in the background with its own deadline.
	Dispatch(owner domain.Owner, types domain.NotificationTypes)
	// Wait stops accepting new dispatches and blocks until in-flight ones have finished.
	Wait()
}

type service struct {
	catalog  *i18n.Catalog
	channels []Channel
	timeout  time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewService(catalog *i18n.Catalog, timeout time.Duration, channels ...Channel) Service {
	if catalog == nil {
		catalog = i18n.Default()
	}
	return &service{
		catalog:  catalog,
		channels: channels,
		timeout:  timeout,
	}
}

// Compose builds the greeting, a blank line, then one line per distinct tag.
// Tags missing from both the owner's locale and the fallback are dropped.
func (s *service) Compose(lang domain.Lang, types domain.NotificationTypes) string {
	locale := string(lang)
	if !s.catalog.HasLocale(locale) {
		locale = s.catalog.Fallback()
	}

	greeting, _ := s.catalog.Lookup(locale, greetingKey)

	lines := make([]string, 0, len(types))
	for _, t := range types.Unique() {
		if text, ok := s.catalog.Lookup(locale, string(t)); ok {
			lines = append(lines, text)
		}
	}

	return greeting + "\n\n" + strings.Join(lines, "\n")
}

func (s *service) Deliver(ctx context.Context, owner *domain.Owner, types domain.NotificationTypes) {
	if owner == nil || len(s.channels) == 0 {
		return
	}

	text := s.Compose(owner.Lang, types)

	var wg sync.WaitGroup
	for _, ch := range s.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			if err := ch.Send(ctx, owner, text); err != nil {
				log.Printf("[dispatch] %s delivery to owner %s failed: %v", ch.Name(), owner.ID, err)
			}
		}(ch)
	}
	wg.Wait()
}

func (s *service) Dispatch(owner domain.Owner, types domain.NotificationTypes) {
	types = append(domain.NotificationTypes(nil), types...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Printf("[dispatch] shutting down, dropped notification for owner %s", owner.ID)
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[dispatch] panic while notifying owner %s: %v", owner.ID, r)
			}
		}()

		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		s.Deliver(ctx, &owner, types)
	}()
}

func (s *service) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
}
