// Package telegram delivers notifications through a Telegram bot to the owner's @handle.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"exelix/internal/domain"
)

type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Sender struct {
	bot BotAPI
}

// NewBot connects to the Bot API. An empty token yields a nil bot and a disabled sender.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, nil
	}
	return tgbotapi.NewBotAPI(token)
}

func NewSender(bot *tgbotapi.BotAPI) *Sender {
	if bot == nil {
		return &Sender{}
	}
	log.Printf("[telegram] bot authorized as @%s", bot.Self.UserName)
	return &Sender{bot: bot}
}

func NewSenderWithAPI(bot BotAPI) *Sender {
	return &Sender{bot: bot}
}

func (s *Sender) Name() string {
	return "telegram"
}

func (s *Sender) Enabled() bool {
	return s.bot != nil
}

func (s *Sender) Send(ctx context.Context, owner *domain.Owner, text string) error {
	if !s.Enabled() || !owner.HasTelegram() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessageToChannel(Handle(*owner.Telegram), text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send to %s: %w", msg.ChannelUsername, err)
	}
	return nil
}

// Handle normalizes a stored username into the @-prefixed form the Bot API expects.
func Handle(username string) string {
	username = strings.TrimSpace(username)
	if strings.HasPrefix(username, "@") {
		return username
	}
	return "@" + username
}
