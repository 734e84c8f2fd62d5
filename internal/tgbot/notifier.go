// Package tgbot alerts organisers in Telegram about new registrations.
package tgbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"velo-registration/internal/config"
	"velo-registration/internal/models"
)

// sendGap keeps bursts under Telegram's per-bot flood limit.
const sendGap = 35 * time.Millisecond

type Notifier struct {
	bot      *tgbotapi.BotAPI
	adminIDs []int64
	log      logrus.FieldLogger
}

func New(cfg config.TelegramConfig, log logrus.FieldLogger) (*Notifier, error) {
	return NewWithEndpoint(cfg.Token, tgbotapi.APIEndpoint, &http.Client{Timeout: 15 * time.Second}, cfg.AdminTGIDs, log)
}

// NewWithEndpoint talks to a custom Bot API endpoint (format "<base>/bot%s/%s").
func NewWithEndpoint(token, endpoint string, client *http.Client, adminIDs []int64, log logrus.FieldLogger) (*Notifier, error) {
	b, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	log.WithField("bot", b.Self.UserName).Info("telegram alerts enabled")
	return &Notifier{bot: b, adminIDs: adminIDs, log: log}, nil
}

func (n *Notifier) Name() string { return "telegram" }

// Mirror sends the registration to every admin chat. A failed chat does not
// stop the others; all failures are returned together. It returns as soon as
// ctx is done, even if a send is still in flight.
func (n *Notifier) Mirror(ctx context.Context, p models.Participant) error {
	text := Alert(p)
	var errs []error
	for i, id := range n.adminIDs {
		if i > 0 {
			if err := pause(ctx, sendGap); err != nil {
				errs = append(errs, err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := n.send(ctx, id, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := n.bot.Send(msg)
	return err
}

// send is SendText bounded by ctx. The Bot API client takes no context, so an
// abandoned request finishes in the background under the http.Client timeout.
func (n *Notifier) send(ctx context.Context, chatID int64, text string) error {
	done := make(chan error, 1)
	go func() { done <- n.SendText(chatID, text) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Alert renders the admin message for one registration.
func Alert(p models.Participant) string {
	club := p.Club
	if strings.TrimSpace(club) == "" {
		club = "—"
	}
	return fmt.Sprintf("🚴 Nauja registracija #%d\n%s %s (%s)\n%s\nKlubas: %s",
		p.ID, p.FirstName, p.LastName, p.Gender, p.Email, club,
	)
}
