package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"velo-registration/internal/config"
	"velo-registration/internal/mailer/mailto"
	"velo-registration/internal/mailer/stub"
)

func NewProvider(cfg config.Config, log logrus.FieldLogger) (Provider, error) {
	switch cfg.Mail.Provider {
	case "stub":
		return stubProvider{stub.New(log)}, nil
	case "mailto":
		return mailtoProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.Mail.Provider)
	}
}

type stubProvider struct {
	p *stub.Provider
}

func (s stubProvider) Name() string { return s.p.Name() }

func (s stubProvider) Send(ctx context.Context, msg Message) (Result, error) {
	msg, err := Clean(msg)
	if err != nil {
		return Result{}, err
	}
	if err := s.p.Send(ctx, msg.Recipients, msg.Subject, msg.Body); err != nil {
		return Result{}, err
	}
	return Result{Provider: s.Name(), Simulated: true}, nil
}

type mailtoProvider struct{}

func (mailtoProvider) Name() string { return mailto.Name }

func (m mailtoProvider) Send(_ context.Context, msg Message) (Result, error) {
	msg, err := Clean(msg)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Provider:   m.Name(),
		ComposeURL: mailto.Link(msg.Recipients, msg.Subject, msg.Body),
	}, nil
}
