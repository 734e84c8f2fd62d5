package stub

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"velo-registration/internal/util"
)

// Provider pretends to send: it logs what would have gone out and reports
// success. No mail transport is contacted.
type Provider struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Provider {
	return &Provider{log: log}
}

func (p *Provider) Name() string { return "stub" }

func (p *Provider) Send(ctx context.Context, recipients []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"to":         strings.Join(recipients, ", "),
		"recipients": len(recipients),
		"subject":    subject,
		"message":    body,
		"queued_at":  util.NowISO(),
	}).Info("email send simulated")
	return nil
}
