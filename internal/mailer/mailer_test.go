package mailer

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velo-registration/internal/config"
)

func newProvider(t *testing.T, name string) (Provider, *test.Hook) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Mail.Provider = name
	log, hook := test.NewNullLogger()
	p, err := NewProvider(cfg, log)
	require.NoError(t, err)
	return p, hook
}

func TestStubLogsAndSucceeds(t *testing.T) {
	p, hook := newProvider(t, "stub")
	assert.Equal(t, "stub", p.Name())

	res, err := p.Send(context.Background(), Message{
		Recipients: []string{"a@x.lt", " b@x.lt ", ""},
		Subject:    "Startas",
		Body:       "Iki pasimatymo starte!",
	})
	require.NoError(t, err)
	assert.True(t, res.Simulated)
	assert.Empty(t, res.ComposeURL)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "a@x.lt, b@x.lt", entry.Data["to"])
	assert.Equal(t, 2, entry.Data["recipients"])
	assert.Equal(t, "Startas", entry.Data["subject"])
}

func TestMailtoBuildsLink(t *testing.T) {
	p, hook := newProvider(t, "mailto")

	res, err := p.Send(context.Background(), Message{
		Recipients: []string{"a@x.lt", "b@x.lt"},
		Subject:    "Startas rytoj",
		Body:       "Labas",
	})
	require.NoError(t, err)
	assert.False(t, res.Simulated)
	assert.Equal(t, "mailto", res.Provider)
	assert.Equal(t, "mailto:?bcc=a%40x.lt%2Cb%40x.lt&subject=Startas%20rytoj&body=Labas", res.ComposeURL)
	assert.Empty(t, hook.AllEntries())
}

func TestNoRecipients(t *testing.T) {
	for _, name := range []string{"stub", "mailto"} {
		t.Run(name, func(t *testing.T) {
			p, _ := newProvider(t, name)
			_, err := p.Send(context.Background(), Message{Recipients: []string{" "}, Subject: "x"})
			assert.ErrorIs(t, err, ErrNoRecipients)
		})
	}
}

func TestUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Mail.Provider = "sendgrid"
	log, _ := test.NewNullLogger()

	_, err := NewProvider(cfg, log)
	assert.EqualError(t, err, "unknown mail provider: sendgrid")
}
