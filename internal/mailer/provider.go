// Package mailer hands admin messages to participants off to a provider.
// None of the providers confirm delivery.
package mailer

import (
	"context"
	"errors"
	"strings"
)

var ErrNoRecipients = errors.New("no recipients")

type Message struct {
	Recipients []string
	Subject    string
	Body       string
}

// Result describes what the provider did with a message. ComposeURL is set
// when the client is expected to finish sending itself.
type Result struct {
	Provider   string `json:"provider"`
	Simulated  bool   `json:"simulated"`
	ComposeURL string `json:"mailto,omitempty"`
}

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (Result, error)
}

// Clean trims recipients and drops blanks; a message with nobody left is
// rejected with ErrNoRecipients.
func Clean(msg Message) (Message, error) {
	out := Message{Subject: strings.TrimSpace(msg.Subject), Body: msg.Body}
	for _, r := range msg.Recipients {
		r = strings.TrimSpace(r)
		if r != "" {
			out.Recipients = append(out.Recipients, r)
		}
	}
	if len(out.Recipients) == 0 {
		return out, ErrNoRecipients
	}
	return out, nil
}
