package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"velo-registration/internal/config"
)

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	tab           string
	loc           *time.Location
}

// New authenticates with either a service-account JSON file or a client
// email + private key pair, whichever cfg carries.
func New(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	var creds option.ClientOption
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		if _, err := os.Stat(cfg.GoogleServiceAccountJSON); err != nil {
			return nil, fmt.Errorf("service account json: %w", err)
		}
		creds = option.WithCredentialsFile(cfg.GoogleServiceAccountJSON)
	case cfg.ClientEmail != "" && cfg.PrivateKey != "":
		jc := &jwt.Config{
			Email:      cfg.ClientEmail,
			PrivateKey: []byte(unescapeKey(cfg.PrivateKey)),
			Scopes:     []string{sheetsv4.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		creds = option.WithTokenSource(jc.TokenSource(ctx))
	default:
		return nil, fmt.Errorf("no google credentials configured")
	}

	return NewWithOptions(ctx, cfg.SpreadsheetID, cfg.Tab, loc, creds, option.WithScopes(sheetsv4.SpreadsheetsScope))
}

func NewWithOptions(ctx context.Context, spreadsheetID, tab string, loc *time.Location, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID, tab: tab, loc: loc}, nil
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// Keys pasted into env files usually carry literal "\n".
func unescapeKey(k string) string {
	return strings.ReplaceAll(k, `\n`, "\n")
}
