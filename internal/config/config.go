package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"velo-registration/internal/util"
)

type Config struct {
	HTTPAddr  string `yaml:"http_addr"`
	StaticDir string `yaml:"static_dir"`

	Store    StoreConfig    `yaml:"store"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Mirror   MirrorConfig   `yaml:"mirror"`
	Admin    AdminConfig    `yaml:"admin"`
	Mail     MailConfig     `yaml:"mail"`
	Log      LogConfig      `yaml:"log"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type StoreConfig struct {
	// Driver is one of sqlite, postgres, memory.
	Driver      string        `yaml:"driver"`
	DatabaseURL string        `yaml:"database_url"`
	ConnectWait time.Duration `yaml:"connect_wait"`
}

type SheetsConfig struct {
	SpreadsheetID            string `yaml:"spreadsheet_id"`
	Tab                      string `yaml:"tab"`
	GoogleServiceAccountJSON string `yaml:"service_account_json"`
	ClientEmail              string `yaml:"client_email"`
	PrivateKey               string `yaml:"private_key"`
	Timezone                 string `yaml:"timezone"`
}

type MirrorConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type AdminConfig struct {
	Password      string        `yaml:"password"`
	PasswordHash  string        `yaml:"password_hash"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieSecure  bool          `yaml:"cookie_secure"`
}

type MailConfig struct {
	Provider string `yaml:"provider"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TelegramConfig struct {
	Token      string  `yaml:"token"`
	AdminTGIDs []int64 `yaml:"admin_tg_ids"`
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:  ":3000",
		StaticDir: "dist",
		Store: StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: "participants.db",
			ConnectWait: 30 * time.Second,
		},
		Sheets: SheetsConfig{
			Tab:      "Dalyviai",
			Timezone: "Europe/Vilnius",
		},
		Mirror: MirrorConfig{Timeout: 10 * time.Second},
		Admin:  AdminConfig{SessionTTL: 12 * time.Hour},
		Mail:   MailConfig{Provider: "stub"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the optional YAML file, then
// the environment.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		var err error
		c, err = LoadFromFile(path)
		if err != nil {
			return c, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func LoadFromFile(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config file: %w", err)
	}
	return c, nil
}

// FromEnv is Load without a config file.
func FromEnv() (Config, error) {
	return Load("")
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.StaticDir, "STATIC_DIR")

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")

	setString(&c.Sheets.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if env("GOOGLE_SHEETS_SPREADSHEET_ID") == "" {
		// Older deployments name it GOOGLE_SHEET_ID.
		setString(&c.Sheets.SpreadsheetID, "GOOGLE_SHEET_ID")
	}
	setString(&c.Sheets.Tab, "GOOGLE_SHEET_TAB")
	setString(&c.Sheets.GoogleServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_JSON")
	setString(&c.Sheets.ClientEmail, "GOOGLE_CLIENT_EMAIL")
	setString(&c.Sheets.PrivateKey, "GOOGLE_PRIVATE_KEY")
	setString(&c.Sheets.Timezone, "TIMEZONE")

	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&c.Admin.SessionSecret, "SESSION_SECRET")
	if v := env("COOKIE_SECURE"); v != "" {
		c.Admin.CookieSecure = util.NormalizeBool(v)
	}

	setString(&c.Mail.Provider, "MAIL_PROVIDER")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")

	for name, dst := range map[string]*time.Duration{
		"MIRROR_TIMEOUT":  &c.Mirror.Timeout,
		"SESSION_TTL":     &c.Admin.SessionTTL,
		"DB_CONNECT_WAIT": &c.Store.ConnectWait,
	} {
		v := env(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v := env("ADMIN_TG_IDS"); v != "" {
		c.Telegram.AdminTGIDs = parseAdminIDs(v)
	}
	return nil
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is empty")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is empty")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	if c.Mirror.Timeout <= 0 {
		return fmt.Errorf("mirror timeout must be positive")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

// SheetsEnabled reports whether there is enough to talk to Google Sheets.
func (c Config) SheetsEnabled() bool {
	if c.Sheets.SpreadsheetID == "" {
		return false
	}
	return c.Sheets.GoogleServiceAccountJSON != "" ||
		(c.Sheets.ClientEmail != "" && c.Sheets.PrivateKey != "")
}

func (c Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && len(c.Telegram.AdminTGIDs) > 0
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func setString(dst *string, name string) {
	if v := env(name); v != "" {
		*dst = v
	}
}

func parseAdminIDs(raw string) []int64 {
	ids := []int64{}
	for _, p := range util.SplitList(raw) {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, v)
	}
	return ids
}
