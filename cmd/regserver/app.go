package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"velo-registration/internal/auth"
	"velo-registration/internal/config"
	"velo-registration/internal/mailer"
	"velo-registration/internal/metrics"
	"velo-registration/internal/registration"
	"velo-registration/internal/roster"
	"velo-registration/internal/server"
	"velo-registration/internal/sheets"
	"velo-registration/internal/store"
	"velo-registration/internal/tgbot"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
	return log, nil
}

// sinks builds the best-effort copies of each registration. A sink that
// cannot be set up is skipped with a warning; registration still works.
func sinks(ctx context.Context, cfg config.Config, log logrus.FieldLogger) []registration.Sink {
	var out []registration.Sink

	if cfg.SheetsEnabled() {
		sc, err := sheets.New(ctx, cfg.Sheets)
		if err != nil {
			log.WithError(err).Warn("google sheets mirror disabled")
		} else {
			hctx, cancel := context.WithTimeout(ctx, cfg.Mirror.Timeout)
			wrote, err := sc.EnsureHeaders(hctx)
			cancel()
			if err != nil {
				log.WithError(err).Warn("could not check sheet header row")
			} else if wrote {
				log.WithField("tab", cfg.Sheets.Tab).Info("sheet header row written")
			}
			out = append(out, sc)
		}
	} else {
		log.Warn("google sheets not configured; mirror skipped")
	}

	if cfg.TelegramEnabled() {
		n, err := tgbot.New(cfg.Telegram, log)
		if err != nil {
			log.WithError(err).Warn("telegram alerts disabled")
		} else {
			out = append(out, n)
		}
	}
	return out
}

type app struct {
	store store.Store
	deps  server.Deps
}

func build(ctx context.Context, cfg config.Config, log *logrus.Logger) (*app, error) {
	loc, err := time.LoadLocation(cfg.Sheets.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	mail, err := mailer.NewProvider(cfg, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	sessions, err := auth.NewSessions(cfg.Admin, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	m := metrics.New()
	return &app{
		store: st,
		deps: server.Deps{
			Registration: registration.NewService(st, sinks(ctx, cfg, log), cfg.Mirror.Timeout, log, m),
			Roster:       roster.NewService(st, log, m, loc),
			Mailer:       mail,
			Sessions:     sessions,
			Metrics:      m,
			Log:          log,
		},
	}, nil
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.store.Close()

	httpSrv := server.New(cfg, a.deps)
	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":  cfg.HTTPAddr,
			"store": cfg.Store.Driver,
			"mail":  cfg.Mail.Provider,
		}).Info("HTTP listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("bye")
	return nil
}

func runExport(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Sheets.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	log, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return roster.NewService(st, log, nil, loc).WriteCSV(ctx, w)
}
