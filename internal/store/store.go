// Package store persists participant records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velo-registration/internal/config"
	"velo-registration/internal/models"
)

// ErrPersistence marks failures of the underlying storage. Callers check it
// with errors.Is; the wrapped error carries the detail.
var ErrPersistence = errors.New("persistence error")

// Store is the participant roster. Implementations assign ids and creation
// times themselves.
type Store interface {
	Insert(ctx context.Context, s models.Submission) (models.Participant, error)
	ListAll(ctx context.Context) ([]models.Participant, error)
	MarkAllSeen(ctx context.Context) error
	DeleteByID(ctx context.Context, id int64) error
	// DeleteMany removes every listed id or, on failure, none of them.
	DeleteMany(ctx context.Context, ids []int64) error
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.DatabaseURL)
	case "postgres":
		return OpenPostgres(ctx, cfg.DatabaseURL, cfg.ConnectWait)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func now() time.Time {
	return time.Now().UTC()
}
