// Package store persists users, companies, reports and sessions as JSON
// documents grouped by collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Collection string

const (
	Users     Collection = "users"
	Companies Collection = "companies"
	Reports   Collection = "reports"
	Sessions  Collection = "sessions"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Record struct {
	ID        string
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the record store every service writes through. GetAll and
// FindByField return records in insertion order.
type Store interface {
	Add(ctx context.Context, c Collection, id string, body json.RawMessage) error
	Update(ctx context.Context, c Collection, id string, body json.RawMessage) error
	Delete(ctx context.Context, c Collection, id string) error
	Get(ctx context.Context, c Collection, id string) (Record, error)
	// FindByField matches a top-level string field of the stored document.
	FindByField(ctx context.Context, c Collection, field, value string) ([]Record, error)
	GetAll(ctx context.Context, c Collection) ([]Record, error)
	Close() error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func checkField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}

// Open picks a backend from the DSN: "memory", a postgres:// URL, or a SQLite path.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (Store, error) {
	switch {
	case dsn == "memory" || dsn == ":memory:":
		logger.Info("using in-memory record store")
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		logger.Info("using postgres record store")
		return NewPostgresStore(ctx, dsn)
	default:
		logger.Info("using sqlite record store", zap.String("path", dsn))
		return NewSQLiteStore(dsn)
	}
}
