package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

type sqliteRow struct {
	ID        string `db:"id"`
	Body      string `db:"body"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r sqliteRow) record() Record {
	rec := Record{ID: r.ID, Body: json.RawMessage(r.Body)}
	rec.CreatedAt, _ = time.Parse(sqliteTimeLayout, r.CreatedAt)
	rec.UpdatedAt, _ = time.Parse(sqliteTimeLayout, r.UpdatedAt)
	return rec
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite", dbPath+sep+"_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(sqliteTimeLayout)
}

func (s *SQLiteStore) Add(ctx context.Context, c Collection, id string, body json.RawMessage) error {
	now := s.stamp()
	res, err := s.db.ExecContext(ctx, qSQLiteInsert, string(c), id, string(body), now, now)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", c, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrDuplicate)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, c Collection, id string, body json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, qSQLiteUpdate, string(body), s.stamp(), string(c), id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, c Collection, id string) error {
	res, err := s.db.ExecContext(ctx, qSQLiteDelete, string(c), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, c Collection, id string) (Record, error) {
	var row sqliteRow
	if err := s.db.GetContext(ctx, &row, qSQLiteGet, string(c), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
		}
		return Record{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	return row.record(), nil
}

func (s *SQLiteStore) FindByField(ctx context.Context, c Collection, field, value string) ([]Record, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, qSQLiteFind, string(c), field, value); err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", c, field, err)
	}
	return sqliteRecords(rows), nil
}

func (s *SQLiteStore) GetAll(ctx context.Context, c Collection) ([]Record, error) {
	var rows []sqliteRow
	if err := s.db.SelectContext(ctx, &rows, qSQLiteAll, string(c)); err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	return sqliteRecords(rows), nil
}

func sqliteRecords(rows []sqliteRow) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out
}
