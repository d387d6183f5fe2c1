package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, c Collection, id string, body json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, qPostgresInsert, string(c), id, string(body), s.now().UTC())
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", c, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrDuplicate)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c Collection, id string, body json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, qPostgresUpdate, string(c), id, string(body), s.now().UTC())
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", c, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, c Collection, id string) error {
	tag, err := s.pool.Exec(ctx, qPostgresDelete, string(c), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, c Collection, id string) (Record, error) {
	var (
		rec  Record
		body string
	)
	err := s.pool.QueryRow(ctx, qPostgresGet, string(c), id).Scan(&rec.ID, &body, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%s/%s: %w", c, id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s/%s: %w", c, id, err)
	}
	rec.Body = json.RawMessage(body)
	return rec, nil
}

func (s *PostgresStore) FindByField(ctx context.Context, c Collection, field, value string) ([]Record, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	return s.query(ctx, qPostgresFind, string(c), field, value)
}

func (s *PostgresStore) GetAll(ctx context.Context, c Collection) ([]Record, error) {
	return s.query(ctx, qPostgresAll, string(c))
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec  Record
			body string
		)
		if err := rows.Scan(&rec.ID, &body, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Body = json.RawMessage(body)
		out = append(out, rec)
	}
	return out, rows.Err()
}
