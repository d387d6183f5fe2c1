package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_records_created ON records(collection, created_at);
`

const (
	qSQLiteInsert = `INSERT INTO records (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT (collection, id) DO NOTHING`
	qSQLiteUpdate = `UPDATE records SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`
	qSQLiteDelete = `DELETE FROM records WHERE collection = ? AND id = ?`
	qSQLiteGet    = `SELECT id, body, created_at, updated_at FROM records WHERE collection = ? AND id = ?`
	qSQLiteAll    = `SELECT id, body, created_at, updated_at FROM records WHERE collection = ? ORDER BY created_at, rowid`
	qSQLiteFind   = `SELECT id, body, created_at, updated_at FROM records
		WHERE collection = ? AND json_extract(body, '$.' || ?) = ? ORDER BY created_at, rowid`
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS records (
	seq        BIGSERIAL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_records_created ON records(collection, created_at, seq);
`

const (
	qPostgresInsert = `INSERT INTO records (collection, id, body, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $4) ON CONFLICT (collection, id) DO NOTHING`
	qPostgresUpdate = `UPDATE records SET body = $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`
	qPostgresDelete = `DELETE FROM records WHERE collection = $1 AND id = $2`
	qPostgresGet    = `SELECT id, body::text, created_at, updated_at FROM records WHERE collection = $1 AND id = $2`
	qPostgresAll    = `SELECT id, body::text, created_at, updated_at FROM records WHERE collection = $1 ORDER BY created_at, seq`
	qPostgresFind   = `SELECT id, body::text, created_at, updated_at FROM records
		WHERE collection = $1 AND body->>$2 = $3 ORDER BY created_at, seq`
)
