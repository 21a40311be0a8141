package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/allspots/spots-cli/internal/db"
	"github.com/allspots/spots-cli/internal/model"
)

// PostgresStore implements DocStore using pgxpool with a jsonb document
// column. Merge upserts rely on jsonb concatenation, so keeper tagging and
// re-imports only touch the fields they carry.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests with pgxmock).
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS spots (
	id     TEXT PRIMARY KEY,
	fields JSONB NOT NULL
)`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListPage(ctx context.Context, afterID string, limit int) ([]model.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fields FROM spots WHERE id > $1 ORDER BY id LIMIT $2`,
		afterID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list page")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var fieldsJSON []byte
		if err := rows.Scan(&rec.ID, &fieldsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan spot")
		}
		if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal spot %s", rec.ID)
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list page iterate")
}

func (s *PostgresStore) BatchMerge(ctx context.Context, docs []model.Record) error {
	if err := checkBatchSize(len(docs), "merge"); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	now := time.Now()
	batch := &pgx.Batch{}
	for _, doc := range docs {
		payload, err := json.Marshal(resolveServerTimestamps(doc.Fields, now))
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal spot %s", doc.ID)
		}
		batch.Queue(
			`INSERT INTO spots (id, fields) VALUES ($1, $2::jsonb)
			 ON CONFLICT (id) DO UPDATE SET fields = spots.fields || excluded.fields`,
			doc.ID, string(payload),
		)
	}
	return s.sendBatch(ctx, batch, "merge")
}

func (s *PostgresStore) BatchDelete(ctx context.Context, ids []string) error {
	if err := checkBatchSize(len(ids), "delete"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(`DELETE FROM spots WHERE id = $1`, id)
	}
	return s.sendBatch(ctx, batch, "delete")
}

func (s *PostgresStore) sendBatch(ctx context.Context, batch *pgx.Batch, op string) error {
	br := s.pool.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return eris.Wrapf(err, "postgres: %s batch op %d", op, i)
		}
	}
	return eris.Wrapf(br.Close(), "postgres: close %s batch", op)
}
