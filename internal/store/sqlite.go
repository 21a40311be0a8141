package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/allspots/spots-cli/internal/model"
)

// SQLiteStore implements DocStore using modernc.org/sqlite. Documents live
// in a single table as JSON blobs; merges use json_patch so a partial
// update (keeper tagging, re-import) never clobbers unrelated fields.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS spots (
	id     TEXT PRIMARY KEY,
	fields TEXT NOT NULL CHECK (json_valid(fields))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListPage(ctx context.Context, afterID string, limit int) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM spots WHERE id > ? ORDER BY id LIMIT ?`,
		afterID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list page")
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		var fieldsJSON string
		if err := rows.Scan(&rec.ID, &fieldsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan spot")
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal spot %s", rec.ID)
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list page iterate")
}

func (s *SQLiteStore) BatchMerge(ctx context.Context, docs []model.Record) error {
	if err := checkBatchSize(len(docs), "merge"); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin merge batch")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	for _, doc := range docs {
		payload, err := json.Marshal(resolveServerTimestamps(doc.Fields, now))
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal spot %s", doc.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO spots (id, fields) VALUES (?, json(?))
			 ON CONFLICT(id) DO UPDATE SET fields = json_patch(spots.fields, excluded.fields)`,
			doc.ID, string(payload),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: merge spot %s", doc.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit merge batch")
}

func (s *SQLiteStore) BatchDelete(ctx context.Context, ids []string) error {
	if err := checkBatchSize(len(ids), "delete"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin delete batch")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id); err != nil {
			return eris.Wrapf(err, "sqlite: delete spot %s", id)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit delete batch")
}
