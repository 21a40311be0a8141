package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allspots/spots-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS spots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListPage(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "fields"}).
		AddRow("a", []byte(`{"name":"Tour Eiffel"}`)).
		AddRow("b", []byte(`{"name":"Louvre"}`))
	mock.ExpectQuery(`SELECT id, fields FROM spots WHERE id > \$1 ORDER BY id LIMIT \$2`).
		WithArgs("", 10).
		WillReturnRows(rows)

	page, err := s.ListPage(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].ID)
	assert.Equal(t, "Tour Eiffel", page[0].Fields["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BatchMerge(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	eb := mock.ExpectBatch()
	eb.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("a", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	eb.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("b", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.BatchMerge(context.Background(), []model.Record{
		{ID: "a", Fields: map[string]any{"name": "A"}},
		{ID: "b", Fields: map[string]any{"name": "B", "importedAt": ServerTimestamp}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BatchDelete(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	eb := mock.ExpectBatch()
	eb.ExpectExec(`DELETE FROM spots WHERE id = \$1`).
		WithArgs("a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	eb.ExpectExec(`DELETE FROM spots WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.BatchDelete(context.Background(), []string{"a", "missing"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EmptyBatchesAreNoOps(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.BatchMerge(context.Background(), nil))
	require.NoError(t, s.BatchDelete(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BatchSizeCeiling(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	docs := make([]model.Record, MaxBatchOps+1)
	for i := range docs {
		docs[i] = model.Record{ID: "x", Fields: map[string]any{}}
	}
	assert.Error(t, s.BatchMerge(context.Background(), docs))
}
