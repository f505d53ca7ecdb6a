package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMigrateDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestRunMigrations_OrderAndSkipExisting(t *testing.T) {
	db, mock := setupMigrateDB(t)
	files := fstest.MapFS{
		"migrations/0002_b.up.sql":   {Data: []byte("CREATE TABLE b (id NUMBER);\n")},
		"migrations/0001_a.up.sql":   {Data: []byte("CREATE TABLE a (id NUMBER)")},
		"migrations/0001_a.down.sql": {Data: []byte("DROP TABLE a")},
	}

	mock.ExpectExec("CREATE TABLE a (id NUMBER)").
		WillReturnError(errors.New("ORA-00955: name is already used by an existing object"))
	mock.ExpectExec("CREATE TABLE b (id NUMBER)").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, runMigrations(context.Background(), db, files, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Failure(t *testing.T) {
	db, mock := setupMigrateDB(t)
	files := fstest.MapFS{
		"migrations/0001_a.up.sql": {Data: []byte("CREATE TABLE a (id NUMBER)")},
	}

	mock.ExpectExec("CREATE TABLE a (id NUMBER)").
		WillReturnError(errors.New("ORA-01031: insufficient privileges"))

	err := runMigrations(context.Background(), db, files, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_a.up.sql")
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/0001_create_survey_runs.up.sql",
		"migrations/0002_create_survey_responses.up.sql",
	}, names)
}
