package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func migrationsFS() fstest.MapFS {
	return fstest.MapFS{
		"0002_crypto.sql": {Data: []byte("CREATE TABLE wallets (user_id TEXT);")},
		"0001_init.sql":   {Data: []byte("CREATE TABLE posts (id TEXT);")},
		"README.md":       {Data: []byte("not a migration")},
		"old/0000.sql":    {Data: []byte("SELECT 1;")},
	}
}

func expectPrologue(mock sqlmock.Sqlmock, done ...string) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).
		WithArgs(migrationLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"name"})
	for _, name := range done {
		rows.AddRow(name)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM schema_migrations")).WillReturnRows(rows)
}

func TestMigrateFS_AppliesOnlyPending(t *testing.T) {
	db, mock := newMock(t)

	expectPrologue(mock, "0001_init.sql")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE wallets")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs("0002_crypto.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(migrationLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := MigrateFS(context.Background(), db, migrationsFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_crypto.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFS_FailedMigrationRollsBack(t *testing.T) {
	db, mock := newMock(t)

	expectPrologue(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE posts")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(migrationLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := MigrateFS(context.Background(), db, migrationsFS())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_init.sql")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationNames_SortedSQLOnly(t *testing.T) {
	names, err := migrationNames(migrationsFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_crypto.sql"}, names)
}
