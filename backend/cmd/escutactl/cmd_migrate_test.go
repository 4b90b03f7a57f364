package main

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
)

func TestApplySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_hash_fields").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("kv_hash_fields").
			AddRow("kv_sorted_set_members"))

	tables, err := applySchema(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"kv_hash_fields", "kv_sorted_set_members"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySchema_ExecFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	_, err = applySchema(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFlagSatisfiesPostgresDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KV_URL", "")
	t.Setenv("MYSQL_DSN", "")

	_, _, err := loadEnv(migrateOverrides()...)
	require.Error(t, err, "sem a flag a validação deve exigir DATABASE_URL")

	migrateFlags.databaseURL = "postgres://app@db:5432/escuta"
	t.Cleanup(func() { migrateFlags.databaseURL = "" })

	cfg, _, err := loadEnv(migrateOverrides()...)
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://app@db:5432/escuta", cfg.Store.DatabaseURL)
}
