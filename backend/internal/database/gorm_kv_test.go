package database

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB abre um SQLite em memória para o backend gorm.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("não foi possível abrir DB de teste: %v", err)
	}
	return db
}

func TestGormKV_PipelineAndReads(t *testing.T) {
	kv, err := NewGormKV(setupTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, kv.Pipeline(ctx, func(b Batch) {
		b.HSet("denuncia:2", map[string]string{"id": "2", "tipo": "porte"})
		b.ZAdd(SummaryIndex, 200, "denuncia:2")
		b.HSet("denuncia:1", map[string]string{"id": "1", "tipo": "outros"})
		b.ZAdd(SummaryIndex, 100, "denuncia:1")
	}))

	keys, err := kv.ZRange(ctx, SummaryIndex)
	require.NoError(t, err)
	assert.Equal(t, []string{"denuncia:1", "denuncia:2"}, keys)

	hashes, err := kv.HGetAll(ctx, []string{"denuncia:2", "denuncia:missing", "denuncia:1"})
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	assert.Equal(t, "porte", hashes[0]["tipo"])
	assert.Empty(t, hashes[1])
	assert.Equal(t, "outros", hashes[2]["tipo"])
}

func TestGormKV_UpsertReplacesValues(t *testing.T) {
	kv, err := NewGormKV(setupTestDB(t))
	require.NoError(t, err)
	ctx := context.Background()

	for _, score := range []float64{10, 5} {
		require.NoError(t, kv.Pipeline(ctx, func(b Batch) {
			b.HSet("k", map[string]string{"f": "v"})
			b.ZAdd("idx", score, "k")
		}))
	}
	require.NoError(t, kv.Pipeline(ctx, func(b Batch) {
		b.HSet("k", map[string]string{"f": "v2"})
		b.ZAdd("idx", 1, "other")
	}))

	keys, err := kv.ZRange(ctx, "idx")
	require.NoError(t, err)
	assert.Equal(t, []string{"other", "k"}, keys)

	hashes, err := kv.HGetAll(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f": "v2"}, hashes[0])
}

func TestGormKV_GatewayRoundTrip(t *testing.T) {
	kv, err := NewGormKV(setupTestDB(t))
	require.NoError(t, err)
	gw := NewGateway(kv, zap.NewNop())
	at := time.Date(2025, 6, 2, 22, 15, 0, 0, time.UTC)

	require.NoError(t, gw.Store(context.Background(), summary("K1", at)))
	got, err := gw.ListSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, summary("K1", at), got[0])
}

// Falha na escrita (postgres via sqlmock) volta como erro do batch.
func TestGormKV_PipelineFailureRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		Logger: logger.New(log.New(io.Discard, "", 0), logger.Config{LogLevel: logger.Silent}),
	})
	require.NoError(t, err)
	kv := &GormKV{db: db}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "kv_hash_fields"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = kv.Pipeline(context.Background(), func(b Batch) {
		b.HSet("denuncia:1", map[string]string{"id": "1"})
		b.ZAdd(SummaryIndex, 1, "denuncia:1")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
