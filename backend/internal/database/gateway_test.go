package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// failingKV falha em todas as operações.
type failingKV struct{ err error }

func (f failingKV) Pipeline(context.Context, func(Batch)) error { return f.err }
func (f failingKV) ZRange(context.Context, string) ([]string, error) {
	return nil, f.err
}
func (f failingKV) HGetAll(context.Context, []string) ([]map[string]string, error) {
	return nil, f.err
}
func (f failingKV) Close() error { return nil }

func summary(id string, at time.Time) models.PersistedSummary {
	return models.PersistedSummary{ID: id, Tipo: models.TipoTrafico, Urgencia: models.UrgenciaAlta, CreatedAt: at}
}

func TestGateway_StoreWritesHashAndIndex(t *testing.T) {
	kv := NewMemoryKV()
	gw := NewGateway(kv, zap.NewNop())
	at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	require.NoError(t, gw.Store(context.Background(), summary("ABC123", at)))

	keys, err := kv.ZRange(context.Background(), SummaryIndex)
	require.NoError(t, err)
	assert.Equal(t, []string{"denuncia:ABC123"}, keys)

	hashes, err := kv.HGetAll(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"id":        "ABC123",
		"tipo":      "trafico",
		"urgencia":  "alta",
		"createdAt": "2025-03-01T12:30:00.000Z",
	}, hashes[0])
}

func TestGateway_StoreFailureIsStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	gw := NewGateway(failingKV{err: cause}, zap.NewNop())

	err := gw.Store(context.Background(), summary("X", time.Now()))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "store", se.Op)
	assert.ErrorIs(t, err, cause)
}

func TestGateway_StoreRejectsEmptyID(t *testing.T) {
	gw := NewGateway(NewMemoryKV(), zap.NewNop())
	var se *StorageError
	require.ErrorAs(t, gw.Store(context.Background(), summary("", time.Now())), &se)
}

func TestGateway_ListSummariesInCreationOrder(t *testing.T) {
	kv := NewMemoryKV()
	gw := NewGateway(kv, zap.NewNop())
	base := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, gw.Store(context.Background(), summary("B", base.Add(time.Hour))))
	require.NoError(t, gw.Store(context.Background(), summary("A", base)))
	// registro corrompido: sem createdAt
	require.NoError(t, kv.Pipeline(context.Background(), func(b Batch) {
		b.HSet("denuncia:BAD", map[string]string{"id": "BAD"})
		b.ZAdd(SummaryIndex, float64(base.Add(2*time.Hour).UnixMilli()), "denuncia:BAD")
		b.ZAdd(SummaryIndex, float64(base.Add(3*time.Hour).UnixMilli()), "denuncia:GONE")
	}))

	got, err := gw.ListSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestGateway_ListSummariesEmpty(t *testing.T) {
	gw := NewGateway(NewMemoryKV(), zap.NewNop())
	got, err := gw.ListSummaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGateway_ListSummariesFailure(t *testing.T) {
	gw := NewGateway(failingKV{err: errors.New("boom")}, zap.NewNop())
	_, err := gw.ListSummaries(context.Background())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "range", se.Op)
}
