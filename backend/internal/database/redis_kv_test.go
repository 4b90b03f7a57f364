package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = kv.Close() })
	return kv, mr
}

func TestRedisKV_GatewayStore(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	gw := NewGateway(kv, zap.NewNop())
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	require.NoError(t, gw.Store(context.Background(), summary("R1", at)))

	assert.Equal(t, "trafico", mr.HGet("denuncia:R1", "tipo"))
	assert.Equal(t, "2025-02-03T04:05:06.000Z", mr.HGet("denuncia:R1", "createdAt"))
	score, err := mr.ZScore(SummaryIndex, "denuncia:R1")
	require.NoError(t, err)
	assert.Equal(t, float64(at.UnixMilli()), score)
}

func TestRedisKV_ListSummaries(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	gw := NewGateway(kv, zap.NewNop())
	base := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, gw.Store(context.Background(), summary("LATE", base.Add(time.Minute))))
	require.NoError(t, gw.Store(context.Background(), summary("EARLY", base)))

	got, err := gw.ListSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "EARLY", got[0].ID)
	assert.Equal(t, "LATE", got[1].ID)
}

func TestRedisKV_StoreFailsWhenServerDown(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	mr.Close()
	gw := NewGateway(kv, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := gw.Store(ctx, summary("DOWN", time.Now()))

	var se *StorageError
	require.ErrorAs(t, err, &se)
}

func TestRedisKV_EmptyPipelineIsNoop(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	require.NoError(t, kv.Pipeline(context.Background(), func(Batch) {}))
}
