package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV implementa KV no Redis (ou serviço compatível com RESP, como o
// Upstash) usando pipelines do cliente.
type RedisKV struct {
	client redis.UniversalClient
}

// NewRedisKV embrulha um cliente existente.
func NewRedisKV(client redis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

// OpenRedisKV interpreta uma URL redis:// ou rediss:// e testa a conexão.
func OpenRedisKV(ctx context.Context, rawURL string) (*RedisKV, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisKV(client), nil
}

type redisBatch struct {
	ctx  context.Context
	pipe redis.Pipeliner
}

func (b *redisBatch) HSet(key string, fields map[string]string) {
	values := make(map[string]interface{}, len(fields))
	for f, v := range fields {
		values[f] = v
	}
	b.pipe.HSet(b.ctx, key, values)
}

func (b *redisBatch) ZAdd(index string, score float64, member string) {
	b.pipe.ZAdd(b.ctx, index, redis.Z{Score: score, Member: member})
}

func (r *RedisKV) Pipeline(ctx context.Context, fn func(b Batch)) error {
	pipe := r.client.Pipeline()
	fn(&redisBatch{ctx: ctx, pipe: pipe})
	if pipe.Len() == 0 {
		return nil
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisKV) ZRange(ctx context.Context, index string) ([]string, error) {
	return r.client.ZRange(ctx, index, 0, -1).Result()
}

func (r *RedisKV) HGetAll(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	out := make([]map[string]string, len(keys))
	for i, cmd := range cmds {
		out[i] = cmd.Val()
	}
	return out, nil
}

func (r *RedisKV) Close() error { return r.client.Close() }
