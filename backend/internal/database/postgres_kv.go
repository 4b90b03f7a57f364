package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laerciomonteiro/escutasegura/backend/internal/database/migrations"
)

const (
	upsertHashFieldSQL = `INSERT INTO kv_hash_fields (hash_key, field, value) VALUES ($1, $2, $3)
ON CONFLICT (hash_key, field) DO UPDATE SET value = EXCLUDED.value`
	upsertSetMemberSQL = `INSERT INTO kv_sorted_set_members (set_key, member, score) VALUES ($1, $2, $3)
ON CONFLICT (set_key, member) DO UPDATE SET score = EXCLUDED.score`
	zrangeSQL  = `SELECT member FROM kv_sorted_set_members WHERE set_key = $1 ORDER BY score, member`
	hgetallSQL = `SELECT hash_key, field, value FROM kv_hash_fields WHERE hash_key = ANY($1)`
)

// PostgresKV implementa KV no PostgreSQL via pgx. Cada Pipeline vira um
// pgx.Batch, enviado em uma única ida ao banco.
type PostgresKV struct {
	pool *pgxpool.Pool
}

func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// OpenPostgresKV conecta, faz ping e aplica o schema embutido.
func OpenPostgresKV(ctx context.Context, databaseURL string) (*PostgresKV, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	schema, err := migrations.Schema()
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return NewPostgresKV(pool), nil
}

// buildBatch converte as operações acumuladas em comandos pgx enfileirados.
func buildBatch(ops *opBatch) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, op := range ops.hsets {
		for f, v := range op.fields {
			batch.Queue(upsertHashFieldSQL, op.key, f, v)
		}
	}
	for _, op := range ops.zadds {
		batch.Queue(upsertSetMemberSQL, op.index, op.member, op.score)
	}
	return batch
}

func (p *PostgresKV) Pipeline(ctx context.Context, fn func(b Batch)) error {
	var ops opBatch
	fn(&ops)
	if ops.empty() {
		return nil
	}
	return p.pool.SendBatch(ctx, buildBatch(&ops)).Close()
}

func (p *PostgresKV) ZRange(ctx context.Context, index string) ([]string, error) {
	rows, err := p.pool.Query(ctx, zrangeSQL, index)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *PostgresKV) HGetAll(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, hgetallSQL, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKey := make(map[string]map[string]string, len(keys))
	for rows.Next() {
		var key, field, value string
		if err := rows.Scan(&key, &field, &value); err != nil {
			return nil, err
		}
		h, ok := byKey[key]
		if !ok {
			h = make(map[string]string)
			byKey[key] = h
		}
		h[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alignHashes(keys, byKey), nil
}

func (p *PostgresKV) Close() error {
	p.pool.Close()
	return nil
}

func alignHashes(keys []string, byKey map[string]map[string]string) []map[string]string {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := byKey[k]; ok {
			out[i] = h
		} else {
			out[i] = map[string]string{}
		}
	}
	return out
}
