package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

const (
	// SummaryIndex é o índice ordenado por createdAt (ms) de todas as denúncias.
	SummaryIndex     = "denuncias_por_data"
	summaryKeyPrefix = "denuncia:"
)

// SummaryKey devolve a chave do resumo com o id informado.
func SummaryKey(id string) string {
	return summaryKeyPrefix + id
}

// StorageError embrulha qualquer falha do armazenamento durável.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Gateway é a fachada de persistência dos resumos de denúncia.
type Gateway struct {
	kv     KV
	logger *zap.Logger
}

// NewGateway embrulha um backend KV.
func NewGateway(kv KV, logger *zap.Logger) *Gateway {
	return &Gateway{kv: kv, logger: logger.Named("gateway")}
}

// Store grava os campos do resumo e indexa a chave pela data de criação em
// uma única requisição em lote. Uma escrita parcial é possível e vira
// StorageError como qualquer outra falha.
func (g *Gateway) Store(ctx context.Context, s models.PersistedSummary) error {
	if s.ID == "" {
		return &StorageError{Op: "store", Err: fmt.Errorf("summary without id")}
	}
	key := SummaryKey(s.ID)
	err := g.kv.Pipeline(ctx, func(b Batch) {
		b.HSet(key, s.Fields())
		b.ZAdd(SummaryIndex, float64(s.CreatedAt.UnixMilli()), key)
	})
	if err != nil {
		return &StorageError{Op: "store", Err: err}
	}
	return nil
}

// ListSummaries lê todos os resumos na ordem de criação. Registros
// ilegíveis são ignorados e logados.
func (g *Gateway) ListSummaries(ctx context.Context) ([]models.PersistedSummary, error) {
	keys, err := g.kv.ZRange(ctx, SummaryIndex)
	if err != nil {
		return nil, &StorageError{Op: "range", Err: err}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	hashes, err := g.kv.HGetAll(ctx, keys)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	summaries := make([]models.PersistedSummary, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		s, err := models.SummaryFromFields(fields)
		if err != nil {
			g.logger.Warn("Ignorando resumo ilegível", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
