package database

import "context"

// Batch acumula as escritas de uma chamada Pipeline. As implementações
// enviam tudo junto quando o callback retorna.
type Batch interface {
	// HSet grava vários campos no hash da chave key.
	HSet(key string, fields map[string]string)
	// ZAdd adiciona member ao índice ordenado, trocando o score se já existir.
	ZAdd(index string, score float64, member string)
}

// KV é a capacidade de armazenamento que o gateway consome, independente do
// produto por trás (Redis, Postgres, SQLite, MySQL ou memória).
type KV interface {
	// Pipeline roda fn e executa as operações enfileiradas em uma única
	// requisição. O lote não é necessariamente atômico.
	Pipeline(ctx context.Context, fn func(b Batch)) error
	// ZRange devolve todos os membros do índice em ordem crescente de score.
	ZRange(ctx context.Context, index string) ([]string, error)
	// HGetAll lê os hashes de keys. O resultado segue a ordem de keys; hash
	// inexistente vira mapa vazio.
	HGetAll(ctx context.Context, keys []string) ([]map[string]string, error)
	Close() error
}

type hsetOp struct {
	key    string
	fields map[string]string
}

type zaddOp struct {
	index  string
	score  float64
	member string
}

// opBatch guarda as operações para backends que as enviam após o callback.
type opBatch struct {
	hsets []hsetOp
	zadds []zaddOp
}

func (b *opBatch) HSet(key string, fields map[string]string) {
	b.hsets = append(b.hsets, hsetOp{key: key, fields: fields})
}

func (b *opBatch) ZAdd(index string, score float64, member string) {
	b.zadds = append(b.zadds, zaddOp{index: index, score: score, member: member})
}

func (b *opBatch) empty() bool {
	return len(b.hsets) == 0 && len(b.zadds) == 0
}
