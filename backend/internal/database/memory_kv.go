package database

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV guarda tudo na memória do processo. Serve para desenvolvimento e
// testes; os dados se perdem ao reiniciar.
type MemoryKV struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	sets   map[string]map[string]float64
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]float64),
	}
}

func (m *MemoryKV) Pipeline(ctx context.Context, fn func(b Batch)) error {
	var b opBatch
	fn(&b)
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range b.hsets {
		h, ok := m.hashes[op.key]
		if !ok {
			h = make(map[string]string, len(op.fields))
			m.hashes[op.key] = h
		}
		for f, v := range op.fields {
			h[f] = v
		}
	}
	for _, op := range b.zadds {
		s, ok := m.sets[op.index]
		if !ok {
			s = make(map[string]float64)
			m.sets[op.index] = s
		}
		s[op.member] = op.score
	}
	return nil
}

func (m *MemoryKV) ZRange(ctx context.Context, index string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.sets[index]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := set[members[i]], set[members[j]]
		if si != sj {
			return si < sj
		}
		return members[i] < members[j]
	})
	return members, nil
}

func (m *MemoryKV) HGetAll(ctx context.Context, keys []string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h := make(map[string]string, len(m.hashes[k]))
		for f, v := range m.hashes[k] {
			h[f] = v
		}
		out[i] = h
	}
	return out, nil
}

func (m *MemoryKV) Close() error { return nil }
