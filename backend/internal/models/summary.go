package models

import (
	"fmt"
	"time"
)

// SummaryTimeLayout é o layout ISO-8601 (UTC, precisão de milissegundos) do
// createdAt no registro durável.
const SummaryTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// PersistedSummary é a projeção durável mínima de uma denúncia.
// Não guarda texto livre, local nem contato.
type PersistedSummary struct {
	ID        string       `json:"id" yaml:"id"`
	Tipo      TipoDenuncia `json:"tipo" yaml:"tipo"`
	Urgencia  Urgencia     `json:"urgencia" yaml:"urgencia"`
	CreatedAt time.Time    `json:"createdAt" yaml:"createdAt"`
}

// Fields converte o resumo no mapa de campos gravado no store.
func (s PersistedSummary) Fields() map[string]string {
	return map[string]string{
		"id":        s.ID,
		"tipo":      string(s.Tipo),
		"urgencia":  string(s.Urgencia),
		"createdAt": s.CreatedAt.UTC().Format(SummaryTimeLayout),
	}
}

// SummaryFromFields é o inverso de Fields. Registros de versões antigas podem
// trazer categorias que este build não conhece; elas são mantidas para que a
// agregação ainda as conte.
func SummaryFromFields(fields map[string]string) (PersistedSummary, error) {
	id := fields["id"]
	if id == "" {
		return PersistedSummary{}, fmt.Errorf("summary without id")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["createdAt"])
	if err != nil {
		return PersistedSummary{}, fmt.Errorf("summary %s: invalid createdAt: %w", id, err)
	}
	return PersistedSummary{
		ID:        id,
		Tipo:      TipoDenuncia(fields["tipo"]),
		Urgencia:  Urgencia(fields["urgencia"]),
		CreatedAt: createdAt.UTC(),
	}, nil
}
