package models

import "time"

// Denuncia representa uma denúncia anônima já validada.
// ID e CreatedAt são atribuídos pelo servidor, nunca pelo cliente.
type Denuncia struct {
	ID          string       `json:"id"`
	Tipo        TipoDenuncia `json:"tipo"`
	Descricao   string       `json:"descricao"`
	Local       string       `json:"local,omitempty"`
	Data        *time.Time   `json:"data,omitempty"`
	Urgencia    Urgencia     `json:"urgencia"`
	Testemunhas *bool        `json:"testemunhas,omitempty"`
	Evidencias  *bool        `json:"evidencias,omitempty"`
	Contato     string       `json:"contato,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Summary projeta a denúncia no registro durável mínimo.
func (d *Denuncia) Summary() PersistedSummary {
	return PersistedSummary{
		ID:        d.ID,
		Tipo:      d.Tipo,
		Urgencia:  d.Urgencia,
		CreatedAt: d.CreatedAt,
	}
}

// Attachment é uma imagem enviada junto com a denúncia. Vive apenas durante
// uma submissão e só é repassada ao canal de notificação.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FieldErrors mapeia o nome do campo para a mensagem exibida ao usuário.
type FieldErrors map[string]string
