package models

// Submission é o resultado da etapa explícita de parsing (JSON ou multipart),
// antes de qualquer validação. Campos opcionais ausentes ficam nil.
type Submission struct {
	Tipo        string
	Descricao   string
	Urgencia    string
	Local       *string
	Data        *string
	Contato     *string
	Testemunhas *bool
	Evidencias  *bool
	Attachments []Attachment

	// InvalidTypes registra campos que chegaram com o tipo errado
	// (por exemplo "tipo": 5 no JSON).
	InvalidTypes map[string]bool
}

// MarkInvalidType registra que field chegou com tipo inesperado.
func (s *Submission) MarkInvalidType(field string) {
	if s.InvalidTypes == nil {
		s.InvalidTypes = make(map[string]bool)
	}
	s.InvalidTypes[field] = true
}

// SubmissionFields lista os campos de valor reconhecidos do formulário.
var SubmissionFields = []string{
	"tipo", "descricao", "local", "data", "urgencia", "testemunhas", "evidencias", "contato",
}
