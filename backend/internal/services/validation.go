package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

const (
	minDescricao = 10
	maxDescricao = 2000
	maxLocal     = 200
	maxContato   = 200
)

// Mensagens exibidas no formulário, por campo.
const (
	msgTipoObrigatorio     = "Selecione o tipo de denúncia"
	msgTipoInvalido        = "Tipo de denúncia inválido"
	msgUrgenciaObrigatoria = "Selecione o nível de urgência"
	msgUrgenciaInvalida    = "Nível de urgência inválido"
	msgDescricaoVazia      = "A descrição é obrigatória"
	msgDescricaoCurta      = "A descrição deve ter pelo menos 10 caracteres"
	msgDescricaoLonga      = "A descrição não pode exceder 2000 caracteres"
	msgDescricaoInvalida   = "Descrição inválida"
	msgLocalLongo          = "O local não pode exceder 200 caracteres"
	msgLocalInvalido       = "Local inválido"
	msgContatoLongo        = "O contato não pode exceder 200 caracteres"
	msgContatoInvalido     = "Contato inválido"
	msgDataInvalida        = "Data do ocorrido inválida"
	msgBooleanoInvalido    = "Valor inválido"
)

var invalidTypeMessages = map[string]string{
	"tipo":        msgTipoInvalido,
	"urgencia":    msgUrgenciaInvalida,
	"descricao":   msgDescricaoInvalida,
	"local":       msgLocalInvalido,
	"contato":     msgContatoInvalido,
	"data":        msgDataInvalida,
	"testemunhas": msgBooleanoInvalido,
	"evidencias":  msgBooleanoInvalido,
}

// dateLayouts são os formatos aceitos para a data do ocorrido: input date do
// HTML, input datetime-local e RFC3339 completo.
var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04", time.RFC3339}

// ValidateSubmission confere todos os campos de s e devolve a denúncia
// validada ou todos os erros encontrados, sem parar no primeiro.
func ValidateSubmission(s *models.Submission) (*models.Denuncia, models.FieldErrors) {
	errs := models.FieldErrors{}
	d := &models.Denuncia{
		Descricao:   s.Descricao,
		Testemunhas: s.Testemunhas,
		Evidencias:  s.Evidencias,
	}

	for field := range s.InvalidTypes {
		if msg, ok := invalidTypeMessages[field]; ok {
			errs[field] = msg
		}
	}

	if _, bad := errs["tipo"]; !bad {
		if s.Tipo == "" {
			errs["tipo"] = msgTipoObrigatorio
		} else if t, ok := models.ParseTipo(s.Tipo); ok {
			d.Tipo = t
		} else {
			errs["tipo"] = msgTipoInvalido
		}
	}

	if _, bad := errs["urgencia"]; !bad {
		if s.Urgencia == "" {
			errs["urgencia"] = msgUrgenciaObrigatoria
		} else if u, ok := models.ParseUrgencia(s.Urgencia); ok {
			d.Urgencia = u
		} else {
			errs["urgencia"] = msgUrgenciaInvalida
		}
	}

	if _, bad := errs["descricao"]; !bad {
		n := utf8.RuneCountInString(s.Descricao)
		switch {
		case strings.TrimSpace(s.Descricao) == "":
			errs["descricao"] = msgDescricaoVazia
		case n < minDescricao:
			errs["descricao"] = msgDescricaoCurta
		case n > maxDescricao:
			errs["descricao"] = msgDescricaoLonga
		}
	}

	if s.Local != nil && errs["local"] == "" {
		if utf8.RuneCountInString(*s.Local) > maxLocal {
			errs["local"] = msgLocalLongo
		} else {
			d.Local = *s.Local
		}
	}

	if s.Contato != nil && errs["contato"] == "" {
		if utf8.RuneCountInString(*s.Contato) > maxContato {
			errs["contato"] = msgContatoLongo
		} else {
			d.Contato = *s.Contato
		}
	}

	if s.Data != nil && strings.TrimSpace(*s.Data) != "" && errs["data"] == "" {
		if t, ok := parseIncidentDate(strings.TrimSpace(*s.Data)); ok {
			d.Data = &t
		} else {
			errs["data"] = msgDataInvalida
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return d, nil
}

func parseIncidentDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
