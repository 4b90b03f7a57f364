package services

import (
	"strings"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// PlainText renderiza a denúncia sanitizada sem markup, para a cópia por e-mail.
func PlainText(d *models.Denuncia, labels models.Labels) string {
	lines := []string{
		"Nova denúncia anônima",
		"",
		"ID: " + d.ID,
		"Recebida em: " + d.CreatedAt.UTC().Format("02/01/2006 15:04") + " UTC",
		"Tipo: " + labels.Tipo,
		"Urgência: " + labels.Urgencia,
	}
	if d.Local != "" {
		lines = append(lines, "Local: "+d.Local)
	}
	if d.Data != nil {
		lines = append(lines, "Data do ocorrido: "+d.Data.Format("02/01/2006"))
	}
	if d.Testemunhas != nil {
		lines = append(lines, "Testemunhas: "+simNao(*d.Testemunhas))
	}
	if d.Evidencias != nil {
		lines = append(lines, "Evidências: "+simNao(*d.Evidencias))
	}
	if d.Contato != "" {
		lines = append(lines, "Contato: "+d.Contato)
	}
	lines = append(lines, "", "Descrição:", d.Descricao)
	return strings.Join(lines, "\n")
}

func simNao(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
