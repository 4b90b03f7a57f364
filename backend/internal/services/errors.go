package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// ValidationError traz todos os campos que o usuário precisa corrigir.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("dados inválidos: %s", strings.Join(names, ", "))
}

// ConfigurationError indica credenciais do canal de notificação ausentes.
// Sempre fatal para a requisição; corrigível apenas pelo operador.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuração ausente: %s", strings.Join(e.Missing, ", "))
}
