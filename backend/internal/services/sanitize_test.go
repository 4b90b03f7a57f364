package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "all categories",
			in:   "Me liga no (11) 99999-8888 ou acessa https://x.com/a e manda pra joao@x.com cpf 123.456.789-09",
			want: "Me liga no [TELEFONE_REMOVIDO] ou acessa [URL_REMOVIDA] e manda pra [EMAIL_REMOVIDO] cpf [CPF_REMOVIDO]",
		},
		{
			name: "bare cpf digits",
			in:   "documento 12345678909 encontrado",
			want: "documento [CPF_REMOVIDO] encontrado",
		},
		{
			name: "international phone",
			in:   "número +55 85 98888-7777.",
			want: "número [TELEFONE_REMOVIDO].",
		},
		{
			name: "long digit run is a phone",
			in:   "ligue 085988887777",
			want: "ligue [TELEFONE_REMOVIDO]",
		},
		{
			name: "short numbers kept",
			in:   "casa 1234, rua 15, 22h30",
			want: "casa 1234, rua 15, 22h30",
		},
		{
			name: "trims",
			in:   "  sem dados pessoais  ",
			want: "sem dados pessoais",
		},
		{
			name: "url uppercase scheme",
			in:   "veja HTTP://exemplo.com/x?y=1",
			want: "veja [URL_REMOVIDA]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestSanitizeContact(t *testing.T) {
	tests := map[string]string{
		"user@example.com":  "***@example.com",
		"11999998888":       "****8888",
		"tel 85999998888":   "****8888",
		"ab":                "***",
		"abcd":              "***",
		"telegram @fulano":  "***@fulano",
		"fulano_de_tal":     "fu***al",
		"****8888":          "****8888",
		"***@example.com":   "***@example.com",
		"fu***al":           "fu***al",
		"(11) 99999-8888":   "(1***88",
		"a@b@c.com":         "***@b",
		"  espaço inicial ": "  ***l ",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, SanitizeContact(in))
		})
	}
}

func sampleReport() models.Denuncia {
	data := time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)
	return models.Denuncia{
		Tipo:        models.TipoAmeaca,
		Descricao:   "Ameaçaram o vizinho, contato dele (85) 98888-7777, email vizinho@mail.com, veja https://t.me/x",
		Local:       "Rua A, 100 - ligar 85 3222-1111",
		Data:        &data,
		Urgencia:    models.UrgenciaMedia,
		Testemunhas: ptrBool(false),
		Contato:     "denunciante@proton.me",
	}
}

func TestSanitizer_Sanitize(t *testing.T) {
	in := sampleReport()
	got := Sanitizer{}.Sanitize(in)

	assert.Equal(t, "Ameaçaram o vizinho, contato dele [TELEFONE_REMOVIDO], email [EMAIL_REMOVIDO], veja [URL_REMOVIDA]", got.Descricao)
	assert.Equal(t, "Rua A, 100 - ligar [TELEFONE_REMOVIDO]", got.Local)
	assert.Equal(t, "***@proton.me", got.Contato)

	// a entrada não é alterada
	assert.Equal(t, sampleReport().Descricao, in.Descricao)
	assert.NotSame(t, in.Data, got.Data)
}

func TestSanitizer_Idempotent(t *testing.T) {
	inputs := []models.Denuncia{
		sampleReport(),
		{Descricao: "cpf 111.222.333-44 e 12345678909, tel 0800 123 4567", Contato: "11999998888"},
		{Descricao: "nada a remover aqui, só texto", Contato: "ab"},
		{Descricao: "site www.x.com e http://a.b/c?d=e#f", Local: "  Centro  ", Contato: "fulano_de_tal"},
	}
	var s Sanitizer
	for _, in := range inputs {
		once := s.Sanitize(in)
		twice := s.Sanitize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("sanitize is not idempotent (-once +twice):\n%s", diff)
		}
	}
}

func TestSanitizer_EmptyContactStaysEmpty(t *testing.T) {
	got := Sanitizer{}.Sanitize(models.Denuncia{Descricao: "descrição qualquer", Contato: "   "})
	assert.Empty(t, got.Contato)
}
