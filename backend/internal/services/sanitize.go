package services

import (
	"regexp"
	"strings"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// Placeholders inseridos no lugar de cada categoria de dado sensível.
const (
	PlaceholderURL      = "[URL_REMOVIDA]"
	PlaceholderEmail    = "[EMAIL_REMOVIDO]"
	PlaceholderCPF      = "[CPF_REMOVIDO]"
	PlaceholderTelefone = "[TELEFONE_REMOVIDO]"

	contactMask      = "***"
	phoneMaskPrefix  = "****"
	minPhoneDigits   = 10
	contactPhoneRun  = 8
	contactKeptChars = 2
)

var (
	urlPattern   = regexp.MustCompile(`(?i)https?://[^\s]+`)
	emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	cpfPattern   = regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d \t().-]{8,}\d`)

	contactDigitRun = regexp.MustCompile(`\d{8,}`)
	maskedPhone     = regexp.MustCompile(`^\*{4}\d{4}$`)
)

// Sanitizer remove ou ofusca dados pessoais de uma denúncia validada.
// Todas as transformações são idempotentes.
type Sanitizer struct{}

// Sanitize devolve uma cópia sanitizada de d, sem alterar a entrada.
func (Sanitizer) Sanitize(d models.Denuncia) models.Denuncia {
	out := d
	out.Descricao = SanitizeText(d.Descricao)
	out.Local = SanitizeText(d.Local)
	if strings.TrimSpace(d.Contato) == "" {
		out.Contato = ""
	} else {
		out.Contato = SanitizeContact(d.Contato)
	}
	if d.Data != nil {
		t := *d.Data
		out.Data = &t
	}
	return out
}

// SanitizeText troca URLs, e-mails, CPFs e telefones pelos placeholders e
// remove espaços das pontas.
func SanitizeText(text string) string {
	text = urlPattern.ReplaceAllString(text, PlaceholderURL)
	text = emailPattern.ReplaceAllString(text, PlaceholderEmail)
	text = replaceIsolated(cpfPattern, text, PlaceholderCPF)
	text = phonePattern.ReplaceAllStringFunc(text, func(m string) string {
		if countDigits(m) < minPhoneDigits {
			return m
		}
		return PlaceholderTelefone
	})
	return strings.TrimSpace(text)
}

// replaceIsolated troca as ocorrências de re que não encostam em outro
// dígito; um trecho com cara de CPF dentro de um número maior fica para a
// regra de telefone.
func replaceIsolated(re *regexp.Regexp, text, token string) string {
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && isDigit(text[start-1]) || end < len(text) && isDigit(text[end]) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(token)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// SanitizeContact ofusca o contato mantendo um fragmento reconhecível: o
// domínio do e-mail, os quatro últimos dígitos do telefone ou os dois
// caracteres de cada ponta.
func SanitizeContact(contact string) string {
	if i := strings.Index(contact, "@"); i >= 0 {
		domain := contact[i+1:]
		if j := strings.Index(domain, "@"); j >= 0 {
			domain = domain[:j]
		}
		return contactMask + "@" + domain
	}

	if maskedPhone.MatchString(contact) {
		return contact
	}
	if contactDigitRun.MatchString(contact) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, contact)
		return phoneMaskPrefix + digits[len(digits)-4:]
	}

	runes := []rune(contact)
	if len(runes) > 4 {
		return string(runes[:contactKeptChars]) + contactMask + string(runes[len(runes)-contactKeptChars:])
	}
	return contactMask
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			n++
		}
	}
	return n
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
