package telegram

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// Parse modes aceitos pela Bot API.
const (
	ParseModeMarkdown   = "Markdown"
	ParseModeMarkdownV2 = "MarkdownV2"
)

const (
	// MaxDescriptionLen é o limite da descrição no texto da notificação.
	MaxDescriptionLen = 3500
	// MaxMessageLen e MaxCaptionLen são os limites do Telegram para
	// sendMessage e para legendas de foto, em unidades UTF-16.
	MaxMessageLen = 4096
	MaxCaptionLen = 1024

	ellipsis  = "…"
	separator = "────────────────────────────"
)

// DescriptionMarkup decide se a descrição livre é escapada. As demais seções
// são sempre escapadas.
type DescriptionMarkup int

const (
	// DescriptionRaw envia a descrição como digitada, sem barras de escape
	// no meio do relato.
	DescriptionRaw DescriptionMarkup = iota
	// DescriptionEscaped escapa a descrição como as outras seções.
	DescriptionEscaped
)

var (
	legacyEscaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)
	v2Escaper     = newV2Escaper()
)

func newV2Escaper() *strings.Replacer {
	var pairs []string
	for _, c := range "\\_*[]()~`>#+-=|{}.!" {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// Formatter renderiza as mensagens enviadas ao operador.
type Formatter struct {
	ParseMode   string
	Description DescriptionMarkup
	Location    *time.Location
}

// NewFormatter devolve um Formatter para parseMode. Modo vazio ou
// desconhecido vira Markdown legado; location nil vira UTC.
func NewFormatter(parseMode string, description DescriptionMarkup, loc *time.Location) *Formatter {
	if parseMode != ParseModeMarkdownV2 {
		parseMode = ParseModeMarkdown
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{ParseMode: parseMode, Description: description, Location: loc}
}

// Escape escapa os caracteres reservados do parse mode configurado.
func (f *Formatter) Escape(s string) string {
	if f.ParseMode == ParseModeMarkdownV2 {
		return v2Escaper.Replace(s)
	}
	return legacyEscaper.Replace(s)
}

// FormatDenuncia renderiza a notificação de uma denúncia sanitizada. A
// descrição é cortada para a mensagem inteira caber em um sendMessage.
func (f *Formatter) FormatDenuncia(d *models.Denuncia, labels models.Labels) string {
	return f.render(d, labels, MaxMessageLen)
}

// FormatCaption renderiza a mesma notificação, encurtando a descrição para o
// texto inteiro caber na legenda de uma foto.
func (f *Formatter) FormatCaption(d *models.Denuncia, labels models.Labels) string {
	return f.render(d, labels, MaxCaptionLen)
}

// render mede em unidades UTF-16, como o Telegram. O markup do cabeçalho
// também entra na conta, o que só erra para menos.
func (f *Formatter) render(d *models.Denuncia, labels models.Labels, total int) string {
	header := f.header(d, labels)
	room := total - utf16Len(header) - utf16Len(ellipsis)
	if room < 0 {
		room = 0
	}
	if room > MaxDescriptionLen {
		room = MaxDescriptionLen
	}
	return header + f.description(d.Descricao, room)
}

// header renderiza tudo até o título da descrição, inclusive.
func (f *Formatter) header(d *models.Denuncia, labels models.Labels) string {
	lines := []string{
		"🚨 *Nova Denúncia Anônima*",
		"🕒 *Recebida em:* " + f.Escape(d.CreatedAt.In(f.Location).Format("02/01/2006 15:04")),
		f.Escape(separator),
		"🆔 *ID:* `" + d.ID + "`",
		"🏷️ *Tipo:* " + f.Escape(labels.Tipo),
		"❗ *Urgência:* " + f.Escape(strings.ToUpper(labels.Urgencia)),
	}
	if d.Local != "" {
		lines = append(lines, "📍 *Local:* "+f.Escape(d.Local))
	}
	if d.Data != nil {
		lines = append(lines, "📅 *Data do ocorrido:* "+f.Escape(d.Data.Format("02/01/2006")))
	}
	lines = append(lines, "", "*Descrição:*", "")
	return strings.Join(lines, "\n")
}

func (f *Formatter) description(desc string, limit int) string {
	desc = truncate(desc, limit)
	if f.Description == DescriptionEscaped {
		return f.Escape(desc)
	}
	return desc
}

// truncate mantém no máximo limit unidades UTF-16 de s e marca o corte.
func truncate(s string, limit int) string {
	if utf16Len(s) <= limit {
		return s
	}
	n := 0
	for i, r := range s {
		w := runeUnits(r)
		if n+w > limit {
			return s[:i] + ellipsis
		}
		n += w
	}
	return s
}

// utf16Len é o tamanho que o Telegram confere: caracteres fora do BMP, como
// a maioria dos emoji, contam dois.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if w := utf16.RuneLen(r); w > 0 {
		return w
	}
	return 1
}

// PhotoCaption é a legenda curta de cada item do media group. Vai sem parse
// mode.
func PhotoCaption(index int, id string) string {
	return fmt.Sprintf("Photo %d (ID: %s)", index, id)
}

// FormatStorageAlert avisa o operador que a denúncia foi entregue mas o
// resumo não foi salvo.
func (f *Formatter) FormatStorageAlert(id string) string {
	return strings.Join([]string{
		"🚨 *ALERTA DE SISTEMA* 🚨",
		"",
		f.Escape("A denúncia com ID ") + "`" + id + "`" + f.Escape(" foi recebida e enviada, mas ") +
			"*FALHOU*" + f.Escape(" ao ser salva no banco de dados."),
		"",
		"*Erro:* " + f.Escape("Falha na conexão ou escrita no armazenamento. Verifique os logs do serviço e a configuração do banco."),
	}, "\n")
}

var weekdayNames = [...]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

var tipoStatsLabels = map[models.TipoDenuncia]string{
	models.TipoPorte:    "Porte ilegal",
	models.TipoTrafico:  "Tráfico de drogas",
	models.TipoAmeaca:   "Ameaças de facção",
	models.TipoDisparos: "Disparos",
	models.TipoOutros:   "Outros",
}

var urgenciaStatsLabels = map[models.Urgencia]string{
	models.UrgenciaAlta:  "Alta urgência",
	models.UrgenciaMedia: "Média urgência",
	models.UrgenciaBaixa: "Baixa urgência",
}

// FormatStats renderiza o relatório administrativo de estatísticas.
func (f *Formatter) FormatStats(s *models.Stats) string {
	pct := func(n int) string {
		if s.Total == 0 {
			return "0.0"
		}
		return fmt.Sprintf("%.1f", float64(n)/float64(s.Total)*100)
	}
	count := func(label string, n int) string {
		return f.Escape(label+": ") + fmt.Sprintf("*%d*", n) + f.Escape(" ("+pct(n)+"%)")
	}

	lines := []string{
		"*📊 Estatísticas Gerais*",
		f.Escape("Total de denúncias: ") + fmt.Sprintf("*%d*", s.Total),
		f.Escape("Hoje (24h): ") + fmt.Sprintf("*%d*", s.Last24h),
		f.Escape("Esta semana (7d): ") + fmt.Sprintf("*%d*", s.Last7d),
		f.Escape("Este mês (30d): ") + fmt.Sprintf("*%d*", s.Last30d),
		"",
		"*🏷️ Estatísticas por Tipo*",
	}
	for _, t := range models.Tipos {
		lines = append(lines, count(tipoStatsLabels[t], s.ByTipo[t]))
	}
	lines = append(lines, "", "*❗ Estatísticas por Urgência*")
	for _, u := range models.Urgencias {
		lines = append(lines, count(urgenciaStatsLabels[u], s.ByUrgencia[u]))
	}

	peakHour, peakDay := "N/A", "N/A"
	if s.PeakHourUTC >= 0 {
		peakHour = fmt.Sprintf("%dh - %dh", s.PeakHourUTC, s.PeakHourUTC+1)
	}
	if s.PeakWeekday >= 0 && s.PeakWeekday < len(weekdayNames) {
		peakDay = weekdayNames[s.PeakWeekday]
	}
	lines = append(lines,
		"",
		"*🕒 Estatísticas Temporais*",
		f.Escape("Horário de pico: ")+"*"+f.Escape(peakHour)+"*"+f.Escape(" (UTC)"),
		f.Escape("Dia da semana com mais denúncias: ")+"*"+peakDay+"*",
	)
	return strings.Join(lines, "\n")
}

// FormatNoStats é enviado quando ainda não há nada para agregar.
func (f *Formatter) FormatNoStats() string {
	return f.Escape("Nenhuma denúncia encontrada para gerar estatísticas.")
}

// FormatStatsFailure é enviado quando as estatísticas não puderam ser calculadas.
func (f *Formatter) FormatStatsFailure() string {
	return f.Escape("Ocorreu um erro ao buscar as estatísticas. Tente novamente mais tarde.")
}
