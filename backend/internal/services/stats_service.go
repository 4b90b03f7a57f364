package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
)

// SummaryLister lê todos os resumos persistidos, do mais antigo ao mais novo.
type SummaryLister interface {
	ListSummaries(ctx context.Context) ([]models.PersistedSummary, error)
}

// StatsService gera o relatório administrativo a partir dos resumos salvos.
type StatsService interface {
	// Compute agrega todos os resumos salvos.
	Compute(ctx context.Context) (*models.Stats, error)
	// Report calcula as estatísticas e as envia ao canal do operador. Uma
	// falha de leitura é avisada no canal e também devolvida.
	Report(ctx context.Context) error
}

type statsService struct {
	lister    SummaryLister
	notifier  Notifier
	formatter *telegram.Formatter
	channel   telegram.Channel
	now       func() time.Time
	logger    *zap.Logger
}

// NewStatsService devolve um StatsService. notifier pode ser nil quando só
// Compute é usado.
func NewStatsService(
	lister SummaryLister,
	notifier Notifier,
	formatter *telegram.Formatter,
	channel telegram.Channel,
	logger *zap.Logger,
	now func() time.Time,
) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{
		lister:    lister,
		notifier:  notifier,
		formatter: formatter,
		channel:   channel,
		now:       now,
		logger:    logger.Named("stats"),
	}
}

func (s *statsService) Compute(ctx context.Context) (*models.Stats, error) {
	summaries, err := s.lister.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(summaries, s.now()), nil
}

func (s *statsService) Report(ctx context.Context) error {
	if !s.channel.Configured() {
		return &ConfigurationError{Missing: []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"}}
	}

	stats, err := s.Compute(ctx)
	var text string
	switch {
	case err != nil:
		statsRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Falha ao calcular estatísticas", zap.Error(err))
		text = s.formatter.FormatStatsFailure()
	case stats.Total == 0:
		statsRequestsTotal.WithLabelValues("empty").Inc()
		text = s.formatter.FormatNoStats()
	default:
		statsRequestsTotal.WithLabelValues("success").Inc()
		text = s.formatter.FormatStats(stats)
	}

	if sendErr := s.notifier.SendText(ctx, s.channel, text); sendErr != nil {
		s.logger.Error("Falha ao enviar estatísticas", zap.Error(sendErr))
		if err == nil {
			err = sendErr
		}
	}
	return err
}

// ComputeStats agrega os resumos em relação a now. As janelas são estritas:
// uma denúncia com exatamente 24h não conta como "hoje". Horário e dia de
// pico usam UTC e, no empate, vence a hora ou o dia mais tarde.
func ComputeStats(summaries []models.PersistedSummary, now time.Time) *models.Stats {
	st := &models.Stats{
		GeneratedAt: now.UTC(),
		Total:       len(summaries),
		ByTipo:      make(map[models.TipoDenuncia]int, len(models.Tipos)),
		ByUrgencia:  make(map[models.Urgencia]int, len(models.Urgencias)),
		PeakHourUTC: -1,
		PeakWeekday: -1,
	}
	for _, t := range models.Tipos {
		st.ByTipo[t] = 0
	}
	for _, u := range models.Urgencias {
		st.ByUrgencia[u] = 0
	}

	var byHour [24]int
	var byWeekday [7]int
	for _, sum := range summaries {
		age := now.Sub(sum.CreatedAt)
		if age < day {
			st.Last24h++
		}
		if age < week {
			st.Last7d++
		}
		if age < month {
			st.Last30d++
		}
		st.ByTipo[sum.Tipo]++
		st.ByUrgencia[sum.Urgencia]++

		utc := sum.CreatedAt.UTC()
		byHour[utc.Hour()]++
		byWeekday[int(utc.Weekday())]++
	}

	st.PeakHourUTC = peak(byHour[:])
	st.PeakWeekday = peak(byWeekday[:])
	return st
}

// peak devolve o índice com a maior contagem não nula, preferindo o mais
// tarde no empate, ou -1.
func peak(counts []int) int {
	best, bestCount := -1, 0
	for i, c := range counts {
		if c > 0 && c >= bestCount {
			best, bestCount = i, c
		}
	}
	return best
}
