package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/laerciomonteiro/escutasegura/backend/internal/database"
	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
	"github.com/laerciomonteiro/escutasegura/backend/internal/services"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var statsFlags struct {
	send   bool
	output string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Agrega os resumos de denúncias salvos",
	Long:  "Lê todos os resumos persistidos e imprime os totais, as janelas de 24h/7d/30d,\na divisão por tipo e urgência e o horário e dia de pico (UTC).\nCom --send o relatório também é enviado ao chat do operador no Telegram.",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.BoolVar(&statsFlags.send, "send", false, "Também envia o relatório para TELEGRAM_CHAT_ID")
	f.StringVarP(&statsFlags.output, "output", "o", outputText, "Formato de saída: text, json ou yaml")
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := checkOutput(statsFlags.output); err != nil {
		return err
	}
	cfg, logger, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	kv, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.Store.Driver, err)
	}
	defer kv.Close()

	formatter := telegram.NewFormatter(cfg.Telegram.ParseMode, telegram.DescriptionRaw, cfg.Timezone)
	bot := telegram.NewClient(logger, telegram.ClientConfig{
		BaseURL:   cfg.Telegram.APIBaseURL,
		ParseMode: formatter.ParseMode,
		Timeout:   cfg.Telegram.Timeout,
	})
	channel := telegram.Channel{Token: cfg.Telegram.BotToken, ChatID: cfg.Telegram.ChatID}
	svc := services.NewStatsService(database.NewGateway(kv, logger), bot, formatter, channel, logger, nil)

	stats, err := svc.Compute(ctx)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}
	if err := writeStats(cmd.OutOrStdout(), statsFlags.output, stats); err != nil {
		return err
	}

	if statsFlags.send {
		if err := svc.Report(ctx); err != nil {
			return fmt.Errorf("send stats: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Relatório enviado ao chat do operador.")
	}
	return nil
}

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

func writeStats(w io.Writer, format string, s *models.Stats) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return writeStatsText(w, s)
}

var weekdays = [...]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

func writeStatsText(w io.Writer, s *models.Stats) error {
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "Nenhuma denúncia encontrada.")
		return err
	}
	fmt.Fprintf(w, "Total:   %d\n", s.Total)
	fmt.Fprintf(w, "24h:     %d\n", s.Last24h)
	fmt.Fprintf(w, "7d:      %d\n", s.Last7d)
	fmt.Fprintf(w, "30d:     %d\n", s.Last30d)

	fmt.Fprintf(w, "Tipo:\n")
	for _, t := range models.Tipos {
		fmt.Fprintf(w, "  %-9s %d\n", t, s.ByTipo[t])
	}
	fmt.Fprintf(w, "Urgência:\n")
	for _, u := range models.Urgencias {
		fmt.Fprintf(w, "  %-9s %d\n", u, s.ByUrgencia[u])
	}

	peakHour, peakDay := "N/A", "N/A"
	if s.PeakHourUTC >= 0 {
		peakHour = fmt.Sprintf("%02dh-%02dh UTC", s.PeakHourUTC, s.PeakHourUTC+1)
	}
	if s.PeakWeekday >= 0 && s.PeakWeekday < len(weekdays) {
		peakDay = weekdays[s.PeakWeekday]
	}
	fmt.Fprintf(w, "Pico:    %s\n", peakHour)
	_, err := fmt.Fprintf(w, "Dia:     %s\n", peakDay)
	return err
}
