package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
	"github.com/laerciomonteiro/escutasegura/backend/internal/controllers"
	"github.com/laerciomonteiro/escutasegura/backend/internal/database"
	"github.com/laerciomonteiro/escutasegura/backend/internal/logging"
	"github.com/laerciomonteiro/escutasegura/backend/internal/mailer"
	"github.com/laerciomonteiro/escutasegura/backend/internal/middleware"
	"github.com/laerciomonteiro/escutasegura/backend/internal/services"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Carregar as configs
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configs: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Falha ao criar logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Servidor parou com erro", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Conectar ao store
	kv, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("falha ao abrir store %s: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Warn("Falha ao fechar o store", zap.Error(err))
		}
	}()
	gateway := database.NewGateway(kv, logger)

	if !cfg.Telegram.Configured() {
		logger.Warn("Credenciais do Telegram ausentes; denúncias serão rejeitadas até TELEGRAM_BOT_TOKEN e TELEGRAM_CHAT_ID serem definidos")
	}
	markup := telegram.DescriptionRaw
	if cfg.Telegram.EscapeDescription {
		markup = telegram.DescriptionEscaped
	}
	formatter := telegram.NewFormatter(cfg.Telegram.ParseMode, markup, cfg.Timezone)
	bot := telegram.NewClient(logger, telegram.ClientConfig{
		BaseURL:   cfg.Telegram.APIBaseURL,
		ParseMode: formatter.ParseMode,
		Timeout:   cfg.Telegram.Timeout,
	})
	channel := telegram.Channel{Token: cfg.Telegram.BotToken, ChatID: cfg.Telegram.ChatID}

	// Instancia serviços
	opts := []services.Option{services.WithStoreTimeout(cfg.Store.Timeout)}
	if cfg.SMTP.Enabled() {
		opts = append(opts, services.WithMirror(mailer.New(cfg.SMTP, logger)))
	}
	denunciaSvc := services.NewDenunciaService(gateway, bot, formatter, channel, logger, opts...)
	statsSvc := services.NewStatsService(gateway, bot, formatter, channel, logger, nil)

	// Cria controllers
	denunciaCtrl := controllers.NewDenunciaController(denunciaSvc, cfg.Limits, logger)
	telegramCtrl := controllers.NewTelegramController(statsSvc, cfg.Telegram.ChatID, cfg.Telegram.WebhookSecret, logger)

	// Inicializa Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.Anonymize())
	e.Use(logging.RequestLogger(logger))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Registra rotas
	api := e.Group("/api")
	denunciaCtrl.Register(api, middleware.RateLimit(cfg.Limits.RateLimitPerMinute))
	telegramCtrl.Register(api)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Servidor ouvindo", zap.String("port", cfg.Port), zap.String("store", cfg.Store.Driver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Encerrando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
