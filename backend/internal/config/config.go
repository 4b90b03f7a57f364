package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Store drivers aceitos em STORE_DRIVER.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMySQL    = "mysql"
	StoreMemory   = "memory"
)

type Config struct {
	Port     string
	LogLevel string
	Timezone *time.Location

	Telegram TelegramConfig
	Store    StoreConfig
	SMTP     SMTPConfig
	Limits   LimitsConfig
}

// TelegramConfig guarda as configurações do canal de notificação. BotToken e
// ChatID podem estar vazios na carga; o pipeline rejeita cada denúncia com
// erro de configuração até serem definidos.
type TelegramConfig struct {
	BotToken          string
	ChatID            string
	APIBaseURL        string
	ParseMode         string
	EscapeDescription bool
	Timeout           time.Duration
	WebhookSecret     string
}

type StoreConfig struct {
	Driver      string
	RedisURL    string
	DatabaseURL string
	SQLitePath  string
	MySQLDSN    string
	Timeout     time.Duration
}

// SMTPConfig descreve explicitamente o transporte da cópia por e-mail.
// Host vazio desativa a cópia.
type SMTPConfig struct {
	Host      string
	Port      int
	Secure    bool
	Username  string
	Password  string
	TLSVerify bool
	From      string
	To        []string
}

type LimitsConfig struct {
	MaxAttachments     int
	MaxAttachmentBytes int64
	RateLimitPerMinute int
}

// Override altera a configuração lida do ambiente antes da validação.
type Override func(*Config)

// WithDatabaseURL força o store Postgres com a URL informada.
func WithDatabaseURL(url string) Override {
	return func(c *Config) {
		c.Store.Driver = StorePostgres
		c.Store.DatabaseURL = url
	}
}

func Load(overrides ...Override) (*Config, error) {
	// carrega .env em dev
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
			APIBaseURL:    getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			ParseMode:     getEnv("TELEGRAM_PARSE_MODE", "Markdown"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", "")),
			RedisURL:    firstEnv("REDIS_URL", "KV_URL"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SQLitePath:  getEnv("SQLITE_PATH", "escutasegura.db"),
			MySQLDSN:    os.Getenv("MYSQL_DSN"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
			To:       splitList(os.Getenv("SMTP_TO")),
		},
	}

	var err error
	if cfg.Telegram.EscapeDescription, err = getBool("TELEGRAM_ESCAPE_DESCRIPTION", false); err != nil {
		return nil, err
	}
	if cfg.Telegram.Timeout, err = getDuration("TELEGRAM_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Store.Timeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.SMTP.Secure, err = getBool("SMTP_SECURE", cfg.SMTP.Port == 465); err != nil {
		return nil, err
	}
	if cfg.SMTP.TLSVerify, err = getBool("SMTP_TLS_VERIFY", true); err != nil {
		return nil, err
	}
	if cfg.Limits.MaxAttachments, err = getInt("MAX_ATTACHMENTS", 10); err != nil {
		return nil, err
	}
	maxMB, err := getInt("MAX_ATTACHMENT_MB", 10)
	if err != nil {
		return nil, err
	}
	if cfg.Limits.MaxAttachments <= 0 {
		return nil, fmt.Errorf("MAX_ATTACHMENTS deve ser maior que zero, recebido %d", cfg.Limits.MaxAttachments)
	}
	if maxMB <= 0 {
		return nil, fmt.Errorf("MAX_ATTACHMENT_MB deve ser maior que zero, recebido %d", maxMB)
	}
	cfg.Limits.MaxAttachmentBytes = int64(maxMB) << 20
	if cfg.Limits.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	tz := getEnv("TIMEZONE", "America/Fortaleza")
	if cfg.Timezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("TIMEZONE inválido %q: %w", tz, err)
	}

	for _, o := range overrides {
		o(cfg)
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = inferDriver(cfg.Store)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Telegram.ParseMode != "Markdown" && cfg.Telegram.ParseMode != "MarkdownV2" {
		return nil, fmt.Errorf("TELEGRAM_PARSE_MODE deve ser Markdown ou MarkdownV2, recebido %q", cfg.Telegram.ParseMode)
	}
	return cfg, nil
}

// Configured indica se as duas credenciais do canal estão presentes.
func (c TelegramConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// Enabled indica se a cópia por SMTP deve ser ligada.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && len(c.To) > 0
}

func (s StoreConfig) validate() error {
	switch s.Driver {
	case StoreRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("STORE_DRIVER=redis exige REDIS_URL")
		}
	case StorePostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("STORE_DRIVER=postgres exige DATABASE_URL")
		}
	case StoreMySQL:
		if s.MySQLDSN == "" {
			return fmt.Errorf("STORE_DRIVER=mysql exige MYSQL_DSN")
		}
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER desconhecido: %q", s.Driver)
	}
	return nil
}

func inferDriver(s StoreConfig) string {
	switch {
	case s.RedisURL != "":
		return StoreRedis
	case s.DatabaseURL != "":
		return StorePostgres
	case s.MySQLDSN != "":
		return StoreMySQL
	}
	return StoreMemory
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s inválido %q: %w", key, v, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s inválido %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
