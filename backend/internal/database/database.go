package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
)

// Open devolve o backend KV escolhido por cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, zl *zap.Logger) (KV, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	zl.Info("Abrindo store", zap.String("driver", cfg.Store.Driver), zap.String("target", StoreTarget(cfg.Store)))
	switch cfg.Store.Driver {
	case config.StoreRedis:
		return OpenRedisKV(ctx, cfg.Store.RedisURL)
	case config.StorePostgres:
		return OpenPostgresKV(ctx, cfg.Store.DatabaseURL)
	case config.StoreSQLite, config.StoreMySQL:
		db, err := Connect(cfg)
		if err != nil {
			return nil, err
		}
		return NewGormKV(db)
	case config.StoreMemory:
		zl.Warn("Usando store em memória; os resumos se perdem ao reiniciar")
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("store driver desconhecido: %q", cfg.Store.Driver)
}

// Connect abre a conexão gorm para sqlite e mysql. Postgres usa o pgx.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		dialector = sqlite.Open(cfg.Store.SQLitePath)
	case config.StoreMySQL:
		dsn, err := ParseMySQLDSN(cfg.Store.MySQLDSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.New(mysql.Config{DSNConfig: dsn})
	default:
		return nil, fmt.Errorf("driver %q não usa gorm", cfg.Store.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "[gorm] ", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ParseMySQLDSN interpreta um DSN do go-sql-driver e força as opções de que
// as tabelas KV dependem.
func ParseMySQLDSN(raw string) (*gomysql.Config, error) {
	dsn, err := gomysql.ParseDSN(raw)
	if err != nil {
		return nil, fmt.Errorf("MYSQL_DSN inválido: %w", err)
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	if dsn.Params == nil {
		dsn.Params = map[string]string{}
	}
	if _, ok := dsn.Params["charset"]; !ok {
		dsn.Params["charset"] = "utf8mb4"
	}
	return dsn, nil
}

// RedactMySQLDSN devolve o DSN com a senha mascarada, para logs.
func RedactMySQLDSN(raw string) string {
	dsn, err := gomysql.ParseDSN(raw)
	if err != nil {
		return "<invalid-dsn>"
	}
	if dsn.Passwd != "" {
		dsn.Passwd = "REDACTED"
	}
	return dsn.FormatDSN()
}

// StoreTarget descreve o destino do store sem credenciais, para logs.
func StoreTarget(s config.StoreConfig) string {
	switch s.Driver {
	case config.StoreRedis:
		return redactURL(s.RedisURL)
	case config.StorePostgres:
		return redactURL(s.DatabaseURL)
	case config.StoreMySQL:
		return RedactMySQLDSN(s.MySQLDSN)
	case config.StoreSQLite:
		return s.SQLitePath
	}
	return s.Driver
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid-url>"
	}
	return u.Redacted()
}
