package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
	"github.com/laerciomonteiro/escutasegura/backend/internal/database"
	"github.com/laerciomonteiro/escutasegura/backend/internal/database/migrations"
)

var migrateFlags struct {
	databaseURL string
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Cria as tabelas KV usadas pelos stores SQL",
	Long:  "Aplica o schema embutido. No Postgres o arquivo SQL roda via database/sql;\nsqlite e mysql usam o AutoMigrate do gorm. redis e memory não precisam de nada.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFlags.databaseURL, "database-url", "", "URL do Postgres (padrão: DATABASE_URL)")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnv(migrateOverrides()...)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	out := cmd.OutOrStdout()

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		tables, err := applySchema(cmd.Context(), db)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Migration executada. Tabelas:\n")
		for _, t := range tables {
			fmt.Fprintf(out, "  ✓ %s\n", t)
		}
	case config.StoreSQLite, config.StoreMySQL:
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.Store.Driver, err)
		}
		if _, err := database.NewGormKV(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		fmt.Fprintf(out, "Migration executada (%s).\n", cfg.Store.Driver)
	default:
		fmt.Fprintf(out, "Store %q não tem schema; nada a fazer.\n", cfg.Store.Driver)
	}
	return nil
}

// migrateOverrides entra antes da validação, então --database-url dispensa
// DATABASE_URL mesmo com STORE_DRIVER=postgres.
func migrateOverrides() []config.Override {
	if migrateFlags.databaseURL == "" {
		return nil
	}
	return []config.Override{config.WithDatabaseURL(migrateFlags.databaseURL)}
}

// applySchema executa o DDL embutido e lista as tabelas kv_ existentes
// depois da execução.
func applySchema(ctx context.Context, db *sql.DB) ([]string, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	schema, err := migrations.Schema()
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name LIKE 'kv\_%'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
