// escutactl é a ferramenta administrativa do Escuta Segura.
//
// Uso:
//
//	escutactl stats [--send] [-o text|json|yaml]
//	escutactl migrate [--database-url=<url>]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
	"github.com/laerciomonteiro/escutasegura/backend/internal/logging"
)

// version é definida no build via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "escutactl",
	Short: "Administração do Escuta Segura",
	Long:  "escutactl lê os resumos persistidos das denúncias, gera estatísticas\ne aplica o schema das tabelas KV.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "warn", "nível de log do zap (stderr)")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.Version = version
}

// loadEnv carrega a mesma configuração do servidor, com um logger que só
// fala quando pedido.
func loadEnv(overrides ...config.Override) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(overrides...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(rootFlags.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
