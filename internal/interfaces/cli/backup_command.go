// Package cli contém os comandos de linha de comando (cobra).
package cli

import (
	"fmt"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/config"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/backup"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database"
	"github.com/spf13/cobra"
)

// BackupOptions holds the backup command flags.
type BackupOptions struct {
	JSONOnly    bool
	SQLOnly     bool
	NoSchema    bool
	Output      string
	Tables      []string
	DatabaseURL string
	Driver      string
}

// NewBackupCommand creates the backup command. cfg supplies defaults for every flag.
func NewBackupCommand(cfg *config.Config) *cobra.Command {
	opts := &BackupOptions{}

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Exporta as tabelas para arquivos JSON e SQL",
		Long: `Exporta todas as tabelas (ou as escolhidas com --tables) para
backup-<timestamp>.json e backup-<timestamp>.sql no diretório de saída.

O arquivo SQL traz CREATE TABLE (exceto com --no-schema) e um INSERT por linha.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(cmd, cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOnly, "json-only", false, "write only the JSON file")
	cmd.Flags().BoolVar(&opts.SQLOnly, "sql-only", false, "write only the SQL file")
	cmd.Flags().BoolVar(&opts.NoSchema, "no-schema", false, "omit CREATE TABLE statements from the SQL file")
	cmd.Flags().StringVar(&opts.Output, "output", cfg.Backup.OutputDir, "output directory")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", nil, "comma separated tables to export (default all)")
	cmd.Flags().StringVar(&opts.DatabaseURL, "database-url", cfg.Database.URL, "database URL (default DATABASE_URL)")
	cmd.Flags().StringVar(&opts.Driver, "driver", cfg.Database.Driver, "database driver (postgres|sqlite)")
	cmd.MarkFlagsMutuallyExclusive("json-only", "sql-only")

	return cmd
}

func runBackup(cmd *cobra.Command, cfg *config.Config, opts *BackupOptions) error {
	dbCfg := cfg.Database
	dbCfg.URL = opts.DatabaseURL
	dbCfg.Driver = strings.ToLower(opts.Driver)

	db, err := database.SetupDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("erro ao conectar ao banco: %w", err)
	}
	defer database.Close(db)
	if err := database.Ping(db); err != nil {
		return fmt.Errorf("erro ao conectar ao banco: %w", err)
	}

	result, err := backup.NewExporter(db).Run(cmd.Context(), backup.Options{
		Tables:    opts.Tables,
		JSON:      !opts.SQLOnly,
		SQL:       !opts.JSONOnly,
		Schema:    !opts.NoSchema,
		OutputDir: opts.Output,
	})
	if err != nil {
		return fmt.Errorf("erro no backup: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backup concluído: %d tabelas, %d linhas\n", result.Tables, result.Rows)
	if result.JSONPath != "" {
		fmt.Fprintf(out, "  JSON: %s\n", result.JSONPath)
	}
	if result.SQLPath != "" {
		fmt.Fprintf(out, "  SQL:  %s\n", result.SQLPath)
	}
	return nil
}
