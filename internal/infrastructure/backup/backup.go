// Package backup exporta as tabelas do banco para arquivos JSON e SQL.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/database/migrations"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// maxConcurrentTables limita as consultas simultâneas ao banco
const maxConcurrentTables = 4

// Column descreve uma coluna como o banco a reporta
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// TableDump is one table's schema and every row, in primary key order.
type TableDump struct {
	Name    string
	Columns []Column
	Rows    []map[string]interface{}
}

// Options selects tables and output formats for Run.
type Options struct {
	// Tables restricts the export; empty means every known table.
	Tables    []string
	JSON      bool
	SQL       bool
	Schema    bool
	OutputDir string
}

// Result reports what Run wrote.
type Result struct {
	JSONPath string
	SQLPath  string
	Tables   int
	Rows     int
}

// Exporter lê as tabelas via gorm e escreve os arquivos de backup
type Exporter struct {
	db  *gorm.DB
	now func() time.Time
}

// NewExporter creates an exporter over db.
func NewExporter(db *gorm.DB) *Exporter {
	return &Exporter{db: db, now: time.Now}
}

// KnownTables lists the application tables in dependency order.
func (e *Exporter) KnownTables() ([]string, error) {
	var names []string
	for _, model := range migrations.Models() {
		stmt := &gorm.Statement{DB: e.db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("erro ao resolver tabela de %T: %w", model, err)
		}
		names = append(names, stmt.Schema.Table)
	}
	return names, nil
}

// resolveTables keeps the requested tables in dependency order and rejects unknown names.
func (e *Exporter) resolveTables(requested []string) ([]string, error) {
	known, err := e.KnownTables()
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return known, nil
	}

	wanted := map[string]bool{}
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name != "" {
			wanted[name] = true
		}
	}
	var out []string
	for _, name := range known {
		if wanted[name] {
			out = append(out, name)
			delete(wanted, name)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for name := range wanted {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("tabelas desconhecidas: %s (disponíveis: %s)", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("nenhuma tabela selecionada")
	}
	return out, nil
}

// Dump reads the tables concurrently. Results keep the order of tables.
func (e *Exporter) Dump(ctx context.Context, tables []string) ([]TableDump, error) {
	dumps := make([]TableDump, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTables)
	for i, name := range tables {
		g.Go(func() error {
			dump, err := e.dumpTable(gctx, name)
			if err != nil {
				return fmt.Errorf("erro ao exportar tabela %s: %w", name, err)
			}
			dumps[i] = dump
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dumps, nil
}

func (e *Exporter) dumpTable(ctx context.Context, name string) (TableDump, error) {
	db := e.db.WithContext(ctx)
	dump := TableDump{Name: name, Rows: []map[string]interface{}{}}

	types, err := db.Migrator().ColumnTypes(name)
	if err != nil {
		return dump, err
	}
	hasID := false
	for _, ct := range types {
		col := Column{Name: ct.Name(), Type: strings.ToUpper(ct.DatabaseTypeName())}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = nullable
		}
		if pk, ok := ct.PrimaryKey(); ok {
			col.PrimaryKey = pk
		}
		if col.Name == "id" {
			hasID = true
		}
		dump.Columns = append(dump.Columns, col)
	}

	query := db.Table(name)
	if hasID {
		query = query.Order("id")
	}
	var rows []map[string]interface{}
	if err := query.Find(&rows).Error; err != nil {
		return dump, err
	}
	for _, row := range rows {
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		dump.Rows = append(dump.Rows, row)
	}
	return dump, nil
}

// Run dumps the selected tables and writes backup-<timestamp>.json and/or .sql.
func (e *Exporter) Run(ctx context.Context, opts Options) (*Result, error) {
	if !opts.JSON && !opts.SQL {
		return nil, fmt.Errorf("nenhum formato de saída selecionado")
	}
	tables, err := e.resolveTables(opts.Tables)
	if err != nil {
		return nil, err
	}

	start := e.now()
	dumps, err := e.Dump(ctx, tables)
	if err != nil {
		return nil, err
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório de saída: %w", err)
	}

	result := &Result{Tables: len(dumps)}
	for _, d := range dumps {
		result.Rows += len(d.Rows)
	}

	base := filepath.Join(dir, "backup-"+start.UTC().Format("20060102-150405"))
	if opts.JSON {
		result.JSONPath = base + ".json"
		if err := writeFile(result.JSONPath, func(f *os.File) error { return WriteJSON(f, dumps, start) }); err != nil {
			return nil, err
		}
	}
	if opts.SQL {
		result.SQLPath = base + ".sql"
		if err := writeFile(result.SQLPath, func(f *os.File) error { return WriteSQL(f, dumps, opts.Schema, start) }); err != nil {
			return nil, err
		}
	}

	slog.Info("Backup completed",
		"tables", result.Tables,
		"rows", result.Rows,
		"json", result.JSONPath,
		"sql", result.SQLPath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("erro ao criar %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("erro ao escrever %s: %w", path, err)
	}
	return f.Close()
}
