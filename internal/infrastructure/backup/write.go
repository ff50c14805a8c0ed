package backup

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type jsonTable struct {
	Name     string                   `json:"name"`
	Columns  []string                 `json:"columns"`
	RowCount int                      `json:"rowCount"`
	Rows     []map[string]interface{} `json:"rows"`
}

type jsonBackup struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Tables      []jsonTable `json:"tables"`
}

// WriteJSON writes every table with its rows as one indented document.
func WriteJSON(w io.Writer, dumps []TableDump, generatedAt time.Time) error {
	doc := jsonBackup{GeneratedAt: generatedAt.UTC(), Tables: make([]jsonTable, 0, len(dumps))}
	for _, d := range dumps {
		cols := make([]string, 0, len(d.Columns))
		for _, c := range d.Columns {
			cols = append(cols, c.Name)
		}
		doc.Tables = append(doc.Tables, jsonTable{Name: d.Name, Columns: cols, RowCount: len(d.Rows), Rows: d.Rows})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteSQL writes optional CREATE TABLE statements followed by one INSERT per row.
func WriteSQL(w io.Writer, dumps []TableDump, schema bool, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)

	names := make([]string, 0, len(dumps))
	for _, d := range dumps {
		names = append(names, d.Name)
	}
	fmt.Fprintf(bw, "-- Workflow Insights backup\n")
	fmt.Fprintf(bw, "-- Generated at %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "-- Tables: %s\n", strings.Join(names, ", "))

	for _, d := range dumps {
		fmt.Fprintf(bw, "\n-- Table: %s (%d rows)\n", d.Name, len(d.Rows))
		if schema {
			writeCreateTable(bw, d)
		}

		cols := make([]string, 0, len(d.Columns))
		for _, c := range d.Columns {
			cols = append(cols, quoteIdent(c.Name))
		}
		colList := strings.Join(cols, ", ")
		for _, row := range d.Rows {
			values := make([]string, 0, len(d.Columns))
			for _, c := range d.Columns {
				values = append(values, sqlLiteral(row[c.Name]))
			}
			fmt.Fprintf(bw, "INSERT INTO %s (%s) VALUES (%s);\n", quoteIdent(d.Name), colList, strings.Join(values, ", "))
		}
	}
	return bw.Flush()
}

func writeCreateTable(w io.Writer, d TableDump) {
	var lines []string
	var pks []string
	for _, c := range d.Columns {
		line := "  " + quoteIdent(c.Name) + " " + c.Type
		if !c.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)
		if c.PrimaryKey {
			pks = append(pks, quoteIdent(c.Name))
		}
	}
	if len(pks) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(pks, ", ")+")")
	}
	fmt.Fprintf(w, "CREATE TABLE IF NOT EXISTS %s (\n%s\n);\n", quoteIdent(d.Name), strings.Join(lines, ",\n"))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// sqlLiteral renders a scanned value as a portable SQL literal.
func sqlLiteral(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return quoteString(x.UTC().Format("2006-01-02 15:04:05.999999Z07:00"))
	case *time.Time:
		if x == nil {
			return "NULL"
		}
		return sqlLiteral(*x)
	case []byte:
		return quoteString(string(x))
	case string:
		return quoteString(x)
	}
	return quoteString(fmt.Sprint(v))
}
