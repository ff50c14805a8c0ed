package utils

import (
	"log/slog"
	"time"
)

// LoadLocation retorna o fuso horário configurado (APP_TIMEZONE).
// Sem tzdata disponível, cai para UTC-3 (horário de Brasília).
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Could not load timezone, falling back to UTC-3", "timezone", name, "error", err)
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// StartOfDay normaliza t para a meia-noite no seu próprio fuso
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GenerateDateRange gera um array de strings de datas no formato "YYYY-MM-DD"
// para todas as datas no intervalo from até to (inclusive)
func GenerateDateRange(from, to time.Time) []string {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return []string{}
	}

	from = StartOfDay(from)
	to = StartOfDay(to)

	var result []string
	for current := from; !current.After(to); current = current.AddDate(0, 0, 1) {
		result = append(result, current.Format("2006-01-02"))
	}
	return result
}
