package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDateRange(t *testing.T) {
	loc := LoadLocation("America/Sao_Paulo")
	from := time.Date(2025, 2, 27, 22, 15, 0, 0, loc)
	to := time.Date(2025, 3, 2, 1, 0, 0, 0, loc)

	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, GenerateDateRange(from, to))
	assert.Equal(t, []string{"2025-02-27"}, GenerateDateRange(from, from))
	assert.Empty(t, GenerateDateRange(to, from))
	assert.Empty(t, GenerateDateRange(time.Time{}, to))
}

func TestLoadLocationFallback(t *testing.T) {
	loc := LoadLocation("Not/AZone")
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -3*60*60, offset)
}
