package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"playerstats/pkg/contracts/domain"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.Value
		expected string
	}{
		{"integer", domain.Number(22), "22"},
		{"fraction", domain.Number(33.33), "33.33"},
		{"negative", domain.Number(-0.5), "-0.5"},
		{"large", domain.Number(1234567), "1234567"},
		{"text", domain.Text("25.00%"), "25.00%"},
		{"missing", domain.Missing(), ""},
		{"nan", domain.NaN(), ""},
		{"inf", domain.Number(math.Inf(1)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatCell(tt.input))
		})
	}
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, 1.5, cellValue(domain.Number(1.5)))
	assert.Equal(t, "N/A", cellValue(domain.Text("N/A")))
	assert.Nil(t, cellValue(domain.Missing()))
	assert.Nil(t, cellValue(domain.NaN()))
}
