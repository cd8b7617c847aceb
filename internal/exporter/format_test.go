package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chainviz/internal/optionchain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0.0, expected: "0"},
		{name: "positive integer", input: 18000.0, expected: "18000"},
		{name: "negative change", input: -456.0, expected: "-456"},
		{name: "decimal with trailing zeros", input: 123.450000, expected: "123.45"},
		{name: "implied volatility", input: 24.91, expected: "24.91"},
		{name: "small decimal", input: 0.001234, expected: "0.001234"},
		{name: "large open interest", input: 1234567, expected: "1234567"},
		{name: "no exponent", input: 1e21, expected: "1000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestTableRecords(t *testing.T) {
	table := sampleTable()

	records := TableRecords(table)

	assert.Len(t, records, 2)
	for _, record := range records {
		assert.Len(t, record, int(optionchain.NumFields))
	}
	assert.Equal(t, "18000", records[0][optionchain.Strike])
	assert.Equal(t, "20.5", records[0][optionchain.CallsLTP])
	assert.Equal(t, "0", records[1][optionchain.CallsLTP])
	assert.Equal(t, "9870", records[1][optionchain.PutsOI])
}

func TestTableRecords_Nil(t *testing.T) {
	assert.Nil(t, TableRecords(nil))
	assert.Empty(t, TableRecords(&optionchain.CanonicalTable{}))
}
