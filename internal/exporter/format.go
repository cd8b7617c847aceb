package exporter

import (
	"strconv"

	"chainviz/internal/optionchain"
)

// formatFloat formats a value with the fewest digits that round-trip.
// Trailing zeros are never written, so 13.40 appears as 13.4.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// rowRecord formats one canonical row in schema order
func rowRecord(row optionchain.Row) []string {
	record := make([]string, optionchain.NumFields)
	for i, v := range row {
		record[i] = formatFloat(v)
	}
	return record
}

// TableRecords formats every row of table in schema order.
func TableRecords(table *optionchain.CanonicalTable) [][]string {
	if table == nil {
		return nil
	}
	records := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		records[i] = rowRecord(row)
	}
	return records
}
