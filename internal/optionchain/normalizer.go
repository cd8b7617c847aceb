package optionchain

import (
	"math"
	"strconv"
	"strings"
)

// edgeColumns is the number of non-data columns wrapping the 21 schema
// columns: the index column on the left and the label column on the right.
const edgeColumns = 2

// placeholders are the tokens exports use for an unquoted cell.
var placeholders = map[string]bool{
	"-":  true,
	" -": true,
}

// Cell is the result of coercing one raw cell. Valid is false for
// placeholders, blanks and anything that does not read as a finite number.
type Cell struct {
	Value float64
	Valid bool
}

// ParseCell coerces raw cell text to a number. Thousands separators are
// stripped first, so "1,234" and "1234" produce the same value.
func ParseCell(raw string) Cell {
	if placeholders[raw] {
		return Cell{}
	}

	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" || strings.ContainsAny(s, "xX") {
		return Cell{}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Value: v, Valid: true}
}

// OrZero returns the value, or 0 when the cell is missing.
func (c Cell) OrZero() float64 {
	if !c.Valid {
		return 0
	}
	return c.Value
}

// Normalize converts a raw export into a CanonicalTable.
//
// The first row is discarded, the first and last columns are dropped and the
// remaining 21 columns are assigned to Schema by position. Rows without a
// numeric strike are removed; every other missing cell becomes 0.0.
//
// A *SchemaError is returned when the export does not have exactly 21 data
// columns or when no row has a usable strike.
func Normalize(raw RawTable) (*CanonicalTable, error) {
	if len(raw) < 2 {
		return nil, &SchemaError{Reason: "export has no data rows"}
	}
	body := raw[1:]

	columns := body.Width() - edgeColumns
	if columns < int(NumFields) {
		return nil, &SchemaError{Reason: "too few columns to map option chain schema", Columns: max(columns, 0)}
	}
	if columns > int(NumFields) {
		return nil, &SchemaError{Reason: "too many columns to map option chain schema", Columns: columns}
	}

	table := &CanonicalTable{
		Rows: make([]Row, 0, len(body)),
		Stats: Stats{
			RowsRead:     len(body),
			ColumnsFound: columns,
		},
	}

	var cells [NumFields]Cell
	for _, record := range body {
		coerceRow(record, &cells)

		if !cells[Strike].Valid {
			table.Stats.RowsDropped++
			continue
		}

		var row Row
		for f, cell := range cells {
			if !cell.Valid {
				table.Stats.CellsFilled++
			}
			row[f] = cell.OrZero()
		}
		table.Rows = append(table.Rows, row)
	}

	table.Stats.RowsKept = len(table.Rows)
	if table.Stats.RowsKept == 0 {
		return nil, &SchemaError{Reason: "no rows with a valid strike price"}
	}
	return table, nil
}

// coerceRow fills cells from the data columns of record. Short rows are
// treated as padded with missing cells.
func coerceRow(record []string, cells *[NumFields]Cell) {
	for f := range cells {
		i := f + 1 // skip the index column
		if i >= len(record) {
			cells[f] = Cell{}
			continue
		}
		cells[f] = ParseCell(record[i])
	}
}
