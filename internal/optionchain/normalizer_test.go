package optionchain

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleRow is a data row after the header and edge columns are removed.
var exampleRow = []string{
	"100", "1,500", "50", "12.5", "20.5", "1.2", "10", "20", "21", "15",
	"18000",
	"8", "19", "20", "5", "0.8", "15.2", "11.0", "0", "40", "800",
}

// wrap adds the decorative header row and the two edge columns around data
// rows, the way exchange exports lay them out.
func wrap(rows ...[]string) RawTable {
	raw := RawTable{make([]string, int(NumFields)+edgeColumns)}
	raw[0][1] = "CALLS"
	raw[0][12] = "PUTS"
	for i, row := range rows {
		record := append([]string{string(rune('0' + i%10))}, row...)
		record = append(record, "")
		raw = append(raw, record)
	}
	return raw
}

func withCell(row []string, f Field, value string) []string {
	out := append([]string(nil), row...)
	out[f] = value
	return out
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  float64
		valid bool
	}{
		{name: "plain integer", raw: "1234", want: 1234, valid: true},
		{name: "comma grouped", raw: "1,234", want: 1234, valid: true},
		{name: "grouped decimal", raw: "18,000.00", want: 18000, valid: true},
		{name: "negative", raw: "-15.5", want: -15.5, valid: true},
		{name: "surrounding spaces", raw: " 42 ", want: 42, valid: true},
		{name: "dash placeholder", raw: "-"},
		{name: "spaced dash placeholder", raw: " -"},
		{name: "empty", raw: ""},
		{name: "label text", raw: "STRIKE"},
		{name: "not a number", raw: "NaN"},
		{name: "infinity", raw: "Inf"},
		{name: "hex literal", raw: "0x10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCell(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Value)
			}
		})
	}
}

func TestParseCell_CommaStrippingIsEquivalent(t *testing.T) {
	assert.Equal(t, ParseCell("1234"), ParseCell("1,234"))
	assert.Equal(t, 1234.0, ParseCell("1,234").Value)
}

func TestNormalize_ExampleRow(t *testing.T) {
	table, err := Normalize(wrap(exampleRow))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, 18000.0, row.Strike())
	assert.Equal(t, 20.5, row.Get(CallsLTP))
	assert.Equal(t, 1500.0, row.Get(CallsChngInOI))
	assert.Equal(t, 100.0, row.Get(CallsOI))
	assert.Equal(t, 12.5, row.Get(CallsIV))
	assert.Equal(t, 15.2, row.Get(PutsLTP))
	assert.Equal(t, 800.0, row.Get(PutsOI))
	assert.Equal(t, 11.0, row.Get(PutsIV))
	assert.Equal(t, 0.0, row.Get(PutsVolume))
}

func TestNormalize_MapsColumnsByPosition(t *testing.T) {
	data := make([]string, NumFields)
	for i := range data {
		data[i] = string(rune('1' + i%9))
	}
	raw := wrap(data)
	// Labels in the header are ignored entirely.
	for i := range raw[0] {
		raw[0][i] = "STRIKE"
	}

	table, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	for f := Field(0); f < NumFields; f++ {
		want := float64(1 + int(f)%9)
		assert.Equalf(t, want, table.Rows[0].Get(f), "field %s", f)
	}
}

func TestNormalize_NumericInputUnchanged(t *testing.T) {
	data := []string{
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
		"18000",
		"11", "12", "13", "14", "15", "16", "17", "18", "19", "20.25",
	}

	table, err := Normalize(wrap(data))
	require.NoError(t, err)

	for f, raw := range data {
		assert.Equal(t, ParseCell(raw).Value, table.Rows[0][f])
	}
	assert.Zero(t, table.Stats.CellsFilled)
}

func TestNormalize_PlaceholderBecomesZero(t *testing.T) {
	for f := Field(0); f < NumFields; f++ {
		if f == Strike {
			continue
		}
		t.Run(f.String(), func(t *testing.T) {
			table, err := Normalize(wrap(withCell(exampleRow, f, "-")))
			require.NoError(t, err)
			assert.Equal(t, 0.0, table.Rows[0].Get(f))
			assert.Equal(t, 1, table.Stats.CellsFilled)
		})
	}
}

func TestNormalize_DropsRowsWithoutStrike(t *testing.T) {
	tests := []struct {
		name   string
		strike string
	}{
		{name: "dash", strike: "-"},
		{name: "spaced dash", strike: " -"},
		{name: "empty", strike: ""},
		{name: "label", strike: "STRIKE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := withCell(exampleRow, Strike, "18,100")
			raw := wrap(withCell(exampleRow, Strike, tt.strike), kept)

			table, err := Normalize(raw)
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())
			assert.Equal(t, 18100.0, table.Rows[0].Strike())
			assert.Equal(t, 1, table.Stats.RowsDropped)

			views := BuildViews(table)
			for _, view := range views.All() {
				for _, p := range append(view.Calls, view.Puts...) {
					assert.Equal(t, 18100.0, p.Strike)
				}
			}
		})
	}
}

func TestNormalize_PreservesRowOrder(t *testing.T) {
	raw := wrap(
		withCell(exampleRow, Strike, "18200"),
		withCell(exampleRow, Strike, "17900"),
		withCell(exampleRow, Strike, "18050"),
	)

	table, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{18200, 17900, 18050}, table.Column(Strike))
}

func TestNormalize_PadsShortRows(t *testing.T) {
	short := append([]string{"0"}, exampleRow[:12]...)
	raw := wrap(exampleRow)
	raw = append(raw, short)

	table, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 8.0, table.Rows[1].Get(PutsBidQty))
	assert.Equal(t, 0.0, table.Rows[1].Get(PutsOI))
}

func TestNormalize_SchemaErrors(t *testing.T) {
	allDash := make([]string, NumFields)
	for i := range allDash {
		allDash[i] = "-"
	}

	tests := []struct {
		name string
		raw  RawTable
	}{
		{name: "empty input", raw: RawTable{}},
		{name: "header only", raw: wrap()},
		{name: "too few columns", raw: RawTable{{"h"}, append([]string{"0"}, exampleRow[:15]...)}},
		{name: "too many columns", raw: wrap(append(append([]string(nil), exampleRow...), "1", "2"))},
		{name: "every strike missing", raw: wrap(allDash, withCell(exampleRow, Strike, "-"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, ErrSchema))

			var schemaErr *SchemaError
			assert.True(t, errors.As(err, &schemaErr))
		})
	}
}

func TestNormalize_ExchangeExport(t *testing.T) {
	f, err := os.Open("testdata/nifty_chain.csv")
	require.NoError(t, err)
	defer f.Close()

	raw, err := ReadCSV(f)
	require.NoError(t, err)

	table, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []float64{17800, 17900, 18000, 18100}, table.Column(Strike))
	assert.Equal(t, Stats{
		RowsRead:     7,
		RowsKept:     4,
		RowsDropped:  3,
		CellsFilled:  21,
		ColumnsFound: 21,
	}, table.Stats)

	assert.Equal(t, []float64{0, 120, 100, 2450}, table.Column(CallsOI))
	assert.Equal(t, []float64{9870, 18400, 800, 0}, table.Column(PutsOI))
	assert.Equal(t, []float64{0, -20, 1500, 310}, table.Column(CallsChngInOI))
}
