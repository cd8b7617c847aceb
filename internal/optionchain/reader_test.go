package optionchain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "option-chain-ED-NIFTY.csv", want: FormatCSV},
		{name: "CHAIN.CSV", want: FormatCSV},
		{name: "chain.xlsx", want: FormatXLSX},
		{name: "chain.xls", wantErr: true},
		{name: "chain.txt", wantErr: true},
		{name: "chain", wantErr: true},
		{name: "chain.csv.exe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFilename(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSV_RaggedAndQuoted(t *testing.T) {
	input := "a,b,c\n1,\"2,000\"\n3,4,5,6\n"

	raw, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, []string{"1", "2,000"}, raw[1])
	assert.Equal(t, 4, raw.Width())
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, int(NumFields)+edgeColumns)
	header[1] = "CALLS"
	header[12] = "PUTS"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	row := []interface{}{"1"}
	for _, cell := range exampleRow {
		row = append(row, cell)
	}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	// A label in the last column widens the sheet to the full export width.
	require.NoError(t, f.SetCellValue(sheet, "W3", "note"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	raw, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 2)
	assert.Len(t, raw[1], int(NumFields)+edgeColumns)

	table, err := Normalize(raw)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 18000.0, table.Rows[0].Strike())
	assert.Equal(t, 1500.0, table.Rows[0].Get(CallsChngInOI))
}

func TestRead_UnknownFormat(t *testing.T) {
	_, err := Read(Format("ods"), strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestReadXLSX_Corrupt(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("definitely not a zip archive"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
