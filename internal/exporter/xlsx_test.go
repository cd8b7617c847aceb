package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"chainviz/internal/optionchain"
)

func TestEncodeTableXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeTableXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, optionchain.Schema(), rows[0])
	assert.Equal(t, "18000", rows[1][optionchain.Strike])
	assert.Equal(t, "20.5", rows[1][optionchain.CallsLTP])
	assert.Equal(t, "9870", rows[2][optionchain.PutsOI])
}

func TestEncodeTableXLSX_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeTableXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestXLSXWriter_WriteTable(t *testing.T) {
	dir := t.TempDir()
	writer := NewXLSXWriter(dir, nil)

	path, err := writer.WriteTable("canonical.xlsx", sampleTable())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "canonical.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
