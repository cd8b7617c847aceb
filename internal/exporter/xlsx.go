package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"chainviz/internal/optionchain"
)

// SheetName is the worksheet the canonical table is written to.
const SheetName = "Canonical"

// XLSXWriter exports the canonical table as an Excel workbook
type XLSXWriter struct {
	dir    string
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer that resolves relative file names
// against dir.
func NewXLSXWriter(dir string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{dir: dir, logger: logger}
}

// WriteTable writes the table to filePath and returns the resolved path.
func (w *XLSXWriter) WriteTable(filePath string, table *optionchain.CanonicalTable) (string, error) {
	fullPath := resolvePath(w.dir, filePath)

	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", table.Len()))

	file, err := createFile(fullPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := EncodeTableXLSX(file, table); err != nil {
		os.Remove(fullPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// EncodeTableXLSX writes the table as a single sheet workbook to out. The
// header row is bold and frozen; values are stored as numbers.
func EncodeTableXLSX(out io.Writer, table *optionchain.CanonicalTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	header := make([]interface{}, optionchain.NumFields)
	for i, name := range optionchain.Schema() {
		header[i] = excelize.Cell{StyleID: bold, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	if table != nil {
		for i, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			values := make([]interface{}, optionchain.NumFields)
			for j, v := range row {
				values[j] = v
			}
			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
