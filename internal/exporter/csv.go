package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"chainviz/internal/optionchain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer that resolves relative file names
// against dir.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger}
}

// WriteTable streams the canonical table to filePath under the schema
// header and returns the resolved path. bomPrefix starts the file with a
// UTF-8 BOM for Excel.
func (w *CSVWriter) WriteTable(filePath string, table *optionchain.CanonicalTable, bomPrefix bool) (string, error) {
	fullPath := resolvePath(w.dir, filePath)

	stream, err := w.CreateStreamWriter(filePath, optionchain.Schema(), bomPrefix)
	if err != nil {
		return "", err
	}
	if table != nil {
		for i, row := range table.Rows {
			if err := stream.WriteRow(row); err != nil {
				stream.Close()
				return "", fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", fullPath, err)
	}

	w.logger.Info("Wrote CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", stream.Rows()))
	return fullPath, nil
}

// EncodeTable writes the canonical table as CSV to out.
func EncodeTable(out io.Writer, table *optionchain.CanonicalTable) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(optionchain.Schema()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := writer.WriteAll(TableRecords(table)); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// StreamWriter provides streaming CSV writing for large tables
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bomPrefix bool) (*StreamWriter, error) {
	fullPath := resolvePath(w.dir, filePath)

	w.logger.Info("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)),
		slog.Bool("bom", bomPrefix))

	file, err := createFile(fullPath)
	if err != nil {
		return nil, err
	}

	if bomPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRow writes one canonical row to the stream
func (s *StreamWriter) WriteRow(row optionchain.Row) error {
	s.rows++
	return s.writer.Write(rowRecord(row))
}

// Rows returns the number of rows written so far
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// resolvePath joins relative paths onto dir
func resolvePath(dir, filePath string) string {
	if filepath.IsAbs(filePath) || dir == "" {
		return filePath
	}
	return filepath.Join(dir, filePath)
}

func createFile(fullPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}
