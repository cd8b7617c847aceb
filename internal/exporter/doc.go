// Package exporter writes the canonical option chain table to disk.
//
// CSVWriter and XLSXWriter resolve relative file names against an output
// directory. Both write the schema header first and one line per strike in
// ascending strike order. CSV files are written row by row through a
// StreamWriter. EncodeTable and EncodeTableXLSX write to any io.Writer, such
// as an HTTP response.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter("out", logger)
//	path, err := csvWriter.WriteTable("canonical.csv", table, false)
//
//	xlsxWriter := exporter.NewXLSXWriter("out", logger)
//	path, err = xlsxWriter.WriteTable("canonical.xlsx", table)
package exporter
