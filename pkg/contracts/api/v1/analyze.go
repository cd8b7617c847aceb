// Package api contains the JSON contracts of the chainviz HTTP API.
// Version v1 represents the current stable API version.
package api

import (
	"chainviz/internal/optionchain"
)

// StatusSuccess is the status of every successful envelope.
const StatusSuccess = "success"

// ChartRequest identifies the single view rendered by
// POST /api/analyze/charts/{view}.
type ChartRequest struct {
	View string `json:"view" validate:"required,oneof=ltp oi iv"`
}

// Response formats of POST /api/analyze.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// AnalyzeRequest holds the query options of POST /api/analyze.
type AnalyzeRequest struct {
	Include []string `json:"include,omitempty" validate:"omitempty,dive,oneof=rows"`
	Format  string   `json:"format,omitempty" validate:"omitempty,oneof=json csv"`
}

// WantsCSV reports whether the canonical table was requested as CSV.
func (r AnalyzeRequest) WantsCSV() bool {
	return r.Format == FormatCSV
}

// IncludeRows reports whether the canonical rows were requested.
func (r AnalyzeRequest) IncludeRows() bool {
	for _, v := range r.Include {
		if v == "rows" {
			return true
		}
	}
	return false
}

// AnalyzeResponse is the envelope returned by POST /api/analyze.
type AnalyzeResponse struct {
	Status string      `json:"status"`
	Data   AnalyzeData `json:"data"`
}

// AnalyzeData describes one analyzed snapshot.
type AnalyzeData struct {
	Filename  string            `json:"filename"`
	Format    string            `json:"format"`
	SizeBytes int64             `json:"size_bytes"`
	Stats     optionchain.Stats `json:"stats"`
	Views     optionchain.Views `json:"views"`
	Columns   []string          `json:"columns,omitempty"`
	Rows      [][]float64       `json:"rows,omitempty"`
}
