package testutil

import (
	"bytes"
	"encoding/csv"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SampleChainCSV is a small exchange option chain export: a decorative
// CALLS/PUTS banner, a label row, two strikes and a totals row.
const SampleChainCSV = `,CALLS,,,,,,,,,,,PUTS,,,,,,,,,,
,OI,CHNG IN OI,VOLUME,IV,LTP,CHNG,BID QTY,BID,ASK,ASK QTY,STRIKE,BID QTY,BID,ASK,ASK QTY,CHNG,LTP,IV,VOLUME,CHNG IN OI,OI,
,100,"1,500",50,12.5,20.5,1.2,10,20,21,15,"18,000.00",8,19,20,5,0.8,15.2,11.0,0,40,800,
,-,-,-,-,-,-,-,-,-,-,"18,100.00",-,-,-,-,-,0.6,24.91,"1,050",-,"9,870",
,"2,450",,,,,,,,,,,,,,,,,,,,"10,670",
`

// SampleChainXLSX returns SampleChainCSV as a single sheet workbook.
func SampleChainXLSX(t *testing.T) []byte {
	t.Helper()

	reader := csv.NewReader(strings.NewReader(SampleChainCSV))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse sample csv: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		// Trailing empty cells are not stored; keep the edge column present
		row[len(row)-1] = "."
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// ChainRow returns one export line for the given strike with every quote
// cell set to value, including the edge columns.
func ChainRow(strike, value string) string {
	cells := make([]string, 23)
	for i := range cells {
		cells[i] = value
	}
	cells[0], cells[22] = "", ""
	cells[11] = strike
	return strings.Join(cells, ",")
}

// MultipartUpload builds a multipart body with content under field. It
// returns the body and its Content-Type header.
func MultipartUpload(t *testing.T, field, filename string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

// EmptyMultipart returns a multipart body with no file part.
func EmptyMultipart(t *testing.T) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("note", "no file"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}
