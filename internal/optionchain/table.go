package optionchain

// RawTable is an export as read from disk: rows of untrimmed cell text.
type RawTable [][]string

// Width returns the widest row length.
func (t RawTable) Width() int {
	width := 0
	for _, row := range t {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Row is one strike of the canonical table, indexed by Field.
type Row [NumFields]float64

// Get returns the value of field f.
func (r Row) Get(f Field) float64 {
	return r[f]
}

// Strike returns the row's strike price.
func (r Row) Strike() float64 {
	return r[Strike]
}

// Quote is one side of a row with the shared strike attached.
type Quote struct {
	Strike   float64 `json:"strike"`
	OI       float64 `json:"oi"`
	ChngInOI float64 `json:"chng_in_oi"`
	Volume   float64 `json:"volume"`
	IV       float64 `json:"iv"`
	LTP      float64 `json:"ltp"`
	Chng     float64 `json:"chng"`
	BidQty   float64 `json:"bid_qty"`
	BidPrice float64 `json:"bid_price"`
	AskPrice float64 `json:"ask_price"`
	AskQty   float64 `json:"ask_qty"`
}

// Quote projects the row onto one side.
func (r Row) Quote(side Side) Quote {
	f := sideFields[side]
	return Quote{
		Strike:   r[Strike],
		OI:       r[f[0]],
		ChngInOI: r[f[1]],
		Volume:   r[f[2]],
		IV:       r[f[3]],
		LTP:      r[f[4]],
		Chng:     r[f[5]],
		BidQty:   r[f[6]],
		BidPrice: r[f[7]],
		AskPrice: r[f[8]],
		AskQty:   r[f[9]],
	}
}

// Stats describes what normalization did to the input.
type Stats struct {
	RowsRead     int `json:"rows_read"`
	RowsKept     int `json:"rows_kept"`
	RowsDropped  int `json:"rows_dropped"`
	CellsFilled  int `json:"cells_filled"`
	ColumnsFound int `json:"columns_found"`
}

// CanonicalTable is the cleaned, fully numeric option chain. Rows keep the
// order of the source export.
type CanonicalTable struct {
	Rows  []Row
	Stats Stats
}

// Len returns the number of rows.
func (t *CanonicalTable) Len() int {
	return len(t.Rows)
}

// Column returns all values of field f in row order.
func (t *CanonicalTable) Column(f Field) []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[f]
	}
	return values
}

// Side returns the strike plus one side's ten fields for every row.
func (t *CanonicalTable) Side(side Side) []Quote {
	quotes := make([]Quote, len(t.Rows))
	for i, row := range t.Rows {
		quotes[i] = row.Quote(side)
	}
	return quotes
}

// Calls is shorthand for Side(Calls).
func (t *CanonicalTable) Calls() []Quote {
	return t.Side(Calls)
}

// Puts is shorthand for Side(Puts).
func (t *CanonicalTable) Puts() []Quote {
	return t.Side(Puts)
}
