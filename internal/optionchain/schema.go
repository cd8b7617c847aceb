package optionchain

// Field is a column of the canonical table. Its value is the column's
// position after the edge columns of the export have been dropped.
type Field int

const (
	CallsOI Field = iota
	CallsChngInOI
	CallsVolume
	CallsIV
	CallsLTP
	CallsChng
	CallsBidQty
	CallsBidPrice
	CallsAskPrice
	CallsAskQty
	Strike
	PutsBidQty
	PutsBidPrice
	PutsAskPrice
	PutsAskQty
	PutsChng
	PutsLTP
	PutsIV
	PutsVolume
	PutsChngInOI
	PutsOI

	// NumFields is the width of the canonical schema.
	NumFields
)

var fieldNames = [NumFields]string{
	"CALLS_OI", "CALLS_CHNG_IN_OI", "CALLS_VOLUME", "CALLS_IV", "CALLS_LTP", "CALLS_CHNG",
	"CALLS_BID_QTY", "CALLS_BID_PRICE", "CALLS_ASK_PRICE", "CALLS_ASK_QTY", "STRIKE",
	"PUTS_BID_QTY", "PUTS_BID_PRICE", "PUTS_ASK_PRICE", "PUTS_ASK_QTY", "PUTS_CHNG",
	"PUTS_LTP", "PUTS_IV", "PUTS_VOLUME", "PUTS_CHNG_IN_OI", "PUTS_OI",
}

// String returns the canonical column name, e.g. "CALLS_LTP".
func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return "UNKNOWN"
	}
	return fieldNames[f]
}

// Schema returns the canonical column names in positional order.
func Schema() []string {
	names := make([]string, NumFields)
	copy(names, fieldNames[:])
	return names
}

// Side selects the call or put half of the chain.
type Side int

const (
	Calls Side = iota
	Puts
)

func (s Side) String() string {
	if s == Puts {
		return "PUTS"
	}
	return "CALLS"
}

// sideFields lists a side's fields in Quote order.
var sideFields = [2][10]Field{
	Calls: {CallsOI, CallsChngInOI, CallsVolume, CallsIV, CallsLTP, CallsChng, CallsBidQty, CallsBidPrice, CallsAskPrice, CallsAskQty},
	Puts:  {PutsOI, PutsChngInOI, PutsVolume, PutsIV, PutsLTP, PutsChng, PutsBidQty, PutsBidPrice, PutsAskPrice, PutsAskQty},
}
