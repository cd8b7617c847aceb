package optionchain

// ViewKind names one of the derived views.
type ViewKind string

const (
	ViewLTP ViewKind = "ltp"
	ViewOI  ViewKind = "oi"
	ViewIV  ViewKind = "iv"
)

// ViewKinds lists the views in display order.
var ViewKinds = []ViewKind{ViewLTP, ViewOI, ViewIV}

// ParseViewKind reports whether s names a view.
func ParseViewKind(s string) (ViewKind, bool) {
	for _, k := range ViewKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Point is a single strike → value pair.
type Point struct {
	Strike float64 `json:"strike"`
	Value  float64 `json:"value"`
}

// Series is an ordered strike → value mapping for one side.
type Series []Point

// Strikes returns the x values.
func (s Series) Strikes() []float64 {
	xs := make([]float64, len(s))
	for i, p := range s {
		xs[i] = p.Strike
	}
	return xs
}

// Values returns the y values.
func (s Series) Values() []float64 {
	ys := make([]float64, len(s))
	for i, p := range s {
		ys[i] = p.Value
	}
	return ys
}

// DerivedView pairs the call and put series of one measure.
type DerivedView struct {
	Kind  ViewKind `json:"kind"`
	Calls Series   `json:"calls"`
	Puts  Series   `json:"puts"`
}

// Empty reports whether neither side has a point.
func (v DerivedView) Empty() bool {
	return len(v.Calls) == 0 && len(v.Puts) == 0
}

// Views holds the three derived datasets of one snapshot.
type Views struct {
	LTP DerivedView `json:"ltp"`
	OI  DerivedView `json:"oi"`
	IV  DerivedView `json:"iv"`
}

// Get returns the view of the given kind.
func (v Views) Get(kind ViewKind) (DerivedView, bool) {
	switch kind {
	case ViewLTP:
		return v.LTP, true
	case ViewOI:
		return v.OI, true
	case ViewIV:
		return v.IV, true
	}
	return DerivedView{}, false
}

// All returns the views in display order.
func (v Views) All() []DerivedView {
	return []DerivedView{v.LTP, v.OI, v.IV}
}

// BuildViews derives the LTP, OI and IV views. LTP and OI carry one point per
// row on each side; IV keeps only strictly positive readings, independently
// per side.
func BuildViews(table *CanonicalTable) Views {
	calls := table.Calls()
	puts := table.Puts()

	return Views{
		LTP: DerivedView{
			Kind:  ViewLTP,
			Calls: project(calls, ltp, nil),
			Puts:  project(puts, ltp, nil),
		},
		OI: DerivedView{
			Kind:  ViewOI,
			Calls: project(calls, oi, nil),
			Puts:  project(puts, oi, nil),
		},
		IV: DerivedView{
			Kind:  ViewIV,
			Calls: project(calls, iv, positive),
			Puts:  project(puts, iv, positive),
		},
	}
}

func ltp(q Quote) float64 { return q.LTP }
func oi(q Quote) float64  { return q.OI }
func iv(q Quote) float64  { return q.IV }

func positive(v float64) bool { return v > 0 }

// project maps quotes to points, keeping only values accepted by keep when
// it is non-nil.
func project(quotes []Quote, value func(Quote) float64, keep func(float64) bool) Series {
	series := make(Series, 0, len(quotes))
	for _, q := range quotes {
		v := value(q)
		if keep != nil && !keep(v) {
			continue
		}
		series = append(series, Point{Strike: q.Strike, Value: v})
	}
	return series
}
