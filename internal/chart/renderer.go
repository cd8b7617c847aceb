package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"chainviz/internal/optionchain"
)

// ErrNoData is returned for a view whose call and put series are both empty.
var ErrNoData = errors.New("view has no data points")

// loadFont parses the embedded default font once. go-chart fills its own
// font cache without locking, so charts never fall back to it.
var loadFont = sync.OnceValues(gochart.GetDefaultFont)

var (
	callColor = drawing.ColorFromHex("FF4500") // orangered
	putColor  = drawing.ColorFromHex("32CD32") // limegreen
)

// Options controls the size of rendered charts.
type Options struct {
	Width    int
	Height   int
	DPI      float64
	BarWidth float64 // OI bar width in strike units
}

// DefaultOptions matches a 12x6 inch figure at 100 DPI.
func DefaultOptions() Options {
	return Options{Width: 1200, Height: 600, DPI: 100, BarWidth: 20}
}

// Image is one rendered view.
type Image struct {
	Kind optionchain.ViewKind
	PNG  []byte
}

// Renderer draws derived views as PNG charts. It holds no mutable state and
// may be shared between goroutines.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer, filling unset options from DefaultOptions.
// The chart font is loaded here so concurrent renders share one parsed copy;
// a load failure surfaces from Render.
func NewRenderer(opts Options) *Renderer {
	_, _ = loadFont()
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if opts.BarWidth <= 0 {
		opts.BarWidth = def.BarWidth
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render writes view as a PNG to w.
func (r *Renderer) Render(w io.Writer, view optionchain.DerivedView) error {
	if view.Empty() {
		return fmt.Errorf("%s: %w", view.Kind, ErrNoData)
	}

	style, ok := styles[view.Kind]
	if !ok {
		return fmt.Errorf("unknown view kind %q", view.Kind)
	}

	font, err := loadFont()
	if err != nil {
		return fmt.Errorf("failed to load chart font: %w", err)
	}

	var series []gochart.Series
	if view.Kind == optionchain.ViewOI {
		series = r.barSeries(style, view)
	} else {
		series = lineSeries(style, view)
	}

	xr, yr := r.ranges(view)
	ch := gochart.Chart{
		Title:      style.title,
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		DPI:        r.opts.DPI,
		Font:       font,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           "Strike Price",
			Range:          xr,
			ValueFormatter: strikeFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  style.yLabel,
			Range: yr,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", view.Kind, err)
	}
	return nil
}

// RenderPNG renders view into memory.
func (r *Renderer) RenderPNG(view optionchain.DerivedView) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderAll renders every non-empty view concurrently. Empty views are
// skipped; images are returned in display order.
func (r *Renderer) RenderAll(ctx context.Context, views optionchain.Views) ([]Image, error) {
	all := views.All()
	images := make([]Image, len(all))

	g, ctx := errgroup.WithContext(ctx)
	for i, view := range all {
		if view.Empty() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			png, err := r.RenderPNG(view)
			if err != nil {
				return err
			}
			images[i] = Image{Kind: view.Kind, PNG: png}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := images[:0]
	for _, img := range images {
		if img.PNG != nil {
			out = append(out, img)
		}
	}
	return out, nil
}

type viewStyle struct {
	title     string
	yLabel    string
	callName  string
	putName   string
	dotWidth  float64
	putAlpha  uint8
	lineWidth float64
}

var styles = map[optionchain.ViewKind]viewStyle{
	optionchain.ViewLTP: {
		title:     "LTP vs. Strike Price",
		yLabel:    "Last Traded Price (LTP)",
		callName:  "Call LTP",
		putName:   "Put LTP",
		dotWidth:  4,
		putAlpha:  255,
		lineWidth: 2,
	},
	optionchain.ViewOI: {
		title:    "Open Interest vs. Strike Price",
		yLabel:   "Open Interest (OI)",
		callName: "Call OI (Resistance)",
		putName:  "Put OI (Support)",
		putAlpha: 204,
	},
	optionchain.ViewIV: {
		title:     "Implied Volatility (IV) vs. Strike Price",
		yLabel:    "Implied Volatility (%)",
		callName:  "Call IV",
		putName:   "Put IV",
		dotWidth:  2,
		putAlpha:  255,
		lineWidth: 2,
	},
}

// Title returns the chart title of kind, or "" for an unknown kind.
func Title(kind optionchain.ViewKind) string {
	return styles[kind].title
}

func lineSeries(style viewStyle, view optionchain.DerivedView) []gochart.Series {
	var out []gochart.Series
	add := func(name string, s optionchain.Series, color drawing.Color) {
		if len(s) == 0 {
			return
		}
		out = append(out, gochart.ContinuousSeries{
			Name:    name,
			XValues: s.Strikes(),
			YValues: s.Values(),
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: style.lineWidth,
				DotColor:    color,
				DotWidth:    style.dotWidth,
			},
		})
	}
	add(style.callName, view.Calls, callColor)
	add(style.putName, view.Puts, putColor.WithAlpha(style.putAlpha))
	return out
}

// barSeries draws each point as a filled rectangle BarWidth strikes wide. The
// put bars are drawn second and semi-transparent so both sides stay visible.
func (r *Renderer) barSeries(style viewStyle, view optionchain.DerivedView) []gochart.Series {
	var out []gochart.Series
	add := func(name string, s optionchain.Series, color drawing.Color) {
		if len(s) == 0 {
			return
		}
		xs, ys := barOutline(s, r.opts.BarWidth)
		out = append(out, gochart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 1,
				FillColor:   color,
			},
		})
	}
	add(style.callName, view.Calls, callColor)
	add(style.putName, view.Puts, putColor.WithAlpha(style.putAlpha))
	return out
}

// barOutline traces the outline of a bar per point, dropping to zero between
// bars.
func barOutline(s optionchain.Series, width float64) (xs, ys []float64) {
	half := width / 2
	xs = make([]float64, 0, len(s)*4)
	ys = make([]float64, 0, len(s)*4)
	for _, p := range s {
		xs = append(xs, p.Strike-half, p.Strike-half, p.Strike+half, p.Strike+half)
		ys = append(ys, 0, p.Value, p.Value, 0)
	}
	return xs, ys
}

// ranges computes explicit axis ranges. Degenerate ranges are widened so
// that a single strike or a flat series still renders.
func (r *Renderer) ranges(view optionchain.DerivedView) (*gochart.ContinuousRange, *gochart.ContinuousRange) {
	points := append(append(optionchain.Series(nil), view.Calls...), view.Puts...)

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		xmin, xmax = math.Min(xmin, p.Strike), math.Max(xmax, p.Strike)
		ymin, ymax = math.Min(ymin, p.Value), math.Max(ymax, p.Value)
	}

	if view.Kind == optionchain.ViewOI {
		xmin -= r.opts.BarWidth
		xmax += r.opts.BarWidth
		ymin = math.Min(ymin, 0)
	}

	xmin, xmax = widen(xmin, xmax)
	ymin, ymax = widen(ymin, ymax)
	ypad := (ymax - ymin) * 0.05
	if view.Kind != optionchain.ViewOI || ymin < 0 {
		ymin -= ypad
	}
	ymax += ypad

	return &gochart.ContinuousRange{Min: xmin, Max: xmax}, &gochart.ContinuousRange{Min: ymin, Max: ymax}
}

func widen(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Max(1, math.Abs(lo)*0.01)
	return lo - pad, hi + pad
}

func strikeFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
