package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"chainviz/internal/chart"
	apierrors "chainviz/internal/errors"
	"chainviz/internal/infrastructure"
	"chainviz/internal/optionchain"
	"chainviz/internal/validation"
)

// Upload is one option chain export handed to the service.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// Analysis is the result of one upload: the canonical table and its views.
type Analysis struct {
	Filename  string
	Format    optionchain.Format
	SizeBytes int64
	Table     *optionchain.CanonicalTable
	Views     optionchain.Views
}

// AnalysisService runs uploads through normalization, view building and
// chart rendering. It holds no per-request state.
type AnalysisService struct {
	validator *validation.UploadValidator
	renderer  *chart.Renderer
	metrics   *infrastructure.PipelineMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewAnalysisService creates the service. metrics and tracer may be nil.
func NewAnalysisService(
	validator *validation.UploadValidator,
	renderer *chart.Renderer,
	metrics *infrastructure.PipelineMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}
	return &AnalysisService{
		validator: validator,
		renderer:  renderer,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("service", "analysis")),
	}
}

// Analyze reads, normalizes and derives the views of one upload.
func (s *AnalysisService) Analyze(ctx context.Context, upload Upload) (*Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze",
		trace.WithAttributes(attribute.String("upload.filename", upload.Filename)))
	defer span.End()

	format, err := s.validator.ValidateUpload(upload.Filename)
	if err != nil {
		return nil, s.fail(ctx, format, 0, err)
	}
	if upload.Reader == nil {
		return nil, s.fail(ctx, format, 0, fmt.Errorf("%w: %w", ErrNoUpload, optionchain.ErrInputMissing))
	}

	body := bufio.NewReader(upload.Reader)
	if _, err := body.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			err = &optionchain.SchemaError{Reason: "export has no data rows"}
		}
		return nil, s.fail(ctx, format, 0, err)
	}

	counter := &countingReader{r: body}
	raw, err := optionchain.Read(format, counter)
	if err != nil {
		return nil, s.fail(ctx, format, counter.n, fmt.Errorf("read %s: %w", upload.Filename, err))
	}

	table, err := optionchain.Normalize(raw)
	if err != nil {
		return nil, s.fail(ctx, format, counter.n, err)
	}
	views := optionchain.BuildViews(table)

	s.metrics.RecordUpload(ctx, string(format), counter.n, "success")
	s.metrics.RecordNormalization(ctx, table.Stats.RowsKept, table.Stats.RowsDropped, table.Stats.CellsFilled)
	span.SetAttributes(
		attribute.Int("chain.rows_kept", table.Stats.RowsKept),
		attribute.Int("chain.rows_dropped", table.Stats.RowsDropped),
	)

	s.logger.InfoContext(ctx, "option chain analyzed",
		slog.String("filename", upload.Filename),
		slog.String("format", string(format)),
		slog.Int64("bytes", counter.n),
		slog.Int("rows_read", table.Stats.RowsRead),
		slog.Int("rows_kept", table.Stats.RowsKept),
		slog.Int("rows_dropped", table.Stats.RowsDropped),
		slog.Int("cells_filled", table.Stats.CellsFilled),
	)

	return &Analysis{
		Filename:  upload.Filename,
		Format:    format,
		SizeBytes: counter.n,
		Table:     table,
		Views:     views,
	}, nil
}

// Charts renders every non-empty view of the analysis in display order.
func (s *AnalysisService) Charts(ctx context.Context, analysis *Analysis) ([]chart.Image, error) {
	if analysis == nil {
		return nil, ErrNoAnalysis
	}

	ctx, span := s.tracer.Start(ctx, "analysis.charts")
	defer span.End()

	start := time.Now()
	images, err := s.renderer.RenderAll(ctx, analysis.Views)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.metrics.RecordFailure(ctx, apierrors.Kind(err))
		return nil, fmt.Errorf("render charts: %w", err)
	}
	s.metrics.RecordChartRender(ctx, "all", time.Since(start))

	s.logger.DebugContext(ctx, "charts rendered",
		slog.Int("charts", len(images)),
		slog.Duration("duration", time.Since(start)))
	return images, nil
}

// Chart renders a single view as PNG. A view without points yields an error
// wrapping chart.ErrNoData.
func (s *AnalysisService) Chart(ctx context.Context, analysis *Analysis, kind optionchain.ViewKind) ([]byte, error) {
	if analysis == nil {
		return nil, ErrNoAnalysis
	}
	view, ok := analysis.Views.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}

	ctx, span := s.tracer.Start(ctx, "analysis.chart",
		trace.WithAttributes(attribute.String("chart.view", string(kind))))
	defer span.End()

	start := time.Now()
	png, err := s.renderer.RenderPNG(view)
	if err != nil {
		if !errors.Is(err, chart.ErrNoData) {
			infrastructure.RecordError(ctx, err)
			s.metrics.RecordFailure(ctx, apierrors.Kind(err))
		}
		return nil, err
	}
	s.metrics.RecordChartRender(ctx, string(kind), time.Since(start))
	return png, nil
}

// Probe renders a two point chart to prove the renderer works.
func (s *AnalysisService) Probe(ctx context.Context) error {
	view := optionchain.DerivedView{
		Kind:  optionchain.ViewLTP,
		Calls: optionchain.Series{{Strike: 100, Value: 1}, {Strike: 200, Value: 2}},
	}
	if _, err := s.renderer.RenderPNG(view); err != nil {
		return fmt.Errorf("%w: chart renderer: %w", ErrNotReady, err)
	}
	return ctx.Err()
}

func (s *AnalysisService) fail(ctx context.Context, format optionchain.Format, size int64, err error) error {
	kind := apierrors.Kind(err)
	infrastructure.RecordError(ctx, err, trace.WithAttributes(attribute.String("error.kind", kind)))
	s.metrics.RecordUpload(ctx, string(format), size, kind)
	s.metrics.RecordFailure(ctx, kind)

	s.logger.WarnContext(ctx, "option chain rejected",
		slog.String("kind", kind),
		slog.String("error", err.Error()))
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
