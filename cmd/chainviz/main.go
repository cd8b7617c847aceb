package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"chainviz/internal/chart"
	"chainviz/internal/config"
	"chainviz/internal/exporter"
	"chainviz/internal/infrastructure"
	"chainviz/internal/optionchain"
	"chainviz/internal/services"
	"chainviz/internal/validation"
	"chainviz/pkg/contracts"
)

const (
	canonicalCSV  = "canonical.csv"
	canonicalXLSX = "canonical.xlsx"
)

var errUsage = errors.New("usage")

// options are the parsed command line flags
type options struct {
	in      string
	out     string
	xlsx    bool
	bom     bool
	width   int
	height  int
	verbose bool
	version bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "chainviz:", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode is 0 for -h, 2 for bad invocations and 1 for failed runs.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage), errors.Is(err, optionchain.ErrInputMissing):
		return 2
	}
	return 1
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("chainviz", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "option chain export to analyze (.csv or .xlsx)")
	fs.StringVar(&opts.out, "out", ".", "output directory for the canonical table and charts")
	fs.BoolVar(&opts.xlsx, "xlsx", false, "also write the canonical table as an Excel workbook")
	fs.BoolVar(&opts.bom, "bom", false, "start canonical.csv with a UTF-8 byte order mark for Excel")
	fs.IntVar(&opts.width, "width", 0, "chart width in pixels (defaults to the configured width)")
	fs.IntVar(&opts.height, "height", 0, "chart height in pixels (defaults to the configured height)")
	fs.BoolVar(&opts.verbose, "v", false, "log at debug level")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 && opts.in == "" {
		opts.in = fs.Arg(0)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return nil
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger := infrastructure.NewLoggerWithWriter(stderr, level, cfg.Logging.Development)
	if cfgErr != nil {
		logger.Warn("Failed to load config, using defaults", slog.String("error", cfgErr.Error()))
	}

	chartOpts := chart.Options{
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		DPI:      cfg.Chart.DPI,
		BarWidth: cfg.Chart.BarWidth,
	}
	if opts.width > 0 {
		chartOpts.Width = opts.width
	}
	if opts.height > 0 {
		chartOpts.Height = opts.height
	}

	logger.Info("Starting option chain analysis",
		slog.String("input", opts.in),
		slog.String("output_dir", opts.out),
		slog.Bool("xlsx", opts.xlsx))

	fileValidator := validation.NewFileValidator(logger)
	if _, err := fileValidator.ValidateChainFile(opts.in); err != nil {
		return err
	}
	if err := fileValidator.ValidateOutputDirectory(opts.out); err != nil {
		return err
	}

	svc := services.NewAnalysisService(
		validation.NewUploadValidator(cfg.Upload.AllowedExtensions),
		chart.NewRenderer(chartOpts),
		nil,
		nil,
		logger,
	)

	file, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.in, err)
	}
	defer file.Close()

	analysis, err := svc.Analyze(ctx, services.Upload{
		Filename: filepath.Base(opts.in),
		Reader:   file,
	})
	if err != nil {
		return err
	}

	written := make([]string, 0, 5)

	path, err := exporter.NewCSVWriter(opts.out, logger).WriteTable(canonicalCSV, analysis.Table, opts.bom)
	if err != nil {
		return fmt.Errorf("failed to write canonical table: %w", err)
	}
	written = append(written, path)

	if opts.xlsx {
		path, err := exporter.NewXLSXWriter(opts.out, logger).WriteTable(canonicalXLSX, analysis.Table)
		if err != nil {
			return fmt.Errorf("failed to write canonical workbook: %w", err)
		}
		written = append(written, path)
	}

	images, err := svc.Charts(ctx, analysis)
	if err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	for _, img := range images {
		path := filepath.Join(opts.out, string(img.Kind)+".png")
		if err := os.WriteFile(path, img.PNG, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	for _, view := range analysis.Views.All() {
		if view.Empty() {
			logger.Warn("View has no data points, chart skipped",
				slog.String("view", string(view.Kind)))
		}
	}

	stats := analysis.Table.Stats
	fmt.Fprintf(stdout, "%s: %d strikes kept, %d rows dropped, %d cells filled\n",
		filepath.Base(opts.in), stats.RowsKept, stats.RowsDropped, stats.CellsFilled)
	for _, path := range written {
		fmt.Fprintln(stdout, "wrote", path)
	}
	return nil
}
