package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainviz/internal/chart"
	apierrors "chainviz/internal/errors"
	"chainviz/internal/optionchain"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData feeds templates/index.html
type pageData struct {
	MaxSize  string
	Filename string
	Error    string
	Stats    *optionchain.Stats
	Charts   []pageChart
}

type pageChart struct {
	Kind    optionchain.ViewKind
	Title   string
	DataURI template.URL
}

// PageHandler serves the upload page and renders charts inline
type PageHandler struct {
	service  AnalysisServiceInterface
	maxBytes int64
	logger   *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(service AnalysisServiceInterface, maxBytes int64, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "page_handler")),
	}
}

// Routes returns the page routes, mounted at /
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	r.Post("/", h.Upload)
	return r
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage())
}

// Upload handles POST /. Errors are shown on the page with the status
// code of the failure.
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	page := h.newPage()

	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	defer cleanup()
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	page.Filename = upload.Filename

	analysis, err := h.service.Analyze(r.Context(), upload)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	stats := analysis.Table.Stats
	page.Stats = &stats

	images, err := h.service.Charts(r.Context(), analysis)
	if err != nil {
		h.fail(w, r, page, err)
		return
	}
	for _, img := range images {
		page.Charts = append(page.Charts, pageChart{
			Kind:    img.Kind,
			Title:   chart.Title(img.Kind),
			DataURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)),
		})
	}

	h.render(w, r, http.StatusOK, page)
}

func (h *PageHandler) newPage() pageData {
	return pageData{MaxSize: formatBytes(h.maxBytes)}
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, page pageData, err error) {
	status := apierrors.StatusCode(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "upload failed",
		slog.String("error", err.Error()),
		slog.String("kind", apierrors.Kind(err)),
		slog.Int("status", status),
	)

	page.Error = h.message(err)
	h.render(w, r, status, page)
}

// message turns err into text for the page
func (h *PageHandler) message(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	switch apierrors.Kind(err) {
	case apierrors.KindInputMissing:
		return "Please choose an option chain file to upload."
	case apierrors.KindUnsupportedFormat:
		return "Unsupported file type. Upload a .csv or .xlsx option chain export."
	case apierrors.KindSchema:
		return "The file does not look like an option chain export: " + err.Error() + "."
	case apierrors.KindPayloadTooLarge:
		return "The file is too large. The limit is " + formatBytes(h.maxBytes) + "."
	case apierrors.KindTimeout:
		return "Processing took too long. Please try again."
	}
	return "Something went wrong while processing the file."
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("error", err.Error()))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.0f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", n>>10)
}
