package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"chainviz/internal/chart"
	apierrors "chainviz/internal/errors"
	"chainviz/internal/exporter"
	"chainviz/internal/optionchain"
	"chainviz/internal/services"
	api "chainviz/pkg/contracts/api/v1"
)

type contextKey string

const viewContextKey contextKey = "view"

// AnalysisHandler serves the JSON and PNG analysis endpoints
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validate     *validator.Validate
	maxBytes     int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler. Uploads larger than
// maxBytes are rejected with 413.
func NewAnalysisHandler(service AnalysisServiceInterface, maxBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		maxBytes:     maxBytes,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes, mounted under /api/analyze
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Analyze)
	r.Route("/charts/{view}", func(r chi.Router) {
		r.Use(h.ViewCtx)
		r.Post("/", h.Chart)
	})

	return r
}

// ViewCtx middleware validates the view parameter
func (h *AnalysisHandler) ViewCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.ChartRequest{View: strings.ToLower(chi.URLParam(r, "view"))}
		if err := h.validate.Struct(req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("view %q", chi.URLParam(r, "view"))))
			return
		}

		kind, _ := optionchain.ParseViewKind(req.View)
		ctx := context.WithValue(r.Context(), viewContextKey, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if include := r.URL.Query().Get("include"); include != "" {
		req.Include = strings.Split(include, ",")
	}
	req.Format = strings.ToLower(r.URL.Query().Get("format"))
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	defer cleanup()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if req.WantsCSV() {
		h.writeTableCSV(w, r, analysis)
		return
	}

	data := api.AnalyzeData{
		Filename:  analysis.Filename,
		Format:    string(analysis.Format),
		SizeBytes: analysis.SizeBytes,
		Stats:     analysis.Table.Stats,
		Views:     analysis.Views,
	}
	if req.IncludeRows() {
		data.Columns = optionchain.Schema()
		data.Rows = make([][]float64, len(analysis.Table.Rows))
		for i := range analysis.Table.Rows {
			data.Rows[i] = analysis.Table.Rows[i][:]
		}
	}

	render.JSON(w, r, api.AnalyzeResponse{Status: api.StatusSuccess, Data: data})
}

// writeTableCSV answers with the canonical table as a CSV attachment
func (h *AnalysisHandler) writeTableCSV(w http.ResponseWriter, r *http.Request, analysis *services.Analysis) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="canonical.csv"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := exporter.EncodeTable(w, analysis.Table); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write canonical table",
			slog.String("filename", analysis.Filename),
			slog.String("error", err.Error()))
	}
}

// Chart handles POST /api/analyze/charts/{view}
func (h *AnalysisHandler) Chart(w http.ResponseWriter, r *http.Request) {
	kind, _ := r.Context().Value(viewContextKey).(optionchain.ViewKind)

	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	defer cleanup()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analysis, err := h.service.Analyze(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	png, err := h.service.Chart(r.Context(), analysis, kind)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			err = apierrors.NoDataError(string(kind))
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", string(kind)+".png"))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart",
			slog.String("view", string(kind)),
			slog.String("error", err.Error()))
	}
}
