package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chainviz/internal/chart"
	apierrors "chainviz/internal/errors"
	"chainviz/internal/optionchain"
	"chainviz/internal/services"
	"chainviz/internal/shared/testutil"
)

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, upload services.Upload) (*services.Analysis, error) {
	args := m.Called(upload.Filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Analysis), args.Error(1)
}

func (m *MockAnalysisService) Charts(ctx context.Context, analysis *services.Analysis) ([]chart.Image, error) {
	args := m.Called(analysis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chart.Image), args.Error(1)
}

func (m *MockAnalysisService) Chart(ctx context.Context, analysis *services.Analysis, kind optionchain.ViewKind) ([]byte, error) {
	args := m.Called(analysis, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func sampleAnalysis(t *testing.T) *services.Analysis {
	t.Helper()
	raw, err := optionchain.ReadCSV(strings.NewReader(testutil.SampleChainCSV))
	require.NoError(t, err)
	table, err := optionchain.Normalize(raw)
	require.NoError(t, err)
	return &services.Analysis{
		Filename:  "chain.csv",
		Format:    optionchain.FormatCSV,
		SizeBytes: int64(len(testutil.SampleChainCSV)),
		Table:     table,
		Views:     optionchain.BuildViews(table),
	}
}

func newAnalysisRouter(t *testing.T, svc AnalysisServiceInterface, maxBytes int64) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewAnalysisHandler(svc, maxBytes, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/analyze", h.Routes())
	return r
}

func postUpload(t *testing.T, handler http.Handler, target, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := testutil.MultipartUpload(t, UploadField, filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("Analyze", "chain.csv").Return(sampleAnalysis(t), nil)
	router := newAnalysisRouter(t, svc, 1<<20)

	w := postUpload(t, router, "/api/analyze", "chain.csv", []byte(testutil.SampleChainCSV))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	body := decodeJSON(t, w)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "csv", data["format"])
	assert.Equal(t, float64(2), data["stats"].(map[string]interface{})["rows_kept"])
	assert.NotContains(t, data, "rows")

	views := data["views"].(map[string]interface{})
	ltp := views["ltp"].(map[string]interface{})
	calls := ltp["calls"].([]interface{})
	require.Len(t, calls, 2)
	assert.Equal(t, map[string]interface{}{"strike": float64(18000), "value": 20.5}, calls[0])

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_AnalyzeIncludeRows(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("Analyze", "chain.csv").Return(sampleAnalysis(t), nil)
	router := newAnalysisRouter(t, svc, 1<<20)

	w := postUpload(t, router, "/api/analyze?include=rows", "chain.csv", []byte(testutil.SampleChainCSV))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeJSON(t, w)["data"].(map[string]interface{})

	columns := data["columns"].([]interface{})
	require.Len(t, columns, int(optionchain.NumFields))
	assert.Equal(t, "STRIKE", columns[optionchain.Strike])

	rows := data["rows"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, float64(18100), rows[1].([]interface{})[optionchain.Strike])
}

func TestAnalysisHandler_AnalyzeCSV(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("Analyze", "chain.csv").Return(sampleAnalysis(t), nil)
	router := newAnalysisRouter(t, svc, 1<<20)

	w := postUpload(t, router, "/api/analyze?format=CSV", "chain.csv", []byte(testutil.SampleChainCSV))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "canonical.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, optionchain.Schema(), records[0])
	assert.Equal(t, "18000", records[1][optionchain.Strike])
	assert.Equal(t, "20.5", records[1][optionchain.CallsLTP])

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		maxBytes   int64
		setupMock  func(m *MockAnalysisService)
		request    func(t *testing.T) *http.Request
		wantStatus int
		wantType   string
		wantCalled bool
	}{
		{
			name: "missing file field",
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.EmptyMultipart(t)
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInputMissing,
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"file":"x"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInputMissing,
		},
		{
			name: "unknown include",
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.MultipartUpload(t, UploadField, "chain.csv", []byte(testutil.SampleChainCSV))
				req := httptest.NewRequest(http.MethodPost, "/api/analyze?include=greeks", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name: "unknown format",
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.MultipartUpload(t, UploadField, "chain.csv", []byte(testutil.SampleChainCSV))
				req := httptest.NewRequest(http.MethodPost, "/api/analyze?format=xml", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:     "upload too large",
			maxBytes: 256,
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.MultipartUpload(t, UploadField, "chain.csv", bytes.Repeat([]byte("x"), 4096))
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   apierrors.TypePayloadTooLarge,
		},
		{
			name: "unsupported format from service",
			setupMock: func(m *MockAnalysisService) {
				m.On("Analyze", "chain.pdf").Return(nil, fmt.Errorf("%w: %q", optionchain.ErrUnsupportedFormat, ".pdf"))
			},
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.MultipartUpload(t, UploadField, "chain.pdf", []byte("%PDF"))
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   apierrors.TypeUnsupportedFormat,
			wantCalled: true,
		},
		{
			name: "schema error from service",
			setupMock: func(m *MockAnalysisService) {
				m.On("Analyze", "chain.csv").Return(nil, &optionchain.SchemaError{Reason: "too few columns to map option chain schema", Columns: 15})
			},
			request: func(t *testing.T) *http.Request {
				body, contentType := testutil.MultipartUpload(t, UploadField, "chain.csv", []byte("a,b\n1,2\n"))
				req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
				req.Header.Set("Content-Type", contentType)
				return req
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeSchema,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalysisService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 1 << 20
			}
			router := newAnalysisRouter(t, svc, maxBytes)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.request(t))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeJSON(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/analyze", body["instance"])

			if tt.wantCalled {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Analyze", mock.Anything)
			}
		})
	}
}

func TestAnalysisHandler_UnknownView(t *testing.T) {
	svc := new(MockAnalysisService)
	router := newAnalysisRouter(t, svc, 1<<20)

	w := postUpload(t, router, "/api/analyze/charts/gamma", "chain.csv", []byte(testutil.SampleChainCSV))

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
	assert.Equal(t, apierrors.CodeNotFound, body["error_code"])
	assert.Equal(t, `view "gamma" not found`, body["detail"])
	svc.AssertNotCalled(t, "Analyze", mock.Anything)
}

func TestAnalysisHandler_Chart(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")

	tests := []struct {
		name       string
		path       string
		setupMock  func(m *MockAnalysisService, a *services.Analysis)
		wantStatus int
		wantType   string
	}{
		{
			name: "oi chart",
			path: "/api/analyze/charts/oi",
			setupMock: func(m *MockAnalysisService, a *services.Analysis) {
				m.On("Analyze", "chain.csv").Return(a, nil)
				m.On("Chart", a, optionchain.ViewOI).Return(png, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "view is case insensitive",
			path: "/api/analyze/charts/IV",
			setupMock: func(m *MockAnalysisService, a *services.Analysis) {
				m.On("Analyze", "chain.csv").Return(a, nil)
				m.On("Chart", a, optionchain.ViewIV).Return(png, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown view",
			path:       "/api/analyze/charts/gamma",
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeNotFound,
		},
		{
			name: "view without points",
			path: "/api/analyze/charts/iv",
			setupMock: func(m *MockAnalysisService, a *services.Analysis) {
				m.On("Analyze", "chain.csv").Return(a, nil)
				m.On("Chart", a, optionchain.ViewIV).Return(nil, fmt.Errorf("render iv: %w", chart.ErrNoData))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnalysisService)
			if tt.setupMock != nil {
				tt.setupMock(svc, sampleAnalysis(t))
			}
			router := newAnalysisRouter(t, svc, 1<<20)

			w := postUpload(t, router, tt.path, "chain.csv", []byte(testutil.SampleChainCSV))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantType == "" {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.Equal(t, png, w.Body.Bytes())
				assert.Contains(t, w.Header().Get("Content-Disposition"), ".png")
			} else {
				assert.Equal(t, tt.wantType, decodeJSON(t, w)["type"])
			}
			svc.AssertExpectations(t)
		})
	}
}
