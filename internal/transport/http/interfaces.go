package http

import (
	"context"

	"chainviz/internal/chart"
	"chainviz/internal/optionchain"
	"chainviz/internal/services"
)

// AnalysisServiceInterface defines the pipeline operations the handlers need
type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, upload services.Upload) (*services.Analysis, error)
	Charts(ctx context.Context, analysis *services.Analysis) ([]chart.Image, error)
	Chart(ctx context.Context, analysis *services.Analysis, kind optionchain.ViewKind) ([]byte, error)
}

// HealthServiceInterface defines the health operations the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
