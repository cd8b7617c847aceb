package services

import "errors"

// Analysis service errors
var (
	ErrNoUpload    = errors.New("upload has no content")
	ErrNoAnalysis  = errors.New("no analysis to render")
	ErrUnknownView = errors.New("unknown view")
	ErrNotReady    = errors.New("service not ready")
)
