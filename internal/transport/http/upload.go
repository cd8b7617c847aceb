package http

import (
	"errors"
	"fmt"
	"net/http"

	apierrors "chainviz/internal/errors"
	"chainviz/internal/optionchain"
	"chainviz/internal/services"
)

const (
	// UploadField is the multipart form field carrying the export.
	UploadField = "file"

	multipartMemory = 32 << 20
)

// readUpload limits the request body to maxBytes and extracts the uploaded
// file. The returned cleanup releases the file and any temporary parts.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.Upload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return services.Upload{}, noop, err
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return services.Upload{}, noop, fmt.Errorf("request is not multipart/form-data: %w", optionchain.ErrInputMissing)
		}
		return services.Upload{}, noop, apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return services.Upload{}, cleanupForm(r), fmt.Errorf("form field %q: %w", UploadField, optionchain.ErrInputMissing)
		}
		return services.Upload{}, cleanupForm(r), apierrors.InvalidRequestWithError(err)
	}

	removeForm := cleanupForm(r)
	cleanup := func() {
		file.Close()
		removeForm()
	}
	return services.Upload{Filename: header.Filename, Reader: file}, cleanup, nil
}

func cleanupForm(r *http.Request) func() {
	return func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
}
