package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"chainviz/internal/optionchain"
)

// UploadValidator checks uploaded file names against the configured
// extension allow list.
type UploadValidator struct {
	allowed map[string]bool
}

// NewUploadValidator creates a validator accepting the given extensions.
// Extensions are matched case insensitively and may omit the leading dot.
func NewUploadValidator(extensions []string) *UploadValidator {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if ext = normalizeExt(ext); ext != "" {
			allowed[ext] = true
		}
	}
	return &UploadValidator{allowed: allowed}
}

// normalizeExt lowercases ext and adds the leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// ValidateUpload returns the format of filename. An empty name wraps
// optionchain.ErrInputMissing; an extension outside the allow list or not
// understood by the reader wraps optionchain.ErrUnsupportedFormat.
func (v *UploadValidator) ValidateUpload(filename string) (optionchain.Format, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return "", fmt.Errorf("upload has no file name: %w", optionchain.ErrInputMissing)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !v.Allowed(ext) {
		return "", fmt.Errorf("%w: %q is not an accepted extension", optionchain.ErrUnsupportedFormat, ext)
	}

	return optionchain.FormatFromFilename(name)
}

// Allowed reports whether ext is on the allow list. The leading dot is
// optional.
func (v *UploadValidator) Allowed(ext string) bool {
	return v.allowed[normalizeExt(ext)]
}
