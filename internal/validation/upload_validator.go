package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"clamser/internal/dataprocessing"
)

// allowedExtensions are the file types the instrument software exports.
var allowedExtensions = map[string]bool{
	".csv": true,
	".txt": true,
}

// UploadValidator checks an upload batch before it reaches the parsers.
type UploadValidator struct {
	logger *slog.Logger
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{logger: logger}
}

// ValidateBatch rejects batches that cannot possibly produce data: no files,
// empty files, or unsupported extensions. Content-level problems are left to
// the parsers, which skip or report per file.
func (v *UploadValidator) ValidateBatch(files []dataprocessing.UploadedFile) error {
	if len(files) == 0 {
		return fmt.Errorf("no files uploaded")
	}

	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if !allowedExtensions[ext] {
			v.logger.Warn("rejecting file with unsupported extension",
				slog.String("file", file.Name),
				slog.String("extension", ext))
			return fmt.Errorf("file %s has unsupported extension %q (expected .csv or .txt)", file.Name, ext)
		}
		if len(file.Data) == 0 {
			v.logger.Warn("rejecting empty file",
				slog.String("file", file.Name))
			return fmt.Errorf("file %s is empty", file.Name)
		}
	}
	return nil
}
