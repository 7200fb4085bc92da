package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes pass context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, pass, operation, message string, err error) error {
	detail := buildDetail(pass, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short next step for the operator based on the error marker.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExternalTool):
		return "verify ffmpeg is installed and can read the source file"
	case errors.Is(err, ErrValidation):
		return "fix the CropSize value in the metadata table (expected W:H:X:Y)"
	case errors.Is(err, ErrNotFound):
		return "check paths.raw_dir and the ClipID prefix"
	case errors.Is(err, ErrConfiguration):
		return "run 'letterbox config validate'"
	default:
		return "check logs for details"
	}
}

func buildDetail(pass, operation, message string) string {
	parts := make([]string, 0, 3)
	if pass = strings.TrimSpace(pass); pass != "" {
		parts = append(parts, pass)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
