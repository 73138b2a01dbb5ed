package domain

import (
	"errors"
	"fmt"

	"github.com/fozagtx/adMat/internal/status"
)

var (
	ErrInvalidPrompt   = errors.New("prompt is required")
	ErrMissingAPIKey   = errors.New("api key is not configured")
	ErrNotFound        = errors.New("not found")
	ErrAssetMissing    = errors.New("video url missing from completed job")
	ErrListUnsupported = errors.New("upstream does not support listing videos")
)

// UpstreamError wraps a non-success response from the generation backend.
// Message is extracted best-effort from the upstream's own error envelope.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Message)
}

// NotReadyError indicates a download was requested before the job reached
// terminal success.
type NotReadyError struct {
	Status status.Status
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("video is not ready for download (status: %s)", e.Status)
}
