package domain

import (
	"strings"
	"time"

	"github.com/fozagtx/adMat/internal/status"
)

// Default request parameters applied when the caller omits them.
const (
	DefaultDurationSeconds = 10
	DefaultResolution      = "1080p"
	DefaultStyle           = "realistic"
	DefaultAspectRatio     = "16:9"
)

var (
	validResolutions  = map[string]struct{}{"720p": {}, "1080p": {}, "4k": {}}
	validStyles       = map[string]struct{}{"realistic": {}, "cinematic": {}, "animated": {}, "artistic": {}}
	validAspectRatios = map[string]struct{}{"16:9": {}, "9:16": {}, "1:1": {}}
)

// VideoGenerationRequest captures the inputs for a generation job. Immutable
// once submitted.
type VideoGenerationRequest struct {
	Prompt          string `json:"prompt"`
	DurationSeconds int    `json:"duration"`
	Resolution      string `json:"resolution"`
	Style           string `json:"style"`
	AspectRatio     string `json:"aspectRatio"`
}

// Normalize applies defaults to omitted or unrecognized optional fields.
// Unknown enum values degrade to the default instead of erroring; the prompt
// is only trimmed, validation happens in Validate.
func (r *VideoGenerationRequest) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.DurationSeconds <= 0 {
		r.DurationSeconds = DefaultDurationSeconds
	}
	if _, ok := validResolutions[r.Resolution]; !ok {
		r.Resolution = DefaultResolution
	}
	if _, ok := validStyles[r.Style]; !ok {
		r.Style = DefaultStyle
	}
	if _, ok := validAspectRatios[r.AspectRatio]; !ok {
		r.AspectRatio = DefaultAspectRatio
	}
}

// Validate reports whether the request can be submitted upstream.
func (r VideoGenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrInvalidPrompt
	}
	return nil
}

// VideoRecord is the service's view of an upstream generation job. The
// upstream service owns the record; every read is a fresh fetch and nothing
// is cached locally.
type VideoRecord struct {
	ID              string        `json:"id"`
	Status          status.Status `json:"status"`
	Prompt          string        `json:"prompt"`
	VideoURL        string        `json:"videoUrl,omitempty"`
	ThumbnailURL    string        `json:"thumbnailUrl,omitempty"`
	DurationSeconds int           `json:"duration"`
	Resolution      string        `json:"resolution"`
	Style           string        `json:"style"`
	AspectRatio     string        `json:"aspectRatio"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Error           string        `json:"error,omitempty"`
}

// GenerationProgress is a point-in-time progress snapshot for a job.
type GenerationProgress struct {
	ID                        string        `json:"id"`
	Progress                  int           `json:"progress"`
	Status                    status.Status `json:"status"`
	CurrentStep               string        `json:"currentStep"`
	EstimatedSecondsRemaining int           `json:"estimatedTimeRemaining,omitempty"`
}
