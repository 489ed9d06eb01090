package ports

import (
	"context"
	"io"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// ResumeAnalyzer is the inbound contract for the upload-to-category pipeline.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, filename string, body io.Reader) (*domain.Prediction, error)
}
