package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// DocumentStore persists accepted uploads under their sanitized name.
type DocumentStore interface {
	Save(ctx context.Context, name string, data io.Reader) (*domain.StoredDocument, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
}

// TextExtractor turns a stored document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.StoredDocument) (string, error)
}

// Vectorizer maps text to a feature vector using a pre-fitted artifact.
type Vectorizer interface {
	Transform(text string) (domain.FeatureVector, error)
}

// Classifier maps a feature vector to a human-readable category label.
type Classifier interface {
	Predict(vec domain.FeatureVector) (string, error)
}

// AnalysisObserver receives the outcome of each pipeline stage.
type AnalysisObserver interface {
	ObservePrediction(category string)
	ObserveFailure(stage string)
	ObserveExtractedText(chars int)
	ObserveStage(stage string, elapsed time.Duration)
}
