package ml

import (
	"errors"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
	"github.com/kirillkom/resume-classifier/internal/core/ports"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/resilience"
)

// GuardedModel puts the vectorize and predict calls behind circuit breakers.
// A degraded artifact fails fast with ErrTemporary once the breaker opens.
type GuardedModel struct {
	vectorizer ports.Vectorizer
	classifier ports.Classifier
	exec       *resilience.Executor
}

func NewGuardedModel(vectorizer ports.Vectorizer, classifier ports.Classifier, exec *resilience.Executor) *GuardedModel {
	return &GuardedModel{vectorizer: vectorizer, classifier: classifier, exec: exec}
}

func (g *GuardedModel) Transform(text string) (domain.FeatureVector, error) {
	var out domain.FeatureVector
	err := g.exec.Execute("vectorize", func() error {
		vec, err := g.vectorizer.Transform(text)
		out = vec
		return err
	}, modelFailureClassifier)
	if err != nil {
		return domain.FeatureVector{}, breakerError("vectorize", err)
	}
	return out, nil
}

func (g *GuardedModel) Predict(vec domain.FeatureVector) (string, error) {
	var label string
	err := g.exec.Execute("predict", func() error {
		l, err := g.classifier.Predict(vec)
		label = l
		return err
	}, modelFailureClassifier)
	if err != nil {
		return "", breakerError("predict", err)
	}
	return label, nil
}

func modelFailureClassifier(err error) resilience.ErrorClassification {
	return resilience.ErrorClassification{RecordFailure: !errors.Is(err, domain.ErrValidation)}
}

func breakerError(op string, err error) error {
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	if domain.IsKind(err, domain.ErrModel) {
		return err
	}
	return domain.WrapError(domain.ErrModel, op, err)
}
