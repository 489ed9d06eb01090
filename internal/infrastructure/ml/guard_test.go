package ml

import (
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
	"github.com/kirillkom/resume-classifier/internal/infrastructure/resilience"
)

type vectorizerFake struct {
	calls int
	err   error
}

func (f *vectorizerFake) Transform(string) (domain.FeatureVector, error) {
	f.calls++
	if f.err != nil {
		return domain.FeatureVector{}, f.err
	}
	return domain.FeatureVector{Dim: 1, Indices: []int{0}, Values: []float64{1}}, nil
}

type classifierFake struct {
	calls int
	label string
	err   error
}

func (f *classifierFake) Predict(domain.FeatureVector) (string, error) {
	f.calls++
	return f.label, f.err
}

func TestGuardedModelPassesThrough(t *testing.T) {
	g := NewGuardedModel(&vectorizerFake{}, &classifierFake{label: "HR"}, resilience.NewExecutor(resilience.DefaultConfig()))

	vec, err := g.Transform("text")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	got, err := g.Predict(vec)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got != "HR" {
		t.Fatalf("expected HR, got %q", got)
	}
}

func TestGuardedModelWrapsFailuresAsModelErrors(t *testing.T) {
	g := NewGuardedModel(&vectorizerFake{err: errors.New("nan in idf")}, &classifierFake{}, resilience.NewExecutor(resilience.Config{}))

	_, err := g.Transform("text")
	if !domain.IsKind(err, domain.ErrModel) {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestGuardedModelOpensBreaker(t *testing.T) {
	cls := &classifierFake{err: domain.WrapError(domain.ErrModel, "predict", errors.New("corrupt weights"))}
	g := NewGuardedModel(&vectorizerFake{}, cls, resilience.NewExecutor(resilience.Config{
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	}))

	vec := domain.FeatureVector{Dim: 1}
	for i := 0; i < 2; i++ {
		if _, err := g.Predict(vec); !domain.IsKind(err, domain.ErrModel) {
			t.Fatalf("iteration %d: expected model error, got %v", i, err)
		}
	}

	_, err := g.Predict(vec)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error once open, got %v", err)
	}
	if cls.calls != 2 {
		t.Fatalf("expected classifier to be skipped while open, got %d calls", cls.calls)
	}
}
