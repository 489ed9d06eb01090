package ml

import (
	"errors"
	"fmt"
	"math"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

const (
	KindLinear        = "linear"
	KindMultinomialNB = "multinomial_nb"
)

type linearArtifact struct {
	Kind           string       `json:"kind" yaml:"kind"`
	Classes        []ClassValue `json:"classes" yaml:"classes"`
	Coef           [][]float64  `json:"coef" yaml:"coef"`
	Intercept      []float64    `json:"intercept" yaml:"intercept"`
	FeatureLogProb [][]float64  `json:"feature_log_prob" yaml:"feature_log_prob"`
	ClassLogPrior  []float64    `json:"class_log_prior" yaml:"class_log_prior"`
}

// LinearClassifier scores each class as w·x + b and returns the argmax.
// Multinomial naive Bayes is the same computation over log probabilities.
type LinearClassifier struct {
	kind    string
	classes []ClassValue
	weights [][]float64
	bias    []float64
	width   int
	binary  bool
}

func newLinearClassifier(art linearArtifact) (*LinearClassifier, error) {
	kind := art.Kind
	if kind == "" {
		kind = KindLinear
	}
	c := &LinearClassifier{kind: kind, classes: art.Classes}

	switch kind {
	case KindLinear:
		c.weights, c.bias = art.Coef, art.Intercept
	case KindMultinomialNB:
		c.weights, c.bias = art.FeatureLogProb, art.ClassLogPrior
	default:
		return nil, fmt.Errorf("classifier kind %q is not supported", art.Kind)
	}

	if err := checkClasses(c.classes); err != nil {
		return nil, err
	}
	switch {
	case kind == KindLinear && len(c.classes) == 2 && len(c.weights) == 1:
		c.binary = true
	case len(c.weights) != len(c.classes):
		return nil, fmt.Errorf("classifier has %d weight rows for %d classes", len(c.weights), len(c.classes))
	}

	rows := len(c.weights)
	if len(c.bias) == 0 {
		c.bias = make([]float64, rows)
	}
	if len(c.bias) != rows {
		return nil, fmt.Errorf("classifier has %d bias terms for %d weight rows", len(c.bias), rows)
	}

	c.width = len(c.weights[0])
	if c.width == 0 {
		return nil, errors.New("classifier weight rows are empty")
	}
	for i, row := range c.weights {
		if len(row) != c.width {
			return nil, fmt.Errorf("weight row %d has %d columns, want %d", i, len(row), c.width)
		}
	}
	return c, nil
}

// Width is the feature dimensionality the classifier expects.
func (c *LinearClassifier) Width() int {
	return c.width
}

func (c *LinearClassifier) Classes() []ClassValue {
	out := make([]ClassValue, len(c.classes))
	copy(out, c.classes)
	return out
}

func (c *LinearClassifier) Encoded() bool {
	return c.classes[0].Encoded
}

func (c *LinearClassifier) Kind() string {
	return c.kind
}

func (c *LinearClassifier) Predict(vec domain.FeatureVector) (ClassValue, error) {
	if err := checkVector(vec, c.width); err != nil {
		return ClassValue{}, err
	}

	if c.binary {
		score, err := c.score(0, vec)
		if err != nil {
			return ClassValue{}, err
		}
		if score > 0 {
			return c.classes[1], nil
		}
		return c.classes[0], nil
	}

	best := -1
	bestScore := math.Inf(-1)
	for row := range c.weights {
		score, err := c.score(row, vec)
		if err != nil {
			return ClassValue{}, err
		}
		if best < 0 || score > bestScore {
			best, bestScore = row, score
		}
	}
	return c.classes[best], nil
}

func (c *LinearClassifier) score(row int, vec domain.FeatureVector) (float64, error) {
	weights := c.weights[row]
	sum := c.bias[row]
	for i, idx := range vec.Indices {
		sum += weights[idx] * vec.Values[i]
	}
	if math.IsNaN(sum) {
		return 0, fmt.Errorf("score for class row %d is NaN", row)
	}
	return sum, nil
}
