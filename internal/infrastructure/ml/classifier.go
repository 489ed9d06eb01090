package ml

import (
	"errors"
	"fmt"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// ClassifierModel is a fitted classifier artifact. Predict returns the raw
// class value; decoding through the label encoder happens in Artifacts.
type ClassifierModel interface {
	Kind() string
	Width() int
	Classes() []ClassValue
	Encoded() bool
	Predict(vec domain.FeatureVector) (ClassValue, error)
}

// LoadClassifier decodes a classifier artifact and dispatches on its kind.
// A missing kind means linear.
func LoadClassifier(path string) (ClassifierModel, error) {
	var head struct {
		Kind string `json:"kind" yaml:"kind"`
	}
	if err := decodeArtifact(path, &head); err != nil {
		return nil, err
	}

	switch head.Kind {
	case KindRandomForest:
		var art forestArtifact
		if err := decodeArtifact(path, &art); err != nil {
			return nil, err
		}
		return newForestClassifier(art)
	default:
		var art linearArtifact
		if err := decodeArtifact(path, &art); err != nil {
			return nil, err
		}
		return newLinearClassifier(art)
	}
}

func checkClasses(classes []ClassValue) error {
	if len(classes) < 2 {
		return fmt.Errorf("classifier needs at least two classes, got %d", len(classes))
	}
	encoded := classes[0].Encoded
	for _, cls := range classes {
		if cls.Encoded != encoded {
			return errors.New("classifier mixes encoded and named classes")
		}
		if !cls.Encoded && cls.Name == "" {
			return errors.New("classifier has a blank class name")
		}
	}
	return nil
}

func checkVector(vec domain.FeatureVector, width int) error {
	if vec.Dim != width {
		return fmt.Errorf("feature vector has %d dimensions, classifier expects %d", vec.Dim, width)
	}
	if len(vec.Indices) != len(vec.Values) {
		return errors.New("feature vector indices and values differ in length")
	}
	for _, idx := range vec.Indices {
		if idx < 0 || idx >= width {
			return fmt.Errorf("feature index %d outside [0,%d)", idx, width)
		}
	}
	return nil
}
