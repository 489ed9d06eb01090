package ml

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// Paths locates the three trained artifacts. LabelEncoder is optional.
type Paths struct {
	Vectorizer   string
	Classifier   string
	LabelEncoder string
}

// Artifacts is the process-wide model state. It is built once at startup and
// never mutated, so concurrent requests share it without locking.
type Artifacts struct {
	vectorizer *TFIDFVectorizer
	classifier ClassifierModel
	labels     *LabelEncoder
}

type Summary struct {
	VectorizerDim  int      `json:"vectorizer_dim"`
	VocabularySize int      `json:"vocabulary_size"`
	ClassifierKind string   `json:"classifier_kind"`
	EncodedLabels  bool     `json:"encoded_labels"`
	Categories     []string `json:"categories"`
}

func LoadArtifacts(paths Paths) (*Artifacts, error) {
	if strings.TrimSpace(paths.Vectorizer) == "" || strings.TrimSpace(paths.Classifier) == "" {
		return nil, errors.New("vectorizer and classifier artifact paths are required")
	}

	vectorizer, err := LoadTFIDFVectorizer(paths.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer %s: %w", paths.Vectorizer, err)
	}
	classifier, err := LoadClassifier(paths.Classifier)
	if err != nil {
		return nil, fmt.Errorf("load classifier %s: %w", paths.Classifier, err)
	}

	var labels *LabelEncoder
	if p := strings.TrimSpace(paths.LabelEncoder); p != "" {
		if _, statErr := os.Stat(p); statErr == nil {
			labels, err = LoadLabelEncoder(p)
			if err != nil {
				return nil, fmt.Errorf("load label encoder %s: %w", p, err)
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("stat label encoder %s: %w", p, statErr)
		}
	}

	return NewArtifacts(vectorizer, classifier, labels)
}

// NewArtifacts checks that the pieces agree with each other: the vectorizer
// dimension matches the classifier width and encoded classes can be decoded.
func NewArtifacts(vectorizer *TFIDFVectorizer, classifier ClassifierModel, labels *LabelEncoder) (*Artifacts, error) {
	if vectorizer == nil || classifier == nil {
		return nil, errors.New("vectorizer and classifier are required")
	}
	if vectorizer.Dim() != classifier.Width() {
		return nil, fmt.Errorf("vectorizer produces %d features but classifier expects %d", vectorizer.Dim(), classifier.Width())
	}
	if classifier.Encoded() {
		if labels == nil {
			return nil, errors.New("classifier returns encoded classes but no label encoder was loaded")
		}
		for _, cls := range classifier.Classes() {
			if _, err := labels.Decode(cls.Code); err != nil {
				return nil, fmt.Errorf("label encoder cannot decode classifier class: %w", err)
			}
		}
	}
	return &Artifacts{vectorizer: vectorizer, classifier: classifier, labels: labels}, nil
}

func (a *Artifacts) Transform(text string) (domain.FeatureVector, error) {
	vec, err := a.vectorizer.Transform(text)
	if err != nil {
		return domain.FeatureVector{}, domain.WrapError(domain.ErrModel, "vectorize", err)
	}
	return vec, nil
}

// Predict always returns the human-readable category, decoding encoded
// classes through the label encoder.
func (a *Artifacts) Predict(vec domain.FeatureVector) (string, error) {
	cls, err := a.classifier.Predict(vec)
	if err != nil {
		return "", domain.WrapError(domain.ErrModel, "predict", err)
	}
	label, err := a.label(cls)
	if err != nil {
		return "", domain.WrapError(domain.ErrModel, "decode label", err)
	}
	return label, nil
}

func (a *Artifacts) label(cls ClassValue) (string, error) {
	if !cls.Encoded {
		return cls.Name, nil
	}
	if a.labels == nil {
		return "", fmt.Errorf("no label encoder for class code %d", cls.Code)
	}
	return a.labels.Decode(cls.Code)
}

func (a *Artifacts) Summary() Summary {
	classes := a.classifier.Classes()
	categories := make([]string, 0, len(classes))
	for _, cls := range classes {
		name, err := a.label(cls)
		if err != nil {
			name = cls.String()
		}
		categories = append(categories, name)
	}
	return Summary{
		VectorizerDim:  a.vectorizer.Dim(),
		VocabularySize: a.vectorizer.VocabularySize(),
		ClassifierKind: a.classifier.Kind(),
		EncodedLabels:  a.classifier.Encoded(),
		Categories:     categories,
	}
}
