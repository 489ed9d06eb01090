package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClassValue is one entry of a classifier's class list: either an encoded
// integer that needs a label encoder, or the label itself.
type ClassValue struct {
	Name    string
	Code    int
	Encoded bool
}

func (c *ClassValue) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*c = ClassValue{Name: name}
		return nil
	}
	var num float64
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("class must be a string or an integer, got %s", string(b))
	}
	code, err := classCode(num)
	if err != nil {
		return err
	}
	*c = ClassValue{Code: code, Encoded: true}
	return nil
}

func (c *ClassValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: class must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int":
		code, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if code < 0 {
			return fmt.Errorf("line %d: negative class code %d", node.Line, code)
		}
		*c = ClassValue{Code: code, Encoded: true}
	case "!!float":
		num, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		code, err := classCode(num)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*c = ClassValue{Code: code, Encoded: true}
	default:
		*c = ClassValue{Name: node.Value}
	}
	return nil
}

func (c ClassValue) String() string {
	if c.Encoded {
		return strconv.Itoa(c.Code)
	}
	return c.Name
}

func classCode(num float64) (int, error) {
	if num < 0 || num != math.Trunc(num) || num > math.MaxInt32 {
		return 0, fmt.Errorf("class code %v is not a non-negative integer", num)
	}
	return int(num), nil
}

type labelEncoderArtifact struct {
	Classes []string `json:"classes" yaml:"classes"`
}

// LabelEncoder maps encoded class codes back to category names; the code is
// the index into Classes, as in scikit-learn's LabelEncoder.classes_.
type LabelEncoder struct {
	classes []string
}

func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	var art labelEncoderArtifact
	if err := decodeArtifact(path, &art); err != nil {
		return nil, err
	}
	return NewLabelEncoder(art.Classes)
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, errors.New("label encoder has no classes")
	}
	seen := make(map[string]struct{}, len(classes))
	for i, c := range classes {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("label encoder class %d is blank", i)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("label encoder class %q is duplicated", c)
		}
		seen[c] = struct{}{}
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return &LabelEncoder{classes: out}, nil
}

func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", fmt.Errorf("class code %d outside label space of %d", code, len(e.classes))
	}
	return e.classes[code], nil
}

func (e *LabelEncoder) Len() int {
	return len(e.classes)
}
