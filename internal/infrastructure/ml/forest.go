package ml

import (
	"errors"
	"fmt"
	"math"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

const KindRandomForest = "random_forest"

const leafNode = -1

// treeArtifact mirrors the node arrays of a fitted sklearn tree_. value is
// squeezed to one row of class weights per node.
type treeArtifact struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`
}

type forestArtifact struct {
	Kind       string         `json:"kind" yaml:"kind"`
	Classes    []ClassValue   `json:"classes" yaml:"classes"`
	NFeatures  int            `json:"n_features_in" yaml:"n_features_in"`
	Estimators []treeArtifact `json:"estimators" yaml:"estimators"`
}

type decisionTree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	proba     [][]float64
}

// ForestClassifier averages the leaf class probabilities of every tree and
// returns the argmax, like RandomForestClassifier.predict.
type ForestClassifier struct {
	classes []ClassValue
	width   int
	trees   []decisionTree
}

func newForestClassifier(art forestArtifact) (*ForestClassifier, error) {
	if err := checkClasses(art.Classes); err != nil {
		return nil, err
	}
	if art.NFeatures <= 0 {
		return nil, fmt.Errorf("forest needs n_features_in > 0, got %d", art.NFeatures)
	}
	if len(art.Estimators) == 0 {
		return nil, errors.New("forest has no estimators")
	}

	f := &ForestClassifier{classes: art.Classes, width: art.NFeatures}
	for i, est := range art.Estimators {
		tree, err := newDecisionTree(est, art.NFeatures, len(art.Classes))
		if err != nil {
			return nil, fmt.Errorf("estimator %d: %w", i, err)
		}
		f.trees = append(f.trees, tree)
	}
	return f, nil
}

func newDecisionTree(art treeArtifact, width, nClasses int) (decisionTree, error) {
	n := len(art.ChildrenLeft)
	if n == 0 {
		return decisionTree{}, errors.New("tree has no nodes")
	}
	if len(art.ChildrenRight) != n || len(art.Feature) != n || len(art.Threshold) != n || len(art.Value) != n {
		return decisionTree{}, fmt.Errorf("tree node arrays differ in length (want %d)", n)
	}

	tree := decisionTree{
		left:      art.ChildrenLeft,
		right:     art.ChildrenRight,
		feature:   art.Feature,
		threshold: art.Threshold,
		proba:     make([][]float64, n),
	}
	for node := 0; node < n; node++ {
		l, r := art.ChildrenLeft[node], art.ChildrenRight[node]
		if l == leafNode || r == leafNode {
			if l != r {
				return decisionTree{}, fmt.Errorf("node %d has only one child", node)
			}
			proba, err := leafProba(art.Value[node], nClasses)
			if err != nil {
				return decisionTree{}, fmt.Errorf("leaf %d: %w", node, err)
			}
			tree.proba[node] = proba
			continue
		}
		// Children are numbered after their parent, which rules out cycles.
		if l <= node || l >= n || r <= node || r >= n {
			return decisionTree{}, fmt.Errorf("node %d has children %d/%d outside (%d,%d)", node, l, r, node, n)
		}
		if f := art.Feature[node]; f < 0 || f >= width {
			return decisionTree{}, fmt.Errorf("node %d splits on feature %d outside [0,%d)", node, f, width)
		}
		if math.IsNaN(art.Threshold[node]) {
			return decisionTree{}, fmt.Errorf("node %d has a NaN threshold", node)
		}
	}
	return tree, nil
}

func leafProba(weights []float64, nClasses int) ([]float64, error) {
	if len(weights) != nClasses {
		return nil, fmt.Errorf("has %d class weights for %d classes", len(weights), nClasses)
	}
	var total float64
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid class weight %v", w)
		}
		total += w
	}
	if total == 0 {
		return nil, errors.New("class weights sum to zero")
	}
	proba := make([]float64, nClasses)
	for i, w := range weights {
		proba[i] = w / total
	}
	return proba, nil
}

func (f *ForestClassifier) Kind() string {
	return KindRandomForest
}

func (f *ForestClassifier) Width() int {
	return f.width
}

func (f *ForestClassifier) Classes() []ClassValue {
	out := make([]ClassValue, len(f.classes))
	copy(out, f.classes)
	return out
}

func (f *ForestClassifier) Encoded() bool {
	return f.classes[0].Encoded
}

func (f *ForestClassifier) Predict(vec domain.FeatureVector) (ClassValue, error) {
	if err := checkVector(vec, f.width); err != nil {
		return ClassValue{}, err
	}
	dense := make([]float64, f.width)
	for i, idx := range vec.Indices {
		// Trees are fitted on float32 inputs.
		dense[idx] = float64(float32(vec.Values[i]))
	}

	sum := make([]float64, len(f.classes))
	for _, tree := range f.trees {
		for i, p := range tree.leaf(dense) {
			sum[i] += p
		}
	}

	best := 0
	for i := 1; i < len(sum); i++ {
		if sum[i] > sum[best] {
			best = i
		}
	}
	return f.classes[best], nil
}

func (t decisionTree) leaf(x []float64) []float64 {
	node := 0
	for t.left[node] != leafNode {
		if x[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.proba[node]
}
