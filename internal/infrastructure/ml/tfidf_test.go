package ml

import (
	"math"
	"testing"
)

func TestTFIDFTransformFromYAML(t *testing.T) {
	v, err := LoadTFIDFVectorizer("testdata/vectorizer.yaml")
	if err != nil {
		t.Fatalf("LoadTFIDFVectorizer() error = %v", err)
	}
	if v.Dim() != 4 {
		t.Fatalf("expected dim 4, got %d", v.Dim())
	}

	vec, err := v.Transform("Go and Kubernetes with Terraform")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if vec.Dim != 4 {
		t.Fatalf("expected vector dim 4, got %d", vec.Dim)
	}
	wantIdx := []int{0, 1, 2, 3}
	if len(vec.Indices) != len(wantIdx) {
		t.Fatalf("expected indices %v, got %v", wantIdx, vec.Indices)
	}
	for i, idx := range wantIdx {
		if vec.Indices[i] != idx {
			t.Fatalf("expected indices %v, got %v", wantIdx, vec.Indices)
		}
	}
	if ratio := vec.Values[2] / vec.Values[0]; math.Abs(ratio-3) > 1e-9 {
		t.Fatalf("expected bigram weight ratio 3, got %f", ratio)
	}
	var sq float64
	for _, x := range vec.Values {
		sq += x * x
	}
	if math.Abs(sq-1) > 1e-9 {
		t.Fatalf("expected unit l2 norm, got %f", sq)
	}
}

func TestTFIDFTransformIsDeterministic(t *testing.T) {
	v, err := LoadTFIDFVectorizer("testdata/vectorizer.yaml")
	if err != nil {
		t.Fatalf("LoadTFIDFVectorizer() error = %v", err)
	}
	a, _ := v.Transform("terraform go kubernetes go")
	b, _ := v.Transform("terraform go kubernetes go")
	if len(a.Indices) != len(b.Indices) {
		t.Fatalf("vector sizes differ: %d vs %d", len(a.Indices), len(b.Indices))
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] || a.Values[i] != b.Values[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestTFIDFSublinearAndRawCounts(t *testing.T) {
	base := tfidfArtifact{
		Vocabulary: map[string]int{"go": 0, "sql": 1},
		IDF:        []float64{1, 1},
		Norm:       "none",
	}
	raw, err := newTFIDFVectorizer(base)
	if err != nil {
		t.Fatalf("newTFIDFVectorizer() error = %v", err)
	}
	vec, _ := raw.Transform("go go go sql")
	if vec.Values[0] != 3 || vec.Values[1] != 1 {
		t.Fatalf("expected raw counts [3 1], got %v", vec.Values)
	}

	base.SublinearTF = true
	sub, err := newTFIDFVectorizer(base)
	if err != nil {
		t.Fatalf("newTFIDFVectorizer() error = %v", err)
	}
	vec, _ = sub.Transform("go go go sql")
	if math.Abs(vec.Values[0]-(1+math.Log(3))) > 1e-12 || vec.Values[1] != 1 {
		t.Fatalf("expected sublinear tf, got %v", vec.Values)
	}
}

func TestTFIDFUnknownTextGivesZeroVector(t *testing.T) {
	v, err := LoadTFIDFVectorizer("testdata/vectorizer.yaml")
	if err != nil {
		t.Fatalf("LoadTFIDFVectorizer() error = %v", err)
	}
	vec, err := v.Transform("lorem ipsum dolor")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if vec.NonZero() != 0 || vec.Dim != 4 {
		t.Fatalf("expected empty vector of dim 4, got %+v", vec)
	}
}

func TestTFIDFCustomTokenPattern(t *testing.T) {
	v, err := newTFIDFVectorizer(tfidfArtifact{
		TokenPattern: `(?u)[a-z+#]+`,
		Vocabulary:   map[string]int{"c++": 0, "c#": 1, "go": 2},
		IDF:          []float64{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("newTFIDFVectorizer() error = %v", err)
	}
	vec, _ := v.Transform("C++ and C# developer")
	if vec.NonZero() != 2 || vec.Indices[0] != 0 || vec.Indices[1] != 1 {
		t.Fatalf("expected c++ and c# features, got %+v", vec)
	}
}

func TestTFIDFRejectsInconsistentArtifacts(t *testing.T) {
	cases := map[string]tfidfArtifact{
		"empty idf":           {Vocabulary: map[string]int{"a": 0}},
		"empty vocabulary":    {IDF: []float64{1}},
		"column out of range": {Vocabulary: map[string]int{"go": 2}, IDF: []float64{1, 1}},
		"shared column":       {Vocabulary: map[string]int{"go": 0, "golang": 0}, IDF: []float64{1}},
		"bad norm":            {Vocabulary: map[string]int{"go": 0}, IDF: []float64{1}, Norm: "max"},
		"bad ngram":           {Vocabulary: map[string]int{"go": 0}, IDF: []float64{1}, NgramRange: []int{2, 1}},
		"infinite idf":        {Vocabulary: map[string]int{"go": 0}, IDF: []float64{math.Inf(1)}},
		"unknown kind":        {Kind: "count", Vocabulary: map[string]int{"go": 0}, IDF: []float64{1}},
	}
	for name, art := range cases {
		if _, err := newTFIDFVectorizer(art); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTokenizeWordsUnicode(t *testing.T) {
	tokens := tokenizeWords("développeur C# a_b x 42 Go")
	want := []string{"développeur", "a_b", "42", "Go"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}
}
