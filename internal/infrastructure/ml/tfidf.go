package ml

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

// sklearnDefaultTokenPattern is scikit-learn's default, handled natively
// because RE2 has no unicode-aware \w.
const sklearnDefaultTokenPattern = `(?u)\b\w\w+\b`

type tfidfArtifact struct {
	Kind         string         `json:"kind" yaml:"kind"`
	Lowercase    *bool          `json:"lowercase" yaml:"lowercase"`
	TokenPattern string         `json:"token_pattern" yaml:"token_pattern"`
	StopWords    []string       `json:"stop_words" yaml:"stop_words"`
	NgramRange   []int          `json:"ngram_range" yaml:"ngram_range"`
	Vocabulary   map[string]int `json:"vocabulary" yaml:"vocabulary"`
	IDF          []float64      `json:"idf" yaml:"idf"`
	Norm         string         `json:"norm" yaml:"norm"`
	SublinearTF  bool           `json:"sublinear_tf" yaml:"sublinear_tf"`
}

// TFIDFVectorizer reproduces the transform of a fitted scikit-learn
// TfidfVectorizer. It is immutable after construction.
type TFIDFVectorizer struct {
	lowercase   bool
	pattern     *regexp.Regexp
	stopWords   map[string]struct{}
	ngramMin    int
	ngramMax    int
	vocabulary  map[string]int
	idf         []float64
	norm        string
	sublinearTF bool
}

func LoadTFIDFVectorizer(path string) (*TFIDFVectorizer, error) {
	var art tfidfArtifact
	if err := decodeArtifact(path, &art); err != nil {
		return nil, err
	}
	return newTFIDFVectorizer(art)
}

func newTFIDFVectorizer(art tfidfArtifact) (*TFIDFVectorizer, error) {
	if art.Kind != "" && art.Kind != "tfidf" {
		return nil, fmt.Errorf("vectorizer kind %q is not supported", art.Kind)
	}
	if len(art.IDF) == 0 {
		return nil, errors.New("vectorizer has an empty idf table")
	}
	if len(art.Vocabulary) == 0 {
		return nil, errors.New("vectorizer has an empty vocabulary")
	}
	for i, w := range art.IDF {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("idf[%d] is not finite", i)
		}
	}
	seen := make(map[int]string, len(art.Vocabulary))
	for term, idx := range art.Vocabulary {
		if idx < 0 || idx >= len(art.IDF) {
			return nil, fmt.Errorf("vocabulary term %q maps to column %d outside [0,%d)", term, idx, len(art.IDF))
		}
		if other, dup := seen[idx]; dup {
			return nil, fmt.Errorf("vocabulary terms %q and %q share column %d", other, term, idx)
		}
		seen[idx] = term
	}

	v := &TFIDFVectorizer{
		lowercase:   art.Lowercase == nil || *art.Lowercase,
		stopWords:   make(map[string]struct{}, len(art.StopWords)),
		ngramMin:    1,
		ngramMax:    1,
		vocabulary:  art.Vocabulary,
		idf:         art.IDF,
		norm:        strings.ToLower(strings.TrimSpace(art.Norm)),
		sublinearTF: art.SublinearTF,
	}
	for _, w := range art.StopWords {
		v.stopWords[w] = struct{}{}
	}

	switch len(art.NgramRange) {
	case 0:
	case 2:
		v.ngramMin, v.ngramMax = art.NgramRange[0], art.NgramRange[1]
		if v.ngramMin < 1 || v.ngramMax < v.ngramMin {
			return nil, fmt.Errorf("invalid ngram_range %v", art.NgramRange)
		}
	default:
		return nil, fmt.Errorf("ngram_range must hold two values, got %v", art.NgramRange)
	}

	switch v.norm {
	case "":
		v.norm = "l2"
	case "l1", "l2", "none":
	default:
		return nil, fmt.Errorf("unsupported norm %q", art.Norm)
	}

	if p := strings.TrimSpace(art.TokenPattern); p != "" && p != sklearnDefaultTokenPattern {
		re, err := regexp.Compile(strings.TrimPrefix(p, "(?u)"))
		if err != nil {
			return nil, fmt.Errorf("compile token_pattern: %w", err)
		}
		if re.NumSubexp() > 1 {
			return nil, fmt.Errorf("token_pattern %q has more than one capturing group", p)
		}
		v.pattern = re
	}
	return v, nil
}

// Dim is the fixed output dimensionality.
func (v *TFIDFVectorizer) Dim() int {
	return len(v.idf)
}

func (v *TFIDFVectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

func (v *TFIDFVectorizer) Transform(text string) (domain.FeatureVector, error) {
	if v.lowercase {
		text = strings.ToLower(text)
	}

	counts := make(map[int]float64, 64)
	for _, term := range v.terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		values[i] = tf * v.idf[idx]
	}
	normalize(values, v.norm)

	return domain.FeatureVector{Dim: len(v.idf), Indices: indices, Values: values}, nil
}

// terms yields the word n-grams after stop-word removal, like
// scikit-learn's analyzer="word".
func (v *TFIDFVectorizer) terms(text string) []string {
	var tokens []string
	if v.pattern != nil {
		tokens = v.patternTokens(text)
	} else {
		tokens = tokenizeWords(text)
	}

	if len(v.stopWords) > 0 {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := v.stopWords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if v.ngramMin == 1 && v.ngramMax == 1 {
		return tokens
	}

	out := make([]string, 0, len(tokens)*(v.ngramMax-v.ngramMin+1))
	for n := v.ngramMin; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func (v *TFIDFVectorizer) patternTokens(text string) []string {
	if v.pattern.NumSubexp() == 0 {
		return v.pattern.FindAllString(text, -1)
	}
	matches := v.pattern.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// tokenizeWords keeps runs of at least two letters, digits or underscores.
func tokenizeWords(s string) []string {
	out := make([]string, 0, 64)
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			out = append(out, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_' {
			b.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return out
}

func normalize(values []float64, norm string) {
	var total float64
	switch norm {
	case "l2":
		for _, x := range values {
			total += x * x
		}
		total = math.Sqrt(total)
	case "l1":
		for _, x := range values {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
