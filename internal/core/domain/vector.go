package domain

// FeatureVector is a sparse numeric vector of fixed dimensionality.
// Indices are strictly increasing and all below Dim.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

func (v FeatureVector) NonZero() int {
	return len(v.Indices)
}
