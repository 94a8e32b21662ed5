package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclideanDistanceIdentity(t *testing.T) {
	embeddings := [][]float32{
		{0, 0, 0, 0},
		{1, 2, 3, 4},
		{-0.5, 0.25, 0.125, -1},
	}
	for _, e := range embeddings {
		assert.Zero(t, EuclideanDistance(e, e))
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"3-4-5 triangle", []float32{0, 0}, []float32{3, 4}, 5},
		{"negative components", []float32{-1, 0}, []float32{1, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EuclideanDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestEuclideanDistanceDimensionMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		EuclideanDistance([]float32{1, 2}, []float32{1, 2, 3})
	})
}

func TestBestMatchEmptyRegistry(t *testing.T) {
	result := BestMatch([]float32{1, 2, 3}, nil, DefaultMatchThreshold)
	assert.False(t, result.Matched)
}

func TestBestMatchSelfMatch(t *testing.T) {
	probe := []float32{0.1, 0.2, 0.3, 0.4}
	registry := []EnrolledStudent{{StudentID: 7, Embedding: probe}}

	result := BestMatch(probe, registry, 0.1)
	require.True(t, result.Matched)
	assert.Equal(t, uint(7), result.StudentID)
	assert.Zero(t, result.Distance)
}

func TestBestMatchNearestUnderThreshold(t *testing.T) {
	// Probe sits 0.4 from A and 0.9 from B.
	registry := []EnrolledStudent{
		{StudentID: 1, Name: "A", Embedding: []float32{0.4, 0}},
		{StudentID: 2, Name: "B", Embedding: []float32{-0.9, 0}},
	}
	probe := []float32{0, 0}

	result := BestMatch(probe, registry, 0.6)
	require.True(t, result.Matched)
	assert.Equal(t, uint(1), result.StudentID)
	assert.InDelta(t, 0.4, result.Distance, 1e-6)

	// Same probe at a tighter threshold is rejected.
	result = BestMatch(probe, registry, 0.3)
	assert.False(t, result.Matched)
}

func TestBestMatchThresholdIsStrict(t *testing.T) {
	registry := []EnrolledStudent{{StudentID: 1, Embedding: []float32{0.5, 0}}}
	probe := []float32{0, 0}

	// Distance exactly equal to the threshold must not match.
	result := BestMatch(probe, registry, 0.5)
	assert.False(t, result.Matched)

	result = BestMatch(probe, registry, 0.5000001)
	assert.True(t, result.Matched)
}

func TestBestMatchThresholdMonotonicity(t *testing.T) {
	registry := []EnrolledStudent{
		{StudentID: 1, Embedding: []float32{0.25, 0}},
		{StudentID: 2, Embedding: []float32{0.7, 0}},
	}
	probe := []float32{0, 0}

	thresholds := []float64{0.1, 0.3, 0.5, 0.8, 1.2}
	prevMatched := false
	for _, th := range thresholds {
		matched := BestMatch(probe, registry, th).Matched
		if prevMatched {
			assert.True(t, matched, "match accepted at a lower threshold must hold at %g", th)
		}
		prevMatched = matched
	}
}
