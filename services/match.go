package services

import (
	"fmt"
	"math"
)

// DefaultMatchThreshold is the acceptance distance cutoff used when no
// threshold is configured. It matches the tolerance the embedding model was
// validated against.
const DefaultMatchThreshold = 0.6

// EnrolledStudent is one registry entry: a student with a stored embedding.
type EnrolledStudent struct {
	StudentID  uint
	Name       string
	RollNumber string
	Embedding  []float32
}

// MatchResult is the outcome of comparing one probe embedding against the
// registry. When Matched is true, Distance is strictly below the threshold
// the match was computed with.
type MatchResult struct {
	Matched   bool
	StudentID uint
	Distance  float64
}

// EuclideanDistance computes the Euclidean distance between two embeddings.
// The vectors must have the same dimension; comparing embeddings of
// different models is a programming error and panics.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("embedding dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// BestMatch selects the registry entry nearest to the probe embedding and
// accepts it only if its distance is strictly below threshold. An empty
// registry yields no match without any comparison. Exact distance ties keep
// the first entry encountered; the winner under a tie is not specified.
func BestMatch(probe []float32, registry []EnrolledStudent, threshold float64) MatchResult {
	if len(registry) == 0 {
		return MatchResult{}
	}

	bestIdx := -1
	bestDist := 0.0
	for i := range registry {
		d := EuclideanDistance(probe, registry[i].Embedding)
		if bestIdx < 0 || d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}

	if bestDist >= threshold {
		return MatchResult{Distance: bestDist}
	}
	return MatchResult{
		Matched:   true,
		StudentID: registry[bestIdx].StudentID,
		Distance:  bestDist,
	}
}
