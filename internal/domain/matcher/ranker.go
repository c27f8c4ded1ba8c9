package matcher

import (
	"math"
	"sort"
)

// rankedMatch ties a corpus index to its similarity score.
type rankedMatch struct {
	index int
	score float64
}

// rankBySimilarity computes cosine similarity between the query vector and
// every corpus row in one pass, then sorts descending by score. Ties keep
// the lower original index first. Row norms are precomputed once at engine
// construction; the query norm is computed here.
//
// A zero vector on either side yields exactly 0.0, never NaN.
func rankBySimilarity(query []float32, matrix [][]float32, rowNorms []float64) []rankedMatch {
	queryNorm := vectorNorm(query)
	ranked := make([]rankedMatch, len(matrix))
	for i, row := range matrix {
		score := 0.0
		if queryNorm > 0 && rowNorms[i] > 0 {
			score = dotProduct(query, row) / (queryNorm * rowNorms[i])
		}
		ranked[i] = rankedMatch{index: i, score: score}
	}
	// SliceStable keeps ascending-index order among equal scores because the
	// slice was built in index order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

func vectorNorm(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
