package matcher

import (
	"math"
	"testing"
)

func norms(matrix [][]float32) []float64 {
	out := make([]float64, len(matrix))
	for i, row := range matrix {
		out[i] = vectorNorm(row)
	}
	return out
}

func TestRankBySimilarityOrdersDescending(t *testing.T) {
	matrix := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	}
	ranked := rankBySimilarity([]float32{1, 0}, matrix, norms(matrix))

	if ranked[0].index != 1 {
		t.Fatalf("expected exact match first, got index %d", ranked[0].index)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].score > ranked[i-1].score {
			t.Fatalf("scores not descending at position %d", i)
		}
	}
	if math.Abs(ranked[0].score-1.0) > 1e-9 {
		t.Fatalf("expected self similarity 1.0, got %f", ranked[0].score)
	}
}

func TestRankBySimilarityBreaksTiesByIndex(t *testing.T) {
	// rows 0 and 2 are parallel, so both score identically against the query
	matrix := [][]float32{
		{1, 0},
		{0, 1},
		{2, 0},
	}
	ranked := rankBySimilarity([]float32{1, 0}, matrix, norms(matrix))

	if ranked[0].index != 0 || ranked[1].index != 2 {
		t.Fatalf("tie not broken by ascending index: got %d then %d", ranked[0].index, ranked[1].index)
	}
}

func TestRankBySimilarityZeroVectorsScoreZero(t *testing.T) {
	matrix := [][]float32{
		{0, 0},
		{1, 1},
	}
	ranked := rankBySimilarity([]float32{0, 0}, matrix, norms(matrix))
	for _, m := range ranked {
		if m.score != 0.0 {
			t.Fatalf("zero query vector must score 0.0, got %f for index %d", m.score, m.index)
		}
		if math.IsNaN(m.score) || math.IsInf(m.score, 0) {
			t.Fatalf("score must be finite, got %f", m.score)
		}
	}

	ranked = rankBySimilarity([]float32{1, 0}, matrix, norms(matrix))
	for _, m := range ranked {
		if m.index == 0 && m.score != 0.0 {
			t.Fatalf("zero corpus row must score 0.0, got %f", m.score)
		}
	}
}
