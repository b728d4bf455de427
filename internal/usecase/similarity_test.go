package usecase

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	t.Run("identical direction is 1", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{2, 4, 6}
		if got := cosine(a, b); math.Abs(got-1) > 1e-9 {
			t.Errorf("cosine = %v, want 1", got)
		}
	})

	t.Run("orthogonal is 0", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		if got := cosine(a, b); got != 0 {
			t.Errorf("cosine = %v, want 0", got)
		}
	})

	t.Run("opposite direction is -1", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{-1, 0}
		if got := cosine(a, b); math.Abs(got+1) > 1e-9 {
			t.Errorf("cosine = %v, want -1", got)
		}
	})

	t.Run("zero vector yields 0 against anything", func(t *testing.T) {
		zero := []float32{0, 0, 0}
		unit := []float32{1, 0, 0}
		if got := cosine(zero, unit); got != 0 {
			t.Errorf("cosine(zero, unit) = %v, want 0", got)
		}
		if got := cosine(zero, zero); got != 0 {
			t.Errorf("cosine(zero, zero) = %v, want 0", got)
		}
	})
}

func TestSimilarityMatrix(t *testing.T) {
	clients := [][]float32{{1, 0}, {0, 1}}
	scraped := [][]float32{{1, 0}, {0, 1}, {0, 0}}

	sims := similarityMatrix(clients, scraped)

	if len(sims) != 2 || len(sims[0]) != 3 {
		t.Fatalf("matrix shape = %dx%d, want 2x3", len(sims), len(sims[0]))
	}
	if math.Abs(sims[0][0]-1) > 1e-9 || sims[0][1] != 0 || sims[0][2] != 0 {
		t.Errorf("row 0 = %v, want [1 0 0]", sims[0])
	}
	if sims[1][0] != 0 || math.Abs(sims[1][1]-1) > 1e-9 || sims[1][2] != 0 {
		t.Errorf("row 1 = %v, want [0 1 0]", sims[1])
	}
}

func TestSimilarityMatrixZeroVectorInert(t *testing.T) {
	// Replacing a scraped vector with a zero vector never increases any
	// similarity in the matrix.
	clients := [][]float32{{0.6, 0.8}}
	scraped := [][]float32{{0.6, 0.8}, {1, 0}}

	before := similarityMatrix(clients, scraped)
	scraped[1] = []float32{0, 0}
	after := similarityMatrix(clients, scraped)

	for j := range before[0] {
		if after[0][j] > before[0][j] {
			t.Errorf("similarity[0][%d] increased from %v to %v after zeroing", j, before[0][j], after[0][j])
		}
	}
}
