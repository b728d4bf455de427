package usecase

import "math"

// cosine returns the cosine similarity of a and b. By convention 0/0 is
// 0, so a zero vector can never match anything.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// similarityMatrix computes the full m×n cosine-similarity matrix between
// client and scraped vectors. Norms are computed once per vector; for
// n ≤ 100 and m in the low thousands the dense pass dominates and is
// trivially fast.
func similarityMatrix(clients, scraped [][]float32) [][]float64 {
	clientNorms := make([]float64, len(clients))
	for i, v := range clients {
		clientNorms[i] = norm(v)
	}
	scrapedNorms := make([]float64, len(scraped))
	for j, v := range scraped {
		scrapedNorms[j] = norm(v)
	}

	sims := make([][]float64, len(clients))
	for i, cv := range clients {
		row := make([]float64, len(scraped))
		for j, sv := range scraped {
			denom := clientNorms[i] * scrapedNorms[j]
			if denom == 0 {
				row[j] = 0
				continue
			}
			var dot float64
			for k := range cv {
				dot += float64(cv[k]) * float64(sv[k])
			}
			row[j] = dot / denom
		}
		sims[i] = row
	}
	return sims
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
