package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Index holds embedded documents and answers similarity queries. The
// document set is fixed after construction, so Index is safe for
// concurrent queries.
type Index struct {
	docs     []Document
	embedder Embedder
}

// Build embeds every document and constructs an Index. Documents that
// already carry an embedding are not re-embedded.
func Build(ctx context.Context, embedder Embedder, docs []Document) (*Index, error) {
	var pending []int
	var texts []string
	for i, d := range docs {
		if len(d.Embedding) == 0 {
			pending = append(pending, i)
			texts = append(texts, d.Text)
		}
	}

	if len(pending) > 0 {
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed %d documents: %w", len(pending), err)
		}
		for j, i := range pending {
			docs[i].Embedding = vectors[j]
		}
	}

	return &Index{docs: docs, embedder: embedder}, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Documents returns the indexed documents.
func (ix *Index) Documents() []Document { return ix.docs }

// Query embeds text and returns up to k documents ranked by cosine
// similarity, best first. An empty index yields empty results, never an
// error.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Result, error) {
	if len(ix.docs) == 0 || k <= 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := vectors[0]

	results := make([]Result, 0, len(ix.docs))
	for _, d := range ix.docs {
		results = append(results, Result{Document: d, Score: cosine(query, d.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// cosine computes cosine similarity between two vectors. Mismatched or
// zero-length vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
