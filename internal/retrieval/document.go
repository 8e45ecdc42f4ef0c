// Package retrieval implements a small dense-vector search index over
// crawled site content. Documents are embedded once at build time and
// queried with brute-force cosine similarity; the built index persists
// to SQLite so the crawl and embedding steps run only when the artifact
// is missing.
package retrieval

// Document is one indexed page. URL is the unique key.
type Document struct {
	URL       string
	Text      string
	Embedding []float32
}

// Result is one query hit.
type Result struct {
	Document Document
	Score    float64
}
