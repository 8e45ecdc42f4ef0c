package retrieval

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	_ "modernc.org/sqlite"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS documents (
	url       TEXT PRIMARY KEY,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

// Exists reports whether a persisted index artifact is present at path.
// The index builder skips crawling and embedding entirely when it is.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes the index to a SQLite file at path, replacing any
// previous contents.
func (ix *Index) Save(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open index database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(indexSchema); err != nil {
		return fmt.Errorf("create index schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin index save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	for _, d := range ix.docs {
		if _, err := tx.Exec(
			`INSERT INTO documents (url, text, embedding) VALUES (?, ?, ?)`,
			d.URL, d.Text, encodeVector(d.Embedding),
		); err != nil {
			return fmt.Errorf("save document %s: %w", d.URL, err)
		}
	}
	return tx.Commit()
}

// Open loads a persisted index from path. The embedder is needed for
// future queries; stored embeddings are reused as-is.
func Open(ctx context.Context, path string, embedder Embedder) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT url, text, embedding FROM documents ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var blob []byte
		if err := rows.Scan(&d.URL, &d.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Embedding, err = decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", d.URL, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	return &Index{docs: docs, embedder: embedder}, nil
}

// encodeVector packs a float32 vector as little-endian bytes.
func encodeVector(v []float32) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(v)*4))
	for _, f := range v {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
