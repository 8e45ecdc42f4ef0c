package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	wferrors "github.com/officina-ai/officina/pkg/workflow/errors"
)

// SearchDoc is one retrieved source.
type SearchDoc struct {
	Source  string
	Content string
}

// Searcher retrieves documents for a query. Implementations must be
// safe for concurrent use across interview branches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchDoc, error)
}

// TavilySearcher performs web search through the Tavily API.
type TavilySearcher struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

// NewTavilySearcher creates a web searcher. An empty baseURL uses the
// public endpoint.
func NewTavilySearcher(baseURL, apiKey string) *TavilySearcher {
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &TavilySearcher{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxResults: 3,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements Searcher.
func (t *TavilySearcher) Search(ctx context.Context, query string) ([]SearchDoc, error) {
	payload, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: t.maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &wferrors.HTTPStatusError{Op: "web search", Status: resp.StatusCode}
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]SearchDoc, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		docs = append(docs, SearchDoc{Source: r.URL, Content: r.Content})
	}
	return docs, nil
}

// WikipediaSearcher retrieves article extracts from the Wikipedia API.
type WikipediaSearcher struct {
	baseURL    string
	maxDocs    int
	httpClient *http.Client
}

// NewWikipediaSearcher creates a knowledge searcher. An empty baseURL
// uses English Wikipedia.
func NewWikipediaSearcher(baseURL string) *WikipediaSearcher {
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org/w/api.php"
	}
	return &WikipediaSearcher{
		baseURL:    baseURL,
		maxDocs:    2,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type wikiResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Search implements Searcher: a title search followed by an extract
// fetch for the top hits.
func (w *WikipediaSearcher) Search(ctx context.Context, query string) ([]SearchDoc, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", fmt.Sprint(w.maxDocs))
	q.Set("format", "json")

	var search wikiResponse
	if err := w.get(ctx, q, &search); err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	if len(search.Query.Search) == 0 {
		return nil, nil
	}

	docs := make([]SearchDoc, 0, len(search.Query.Search))
	for _, hit := range search.Query.Search {
		eq := url.Values{}
		eq.Set("action", "query")
		eq.Set("prop", "extracts")
		eq.Set("explaintext", "1")
		eq.Set("exintro", "1")
		eq.Set("titles", hit.Title)
		eq.Set("format", "json")

		var extract wikiResponse
		if err := w.get(ctx, eq, &extract); err != nil {
			continue
		}
		for _, page := range extract.Query.Pages {
			if page.Extract != "" {
				docs = append(docs, SearchDoc{Source: "wikipedia:" + page.Title, Content: page.Extract})
			}
		}
	}
	return docs, nil
}

func (w *WikipediaSearcher) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &wferrors.HTTPStatusError{Op: "wikipedia", Status: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// formatDocs renders retrieved documents as a tagged context block.
func formatDocs(docs []SearchDoc) string {
	var buf bytes.Buffer
	for i, d := range docs {
		if i > 0 {
			buf.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&buf, "<Document source=%q/>\n%s\n</Document>", d.Source, d.Content)
	}
	return buf.String()
}
