package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	wferrors "github.com/officina-ai/officina/pkg/workflow/errors"
)

// Workshop is one locator API result.
type Workshop struct {
	CompanyName string  `json:"companyName"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	District    string  `json:"district"`
	Distance    float64 `json:"distance"`
	Phone       string  `json:"phone1"`
}

// Locator finds workshops near a coordinate.
type Locator interface {
	Nearby(ctx context.Context, lat, lon float64) ([]Workshop, error)
}

// HTTPLocator calls the paginated workshop locator API. Pages are
// requested sequentially and accumulated until page >= totalPages. Any
// non-200 response aborts the loop immediately: no further calls are
// made and pages accumulated so far are discarded.
type HTTPLocator struct {
	baseURL    string
	distanceKm int
	httpClient *http.Client
}

// NewHTTPLocator creates a locator client for the given endpoint.
func NewHTTPLocator(baseURL string) *HTTPLocator {
	return &HTTPLocator{
		baseURL:    baseURL,
		distanceKm: 30,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type locatorPage struct {
	Items      []Workshop `json:"items"`
	TotalPages int        `json:"totalPages"`
}

// Nearby implements Locator.
func (l *HTTPLocator) Nearby(ctx context.Context, lat, lon float64) ([]Workshop, error) {
	var all []Workshop
	for page := 1; ; page++ {
		p, err := l.fetchPage(ctx, lat, lon, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if page >= p.TotalPages {
			return all, nil
		}
	}
}

func (l *HTTPLocator) fetchPage(ctx context.Context, lat, lon float64, page int) (*locatorPage, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("distance", strconv.Itoa(l.distanceKm))
	q.Set("mechanic", "true")
	q.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		l.baseURL+"/workshops?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &wferrors.HTTPStatusError{Op: "workshop locator", Status: resp.StatusCode}
	}

	var parsed locatorPage
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode locator page %d: %w", page, err)
	}
	return &parsed, nil
}
