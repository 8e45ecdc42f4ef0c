package retrieval

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Crawler produces the document corpus for the index.
type Crawler interface {
	Crawl(ctx context.Context, site string) ([]Document, error)
}

// SitemapCrawler walks a site's XML sitemap, filters out excluded
// paths, verifies each page responds with 200 and extracts its text.
type SitemapCrawler struct {
	httpClient *http.Client
	// excluded path fragments; pages whose URL contains one are skipped.
	exclude []string
}

// NewSitemapCrawler creates a crawler with the default page filter.
func NewSitemapCrawler(exclude ...string) *SitemapCrawler {
	return &SitemapCrawler{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		exclude:    exclude,
	}
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// Crawl implements Crawler. It fetches <site>/sitemap.xml, follows
// nested sitemap indexes one level deep, then fetches every listed
// page, dropping excluded, duplicate and non-200 URLs.
func (c *SitemapCrawler) Crawl(ctx context.Context, site string) ([]Document, error) {
	urls, err := c.sitemapURLs(ctx, strings.TrimSuffix(site, "/")+"/sitemap.xml")
	if err != nil {
		return nil, fmt.Errorf("walk sitemap for %s: %w", site, err)
	}

	seen := make(map[string]bool, len(urls))
	var docs []Document
	for _, u := range urls {
		if seen[u] || c.excluded(u) {
			continue
		}
		seen[u] = true

		text, err := c.fetchText(ctx, u)
		if err != nil {
			// Unreachable pages are simply not indexed.
			continue
		}
		docs = append(docs, Document{URL: u, Text: text})
	}
	return docs, nil
}

func (c *SitemapCrawler) sitemapURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	body, err := c.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		var urls []string
		for _, sm := range index.Sitemaps {
			nested, err := c.get(ctx, sm.Loc)
			if err != nil {
				continue
			}
			var set urlSet
			if err := xml.Unmarshal(nested, &set); err != nil {
				continue
			}
			for _, u := range set.URLs {
				urls = append(urls, u.Loc)
			}
		}
		return urls, nil
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}
	urls := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		urls = append(urls, u.Loc)
	}
	return urls, nil
}

func (c *SitemapCrawler) excluded(url string) bool {
	for _, frag := range c.exclude {
		if strings.Contains(url, frag) {
			return true
		}
	}
	return false
}

var tagPattern = regexp.MustCompile(`(?s)<script.*?</script>|<style.*?</style>|<[^>]+>`)

func (c *SitemapCrawler) fetchText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	text := tagPattern.ReplaceAllString(string(body), " ")
	return strings.Join(strings.Fields(text), " "), nil
}

func (c *SitemapCrawler) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
