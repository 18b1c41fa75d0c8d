// Package tripadvisor extracts best-effort enrichment data (rank, price
// range, cuisine tags, a review snippet) from TripAdvisor search pages.
// There is no official API for this surface; everything here is scraping
// and may silently return partial data when the page layout changes.
package tripadvisor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Enrichment is the best-effort extract for one restaurant. Zero-value
// fields mean the marker was not found on the page.
type Enrichment struct {
	Rank       string
	PriceRange string
	Tags       []string
	Snippet    string
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

var (
	rankRe    = regexp.MustCompile(`#\d+ of [\d,]+ (?:Restaurants|places to eat)`)
	priceRe   = regexp.MustCompile(`(?:RM|MYR|\$)\s?\d+ - (?:RM|MYR|\$)\s?\d+|[$]{1,4}(?:\s?-\s?[$]{1,4})?`)
	tagsRe    = regexp.MustCompile(`"cuisine":\s*\[([^\]]*)\]`)
	tagItemRe = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
	snipRe    = regexp.MustCompile(`"reviewSnippet"\s*:\s*"([^"]{10,300})"`)
)

// Search scrapes the search page for a restaurant name and city.
// Failures and empty pages both produce (nil, error); callers are expected
// to degrade to the plain record.
func (c *Client) Search(ctx context.Context, name, city string) (*Enrichment, error) {
	params := url.Values{}
	params.Add("q", fmt.Sprintf("%s %s", name, city))
	requestURL := fmt.Sprintf("%s/Search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// TripAdvisor serves a captcha page to the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-MY,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page returned status %d", resp.StatusCode)
	}

	// Pages run to several MB; the markers of interest sit in the first part.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read search page: %w", err)
	}

	enrichment := extract(string(body))
	if enrichment == nil {
		return nil, fmt.Errorf("no enrichment markers found for %q", name)
	}
	return enrichment, nil
}

func extract(page string) *Enrichment {
	e := &Enrichment{
		Rank:       rankRe.FindString(page),
		PriceRange: strings.TrimSpace(priceRe.FindString(page)),
	}

	if m := tagsRe.FindStringSubmatch(page); m != nil {
		for _, item := range tagItemRe.FindAllStringSubmatch(m[1], 5) {
			e.Tags = append(e.Tags, item[1])
		}
	}
	if m := snipRe.FindStringSubmatch(page); m != nil {
		e.Snippet = m[1]
	}

	if e.Rank == "" && e.PriceRange == "" && len(e.Tags) == 0 && e.Snippet == "" {
		return nil
	}
	return e
}
