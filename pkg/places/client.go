// Package places wraps the Google Places web service calls used by the
// restaurant seeder.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the Google Places text-search and details endpoints.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Result is one place from a text search, reduced to the fields the seeder
// maps onto a restaurant row.
type Result struct {
	PlaceID          string
	Name             string
	Address          string
	Latitude         float64
	Longitude        float64
	Rating           *float64
	UserRatingsTotal int
	PriceLevel       *int // 0 (free) .. 4 (very expensive)
	Types            []string
	PhotoRefs        []string
}

// Hours is the weekday-keyed opening hours text from a details lookup.
type Hours map[string]string

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type textSearchResponse struct {
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		PriceLevel       *int     `json:"price_level"`
		Types            []string `json:"types"`
		Photos           []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type detailsResponse struct {
	Result struct {
		OpeningHours struct {
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours"`
	} `json:"result"`
	Status string `json:"status"`
}

// TextSearch runs a places text search, e.g. "nasi lemak in Kuala Lumpur".
func (c *Client) TextSearch(ctx context.Context, query string) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_PLACES_API_KEY not set")
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("key", c.apiKey)
	requestURL := fmt.Sprintf("%s/textsearch/json?%s", c.baseURL, params.Encode())

	var parsed textSearchResponse
	if err := c.getJSON(ctx, requestURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API status %s: %s", parsed.Status, parsed.ErrorMessage)
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		result := Result{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Address:          r.FormattedAddress,
			Latitude:         r.Geometry.Location.Lat,
			Longitude:        r.Geometry.Location.Lng,
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			PriceLevel:       r.PriceLevel,
			Types:            r.Types,
		}
		for _, p := range r.Photos {
			result.PhotoRefs = append(result.PhotoRefs, p.PhotoReference)
		}
		results = append(results, result)
	}
	return results, nil
}

// OpeningHours fetches the weekday hours text for a place. Lines look like
// "Monday: 10:00 AM – 10:00 PM"; unparseable lines are skipped.
func (c *Client) OpeningHours(ctx context.Context, placeID string) (Hours, error) {
	params := url.Values{}
	params.Add("place_id", placeID)
	params.Add("fields", "opening_hours")
	params.Add("key", c.apiKey)
	requestURL := fmt.Sprintf("%s/details/json?%s", c.baseURL, params.Encode())

	var parsed detailsResponse
	if err := c.getJSON(ctx, requestURL, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" {
		return nil, fmt.Errorf("places details status %s", parsed.Status)
	}

	hours := make(Hours)
	for _, line := range parsed.Result.OpeningHours.WeekdayText {
		day, text, ok := splitWeekdayLine(line)
		if !ok {
			continue
		}
		hours[day] = text
	}
	return hours, nil
}

// PhotoURL builds the public photo URL for a photo reference.
func (c *Client) PhotoURL(photoRef string, maxWidth int) string {
	params := url.Values{}
	params.Add("photoreference", photoRef)
	params.Add("maxwidth", fmt.Sprintf("%d", maxWidth))
	params.Add("key", c.apiKey)
	return fmt.Sprintf("%s/photo?%s", c.baseURL, params.Encode())
}

func (c *Client) getJSON(ctx context.Context, requestURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call places API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func splitWeekdayLine(line string) (day, text string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ':' {
			day = normalizeDay(line[:i])
			text = normalizeHoursText(line[i+1:])
			return day, text, day != ""
		}
	}
	return "", "", false
}

func normalizeDay(s string) string {
	switch s {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return strings.ToLower(s)
	}
	return ""
}

func normalizeHoursText(s string) string {
	// "10:00 AM – 10:00 PM" -> "10:00am-10:00pm"
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			continue
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c < 0x80:
			out = append(out, c)
		default:
			// Multibyte dash variants map to a plain hyphen.
			out = append(out, '-')
			for i+1 < len(s) && s[i+1]&0xC0 == 0x80 {
				i++
			}
		}
	}
	return string(out)
}
