// Package overpass fetches points of interest from the Overpass OSM API
// and reshapes them into the raw POI records the importer consumes.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/allspots/spots-cli/internal/model"
)

const (
	// Radius bounds in meters; requests outside are clamped, not rejected.
	MinRadius     = 1000
	MaxRadius     = 50000
	defaultRadius = 10000
)

// Options configures the Overpass client.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RatePerSec throttles interpreter calls; the public instance is shared.
	RatePerSec float64
}

// Client is a rate-limited Overpass interpreter client.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// Query selects POIs within a radius of a point, optionally restricted to
// a category subset.
type Query struct {
	Lat        float64
	Lng        float64
	Radius     int
	Categories []string
}

// NewClient creates an Overpass client with the given options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "spots-cli/1.0"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FetchPOIs queries the interpreter and maps the result to raw POI
// records. Unnamed elements, elements without coordinates, and elements
// outside the requested categories are dropped; duplicate OSM ids within
// one response are collapsed.
func (c *Client) FetchPOIs(ctx context.Context, q Query) ([]map[string]any, error) {
	radius := q.Radius
	if radius == 0 {
		radius = defaultRadius
	}
	radius = min(max(radius, MinRadius), MaxRadius)

	query := BuildQuery(q.Lat, q.Lng, radius, TagFilters(q.Categories))
	body, err := c.post(ctx, query)
	if err != nil {
		return nil, err
	}

	var decoded overpassResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, eris.Wrap(err, "overpass: decode response")
	}

	var pois []map[string]any
	seen := make(map[int64]bool)
	for _, el := range decoded.Elements {
		name := el.Tags["name"]
		if name == "" || seen[el.ID] {
			continue
		}
		lat, lng, ok := elementCoords(el)
		if !ok {
			continue
		}
		category := Classify(el.Tags, q.Categories)
		if category == "" {
			continue
		}
		seen[el.ID] = true

		pois = append(pois, map[string]any{
			"id":               fmt.Sprintf("osm_%d", el.ID),
			"osmId":            el.ID,
			"source":           model.SourceOSM,
			"name":             name,
			"category":         category,
			"subCategory":      SubCategory(el.Tags),
			"lat":              lat,
			"lng":              lng,
			"shortDescription": firstNonEmpty(el.Tags["description"], el.Tags["operator"]),
			"description":      el.Tags["description"],
			"websiteUrl":       el.Tags["website"],
			"imageUrls":        []string{},
			"pmrAccessible":    wheelchairTriState(el.Tags["wheelchair"]),
			"updatedAt":        time.Now().UTC().Format(time.RFC3339),
		})
	}

	zap.L().Debug("overpass fetch complete",
		zap.Int("elements", len(decoded.Elements)),
		zap.Int("pois", len(pois)),
	)
	return pois, nil
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "overpass: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL, strings.NewReader(query))
		if err != nil {
			return nil, eris.Wrap(err, "overpass: create request")
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("overpass request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close() //nolint:errcheck
			lastErr = eris.Errorf("overpass: http %d", resp.StatusCode)
			zap.L().Warn("overpass server busy, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close() //nolint:errcheck
			return nil, eris.Errorf("overpass: unexpected status %d", resp.StatusCode)
		}

		body, err := readAll(resp)
		if err != nil {
			return nil, eris.Wrap(err, "overpass: read response")
		}
		return body, nil
	}
	return nil, eris.Wrap(lastErr, "overpass: all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	d := time.Duration(float64(time.Second) * math.Pow(2, float64(attempt)))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close() //nolint:errcheck
	return io.ReadAll(resp.Body)
}

func elementCoords(el overpassElement) (lat, lng float64, ok bool) {
	if el.Lat != nil && el.Lon != nil {
		return *el.Lat, *el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

// wheelchairTriState maps the OSM wheelchair tag to true/false/nil.
func wheelchairTriState(v string) any {
	switch v {
	case "yes":
		return true
	case "no":
		return false
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
