package wildberries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wbscout/wbscout/internal/domain"
)

const (
	// DefaultBaseURL is the catalog search endpoint
	DefaultBaseURL = "https://search.wb.ru/exactmatch/ru/common/v4/search"

	// DefaultLimit is the number of products requested per query
	DefaultLimit = 50

	defaultMaxBodyBytes = 8 << 20
)

// ClientConfig holds the fixed request parameters for the search API.
// The remote service rejects requests that don't look like they come from a browser,
// so Headers is sent verbatim on every request.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
	ResultSet    string
	Sort         string
	Page         int
	AppType      int
	Currency     string
	Dest         int
	Headers      map[string]string
}

// DefaultClientConfig returns the parameters the marketplace web frontend uses
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:      DefaultBaseURL,
		Timeout:      15 * time.Second,
		MaxBodyBytes: defaultMaxBodyBytes,
		ResultSet:    "catalog",
		Sort:         "popular",
		Page:         1,
		AppType:      1,
		Currency:     "rub",
		Dest:         -1257786,
		Headers:      DefaultHeaders(),
	}
}

// DefaultHeaders returns the browser-like header set expected by the search API
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.5",
		"Origin":          "https://www.wildberries.ru",
		"Referer":         "https://www.wildberries.ru/",
	}
}

// Client handles communication with the Wildberries catalog search API
type Client struct {
	httpClient *http.Client
	config     ClientConfig
}

// NewClient creates a new search API client. The config is copied, so later
// changes to the caller's header map have no effect.
func NewClient(config ClientConfig) *Client {
	headers := make(map[string]string, len(config.Headers))
	for key, value := range config.Headers {
		headers[key] = value
	}
	config.Headers = headers

	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// doRequest executes an HTTP GET request with the configured headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}

	return resp, nil
}

// SearchURL builds the request URL for a query. Spaces in the query are
// encoded as %20 rather than '+'.
func (c *Client) SearchURL(query string, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	escaped := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")

	var b strings.Builder
	b.WriteString(c.config.BaseURL)
	b.WriteString("?query=")
	b.WriteString(escaped)
	b.WriteString("&resultset=")
	b.WriteString(url.QueryEscape(c.config.ResultSet))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(limit))
	b.WriteString("&sort=")
	b.WriteString(url.QueryEscape(c.config.Sort))
	b.WriteString("&page=")
	b.WriteString(strconv.Itoa(c.config.Page))
	b.WriteString("&appType=")
	b.WriteString(strconv.Itoa(c.config.AppType))
	b.WriteString("&curr=")
	b.WriteString(url.QueryEscape(c.config.Currency))
	b.WriteString("&dest=")
	b.WriteString(strconv.Itoa(c.config.Dest))
	return b.String()
}

// SearchProducts runs one catalog search. It performs exactly one request;
// failures are returned as errors wrapping one of the domain sentinels.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) (*domain.SearchResult, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "wildberries").Logger()
	reqURL := c.SearchURL(query, limit)
	log.Debug().Str("url", reqURL).Msg("Sending search request")

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, c.config.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrSearchAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Int("status", resp.StatusCode).Bytes("body", truncate(body, 512)).Msg("Search API returned error status")
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchAPIFailure, resp.StatusCode)
	}

	records, shape, err := decodeSearchResponse(body)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Warn().
			Str("query", query).
			Strs("keys", shape.keys).
			Bool("has_data", shape.hasData).
			Msg("Response contained no products")
	} else {
		log.Debug().Int("count", len(records)).Str("query", query).Msg("Found products")
	}

	return &domain.SearchResult{
		Query:   query,
		Records: records,
		Fetched: true,
	}, nil
}

// responseShape describes where the product list was looked for, for diagnostics.
// keys holds the keys of the data object, or the top-level keys when data is absent.
type responseShape struct {
	hasData bool
	keys    []string
}

// decodeSearchResponse extracts data.products from a response body
func decodeSearchResponse(body []byte) ([]domain.ProductRecord, responseShape, error) {
	var shape responseShape

	if !json.Valid(body) {
		return nil, shape, fmt.Errorf("%w: body is not valid JSON", domain.ErrDecodeResponse)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, shape, fmt.Errorf("%w: top level is not an object", domain.ErrUnexpectedShape)
	}

	data, ok := top["data"]
	if !ok || isNull(data) {
		shape.keys = sortedKeys(top)
		return nil, shape, nil
	}
	shape.hasData = true

	var dataObj map[string]json.RawMessage
	if err := json.Unmarshal(data, &dataObj); err != nil || dataObj == nil {
		return nil, shape, fmt.Errorf("%w: data is not an object", domain.ErrUnexpectedShape)
	}
	shape.keys = sortedKeys(dataObj)

	products, ok := dataObj["products"]
	if !ok || isNull(products) {
		return nil, shape, nil
	}

	var records []domain.ProductRecord
	if err := json.Unmarshal(products, &records); err != nil {
		return nil, shape, fmt.Errorf("%w: data.products is not an array", domain.ErrUnexpectedShape)
	}

	return records, shape, nil
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
