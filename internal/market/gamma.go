package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Token is one tradable outcome token. Gamma records are inconsistent about
// field casing, so both spellings are accepted.
type Token struct {
	TokenID    string `json:"token_id"`
	TokenIDAlt string `json:"tokenId"`
}

// ID returns whichever identifier field the upstream populated.
func (t Token) ID() string {
	if t.TokenID != "" {
		return t.TokenID
	}
	return t.TokenIDAlt
}

// Descriptor is one market record from the metadata service. Outcomes,
// Tokens and BestAsk are order-correlated: index i describes one outcome
// slot. BestAsk values are kept raw because the upstream emits them as
// numbers or strings depending on the market.
type Descriptor struct {
	Outcomes []string      `json:"outcomes"`
	Tokens   []Token       `json:"tokens"`
	BestAsk  []interface{} `json:"best_ask"`
}

// Query selects a market by condition id or slug. Exactly one is expected;
// condition id wins when both are set.
type Query struct {
	ConditionID string
	MarketID    string
}

// MetadataAPI is the lookup capability the resolver consumes. The production
// implementation is the Gamma client below; tests inject fakes.
type MetadataAPI interface {
	Markets(ctx context.Context, q Query) ([]Descriptor, error)
}

type cacheEntry struct {
	descriptors []Descriptor
	expires     time.Time
}

// GammaClient reads market descriptors from the Gamma REST API. Responses
// are cached for a few seconds per lookup URL: ask prices are re-validated
// by the caller-supplied ask, so short staleness is acceptable.
type GammaClient struct {
	baseURL string
	ttl     time.Duration
	http    *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewGammaClient(baseURL string, ttl, timeout time.Duration) *GammaClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GammaClient{
		baseURL: baseURL,
		ttl:     ttl,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
		},
		cache: make(map[string]cacheEntry),
	}
}

func (c *GammaClient) Markets(ctx context.Context, q Query) ([]Descriptor, error) {
	lookupURL, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	if cached, ok := c.fromCache(lookupURL); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market lookup failed with status %d", resp.StatusCode)
	}

	var descriptors []Descriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		return nil, fmt.Errorf("market lookup returned invalid body: %w", err)
	}

	c.store(lookupURL, descriptors)
	return descriptors, nil
}

func (c *GammaClient) buildURL(q Query) (string, error) {
	params := url.Values{}
	params.Set("limit", "50")
	params.Set("active", "true")
	switch {
	case q.ConditionID != "":
		params.Set("condition_ids", q.ConditionID)
	case q.MarketID != "":
		params.Set("slug", q.MarketID)
	default:
		return "", fmt.Errorf("no identifier to resolve")
	}
	return c.baseURL + "/markets?" + params.Encode(), nil
}

func (c *GammaClient) fromCache(key string) ([]Descriptor, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.descriptors, true
}

func (c *GammaClient) store(key string, descriptors []Descriptor) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{descriptors: descriptors, expires: time.Now().Add(c.ttl)}
}
