package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Define static errors
var (
	ErrUnexpectedStatus = errors.New("enrichment service returned unexpected status")
)

// lookupResponse is the JSON body returned by the enrichment service
type lookupResponse struct {
	CanonicalID string `json:"canonical_id"`
}

// client implements Provider over HTTP
type client struct {
	log        logrus.FieldLogger
	httpClient *http.Client
	baseURL    string
	lookupPath string
	authToken  string
}

// NewClient creates a new HTTP-based enrichment provider
func NewClient(log logrus.FieldLogger, cfg *Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.SetDefaults()

	return &client{
		log:        log.WithField("component", "enrich"),
		httpClient: &http.Client{Timeout: cfg.QueryTimeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		lookupPath: cfg.LookupPath,
		authToken:  cfg.AuthToken,
	}, nil
}

// Lookup queries the enrichment service for one customer name. A 404 or
// an empty canonical id is a miss, not an error.
func (c *client) Lookup(ctx context.Context, name string) (*Match, error) {
	endpoint := fmt.Sprintf("%s%s?name=%s", c.baseURL, c.lookupPath, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body is drained but never logged: it may echo the queried name
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if body.CanonicalID == "" {
		return nil, nil
	}

	return &Match{CanonicalID: body.CanonicalID}, nil
}
