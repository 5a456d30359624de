// Package builtwith wraps the BuiltWith technology detection API.
package builtwith

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/enrich-cli/internal/resilience"
)

const defaultBaseURL = "https://api.builtwith.com/v20"

// Client detects the technologies running on a website.
type Client interface {
	Detect(ctx context.Context, domain string) (*TechProfile, error)
}

// TechProfile is the distilled detection result. Technologies preserve the
// provider's order and carry no duplicates.
type TechProfile struct {
	Domain       string   `json:"domain"`
	Technologies []string `json:"technologies"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit for lookups.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetry overrides the default retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a BuiltWith API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("builtwith", "detect")
	for _, o := range opts {
		o(c)
	}
	return c
}

// lookupResponse mirrors the wire shape of GET /api.json.
type lookupResponse struct {
	Results []struct {
		Result struct {
			Paths []struct {
				Technologies []struct {
					Name string `json:"Name"`
				} `json:"Technologies"`
			} `json:"Paths"`
		} `json:"Result"`
	} `json:"Results"`
}

func (c *httpClient) Detect(ctx context.Context, domain string) (*TechProfile, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*TechProfile, error) {
		return c.detect(ctx, domain)
	})
}

func (c *httpClient) detect(ctx context.Context, domain string) (*TechProfile, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "builtwith: rate limit wait")
		}
	}

	q := url.Values{}
	q.Set("KEY", c.apiKey)
	q.Set("LOOKUP", domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api.json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "builtwith: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "builtwith: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "builtwith: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("builtwith: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "builtwith: unmarshal response")
	}

	profile := &TechProfile{Domain: domain}
	seen := make(map[string]bool)
	for _, r := range lr.Results {
		for _, p := range r.Result.Paths {
			for _, t := range p.Technologies {
				if t.Name == "" || seen[t.Name] {
					continue
				}
				seen[t.Name] = true
				profile.Technologies = append(profile.Technologies, t.Name)
			}
		}
	}

	return profile, nil
}
