// Package clearbit wraps the Clearbit company enrichment API.
package clearbit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/sells-group/enrich-cli/internal/resilience"
)

const defaultBaseURL = "https://company.clearbit.com/v2"

// recentActivityWindow is how recently a company must have been re-indexed
// to count as active.
const recentActivityWindow = 180 * 24 * time.Hour

// Client looks up company firmographics by domain.
type Client interface {
	Lookup(ctx context.Context, domain string) (*Company, error)
}

// Company is the distilled company profile the pipeline consumes. Exists is
// false when the provider affirmatively knows nothing about the domain; that
// is an answer, not a failure.
type Company struct {
	Exists    bool       `json:"exists"`
	Name      string     `json:"name"`
	Domain    string     `json:"domain"`
	Industry  string     `json:"industry,omitempty"`
	Employees string     `json:"employees,omitempty"`
	RaisedUSD float64    `json:"raised_usd,omitempty"`
	IndexedAt *time.Time `json:"indexed_at,omitempty"`
}

// FundingRound derives a round label from the total raised amount.
func (c *Company) FundingRound() string {
	switch {
	case c.RaisedUSD <= 0:
		return ""
	case c.RaisedUSD < 2_000_000:
		return "Seed"
	case c.RaisedUSD < 10_000_000:
		return "Series A"
	case c.RaisedUSD < 30_000_000:
		return "Series B"
	default:
		return "Series C+"
	}
}

// RecentlyActive reports whether the provider re-indexed the company within
// the activity window.
func (c *Company) RecentlyActive(now time.Time) bool {
	return c.IndexedAt != nil && now.Sub(*c.IndexedAt) <= recentActivityWindow
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the company name, falling back to a title-cased label
// derived from the domain ("acme.io" becomes "Acme").
func (c *Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	d := c.Domain
	for i := 0; i < len(d); i++ {
		if d[i] == '.' {
			d = d[:i]
			break
		}
	}
	return titleCaser.String(d)
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

// NewClient creates a Clearbit API client.
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
	c.retry.OnRetry = resilience.RetryLogger("clearbit", "lookup")
	for _, o := range opts {
		o(c)
	}
	return c
}

// companyResponse mirrors the wire shape of GET /companies/find.
type companyResponse struct {
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Category struct {
		Industry string `json:"industry"`
	} `json:"category"`
	Metrics struct {
		EmployeesRange string  `json:"employeesRange"`
		Raised         float64 `json:"raised"`
	} `json:"metrics"`
	IndexedAt *time.Time `json:"indexedAt"`
}

func (c *httpClient) Lookup(ctx context.Context, domain string) (*Company, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Company, error) {
		return c.lookup(ctx, domain)
	})
}

func (c *httpClient) lookup(ctx context.Context, domain string) (*Company, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "clearbit: rate limit wait")
		}
	}

	q := url.Values{}
	q.Set("domain", domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/companies/find?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "clearbit: read response")
	}

	// 404 means the provider does not know the domain. That resolves the
	// company-existence question to false.
	if resp.StatusCode == http.StatusNotFound {
		return &Company{Exists: false, Domain: domain}, nil
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("clearbit: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var cr companyResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, eris.Wrap(err, "clearbit: unmarshal response")
	}

	company := &Company{
		Exists:    true,
		Name:      cr.Name,
		Domain:    cr.Domain,
		Industry:  cr.Category.Industry,
		Employees: cr.Metrics.EmployeesRange,
		RaisedUSD: cr.Metrics.Raised,
		IndexedAt: cr.IndexedAt,
	}
	if company.Domain == "" {
		company.Domain = domain
	}
	company.Name = company.DisplayName()
	return company, nil
}
