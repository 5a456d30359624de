// Package hunter wraps the Hunter.io email verifier API.
package hunter

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

const defaultBaseURL = "https://api.hunter.io/v2"

// Client verifies email deliverability.
type Client interface {
	Verify(ctx context.Context, email string) (*Verification, error)
}

// Verification is the distilled verifier result the pipeline consumes.
type Verification struct {
	Result      string `json:"result"` // "deliverable", "risky", "undeliverable"
	Score       int    `json:"score"`
	MXRecords   bool   `json:"mx_records"`
	SMTPCheck   bool   `json:"smtp_check"`
	Deliverable bool   `json:"deliverable"`
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

// WithRateLimit sets the requests-per-second limit for verifier calls.
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

// NewClient creates a Hunter.io API client.
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
	c.retry.OnRetry = resilience.RetryLogger("hunter", "verify")
	for _, o := range opts {
		o(c)
	}
	return c
}

// verifierResponse mirrors the wire shape of GET /email-verifier.
type verifierResponse struct {
	Data struct {
		Result    string `json:"result"`
		Score     int    `json:"score"`
		MXRecords bool   `json:"mx_records"`
		SMTPCheck bool   `json:"smtp_check"`
	} `json:"data"`
}

func (c *httpClient) Verify(ctx context.Context, email string) (*Verification, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Verification, error) {
		return c.verify(ctx, email)
	})
}

func (c *httpClient) verify(ctx context.Context, email string) (*Verification, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "hunter: rate limit wait")
		}
	}

	q := url.Values{}
	q.Set("email", email)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/email-verifier?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("hunter: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var vr verifierResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, eris.Wrap(err, "hunter: unmarshal response")
	}

	return &Verification{
		Result:      vr.Data.Result,
		Score:       vr.Data.Score,
		MXRecords:   vr.Data.MXRecords,
		SMTPCheck:   vr.Data.SMTPCheck,
		Deliverable: vr.Data.Result == "deliverable",
	}, nil
}
