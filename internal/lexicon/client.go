package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mroparse/internal/config"
)

// Client pulls team-curated lexicon bundles from the shared lexicon service.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

// envelope is the service's response wrapper; payloads ride in data.
type envelope struct {
	Success bool            `json:"success"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// RemoteBundle is the shared-lexicon payload: curated manufacturer names,
// normalization pairs, header aliases and distributor names.
type RemoteBundle struct {
	GeneratedAt   string              `json:"generatedAt"`
	Manufacturers []string            `json:"manufacturers"`
	Normalization map[string]string   `json:"normalization"`
	Aliases       map[string][]string `json:"aliases"`
	Distributors  []string            `json:"distributors"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.LexiconTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.LexiconRateLimitRPS),
	}
}

// GetBundle fetches the full curated bundle.
func (c *Client) GetBundle(ctx context.Context) (*RemoteBundle, error) {
	return c.getBundle(ctx, map[string]string{})
}

// GetBundleSince fetches entries added after the given RFC3339 watermark.
func (c *Client) GetBundleSince(ctx context.Context, watermark string) (*RemoteBundle, error) {
	return c.getBundle(ctx, map[string]string{"since": watermark})
}

func (c *Client) getBundle(ctx context.Context, params map[string]string) (*RemoteBundle, error) {
	body, err := c.fetchJSON(ctx, "lexicon/bundle", params)
	if err != nil {
		return nil, err
	}
	var bundle RemoteBundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

const fetchAttempts = 5

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.LexiconAPIToken) == "" {
		return nil, errors.New("missing LEXICON_API_TOKEN")
	}

	target, err := url.JoinPath(c.cfg.LexiconAPIBaseURL, endpoint)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		data, retry, err := c.once(ctx, u.String())
		if err == nil {
			return data, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if attempt < fetchAttempts {
			// Quadratic backoff with jitter so a throttled service gets
			// room to recover.
			time.Sleep(time.Duration(200*attempt*attempt+rand.Intn(120)) * time.Millisecond)
		}
	}
	return nil, lastErr
}

// once runs a single request. retry reports whether the failure is worth
// another attempt.
func (c *Client) once(ctx context.Context, target string) (data []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.LexiconAPIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, isRetryableStatus(resp.StatusCode),
			fmt.Errorf("lexicon api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false, err
	}
	if !env.Success {
		return nil, false, fmt.Errorf("lexicon api unsuccessful: %s", string(env.Errors))
	}
	return env.Data, false, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
