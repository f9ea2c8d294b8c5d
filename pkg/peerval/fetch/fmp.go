package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

const (
	// DefaultFMPBaseURL is the Financial Modeling Prep v3 API root.
	DefaultFMPBaseURL = "https://financialmodelingprep.com/api/v3"

	StatementIncome  = "income-statement"
	StatementBalance = "balance-sheet-statement"
)

// FMPClient fetches annual statements from Financial Modeling Prep.
type FMPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
	limiter    *rate.Limiter
}

// FMPOption configures the FMPClient.
type FMPOption func(*FMPClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) FMPOption {
	return func(c *FMPClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FMPOption {
	return func(c *FMPClient) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) FMPOption {
	return func(c *FMPClient) { c.log = l.With().Str("component", "fmp").Logger() }
}

// WithLimiter shares a request pacer with other clients.
func WithLimiter(l *rate.Limiter) FMPOption {
	return func(c *FMPClient) { c.limiter = l }
}

// NewFMPClient creates a client. The timeout bounds every request.
func NewFMPClient(apiKey string, timeout time.Duration, opts ...FMPOption) *FMPClient {
	c := &FMPClient{
		baseURL:    DefaultFMPBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        zerolog.Nop(),
		limiter:    NewLimiter(150 * time.Millisecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Annual fetches the income statement and balance sheet for ticker and merges
// them into normalised rows, most recent first.
func (c *FMPClient) Annual(ctx context.Context, ticker string) ([]types.Fundamentals, error) {
	inc, err := c.Statement(ctx, StatementIncome, ticker)
	if err != nil {
		return nil, err
	}
	bal, err := c.Statement(ctx, StatementBalance, ticker)
	if err != nil {
		return nil, err
	}
	rows := Normalize(ticker, inc, bal)
	c.log.Debug().Str("ticker", ticker).Int("income", len(inc)).Int("balance", len(bal)).Int("rows", len(rows)).Msg("fundamentals merged")
	return rows, nil
}

// Statement fetches one annual statement. The payload may be a bare array or
// an object wrapping the array under "financials".
func (c *FMPClient) Statement(ctx context.Context, statement, ticker string) ([]map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := "/" + statement + "/" + url.PathEscape(ticker)
	params := url.Values{}
	params.Set("period", "annual")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.log.Debug().Str("endpoint", path).Msg("fmp request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: path, Message: strings.TrimSpace(string(body))}
	}
	rows, err := decodeStatement(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func decodeStatement(body []byte) ([]map[string]any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if body[0] == '[' {
		var rows []map[string]any
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode statement: %w", err)
		}
		return rows, nil
	}
	var wrapped struct {
		Financials []map[string]any `json:"financials"`
	}
	if err := dec.Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	return wrapped.Financials, nil
}

// redact keeps the API key out of transport errors, which embed the URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "***"))
}
