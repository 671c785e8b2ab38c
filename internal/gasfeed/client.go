package gasfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
)

// ErrFeedUnavailable covers every way the feed can fail to give a usable
// price. Callers must not fall back to a guessed price.
var ErrFeedUnavailable = errors.New("gas fee feed unavailable")

const maxBody = 1 << 20

// Client reads fee estimates from an ethgasstation-style JSON endpoint.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = constants.GasFeedURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

func (c *Client) URL() string { return c.url }

type feedResponse struct {
	SafeLow *json.Number `json:"safeLow"`
}

// SafeLow returns the feed's safeLow price (quoted in gwei) converted to wei.
func (c *Client) SafeLow(ctx context.Context) (*big.Int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, unavailable(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(fmt.Errorf("fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, unavailable(fmt.Errorf("read body: %w", err))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out feedResponse
	if err := dec.Decode(&out); err != nil {
		return nil, unavailable(fmt.Errorf("decode: %w", err))
	}
	if out.SafeLow == nil {
		return nil, unavailable(errors.New("missing safeLow"))
	}

	wei, err := eth.ToWei(out.SafeLow.String(), eth.Gwei)
	if err != nil {
		return nil, unavailable(fmt.Errorf("malformed safeLow %q: %w", out.SafeLow.String(), err))
	}
	if wei.Sign() <= 0 {
		return nil, unavailable(fmt.Errorf("non-positive safeLow %q", out.SafeLow.String()))
	}
	return wei, nil
}

func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", ErrFeedUnavailable, cause)
}
