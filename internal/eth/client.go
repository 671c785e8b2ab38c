package eth

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

// ErrNoAccount is returned by Coinbase when the provider exposes no accounts.
var ErrNoAccount = errors.New("eth: no account available")

// Client is a thin façade over the session's provider handle. It performs no
// retries; callers decide what is safe to repeat.
type Client struct {
	h provider.Handle
}

func NewClient(h provider.Handle) *Client {
	if h == nil {
		panic("eth: nil provider handle")
	}
	return &Client{h: h}
}

// Handle returns the provider the client was built with.
func (c *Client) Handle() provider.Handle { return c.h }

// DispatchRaw sends any JSON-RPC method through the active provider and
// returns the undecoded result.
func (c *Client) DispatchRaw(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.h.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) call(ctx context.Context, result any, method string, params ...any) error {
	return c.h.CallContext(ctx, result, method, params...)
}
