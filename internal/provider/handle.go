package provider

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
)

type Origin string

const (
	OriginInjected Origin = "injected"
	OriginFallback Origin = "fallback"
)

// Handle is the single active provider of a session. Every request, reads and
// signing alike, goes through CallContext. Implementations must be safe for
// concurrent use.
type Handle interface {
	Origin() Origin
	CallContext(ctx context.Context, result any, method string, args ...any) error
	Close()
}

// ChainAware is implemented by handles that know which chain they were built for.
type ChainAware interface {
	Chain() chains.ChainDescriptor
}

// injectedHandle wraps a transport that existed before the session started.
type injectedHandle struct {
	client *rpc.Client
}

// WrapInjected exposes an existing client as a Handle.
func WrapInjected(client *rpc.Client) Handle {
	return &injectedHandle{client: client}
}

func (h *injectedHandle) Origin() Origin { return OriginInjected }

func (h *injectedHandle) CallContext(ctx context.Context, result any, method string, args ...any) error {
	return wrapCallError(method, h.client.CallContext(ctx, result, method, args...))
}

func (h *injectedHandle) Close() {
	h.client.Close()
}
