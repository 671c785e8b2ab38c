package provider

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
)

// Requests the fallback wallet service answers. Everything else is chain state
// and goes to the node.
var walletMethods = map[string]struct{}{
	"eth_accounts":         {},
	"eth_requestAccounts":  {},
	"eth_coinbase":         {},
	"eth_sign":             {},
	"personal_sign":        {},
	"eth_signTypedData":    {},
	"eth_signTypedData_v3": {},
	"eth_signTypedData_v4": {},
	"eth_sendTransaction":  {},
}

func isWalletMethod(method string) bool {
	_, ok := walletMethods[method]
	return ok
}

// fallbackHandle pairs a chain node with the embedded wallet service that
// holds the keys.
type fallbackHandle struct {
	node       *rpc.Client
	wallet     *rpc.Client
	chain      chains.ChainDescriptor
	serviceURL string
}

func (h *fallbackHandle) Origin() Origin { return OriginFallback }

func (h *fallbackHandle) CallContext(ctx context.Context, result any, method string, args ...any) error {
	client := h.node
	if isWalletMethod(method) {
		client = h.wallet
	}
	return wrapCallError(method, client.CallContext(ctx, result, method, args...))
}

func (h *fallbackHandle) Chain() chains.ChainDescriptor { return h.chain }

// ServiceURL is the wallet service endpoint the handle was built with.
func (h *fallbackHandle) ServiceURL() string { return h.serviceURL }

func (h *fallbackHandle) Close() {
	if h.wallet != nil {
		h.wallet.Close()
	}
	if h.node != nil {
		h.node.Close()
	}
}
