package provider

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

// DialFunc opens a JSON-RPC client for an http(s), ws(s) or ipc endpoint.
type DialFunc func(ctx context.Context, rawURL string) (*rpc.Client, error)

// Environment describes what the host offers before the session starts.
type Environment struct {
	// Injected is an already-connected signing transport, if any.
	Injected *rpc.Client
}

func (e Environment) HasInjected() bool { return e.Injected != nil }

// InjectedCheckTimeout bounds the eth_accounts call that confirms an injected
// endpoint answers.
const InjectedCheckTimeout = 3 * time.Second

// DetectEnvironment connects to the configured injected endpoint. An empty URL,
// a failed dial or an endpoint that does not answer eth_accounts all mean
// "no injected provider". http(s) dials are lazy, so only the call proves it.
func DetectEnvironment(ctx context.Context, injectedURL string, dial DialFunc) Environment {
	injectedURL = strings.TrimSpace(injectedURL)
	if injectedURL == "" {
		return Environment{}
	}
	if dial == nil {
		dial = rpc.DialContext
	}

	client, err := dial(ctx, injectedURL)
	if err != nil {
		log.Warn("injected provider not reachable", "url", injectedURL, "error", err)
		return Environment{}
	}

	checkCtx, cancel := context.WithTimeout(ctx, InjectedCheckTimeout)
	defer cancel()

	var accounts []string
	if err := client.CallContext(checkCtx, &accounts, "eth_accounts"); err != nil {
		client.Close()
		log.Warn("injected provider not answering", "url", injectedURL, "error", err)
		return Environment{}
	}
	return Environment{Injected: client}
}

// SelectOrigin is the provider decision table. A chain override always wins
// over an injected provider: the user asked for a specific chain.
func SelectOrigin(injectedPresent, chainOverride bool) Origin {
	if injectedPresent && !chainOverride {
		return OriginInjected
	}
	return OriginFallback
}

type Resolver struct {
	Registry     *chains.Registry
	DefaultChain string

	ProductionServiceURL string
	LocalServiceURL      string

	Dial DialFunc
}

// NewResolver returns a resolver with the built-in defaults.
func NewResolver(registry *chains.Registry) *Resolver {
	if registry == nil {
		registry = chains.MustDefaultRegistry()
	}
	return &Resolver{
		Registry:             registry,
		DefaultChain:         constants.DefaultChain,
		ProductionServiceURL: constants.FallbackServiceProdURL,
		LocalServiceURL:      constants.FallbackServiceLocalURL,
		Dial:                 rpc.DialContext,
	}
}

// Resolve picks the session's provider. It does not take ownership of
// env.Injected unless the injected path is chosen.
func (r *Resolver) Resolve(ctx context.Context, env Environment, ov Overrides) (Handle, error) {
	origin := SelectOrigin(env.HasInjected(), ov.HasChain())

	if origin == OriginInjected {
		log.Info("using injected provider")
		return WrapInjected(env.Injected), nil
	}

	if env.HasInjected() {
		log.Info("chain override present, ignoring injected provider", "chain", ov.Chain)
	} else {
		log.Info("no injected provider found, using fallback wallet")
	}

	return r.resolveFallback(ctx, ov)
}

func (r *Resolver) resolveFallback(ctx context.Context, ov Overrides) (Handle, error) {
	chainKey := strings.TrimSpace(ov.Chain)
	if chainKey == "" {
		chainKey = r.DefaultChain
	}
	if chainKey == "" {
		chainKey = constants.DefaultChain
	}

	registry := r.Registry
	if registry == nil {
		registry = chains.MustDefaultRegistry()
	}
	chain := registry.Resolve(chainKey)

	if strings.TrimSpace(chain.WSRPCURL) == "" {
		return nil, &ResolutionError{Origin: OriginFallback, Chain: chainKey, Err: ErrNoRPCEndpoint}
	}

	serviceURL := r.serviceURL(ov.Local)
	if serviceURL == "" {
		return nil, &ResolutionError{
			Origin: OriginFallback,
			Chain:  chainKey,
			Err:    errors.New("fallback wallet service url is empty"),
		}
	}

	dial := r.Dial
	if dial == nil {
		dial = rpc.DialContext
	}

	node, err := dial(ctx, chain.WSRPCURL)
	if err != nil {
		return nil, &ResolutionError{
			Origin: OriginFallback,
			Chain:  chainKey,
			Err:    errors.Wrapf(err, "dial node %s", chain.WSRPCURL),
		}
	}

	wallet, err := dial(ctx, serviceURL)
	if err != nil {
		node.Close()
		return nil, &ResolutionError{
			Origin: OriginFallback,
			Chain:  chainKey,
			Err:    errors.Wrapf(err, "dial wallet service %s", serviceURL),
		}
	}

	log.Info("fallback provider ready",
		"chain", chain.Slug,
		"node", chain.WSRPCURL,
		"walletService", serviceURL,
	)

	return &fallbackHandle{
		node:       node,
		wallet:     wallet,
		chain:      chain,
		serviceURL: serviceURL,
	}, nil
}

func (r *Resolver) serviceURL(local bool) string {
	if local {
		if r.LocalServiceURL != "" {
			return r.LocalServiceURL
		}
		return constants.FallbackServiceLocalURL
	}
	if r.ProductionServiceURL != "" {
		return r.ProductionServiceURL
	}
	return constants.FallbackServiceProdURL
}
