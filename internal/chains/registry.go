package chains

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

// DefaultChains is the built-in table used when config provides none.
var DefaultChains = []ChainDescriptor{
	{
		Name:                 "Ethereum Main Network",
		Slug:                 "mainnet",
		RawID:                "1",
		ExplorerBaseURL:      "https://etherscan.io/address/",
		TokenExplorerBaseURL: "https://etherscan.io/token/",
		HTTPRPCURL:           "https://mainnet.infura.io/Dpsk5u62HN582LMDXeFr",
		WSRPCURL:             "wss://mainnet.infura.io/ws",
	},
	{
		Name:                 "Ropsten Test Network",
		Slug:                 "ropsten",
		RawID:                "3",
		ExplorerBaseURL:      "https://ropsten.etherscan.io/address/",
		TokenExplorerBaseURL: "https://ropsten.etherscan.io/token/",
		HTTPRPCURL:           "https://ropsten.infura.io/Dpsk5u62HN582LMDXeFr",
		WSRPCURL:             "wss://ropsten.infura.io/ws",
	},
	{
		Name:                 "Rinkeby Test Network",
		Slug:                 "rinkeby",
		RawID:                "4",
		ExplorerBaseURL:      "https://rinkeby.etherscan.io/address/",
		TokenExplorerBaseURL: "https://rinkeby.etherscan.io/token/",
		HTTPRPCURL:           "https://rinkeby.infura.io/Dpsk5u62HN582LMDXeFr",
		WSRPCURL:             "wss://rinkeby.infura.io/ws",
	},
	{
		Name:                 "Kovan Test Network",
		Slug:                 "kovan",
		RawID:                "42",
		ExplorerBaseURL:      "https://kovan.etherscan.io/address/",
		TokenExplorerBaseURL: "https://kovan.etherscan.io/token/",
		HTTPRPCURL:           "https://kovan.infura.io/Dpsk5u62HN582LMDXeFr",
		WSRPCURL:             "wss://kovan.infura.io/ws",
	},
}

// Registry is a read-only lookup table of known chains.
type Registry struct {
	chains []ChainDescriptor
}

// NewRegistry builds a registry from rows. Rows with an unparsable id or an
// empty slug are rejected so that lookups never see half-filled entries.
func NewRegistry(rows []ChainDescriptor) (*Registry, error) {
	if len(rows) == 0 {
		rows = DefaultChains
	}

	seenSlug := make(map[string]struct{}, len(rows))
	seenID := make(map[ChainID]struct{}, len(rows))
	out := make([]ChainDescriptor, 0, len(rows))

	for _, row := range rows {
		row.Slug = strings.TrimSpace(row.Slug)
		row.RawID = strings.TrimSpace(row.RawID)
		if row.Slug == "" {
			return nil, errors.Newf("chain %q: empty slug", row.Name)
		}

		id, ok := ParseChainID(row.RawID)
		if !ok {
			return nil, errors.Newf("chain %q: invalid id %q", row.Slug, row.RawID)
		}
		row.ID = id
		row.RawID = id.String()
		row.Custom = false

		if _, dup := seenSlug[row.Slug]; dup {
			return nil, errors.Newf("duplicate chain slug %q", row.Slug)
		}
		if _, dup := seenID[id]; dup {
			return nil, errors.Newf("duplicate chain id %s", id)
		}
		seenSlug[row.Slug] = struct{}{}
		seenID[id] = struct{}{}

		out = append(out, row)
	}

	return &Registry{chains: out}, nil
}

// MustDefaultRegistry returns the registry over DefaultChains.
func MustDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultChains)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the chain whose slug equals idOrSlug, or whose id equals
// idOrSlug once parsed as a number. It never fails: unknown input yields a
// synthesized custom descriptor with no RPC connectivity.
func (r *Registry) Resolve(idOrSlug string) ChainDescriptor {
	if c, ok := r.Lookup(idOrSlug); ok {
		return c
	}
	return customChain(idOrSlug)
}

// Lookup is Resolve without the custom fallback.
func (r *Registry) Lookup(idOrSlug string) (ChainDescriptor, bool) {
	for _, c := range r.chains {
		if c.Slug == idOrSlug {
			return c, true
		}
	}

	id, ok := ParseChainID(idOrSlug)
	if !ok {
		return ChainDescriptor{}, false
	}
	for _, c := range r.chains {
		if c.ID == id {
			return c, true
		}
	}
	return ChainDescriptor{}, false
}

// List returns the known chains in table order.
func (r *Registry) List() []ChainDescriptor {
	out := make([]ChainDescriptor, len(r.chains))
	copy(out, r.chains)
	return out
}

func customChain(input string) ChainDescriptor {
	c := ChainDescriptor{
		Name:            fmt.Sprintf("Custom Chain (%s)", input),
		Slug:            input,
		RawID:           input,
		ExplorerBaseURL: constants.CustomChainExplorer,
		Custom:          true,
	}
	if id, ok := ParseChainID(input); ok {
		c.ID = id
	}
	return c
}
