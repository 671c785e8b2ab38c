package chains

import (
	"strconv"
	"strings"
)

// ChainID is a parsed numeric chain/network identifier.
type ChainID uint64

// ParseChainID parses a base-10 chain id. Hex ids ("0x2a") are accepted too.
func ParseChainID(s string) (ChainID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		return ChainID(v), true
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ChainID(v), true
}

func (id ChainID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id ChainID) Hex() string {
	return "0x" + strconv.FormatUint(uint64(id), 16)
}

// ChainDescriptor describes one chain and how to reach it.
type ChainDescriptor struct {
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`

	// ID is zero for custom chains whose identifier is not numeric.
	ID ChainID `json:"-" yaml:"-" mapstructure:"-"`
	// RawID is the identifier as written in the table, or the verbatim input
	// for custom chains.
	RawID string `json:"id" yaml:"id" mapstructure:"id"`

	HTTPRPCURL           string `json:"rpc" yaml:"rpc" mapstructure:"rpc"`
	WSRPCURL             string `json:"wsRpc" yaml:"wsRpc" mapstructure:"wsRpc"`
	ExplorerBaseURL      string `json:"explore" yaml:"explore" mapstructure:"explore"`
	TokenExplorerBaseURL string `json:"tokenExplore" yaml:"tokenExplore" mapstructure:"tokenExplore"`

	Custom bool `json:"custom,omitempty" yaml:"-" mapstructure:"-"`
}

// HasRPC reports whether the descriptor carries any RPC endpoint.
func (c ChainDescriptor) HasRPC() bool {
	return strings.TrimSpace(c.HTTPRPCURL) != "" || strings.TrimSpace(c.WSRPCURL) != ""
}

// AddressURL returns the explorer link for an account address.
func (c ChainDescriptor) AddressURL(addr string) string {
	return c.ExplorerBaseURL + addr
}

// TokenURL returns the explorer link for a token contract, falling back to
// the address explorer when no token explorer is known.
func (c ChainDescriptor) TokenURL(addr string) string {
	if c.TokenExplorerBaseURL == "" {
		return c.AddressURL(addr)
	}
	return c.TokenExplorerBaseURL + addr
}
