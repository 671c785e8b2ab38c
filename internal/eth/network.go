package eth

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

// NetworkIdentity is the network id reported by the provider and its label.
// ID is empty when the provider could not be asked.
type NetworkIdentity struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NetworkIdentity asks the provider for net_version. It never fails: an error
// or an unrecognized id both yield the "Unknown Network" label.
func (c *Client) NetworkIdentity(ctx context.Context) NetworkIdentity {
	var version string
	if err := c.call(ctx, &version, "net_version"); err != nil {
		log.Warn("net_version failed", "error", err)
		return NetworkIdentity{Label: constants.UnknownNetworkLabel}
	}

	version = strings.TrimSpace(version)
	return NetworkIdentity{ID: version, Label: chains.NetworkLabel(version)}
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&id), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, &n, "eth_blockNumber"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}
