package eth

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

// Amount is a value in base units (wei).
type Amount struct {
	Wei *big.Int
}

func NewAmount(wei *big.Int) Amount {
	if wei == nil {
		wei = new(big.Int)
	}
	return Amount{Wei: new(big.Int).Set(wei)}
}

func (a Amount) Gwei() string {
	return FormatUnits(a.Wei, constants.GweiDecimals, constants.GweiDecimals)
}

func (a Amount) Ether() string {
	return FormatUnits(a.Wei, constants.EtherDecimals, constants.EtherDecimals)
}

func (a Amount) String() string {
	if a.Wei == nil {
		return "0"
	}
	return a.Wei.String()
}

// ListAccounts returns the accounts the provider exposes. An empty slice is a
// valid answer.
func (c *Client) ListAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []common.Address{}
	}
	return accounts, nil
}

// Coinbase returns the first exposed account.
func (c *Client) Coinbase(ctx context.Context) (common.Address, error) {
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, ErrNoAccount
	}
	return accounts[0], nil
}

func (c *Client) Balance(ctx context.Context, addr common.Address) (Amount, error) {
	var bal hexutil.Big
	if err := c.call(ctx, &bal, "eth_getBalance", addr, "latest"); err != nil {
		return Amount{}, err
	}
	return NewAmount((*big.Int)(&bal)), nil
}

func (c *Client) GasPrice(ctx context.Context) (Amount, error) {
	var price hexutil.Big
	if err := c.call(ctx, &price, "eth_gasPrice"); err != nil {
		return Amount{}, err
	}
	return NewAmount((*big.Int)(&price)), nil
}
