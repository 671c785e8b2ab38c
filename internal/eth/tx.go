package eth

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxArgs are the eth_sendTransaction parameters. The provider fills in
// anything left nil (nonce, gas, gas price).
type TxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

// NewTxArgs builds arguments for a plain call or value transfer.
func NewTxArgs(from, to common.Address, value, gasPrice *big.Int, data []byte) TxArgs {
	args := TxArgs{From: from, To: &to}
	if value != nil {
		args.Value = (*hexutil.Big)(new(big.Int).Set(value))
	}
	if gasPrice != nil {
		args.GasPrice = (*hexutil.Big)(new(big.Int).Set(gasPrice))
	}
	if len(data) > 0 {
		args.Data = append(hexutil.Bytes(nil), data...)
	}
	return args
}

// SendTransaction asks the provider to sign and broadcast. Once this returns a
// hash the transaction is out of the caller's hands.
func (c *Client) SendTransaction(ctx context.Context, args TxArgs) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	if hash == (common.Hash{}) {
		return common.Hash{}, errors.New("eth: provider returned an empty transaction hash")
	}
	return hash, nil
}

// TransactionReceipt returns ethereum.NotFound while the transaction is pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var r *types.Receipt
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ethereum.NotFound
	}
	return r, nil
}
