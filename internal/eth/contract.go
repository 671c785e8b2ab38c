package eth

import (
	"context"
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

//go:embed erc20.abi.json
var ERC20ABI string

// Contract binds an ABI to an address on the client's chain.
type Contract struct {
	Address common.Address
	ABI     abi.ABI

	client *Client
}

func (c *Client) BindContract(abiJSON string, address common.Address) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errors.Wrap(err, "parse contract abi")
	}
	return &Contract{Address: address, ABI: parsed, client: c}, nil
}

// BindERC20 binds the embedded ERC20 interface.
func (c *Client) BindERC20(address common.Address) (*Contract, error) {
	return c.BindContract(ERC20ABI, address)
}

// Pack encodes a method call without sending it.
func (k *Contract) Pack(method string, args ...any) ([]byte, error) {
	data, err := k.ABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	return data, nil
}

// Call runs a read-only method against the latest block and unpacks its outputs.
func (k *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := k.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	msg := map[string]any{
		"to":   k.Address,
		"data": hexutil.Bytes(data),
	}

	var out hexutil.Bytes
	if err := k.client.call(ctx, &out, "eth_call", msg, "latest"); err != nil {
		return nil, err
	}

	values, err := k.ABI.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	return values, nil
}
