package eth

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	token = common.HexToAddress("0x8790b46fd9fe602a5a7ee8957cc9f558e58a31b5")
)

type fakeNet struct {
	version string
	err     error
}

func (n *fakeNet) Version() (string, error) { return n.version, n.err }

type fakeEth struct {
	accounts []common.Address
	balances map[common.Address]*big.Int
	gasPrice *big.Int
	receipts map[common.Hash]*types.Receipt

	sent     []TxArgs
	callData []hexutil.Bytes
	callOut  hexutil.Bytes
}

func (e *fakeEth) Accounts() []common.Address { return e.accounts }

func (e *fakeEth) GasPrice() *hexutil.Big { return (*hexutil.Big)(e.gasPrice) }

func (e *fakeEth) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(3)) }

func (e *fakeEth) BlockNumber() hexutil.Uint64 { return 100 }

func (e *fakeEth) GetBalance(addr common.Address, block string) (*hexutil.Big, error) {
	if block != "latest" {
		return nil, errors.New("unexpected block tag " + block)
	}
	bal, ok := e.balances[addr]
	if !ok {
		bal = new(big.Int)
	}
	return (*hexutil.Big)(bal), nil
}

func (e *fakeEth) SendTransaction(args TxArgs) common.Hash {
	e.sent = append(e.sent, args)
	return common.HexToHash("0xabc")
}

func (e *fakeEth) GetTransactionReceipt(hash common.Hash) *types.Receipt {
	return e.receipts[hash]
}

func (e *fakeEth) Call(msg struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}, block string) hexutil.Bytes {
	e.callData = append(e.callData, msg.Data)
	return e.callOut
}

func newTestClient(t *testing.T, n *fakeNet, e *fakeEth) *Client {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("net", n))
	require.NoError(t, srv.RegisterName("eth", e))
	t.Cleanup(srv.Stop)

	h := provider.WrapInjected(rpc.DialInProc(srv))
	t.Cleanup(h.Close)
	return NewClient(h)
}

func TestNetworkIdentity(t *testing.T) {
	tests := []struct {
		name string
		net  *fakeNet
		want NetworkIdentity
	}{
		{name: "ropsten", net: &fakeNet{version: "3"}, want: NetworkIdentity{ID: "3", Label: "Ropsten Test Network"}},
		{name: "morden", net: &fakeNet{version: "2"}, want: NetworkIdentity{ID: "2", Label: "Morden"}},
		{name: "unknown id", net: &fakeNet{version: "1337"}, want: NetworkIdentity{ID: "1337", Label: "Unknown Network"}},
		{name: "provider error", net: &fakeNet{err: errors.New("down")}, want: NetworkIdentity{Label: "Unknown Network"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.net, &fakeEth{})
			assert.Equal(t, tt.want, c.NetworkIdentity(context.Background()))
		})
	}
}

func TestAccountsAndBalance(t *testing.T) {
	ctx := context.Background()

	oneEth, _ := new(big.Int).SetString("1500000000000000000", 10)
	c := newTestClient(t, &fakeNet{version: "3"}, &fakeEth{
		accounts: []common.Address{alice},
		balances: map[common.Address]*big.Int{alice: oneEth},
		gasPrice: big.NewInt(20_000_000_000),
	})

	accounts, err := c.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice}, accounts)

	coinbase, err := c.Coinbase(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice, coinbase)

	bal, err := c.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "1.5", bal.Ether())

	gas, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20", gas.Gwei())

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.Int64())

	n, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), n)
}

func TestNoAccounts(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, &fakeNet{}, &fakeEth{})

	accounts, err := c.ListAccounts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)

	_, err = c.Coinbase(ctx)
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestDispatchRaw(t *testing.T) {
	c := newTestClient(t, &fakeNet{version: "42"}, &fakeEth{})

	raw, err := c.DispatchRaw(context.Background(), "net_version")
	require.NoError(t, err)
	assert.JSONEq(t, `"42"`, string(raw))

	_, err = c.DispatchRaw(context.Background(), "eth_doesNotExist")
	require.Error(t, err)

	var pe *provider.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "eth_doesNotExist", pe.Method)
}

func TestSendTransactionAndReceipt(t *testing.T) {
	ctx := context.Background()
	hash := common.HexToHash("0xabc")
	e := &fakeEth{receipts: map[common.Hash]*types.Receipt{}}
	c := newTestClient(t, &fakeNet{}, e)

	value, err := ToWei("0.002", Ether)
	require.NoError(t, err)

	got, err := c.SendTransaction(ctx, NewTxArgs(alice, token, value, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	require.Len(t, e.sent, 1)
	assert.Equal(t, alice, e.sent[0].From)
	assert.Equal(t, "0x71afd498d0000", e.sent[0].Value.String())
	assert.Nil(t, e.sent[0].GasPrice)

	_, err = c.TransactionReceipt(ctx, hash)
	assert.ErrorIs(t, err, ethereum.NotFound)

	e.receipts[hash] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: big.NewInt(90),
		Logs:        []*types.Log{},
	}
	r, err := c.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, r.Status)
	assert.Equal(t, int64(90), r.BlockNumber.Int64())
}

func TestERC20Contract(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ERC20ABI))
	require.NoError(t, err)
	out, err := parsed.Methods["balanceOf"].Outputs.Pack(big.NewInt(7))
	require.NoError(t, err)

	e := &fakeEth{callOut: out}
	c := newTestClient(t, &fakeNet{}, e)

	erc20, err := c.BindERC20(token)
	require.NoError(t, err)

	data, err := erc20.Pack("transfer", alice, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(data[:4]))
	assert.Len(t, data, 4+32+32)

	_, err = erc20.Pack("transfer", alice)
	assert.Error(t, err)

	values, err := erc20.Call(context.Background(), "balanceOf", alice)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, big.NewInt(7), values[0])
	require.Len(t, e.callData, 1)
	assert.Equal(t, "70a08231", common.Bytes2Hex(e.callData[0][:4]))

	_, err = c.BindContract("not json", token)
	assert.Error(t, err)
}
