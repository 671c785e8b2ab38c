package assets

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/filestore"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	token = common.HexToAddress("0x8790b46fd9fe602a5a7ee8957cc9f558e58a31b5")
)

type tokenEth struct {
	t       *testing.T
	abi     abi.ABI
	noName  bool
	calls   map[string]int
	balance *big.Int
}

func (e *tokenEth) GetBalance(addr common.Address, block string) *hexutil.Big {
	return (*hexutil.Big)(e.balance)
}

func (e *tokenEth) Call(msg struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}, block string) (hexutil.Bytes, error) {
	m, err := e.abi.MethodById(msg.Data[:4])
	require.NoError(e.t, err)
	e.calls[m.Name]++

	var out []byte
	switch m.Name {
	case "symbol":
		out, err = m.Outputs.Pack("QDT")
	case "decimals":
		out, err = m.Outputs.Pack(uint8(6))
	case "name":
		if e.noName {
			return nil, errors.New("execution reverted")
		}
		out, err = m.Outputs.Pack("Quantum Demo Token")
	case "balanceOf":
		out, err = m.Outputs.Pack(big.NewInt(3_250_000))
	default:
		return nil, errors.New("unexpected method " + m.Name)
	}
	require.NoError(e.t, err)
	return out, nil
}

func newFake(t *testing.T) (*tokenEth, *eth.Client) {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(eth.ERC20ABI))
	require.NoError(t, err)

	e := &tokenEth{t: t, abi: parsed, calls: map[string]int{}, balance: big.NewInt(5e17)}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", e))
	t.Cleanup(srv.Stop)

	h := provider.WrapInjected(rpc.DialInProc(srv))
	t.Cleanup(h.Close)
	return e, eth.NewClient(h)
}

func TestFetchAssetCaches(t *testing.T) {
	e, client := newFake(t)
	m := NewManager(client, "")
	ctx := context.Background()

	a, err := m.FetchAsset(ctx, "Ropsten", token)
	require.NoError(t, err)
	assert.Equal(t, Asset{Address: token, Symbol: "QDT", Decimals: 6, Name: "Quantum Demo Token"}, a)

	again, err := m.FetchAsset(ctx, "ropsten", token)
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Equal(t, 1, e.calls["symbol"], "second lookup is served from the cache")

	assert.Len(t, m.Assets(" ROPSTEN "), 1)
	assert.Empty(t, m.Assets("kovan"))
}

func TestFetchAssetNameOptional(t *testing.T) {
	e, client := newFake(t)
	e.noName = true

	a, err := NewManager(client, "").FetchAsset(context.Background(), "ropsten", token)
	require.NoError(t, err)
	assert.Equal(t, "QDT", a.Symbol)
	assert.Empty(t, a.Name)
}

func TestNativeAsset(t *testing.T) {
	e, client := newFake(t)
	m := NewManager(client, "")

	a, err := m.FetchAsset(context.Background(), "ropsten", common.Address{})
	require.NoError(t, err)
	assert.True(t, a.Native())
	assert.Equal(t, "ETH", a.Symbol)
	assert.Empty(t, e.calls)

	h, err := m.Holding(context.Background(), "ropsten", common.Address{}, owner)
	require.NoError(t, err)
	assert.Equal(t, "0.5", h.Display)
}

func TestHoldingToken(t *testing.T) {
	_, client := newFake(t)
	m := NewManager(client, "")

	h, err := m.Holding(context.Background(), "ropsten", token, owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3_250_000), h.Raw)
	assert.Equal(t, "3.25", h.Display)

	zero, err := m.BalanceOf(context.Background(), token, common.Address{})
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())
}

func TestCachePersists(t *testing.T) {
	_, client := newFake(t)
	path := filepath.Join(t.TempDir(), "assets.json")

	_, err := NewManager(client, path).FetchAsset(context.Background(), "Ropsten", token)
	require.NoError(t, err)
	require.True(t, filestore.Exists(path))

	e2, client2 := newFake(t)
	reloaded := NewManager(client2, path)
	require.NoError(t, reloaded.Load())

	a, err := reloaded.FetchAsset(context.Background(), "ropsten", token)
	require.NoError(t, err)
	assert.Equal(t, "QDT", a.Symbol)
	assert.Empty(t, e2.calls)
}

func TestLoadMissingFile(t *testing.T) {
	m := NewManager(nil, filepath.Join(t.TempDir(), "none.json"))
	assert.NoError(t, m.Load())

	_, err := m.FetchAsset(context.Background(), "ropsten", token)
	assert.Error(t, err)
}
