package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/gasfeed"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

var (
	from   = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	target = common.HexToAddress(constants.TargetAddr)
	token  = common.HexToAddress(constants.TokenAddr)
	txHash = common.HexToHash("0xfeed")
)

type rejection struct{}

func (rejection) Error() string  { return "User denied transaction signature" }
func (rejection) ErrorCode() int { return provider.CodeUserRejected }

// chainSim mines the submitted transaction at block 10 after a few receipt
// polls, then advances one block per eth_blockNumber call.
type chainSim struct {
	mu sync.Mutex

	sendErr      error
	receiptAfter int
	status       uint64

	sent  []eth.TxArgs
	polls int
	head  uint64
}

func (c *chainSim) SendTransaction(args eth.TxArgs) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return common.Hash{}, c.sendErr
	}
	c.sent = append(c.sent, args)
	return txHash, nil
}

func (c *chainSim) GetTransactionReceipt(hash common.Hash) *types.Receipt {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if c.polls <= c.receiptAfter {
		return nil
	}
	c.head = 10
	return &types.Receipt{
		Status:      c.status,
		TxHash:      hash,
		BlockNumber: big.NewInt(10),
		Logs:        []*types.Log{},
	}
}

func (c *chainSim) BlockNumber() hexutil.Uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head++
	return hexutil.Uint64(c.head)
}

func (c *chainSim) sentTxs() []eth.TxArgs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]eth.TxArgs(nil), c.sent...)
}

func newTestSubmitter(t *testing.T, sim *chainSim, fees FeeSource) *Submitter {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", sim))
	t.Cleanup(srv.Stop)

	h := provider.WrapInjected(rpc.DialInProc(srv))
	t.Cleanup(h.Close)

	return NewSubmitter(eth.NewClient(h), fees, Options{
		PollInterval:       time.Millisecond,
		ConfirmationBlocks: 3,
	})
}

func collect(t *testing.T, st *Stream) []Event {
	t.Helper()
	done := make(chan []Event, 1)
	go func() { done <- st.Collect() }()
	select {
	case evs := <-done:
		return evs
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not terminate")
		return nil
	}
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func TestSubmitValueTransferLifecycle(t *testing.T) {
	sim := &chainSim{receiptAfter: 2, status: types.ReceiptStatusSuccessful}
	s := newTestSubmitter(t, sim, nil)

	value, err := eth.ToWei("0.002", eth.Ether)
	require.NoError(t, err)

	st := s.Submit(context.Background(), TransferRequest{From: from, To: target, Value: value})
	evs := collect(t, st)

	require.Equal(t, []EventKind{
		EventSubmitted, EventConfirmed,
		EventConfirmationCount, EventConfirmationCount, EventConfirmationCount,
	}, kinds(evs))

	assert.Equal(t, txHash, evs[0].Hash)
	require.NotNil(t, evs[1].Receipt)
	assert.Equal(t, int64(10), evs[1].Receipt.BlockNumber.Int64())
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{evs[2].Confirmations, evs[3].Confirmations, evs[4].Confirmations})
	for _, ev := range evs {
		assert.Equal(t, st.ID, ev.SubmissionID)
	}

	sent := sim.sentTxs()
	require.Len(t, sent, 1)
	assert.Equal(t, target, *sent[0].To)
	assert.Equal(t, value, sent[0].Value.ToInt())
	assert.Nil(t, sent[0].GasPrice)
}

func TestSubmitTokenUsesFeedPrice(t *testing.T) {
	sim := &chainSim{status: types.ReceiptStatusSuccessful}
	price := big.NewInt(3_000_000_000)
	fees := FeeFunc(func(context.Context) (*big.Int, error) { return price, nil })
	s := newTestSubmitter(t, sim, fees)

	amount, err := eth.ToWei("3", eth.Ether)
	require.NoError(t, err)

	evs := collect(t, s.SubmitToken(context.Background(), from, TokenTransfer{Contract: token, To: target, Amount: amount}))
	require.NotEmpty(t, evs)
	assert.Equal(t, EventSubmitted, evs[0].Kind)

	sent := sim.sentTxs()
	require.Len(t, sent, 1)
	assert.Equal(t, token, *sent[0].To)
	assert.Equal(t, price, sent[0].GasPrice.ToInt())
	assert.Equal(t, "a9059cbb", common.Bytes2Hex(sent[0].Data[:4]))
	assert.Equal(t, common.LeftPadBytes(target.Bytes(), 32), []byte(sent[0].Data[4:36]))
	assert.Equal(t, 0, sent[0].Value.ToInt().Sign())
}

func TestSubmitTokenFeedUnavailable(t *testing.T) {
	tests := []struct {
		name string
		fees FeeSource
	}{
		{name: "feed error", fees: FeeFunc(func(context.Context) (*big.Int, error) {
			return nil, gasfeed.ErrFeedUnavailable
		})},
		{name: "plain error is classified", fees: FeeFunc(func(context.Context) (*big.Int, error) {
			return nil, errors.New("timeout")
		})},
		{name: "no fee source", fees: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &chainSim{status: types.ReceiptStatusSuccessful}
			s := newTestSubmitter(t, sim, tt.fees)

			evs := collect(t, s.SubmitToken(context.Background(), from,
				TokenTransfer{Contract: token, To: target, Amount: big.NewInt(1)}))

			require.Len(t, evs, 1)
			assert.Equal(t, EventFailed, evs[0].Kind)
			assert.ErrorIs(t, evs[0].Err, gasfeed.ErrFeedUnavailable)
			assert.Empty(t, sim.sentTxs(), "nothing may be dispatched")
		})
	}
}

func TestSubmitReverted(t *testing.T) {
	sim := &chainSim{status: types.ReceiptStatusFailed}
	s := newTestSubmitter(t, sim, nil)

	evs := collect(t, s.Submit(context.Background(), TransferRequest{From: from, To: target, Value: big.NewInt(1)}))
	require.Equal(t, []EventKind{EventSubmitted, EventConfirmed, EventFailed}, kinds(evs))
	assert.ErrorIs(t, evs[2].Err, ErrReverted)
}

func TestSubmitRejected(t *testing.T) {
	sim := &chainSim{sendErr: rejection{}}
	s := newTestSubmitter(t, sim, nil)

	evs := collect(t, s.Submit(context.Background(), TransferRequest{From: from, To: target}))
	require.Len(t, evs, 1)
	assert.Equal(t, EventFailed, evs[0].Kind)
	assert.True(t, provider.IsRejected(evs[0].Err))
}

func TestSubmitInvalidRequest(t *testing.T) {
	sim := &chainSim{}
	s := newTestSubmitter(t, sim, nil)

	for _, req := range []TransferRequest{
		{To: target},
		{From: from},
		{From: from, To: target, Value: big.NewInt(-1)},
		{From: from, To: target, GasPrice: big.NewInt(0)},
		{From: from, Token: &TokenTransfer{Contract: token, To: target}},
	} {
		evs := collect(t, s.Submit(context.Background(), req))
		require.Len(t, evs, 1)
		assert.ErrorIs(t, evs[0].Err, ErrInvalidRequest)
	}
	assert.Empty(t, sim.sentTxs())
}

func TestSubmitConsumerStopsListening(t *testing.T) {
	// never mined
	sim := &chainSim{receiptAfter: 1 << 30}
	s := newTestSubmitter(t, sim, nil)

	ctx, cancel := context.WithCancel(context.Background())
	st := s.Submit(ctx, TransferRequest{From: from, To: target, Value: big.NewInt(1)})

	first := <-st.Events()
	assert.Equal(t, EventSubmitted, first.Kind)
	cancel()

	evs := collect(t, st)
	for _, ev := range evs {
		assert.NotEqual(t, EventConfirmed, ev.Kind)
	}
	assert.Len(t, sim.sentTxs(), 1, "the transaction stays broadcast")
}

func TestEachSubmissionGetsFreshStream(t *testing.T) {
	sim := &chainSim{status: types.ReceiptStatusSuccessful}
	s := newTestSubmitter(t, sim, nil)

	a := s.Submit(context.Background(), TransferRequest{From: from, To: target})
	b := s.Submit(context.Background(), TransferRequest{From: from, To: target})
	assert.NotEqual(t, a.ID, b.ID)
	collect(t, a)
	collect(t, b)
}

func TestEventJSONCarriesError(t *testing.T) {
	raw, err := json.Marshal(Event{Kind: EventFailed, SubmissionID: "s1", Err: gasfeed.ErrFeedUnavailable})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "failed", got["kind"])
	assert.Equal(t, "s1", got["submissionId"])
	assert.Equal(t, gasfeed.ErrFeedUnavailable.Error(), got["error"])

	raw, err = json.Marshal(Event{Kind: EventConfirmationCount, Confirmations: 3})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"error"`)
}
