package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/gasfeed"
)

type Options struct {
	PollInterval       time.Duration
	ConfirmationBlocks uint64
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = constants.DefaultPollIntervalMs * time.Millisecond
	}
	if o.ConfirmationBlocks == 0 {
		o.ConfirmationBlocks = constants.DefaultConfirmationBlocks
	}
	return o
}

type Submitter struct {
	client *eth.Client
	fees   FeeSource
	opts   Options
}

// NewSubmitter wires a submitter to the session's chain client. fees may be
// nil, in which case token transfers need an explicit gas price.
func NewSubmitter(client *eth.Client, fees FeeSource, opts Options) *Submitter {
	return &Submitter{client: client, fees: fees, opts: opts.withDefaults()}
}

// SubmitToken sends amount of an ERC20 token priced at the feed's safeLow.
func (s *Submitter) SubmitToken(ctx context.Context, from common.Address, token TokenTransfer) *Stream {
	return s.Submit(ctx, TransferRequest{From: from, Token: &token})
}

// Submit broadcasts req and follows it until the confirmation depth. The
// returned stream is live immediately; cancelling ctx stops following the
// transaction but cannot recall it once Submitted was emitted.
func (s *Submitter) Submit(ctx context.Context, req TransferRequest) *Stream {
	st := newStream(uuid.NewString())
	go s.run(ctx, st, req)
	return st
}

func (s *Submitter) run(ctx context.Context, st *Stream, req TransferRequest) {
	defer st.close()

	fail := func(err error) {
		log.Error("transfer failed", "submission", st.ID, "error", err)
		st.emit(ctx, Event{Kind: EventFailed, Err: err})
	}

	if err := req.validate(); err != nil {
		fail(err)
		return
	}

	args, err := s.buildArgs(ctx, req)
	if err != nil {
		fail(err)
		return
	}

	hash, err := s.client.SendTransaction(ctx, args)
	if err != nil {
		fail(err)
		return
	}
	log.Info("transaction submitted", "submission", st.ID, "hash", hash.Hex(), "from", args.From.Hex())

	if !st.emit(ctx, Event{Kind: EventSubmitted, Hash: hash}) {
		return
	}

	receipt, ok := s.waitReceipt(ctx, hash)
	if !ok {
		return
	}
	if !st.emit(ctx, Event{Kind: EventConfirmed, Hash: hash, Receipt: receipt}) {
		return
	}
	if receipt.Status == types.ReceiptStatusFailed {
		fail(fmt.Errorf("%w: %s", ErrReverted, hash.Hex()))
		return
	}

	s.followConfirmations(ctx, st, hash, receipt)
}

func (s *Submitter) buildArgs(ctx context.Context, req TransferRequest) (eth.TxArgs, error) {
	if req.Token == nil {
		return eth.NewTxArgs(req.From, req.To, req.Value, req.GasPrice, req.Data), nil
	}

	gasPrice := req.GasPrice
	if gasPrice == nil {
		if s.fees == nil {
			return eth.TxArgs{}, fmt.Errorf("%w: no fee source configured", gasfeed.ErrFeedUnavailable)
		}
		price, err := s.fees.SafeLow(ctx)
		if err != nil {
			if !errors.Is(err, gasfeed.ErrFeedUnavailable) {
				err = fmt.Errorf("%w: %w", gasfeed.ErrFeedUnavailable, err)
			}
			return eth.TxArgs{}, err
		}
		gasPrice = price
	}

	erc20, err := s.client.BindERC20(req.Token.Contract)
	if err != nil {
		return eth.TxArgs{}, err
	}
	data, err := erc20.Pack("transfer", req.Token.To, req.Token.Amount)
	if err != nil {
		return eth.TxArgs{}, err
	}

	return eth.NewTxArgs(req.From, req.Token.Contract, new(big.Int), gasPrice, data), nil
}

// waitReceipt polls until the receipt shows up. Read errors are logged and
// polled through.
func (s *Submitter) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, bool) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, true
		case errors.Is(err, ethereum.NotFound):
		default:
			log.Warn("receipt poll failed", "hash", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-ticker.C:
		}
	}
}

func (s *Submitter) followConfirmations(ctx context.Context, st *Stream, hash common.Hash, receipt *types.Receipt) {
	if receipt.BlockNumber == nil {
		return
	}
	mined := receipt.BlockNumber.Uint64()
	depth := s.opts.ConfirmationBlocks

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var emitted uint64
	for emitted < depth {
		head, err := s.client.BlockNumber(ctx)
		if err != nil {
			log.Warn("block number poll failed", "hash", hash.Hex(), "error", err)
		} else if head > mined {
			for n := emitted + 1; n <= head-mined && n <= depth; n++ {
				if !st.emit(ctx, Event{Kind: EventConfirmationCount, Hash: hash, Confirmations: n}) {
					return
				}
				emitted = n
			}
		}
		if emitted >= depth {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	log.Info("transaction confirmed", "submission", st.ID, "hash", hash.Hex(), "confirmations", emitted)
}
