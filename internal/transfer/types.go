package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrReverted       = errors.New("transfer: transaction reverted")
	ErrInvalidRequest = errors.New("transfer: invalid request")
)

// TokenTransfer is an ERC20 transfer(to, amount) call on Contract.
type TokenTransfer struct {
	Contract common.Address `json:"contract"`
	To       common.Address `json:"to"`
	Amount   *big.Int       `json:"amount"`
}

// TransferRequest covers both plain value transfers and token transfers. When
// Token is set, To/Value/Data are derived from it.
type TransferRequest struct {
	From     common.Address `json:"from"`
	To       common.Address `json:"to"`
	Value    *big.Int       `json:"value,omitempty"`
	GasPrice *big.Int       `json:"gasPrice,omitempty"`
	Data     []byte         `json:"data,omitempty"`

	Token *TokenTransfer `json:"token,omitempty"`
}

func (r TransferRequest) validate() error {
	if r.From == (common.Address{}) {
		return errors.Join(ErrInvalidRequest, errors.New("missing from address"))
	}
	if r.Value != nil && r.Value.Sign() < 0 {
		return errors.Join(ErrInvalidRequest, errors.New("negative value"))
	}
	if r.GasPrice != nil && r.GasPrice.Sign() <= 0 {
		return errors.Join(ErrInvalidRequest, errors.New("gas price must be positive"))
	}
	if r.Token != nil {
		if r.Token.Contract == (common.Address{}) || r.Token.To == (common.Address{}) {
			return errors.Join(ErrInvalidRequest, errors.New("token transfer needs contract and recipient"))
		}
		if r.Token.Amount == nil || r.Token.Amount.Sign() <= 0 {
			return errors.Join(ErrInvalidRequest, errors.New("token amount must be positive"))
		}
		return nil
	}
	if r.To == (common.Address{}) {
		return errors.Join(ErrInvalidRequest, errors.New("missing recipient"))
	}
	return nil
}

type EventKind string

const (
	EventSubmitted         EventKind = "submitted"
	EventConfirmed         EventKind = "confirmed"
	EventConfirmationCount EventKind = "confirmation"
	EventFailed            EventKind = "failed"
)

// Event is one lifecycle stage of a submission. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind          EventKind      `json:"kind"`
	SubmissionID  string         `json:"submissionId"`
	Hash          common.Hash    `json:"hash,omitempty"`
	Receipt       *types.Receipt `json:"receipt,omitempty"`
	Confirmations uint64         `json:"confirmations,omitempty"`
	Err           error          `json:"-"`
}

// MarshalJSON writes Err as its message under "error".
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(e)}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}

// FeeSource quotes a gas price in wei.
type FeeSource interface {
	SafeLow(ctx context.Context) (*big.Int, error)
}

type FeeFunc func(ctx context.Context) (*big.Int, error)

func (f FeeFunc) SafeLow(ctx context.Context) (*big.Int, error) { return f(ctx) }
