package http

import (
	"encoding/json"

	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

type errorBody struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// -------- requests --------

type signMessageReq struct {
	Message *string `json:"message"`
	From    string  `json:"from"`
}

type signTypedReq struct {
	Fields []signing.TypedField `json:"fields"`
	From   string               `json:"from"`
}

type signTypedV4Req struct {
	TypedData json.RawMessage `json:"typedData"`
	From      string          `json:"from"`
}

type sendEthReq struct {
	To          string `json:"to"`
	AmountEther string `json:"amountEther"`
	From        string `json:"from"`
}

type sendTokenReq struct {
	Contract string `json:"contract"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	From     string `json:"from"`
}

// -------- responses --------

type attemptRes struct {
	ID        string           `json:"id"`
	Method    string           `json:"method"`
	State     signing.State    `json:"state"`
	From      string           `json:"from"`
	Signature string           `json:"signature,omitempty"`
	Outcome   *signing.Outcome `json:"outcome,omitempty"`
	Error     *errorBody       `json:"error,omitempty"`
}

type receiptRes struct {
	Status      uint64 `json:"status"`
	BlockNumber string `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed"`
}

type eventRes struct {
	Kind          transfer.EventKind `json:"kind"`
	SubmissionID  string             `json:"submissionId"`
	Hash          string             `json:"hash,omitempty"`
	ExplorerURL   string             `json:"explorerUrl,omitempty"`
	Confirmations uint64             `json:"confirmations,omitempty"`
	Receipt       *receiptRes        `json:"receipt,omitempty"`
	Error         *errorBody         `json:"error,omitempty"`
}

type chainRes struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	ID               string `json:"id"`
	Explorer         string `json:"explore"`
	TokenExplorer    string `json:"tokenExplore"`
	HasRPC           bool   `json:"hasRpc"`
	SelectorQueryArg string `json:"query"`
}

type tokenRes struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name,omitempty"`
	Decimals    uint8  `json:"decimals"`
	Owner       string `json:"owner"`
	Balance     string `json:"balance"`
	Raw         string `json:"raw"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}
