package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/config"
	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/qr"
	"github.com/quantumauth-io/quantum-web3-demo/internal/session"
	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

type Handler struct {
	sess *session.Session
	demo *config.DemoSettings
}

func NewHandler(sess *session.Session, demo *config.DemoSettings) *Handler {
	if demo == nil {
		demo = config.Default().Demo
	}
	return &Handler{sess: sess, demo: demo}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/status?refresh=true
func (h *Handler) Status(c *gin.Context) {
	if c.Query("refresh") == "true" {
		c.JSON(http.StatusOK, h.sess.Refresh(c.Request.Context()))
		return
	}
	c.JSON(http.StatusOK, h.sess.Snapshot())
}

// GET /api/chains
func (h *Handler) Chains(c *gin.Context) {
	rows := h.sess.Registry().List()
	out := make([]chainRes, 0, len(rows))
	for _, ch := range rows {
		out = append(out, chainRes{
			Name:             ch.Name,
			Slug:             ch.Slug,
			ID:               ch.RawID,
			Explorer:         ch.ExplorerBaseURL,
			TokenExplorer:    ch.TokenExplorerBaseURL,
			HasRPC:           ch.HasRPC(),
			SelectorQueryArg: "?chain=" + ch.Slug,
		})
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyChains: out})
}

// POST /api/sign/message
func (h *Handler) SignMessage(c *gin.Context) {
	var req signMessageReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	from, ok := h.resolveFrom(c, req.From)
	if !ok {
		return
	}

	msg := h.demo.Message
	if req.Message != nil {
		msg = *req.Message
	}

	h.writeAttempt(c, h.sess.Signer.SignPlainMessage(c.Request.Context(), msg, from))
}

// POST /api/sign/typed
func (h *Handler) SignTyped(c *gin.Context) {
	var req signTypedReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	from, ok := h.resolveFrom(c, req.From)
	if !ok {
		return
	}

	fields := req.Fields
	if len(fields) == 0 {
		fields = config.DemoTypedFields()
	}

	h.writeAttempt(c, h.sess.Signer.SignTypedData(c.Request.Context(), fields, from))
}

// POST /api/sign/typed/v4 with {"from": "0x..", "typedData": {EIP-712 payload}}
func (h *Handler) SignTypedV4(c *gin.Context) {
	var req signTypedV4Req
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, fmt.Errorf("%s: %w", HTTPErrorInvalidJSONText, err))
		return
	}

	td, err := signing.ParseTypedDataV4(req.TypedData)
	if err != nil {
		writeBadRequest(c, err)
		return
	}

	from, ok := h.resolveFrom(c, req.From)
	if !ok {
		return
	}

	h.writeAttempt(c, h.sess.Signer.SignTypedDataV4(c.Request.Context(), td, from))
}

// POST /api/send/eth
func (h *Handler) SendEth(c *gin.Context) {
	h.sendEth(c, h.demo.TargetAddress, h.demo.SendAmountEther)
}

// POST /api/buy/token pays ether into the token contract.
func (h *Handler) BuyToken(c *gin.Context) {
	h.sendEth(c, h.demo.TokenAddress, h.demo.BuyAmountEther)
}

func (h *Handler) sendEth(c *gin.Context, defTo, defAmount string) {
	var req sendEthReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	from, ok := h.resolveFrom(c, req.From)
	if !ok {
		return
	}
	to, err := addressOr(req.To, defTo)
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	value, err := eth.ToWei(valueOr(req.AmountEther, defAmount), eth.Ether)
	if err != nil {
		writeBadRequest(c, err)
		return
	}

	st := h.sess.Submitter.Submit(c.Request.Context(), transfer.TransferRequest{From: from, To: to, Value: value})
	h.streamEvents(c, st)
}

// POST /api/send/token
func (h *Handler) SendToken(c *gin.Context) {
	var req sendTokenReq
	if !bindOptionalJSON(c, &req) {
		return
	}

	from, ok := h.resolveFrom(c, req.From)
	if !ok {
		return
	}
	contract, err := addressOr(req.Contract, h.demo.TokenAddress)
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	to, err := addressOr(req.To, h.demo.TargetAddress)
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	amount, err := eth.ParseUnits(valueOr(req.Amount, h.demo.TokenAmount), h.tokenDecimals(c, contract))
	if err != nil {
		writeBadRequest(c, err)
		return
	}

	st := h.sess.Submitter.SubmitToken(c.Request.Context(), from, transfer.TokenTransfer{
		Contract: contract,
		To:       to,
		Amount:   amount,
	})
	h.streamEvents(c, st)
}

// GET /api/token?contract=0x..&owner=0x..
func (h *Handler) Token(c *gin.Context) {
	contract, err := addressOr(c.Query("contract"), h.demo.TokenAddress)
	if err != nil {
		writeBadRequest(c, err)
		return
	}
	owner, ok := h.resolveFrom(c, c.Query("owner"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	holding, err := h.sess.Assets.Holding(ctx, h.sess.NetworkKey(ctx), contract, owner)
	if err != nil {
		writeError(c, errorStatus(err), err)
		return
	}

	res := tokenRes{
		Address:  holding.Asset.Address.Hex(),
		Symbol:   holding.Asset.Symbol,
		Name:     holding.Asset.Name,
		Decimals: holding.Asset.Decimals,
		Owner:    holding.Owner.Hex(),
		Balance:  holding.Display,
		Raw:      holding.Raw.String(),
	}
	if chain, ok := h.sess.Chain(); ok && chain.TokenExplorerBaseURL != "" {
		res.ExplorerURL = chain.TokenURL(res.Address)
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/account/qr?address=0x..&size=256 returns a PNG of the account's
// EIP-681 URI.
func (h *Handler) AccountQR(c *gin.Context) {
	addr, ok := h.resolveFrom(c, c.Query("address"))
	if !ok {
		return
	}

	size := DefaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < MinQRSize || n > MaxQRSize {
			writeBadRequest(c, fmt.Errorf("size must be between %d and %d", MinQRSize, MaxQRSize))
			return
		}
		size = n
	}

	chainID := h.sess.Snapshot().Network.ID
	png, err := qr.PNG(qr.AddressURI(addr, chainID), size)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// tokenDecimals prefers the contract's own decimals and falls back to the
// configured value when the contract cannot be read.
func (h *Handler) tokenDecimals(c *gin.Context, contract common.Address) uint8 {
	ctx := c.Request.Context()
	a, err := h.sess.Assets.FetchAsset(ctx, h.sess.NetworkKey(ctx), contract)
	if err != nil {
		log.Warn("token decimals unavailable, using configured value", "contract", contract.Hex(), "error", err)
		return h.demo.TokenDecimals
	}
	return a.Decimals
}

// streamEvents writes one JSON object per lifecycle event. The client going
// away cancels the request context, which stops following the transaction.
func (h *Handler) streamEvents(c *gin.Context, st *transfer.Stream) {
	c.Header("Content-Type", NDJSONContentType)
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	chain, ok := h.sess.Chain()
	if !ok {
		h.sess.RefreshNetwork(c.Request.Context())
		chain, _ = h.sess.Chain()
	}

	enc := json.NewEncoder(c.Writer)
	for ev := range st.Events() {
		if err := enc.Encode(toEventRes(ev, chain.ExplorerBaseURL)); err != nil {
			log.Warn("event stream write failed", "submission", st.ID, "error", err)
			return
		}
		c.Writer.Flush()
	}
}

func (h *Handler) writeAttempt(c *gin.Context, a *signing.Attempt) {
	res := attemptRes{
		ID:        a.ID,
		Method:    a.Method,
		State:     a.State,
		From:      a.Request.From.Hex(),
		Signature: a.Signature,
		Outcome:   a.Outcome,
		Error:     toErrorBody(a.Err),
	}

	status := http.StatusOK
	switch a.State {
	case signing.StateRejected, signing.StateErrored:
		status = errorStatus(a.Err)
	case signing.StateMismatched:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

// resolveFrom uses the explicit address or falls back to the coinbase.
func (h *Handler) resolveFrom(c *gin.Context, raw string) (common.Address, bool) {
	if strings.TrimSpace(raw) != "" {
		addr, err := parseAddress(raw)
		if err != nil {
			writeBadRequest(c, err)
			return common.Address{}, false
		}
		return addr, true
	}

	addr, err := h.sess.Client.Coinbase(c.Request.Context())
	switch {
	case errors.Is(err, eth.ErrNoAccount):
		c.JSON(http.StatusConflict, gin.H{JSONKeyError: &errorBody{
			Code:    ErrorCodeInvalidRequest,
			Kind:    "no_account",
			Message: HTTPErrorNoAccountText,
		}})
		return common.Address{}, false
	case err != nil:
		writeError(c, errorStatus(err), err)
		return common.Address{}, false
	}
	return addr, true
}

// bindOptionalJSON accepts an empty body so every demo action works with
// defaults.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeBadRequest(c, fmt.Errorf("%s: %w", HTTPErrorInvalidJSONText, err))
		return false
	}
	return true
}

func toEventRes(ev transfer.Event, explorer string) eventRes {
	out := eventRes{
		Kind:          ev.Kind,
		SubmissionID:  ev.SubmissionID,
		Confirmations: ev.Confirmations,
		Error:         toErrorBody(ev.Err),
	}
	if ev.Hash != (common.Hash{}) {
		out.Hash = ev.Hash.Hex()
		if explorer != "" {
			out.ExplorerURL = strings.Replace(explorer, "/address/", "/tx/", 1) + ev.Hash.Hex()
		}
	}
	if r := ev.Receipt; r != nil {
		out.Receipt = &receiptRes{Status: r.Status, GasUsed: r.GasUsed}
		if r.BlockNumber != nil {
			out.Receipt.BlockNumber = r.BlockNumber.String()
		}
	}
	return out
}

func parseAddress(raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func addressOr(raw, def string) (common.Address, error) {
	return parseAddress(valueOr(raw, def))
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
