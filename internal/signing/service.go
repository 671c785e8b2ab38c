package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-web3-demo/internal/eth"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
)

// Service dispatches signing requests through the chain client and checks
// every returned signature before reporting it.
type Service struct {
	client *eth.Client
	now    func() time.Time
}

func NewService(client *eth.Client) *Service {
	return &Service{client: client, now: time.Now}
}

func (s *Service) SignPlainMessage(ctx context.Context, text string, from common.Address) *Attempt {
	return s.Sign(ctx, PlainMessage(text, from))
}

func (s *Service) SignTypedData(ctx context.Context, fields []TypedField, from common.Address) *Attempt {
	return s.Sign(ctx, TypedData(fields, from))
}

func (s *Service) SignTypedDataV4(ctx context.Context, td apitypes.TypedData, from common.Address) *Attempt {
	return s.Sign(ctx, TypedDataV4(td, from))
}

// SignAsync runs Sign in the background. The channel yields exactly one
// attempt and is then closed.
func (s *Service) SignAsync(ctx context.Context, req Request) <-chan *Attempt {
	out := make(chan *Attempt, 1)
	go func() {
		defer close(out)
		out <- s.Sign(ctx, req)
	}()
	return out
}

// Sign blocks until the provider answers. The returned attempt is always in a
// terminal state; inspect State rather than expecting an error.
func (s *Service) Sign(ctx context.Context, req Request) *Attempt {
	a := &Attempt{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Method:    req.Method(),
		State:     StateBuilt,
		StartedAt: s.now(),
		Request:   req,
		history:   []State{StateBuilt},
	}

	if err := req.Validate(); err != nil {
		a.Err = err
		a.to(StateErrored)
		log.Error("signing request invalid", "id", a.ID, "kind", req.Kind.String(), "error", err)
		return a
	}

	params, err := req.Params()
	if err != nil {
		a.Err = err
		a.to(StateErrored)
		log.Error("signing request params", "id", a.ID, "error", err)
		return a
	}

	a.to(StateDispatched)
	raw, err := s.client.DispatchRaw(ctx, a.Method, params...)
	if err != nil {
		a.Err = err
		if provider.IsRejected(err) {
			a.to(StateRejected)
			log.Warn("signing rejected", "id", a.ID, "method", a.Method, "from", req.From.Hex())
		} else {
			a.to(StateErrored)
			log.Error("signing failed", "id", a.ID, "method", a.Method, "error", err)
		}
		return a
	}

	var signature string
	if err := json.Unmarshal(raw, &signature); err != nil || signature == "" {
		a.Err = fmt.Errorf("signing: provider returned no signature: %s", string(raw))
		a.to(StateErrored)
		log.Error("signing failed", "id", a.ID, "method", a.Method, "error", a.Err)
		return a
	}

	a.Signature = signature
	a.to(StateSigned)

	outcome := Verify(req, signature)
	a.Outcome = &outcome
	if outcome.Verified() {
		a.to(StateVerified)
		log.Info("signature verified", "id", a.ID, "method", a.Method, "signer", outcome.Recovered.Hex())
		return a
	}

	a.Err = outcome.AsError()
	a.to(StateMismatched)
	log.Error("signature mismatch",
		"id", a.ID,
		"method", a.Method,
		"expected", outcome.Expected.Hex(),
		"recovered", outcome.Recovered.Hex(),
		"error", outcome.Err,
	)
	return a
}
