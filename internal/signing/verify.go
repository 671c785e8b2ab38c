package signing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

type Status string

const (
	StatusVerified Status = "verified"
	StatusMismatch Status = "mismatch"
)

// Outcome is the result of checking a signature against its request. A
// malformed signature is a Mismatch with Err set.
type Outcome struct {
	Status    Status         `json:"status"`
	Recovered common.Address `json:"recovered"`
	Expected  common.Address `json:"expected"`
	Err       error          `json:"-"`
}

func (o Outcome) Verified() bool { return o.Status == StatusVerified }

// MismatchError describes a signature that does not recover to the account
// that supposedly produced it.
type MismatchError struct {
	Recovered common.Address
	Expected  common.Address
	Cause     error
}

func (e *MismatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signature does not verify for %s: %v", e.Expected.Hex(), e.Cause)
	}
	return fmt.Sprintf("signature recovered to %s, expected %s", e.Recovered.Hex(), e.Expected.Hex())
}

func (e *MismatchError) Unwrap() error { return e.Cause }

// AsError returns nil for a verified outcome.
func (o Outcome) AsError() error {
	if o.Verified() {
		return nil
	}
	return &MismatchError{Recovered: o.Recovered, Expected: o.Expected, Cause: o.Err}
}

// Verify recovers the signer of req from signature and compares it with
// req.From. It never panics.
func Verify(req Request, signature string) Outcome {
	out := Outcome{Status: StatusMismatch, Expected: req.From}

	digest, err := req.Digest()
	if err != nil {
		out.Err = err
		return out
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		out.Err = err
		return out
	}

	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		out.Err = err
		return out
	}
	out.Recovered = recovered

	if SameAddress(recovered.Hex(), req.From.Hex()) {
		out.Status = StatusVerified
	}
	return out
}

// SameAddress compares hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func DecodeSignature(signature string) ([]byte, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return nil, fmt.Errorf("signing: malformed signature: %w", err)
	}
	if len(sig) != signatureLength {
		return nil, fmt.Errorf("signing: signature is %d bytes, expected %d", len(sig), signatureLength)
	}
	return sig, nil
}

// RecoverAddress accepts both v=0/1 and v=27/28 signatures.
func RecoverAddress(digest, signature []byte) (common.Address, error) {
	if len(digest) != 32 {
		return common.Address{}, fmt.Errorf("signing: digest is %d bytes", len(digest))
	}
	if len(signature) != signatureLength {
		return common.Address{}, errors.New("signing: invalid signature length")
	}

	sig := make([]byte, signatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, fmt.Errorf("signing: invalid recovery id %d", signature[64])
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("signing: recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
