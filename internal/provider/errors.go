package provider

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/rpc"
)

// CodeUserRejected is the EIP-1193 "user rejected request" error code.
const CodeUserRejected = 4001

var ErrNoRPCEndpoint = errors.New("chain has no websocket rpc endpoint")

// ProviderError is a transport or JSON-RPC failure reported by the active
// provider. Reads may be retried by the caller; signing and submission must not.
type ProviderError struct {
	Method  string
	Code    int
	Message string
	Data    any
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider %s: %s (code %d)", e.Method, e.Message, e.Code)
	}
	return fmt.Sprintf("provider %s: %s", e.Method, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRejected reports whether the user or wallet declined the request.
func (e *ProviderError) IsRejected() bool {
	return e != nil && e.Code == CodeUserRejected
}

// IsRejected reports whether err carries a user-rejection ProviderError.
func IsRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsRejected()
}

func wrapCallError(method string, err error) error {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}

	out := &ProviderError{
		Method:  method,
		Message: err.Error(),
		Err:     err,
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		out.Code = rpcErr.ErrorCode()
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		out.Data = dataErr.ErrorData()
	}
	return out
}

// ResolutionError means no usable provider could be constructed. It is fatal
// to the session.
type ResolutionError struct {
	Origin Origin
	Chain  string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Chain != "" {
		return fmt.Sprintf("resolve %s provider for chain %q: %v", e.Origin, e.Chain, e.Err)
	}
	return fmt.Sprintf("resolve %s provider: %v", e.Origin, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
