package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-web3-demo/internal/gasfeed"
	"github.com/quantumauth-io/quantum-web3-demo/internal/provider"
	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
	"github.com/quantumauth-io/quantum-web3-demo/internal/transfer"
)

func isLoopbackRequest(r *http.Request) bool {
	ra := r.RemoteAddr

	h, _, err := net.SplitHostPort(ra)
	if err != nil {
		ip := net.ParseIP(ra)
		return ip != nil && ip.IsLoopback()
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

func isSafeLocalHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host))
}

// errorStatus maps the error taxonomy onto HTTP statuses.
func errorStatus(err error) int {
	var pe *provider.ProviderError
	var re *provider.ResolutionError
	var me *signing.MismatchError
	switch {
	case errors.As(err, &me):
		return http.StatusUnprocessableEntity
	case errors.Is(err, transfer.ErrInvalidRequest), errors.Is(err, signing.ErrInvalidTypedData):
		return http.StatusBadRequest
	case errors.Is(err, gasfeed.ErrFeedUnavailable):
		return http.StatusServiceUnavailable
	case provider.IsRejected(err):
		return http.StatusForbidden
	case errors.As(err, &pe), errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toErrorBody(err error) *errorBody {
	if err == nil {
		return nil
	}
	body := &errorBody{Code: ErrorCodeInternal, Message: err.Error()}

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		if pe.Code != 0 {
			body.Code = pe.Code
		}
		body.Data = pe.Data
	}
	switch {
	case errors.Is(err, transfer.ErrInvalidRequest), errors.Is(err, signing.ErrInvalidTypedData):
		body.Code = ErrorCodeInvalidRequest
		body.Kind = "invalid_request"
	case errors.Is(err, gasfeed.ErrFeedUnavailable):
		body.Kind = "feed_unavailable"
	case provider.IsRejected(err):
		body.Kind = "rejected"
	case errors.Is(err, transfer.ErrReverted):
		body.Kind = "reverted"
	}
	var me *signing.MismatchError
	if errors.As(err, &me) {
		body.Kind = "verification_mismatch"
	}
	return body
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{JSONKeyError: toErrorBody(err)})
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: &errorBody{
		Code:    ErrorCodeInvalidRequest,
		Kind:    "invalid_request",
		Message: err.Error(),
	}})
}
