package http

import "time"

// Generic HTTP / JSON strings
const (
	HTTPErrorInvalidJSONText = "invalid JSON"
	HTTPErrorForbiddenText   = "forbidden"
	HTTPErrorForbiddenHost   = "forbidden host"
	HTTPErrorNoAccountText   = "no account available"
)

// Common JSON keys
const (
	JSONKeyError  = "error"
	JSONKeyChains = "chains"
)

// Error codes in the JSON error body. Provider errors keep their JSON-RPC code.
const (
	ErrorCodeInvalidRequest = -32600
	ErrorCodeInternal       = -32603
)

const (
	NDJSONContentType = "application/x-ndjson"

	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second

	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024

	WSWriteWait  = 10 * time.Second
	WSPongWait   = 60 * time.Second
	WSPingPeriod = WSPongWait * 9 / 10
)
