package signing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type Kind int

const (
	KindPlainMessage Kind = iota + 1
	KindTypedData
	KindTypedDataV4
)

func (k Kind) String() string {
	switch k {
	case KindPlainMessage:
		return "plain_message"
	case KindTypedData:
		return "typed_data"
	case KindTypedDataV4:
		return "typed_data_v4"
	default:
		return "unknown"
	}
}

// TypedField is one entry of a legacy typed-data list. Order matters: the
// list is hashed in the order given.
type TypedField struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// UnmarshalJSON keeps numeric values as json.Number so integers above 2^53
// reach the hash and the wallet with the same digits.
func (f *TypedField) UnmarshalJSON(data []byte) error {
	type plain TypedField
	var out plain

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return err
	}
	*f = TypedField(out)
	return nil
}

// Request is what the caller asked to have signed, by whom.
type Request struct {
	Kind Kind
	From common.Address

	Message   string
	Fields    []TypedField
	TypedData *apitypes.TypedData
}

func PlainMessage(text string, from common.Address) Request {
	return Request{Kind: KindPlainMessage, From: from, Message: text}
}

// TypedData copies fields so later edits by the caller cannot change what
// gets verified.
func TypedData(fields []TypedField, from common.Address) Request {
	return Request{Kind: KindTypedData, From: from, Fields: append([]TypedField(nil), fields...)}
}

func TypedDataV4(td apitypes.TypedData, from common.Address) Request {
	return Request{Kind: KindTypedDataV4, From: from, TypedData: &td}
}

func (r Request) Validate() error {
	if r.From == (common.Address{}) {
		return fmt.Errorf("signing: missing from address")
	}
	switch r.Kind {
	case KindPlainMessage:
		return nil
	case KindTypedData:
		if len(r.Fields) == 0 {
			return fmt.Errorf("signing: typed data has no fields")
		}
		for i, f := range r.Fields {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("signing: field %d has no name", i)
			}
			if _, err := packValue(f.Type, f.Value); err != nil {
				return fmt.Errorf("signing: field %q: %w", f.Name, err)
			}
		}
		return nil
	case KindTypedDataV4:
		if r.TypedData == nil {
			return fmt.Errorf("signing: missing typed data")
		}
		if r.TypedData.PrimaryType == "" {
			return fmt.Errorf("signing: typed data has no primaryType")
		}
		return nil
	default:
		return fmt.Errorf("signing: unknown request kind %d", r.Kind)
	}
}

// Method is the JSON-RPC method the request is dispatched with.
func (r Request) Method() string {
	switch r.Kind {
	case KindPlainMessage:
		return "personal_sign"
	case KindTypedData:
		return "eth_signTypedData"
	case KindTypedDataV4:
		return "eth_signTypedData_v4"
	default:
		return ""
	}
}

// Params builds the positional parameters in the order wallets expect them.
func (r Request) Params() ([]any, error) {
	switch r.Kind {
	case KindPlainMessage:
		return []any{hexutil.Encode([]byte(r.Message)), r.From}, nil
	case KindTypedData:
		return []any{r.Fields, r.From}, nil
	case KindTypedDataV4:
		if r.TypedData == nil {
			return nil, fmt.Errorf("signing: missing typed data")
		}
		raw, err := json.Marshal(r.TypedData)
		if err != nil {
			return nil, fmt.Errorf("signing: encode typed data: %w", err)
		}
		return []any{r.From, string(raw)}, nil
	default:
		return nil, fmt.Errorf("signing: unknown request kind %d", r.Kind)
	}
}

// Digest is the 32-byte hash the signer commits to.
func (r Request) Digest() ([]byte, error) {
	switch r.Kind {
	case KindPlainMessage:
		return PersonalMessageHash([]byte(r.Message)), nil
	case KindTypedData:
		return LegacyTypedDataHash(r.Fields)
	case KindTypedDataV4:
		if r.TypedData == nil {
			return nil, fmt.Errorf("signing: missing typed data")
		}
		return TypedDataV4Hash(*r.TypedData)
	default:
		return nil, fmt.Errorf("signing: unknown request kind %d", r.Kind)
	}
}
