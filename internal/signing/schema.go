package signing

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed typeddata.schema.json
var typedDataSchemaJSON string

var ErrInvalidTypedData = errors.New("signing: invalid typed data")

var typedDataSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(typedDataSchemaJSON))
})

// ParseTypedDataV4 checks an eth_signTypedData_v4 payload against the EIP-712
// shape before decoding it.
func ParseTypedDataV4(raw []byte) (apitypes.TypedData, error) {
	var td apitypes.TypedData

	schema, err := typedDataSchema()
	if err != nil {
		return td, fmt.Errorf("signing: load typed data schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return td, fmt.Errorf("%w: %w", ErrInvalidTypedData, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return td, fmt.Errorf("%w: %s", ErrInvalidTypedData, strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(raw, &td); err != nil {
		return td, fmt.Errorf("%w: %w", ErrInvalidTypedData, err)
	}
	return td, nil
}
