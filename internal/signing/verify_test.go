package signing

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCaseInsensitive(t *testing.T) {
	key, from := newKey(t)

	sig, err := crypto.Sign(PersonalMessageHash([]byte(preamble)), key)
	require.NoError(t, err)

	upper := "0x" + strings.ToUpper(from.Hex()[2:])
	lower := strings.ToLower(from.Hex())
	assert.True(t, SameAddress(upper, lower))

	for _, addr := range []string{upper, lower, from.Hex()} {
		req := PlainMessage(preamble, common.HexToAddress(addr))
		out := Verify(req, hexutil.Encode(sig))
		assert.True(t, out.Verified(), addr)
		assert.NoError(t, out.AsError())
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	_, from := newKey(t)
	req := PlainMessage(preamble, from)

	for _, sig := range []string{"", "0x", "zz", "0x1234", "0x" + strings.Repeat("ab", 64), "0x" + strings.Repeat("00", 65)} {
		out := Verify(req, sig)
		assert.Equal(t, StatusMismatch, out.Status, sig)
		assert.Error(t, out.Err, sig)
		assert.Error(t, out.AsError(), sig)
	}

	bad := make([]byte, 65)
	bad[64] = 5
	_, err := RecoverAddress(make([]byte, 32), bad)
	assert.Error(t, err)
	_, err = RecoverAddress(make([]byte, 31), bad)
	assert.Error(t, err)
}

func TestRequestParams(t *testing.T) {
	from := common.HexToAddress("0x4c020de581b98292f1cce93698a1fec462b0c4d2")

	params, err := PlainMessage("hi", from).Params()
	require.NoError(t, err)
	assert.Equal(t, []any{"0x6869", from}, params)
	assert.Equal(t, "personal_sign", PlainMessage("hi", from).Method())

	params, err = TypedData(aliceTyped, from).Params()
	require.NoError(t, err)
	assert.Equal(t, aliceTyped, params[0])
	assert.Equal(t, from, params[1])
	assert.Equal(t, "eth_signTypedData", TypedData(aliceTyped, from).Method())

	v4 := TypedDataV4(mailTypedData(), from)
	params, err = v4.Params()
	require.NoError(t, err)
	assert.Equal(t, from, params[0])
	assert.Contains(t, params[1], `"primaryType":"Mail"`)
	assert.Equal(t, "eth_signTypedData_v4", v4.Method())

	_, err = Request{Kind: 99, From: from}.Params()
	assert.Error(t, err)
}

func TestPackValue(t *testing.T) {
	tests := []struct {
		typ     string
		value   any
		want    string
		wantErr bool
	}{
		{typ: "string", value: "Hi", want: "0x4869"},
		{typ: "bool", value: true, want: "0x01"},
		{typ: "bool", value: false, want: "0x00"},
		{typ: "uint8", value: 255, want: "0xff"},
		{typ: "uint8", value: 256, wantErr: true},
		{typ: "uint", value: 42, want: "0x" + strings.Repeat("00", 31) + "2a"},
		{typ: "uint256", value: float64(42), want: "0x" + strings.Repeat("00", 31) + "2a"},
		{typ: "uint16", value: "0x0102", want: "0x0102"},
		{typ: "uint32", value: "7", want: "0x00000007"},
		{typ: "uint", value: -1, wantErr: true},
		{typ: "uint", value: 1.5, wantErr: true},
		{typ: "uint64", value: float64(1 << 53), want: "0x0020000000000000"},
		{typ: "uint64", value: float64(1 << 54), wantErr: true},
		{typ: "uint64", value: json.Number("12345678901234567891"), want: "0xab54a98ceb1f0ad3"},
		{typ: "uint64", value: json.Number("1.5"), wantErr: true},
		{typ: "int8", value: -1, want: "0xff"},
		{typ: "int16", value: -2, want: "0xfffe"},
		{typ: "int8", value: 128, wantErr: true},
		{typ: "address", value: "0x4c020de581b98292f1cce93698a1fec462b0c4d2", want: "0x4c020de581b98292f1cce93698a1fec462b0c4d2"},
		{typ: "address", value: "nope", wantErr: true},
		{typ: "bytes", value: "0xdead", want: "0xdead"},
		{typ: "bytes", value: "ab", want: "0x6162"},
		{typ: "bytes4", value: "0xdead", want: "0xdead0000"},
		{typ: "bytes2", value: "0xdeadbeef", wantErr: true},
		{typ: "bytes33", value: "0x00", wantErr: true},
		{typ: "uint7", value: 1, wantErr: true},
		{typ: "tuple", value: 1, wantErr: true},
		{typ: "string", value: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			got, err := packValue(tt.typ, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hexutil.Encode(got))
		})
	}
}

func TestLegacyTypedDataHashShape(t *testing.T) {
	got, err := LegacyTypedDataHash(aliceTyped)
	require.NoError(t, err)

	schema := crypto.Keccak256([]byte("string message"), []byte("uint value"))
	values := crypto.Keccak256([]byte("Hi, Alice!"), common.LeftPadBytes([]byte{42}, 32))
	assert.Equal(t, crypto.Keccak256(schema, values), got)

	_, err = LegacyTypedDataHash(nil)
	assert.Error(t, err)
}

// Vectors from eth-sig-util's typedSignatureHash and signTypedData_v1 tests.
func TestLegacyTypedDataKnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		fields []TypedField
		want   string
	}{
		{
			name:   "single value",
			fields: []TypedField{{Type: "string", Name: "message", Value: "Hi, Alice!"}},
			want:   "0x14b9f24872e28cc49e72dc104d7380d8e0ba84a3fe2e712704bcac66a5702bd5",
		},
		{
			name: "multiple values",
			fields: []TypedField{
				{Type: "string", Name: "message", Value: "Hi, Alice!"},
				{Type: "uint8", Name: "value", Value: 10},
			},
			want: "0xf7ad23226db5c1c00ca0ca1468fd49c8f8bbc1489bc1c382de5adc557a69c229",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LegacyTypedDataHash(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hexutil.Encode(got))
		})
	}

	signer := common.HexToAddress("0x29c76e6ad8f28bb1004902578fb108c507be341b")
	req := TypedData([]TypedField{{Type: "string", Name: "message", Value: "Hi, Alice!"}}, signer)
	out := Verify(req, "0x49e75d475d767de7fcc67f521e0d86590723d872e6111e51c393e8c1e2f21d032dfaf5833af158915f035db6af4f37bf2d5d29781cd81f28a44c5cb4b9d241531b")
	require.NoError(t, out.AsError())
	assert.True(t, out.Verified())
}

func TestTypedFieldKeepsLargeIntegers(t *testing.T) {
	var f TypedField
	require.NoError(t, json.Unmarshal([]byte(`{"type":"uint256","name":"value","value":12345678901234567891}`), &f))
	assert.Equal(t, json.Number("12345678901234567891"), f.Value)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"value":12345678901234567891`)

	exact, _ := new(big.Int).SetString("12345678901234567891", 10)
	want, err := LegacyTypedDataHash([]TypedField{{Type: "uint256", Name: "value", Value: exact}})
	require.NoError(t, err)
	got, err := LegacyTypedDataHash([]TypedField{f})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
