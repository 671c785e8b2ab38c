package signing

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ---- EIP-191 personal_sign ----

// PersonalMessageHash is keccak256("\x19Ethereum Signed Message:\n" + len(msg) + msg).
func PersonalMessageHash(msg []byte) []byte {
	return accounts.TextHash(msg)
}

// ---- EIP-712 v4 ----

func TypedDataV4Hash(td apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("domain hash: %w", err)
	}

	msgHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("message hash: %w", err)
	}

	// keccak256("\x19\x01" || domainSeparator || msgHash)
	return crypto.Keccak256([]byte{0x19, 0x01}, domainSeparator, msgHash), nil
}

// ---- legacy eth_signTypedData ----

// LegacyTypedDataHash hashes an ordered field list the way pre-EIP-712
// wallets do:
//
//	keccak256(keccak256(packed "type name" strings) || keccak256(packed values))
func LegacyTypedDataHash(fields []TypedField) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("signing: typed data has no fields")
	}

	schema := make([][]byte, 0, len(fields))
	values := make([][]byte, 0, len(fields))
	for _, f := range fields {
		schema = append(schema, []byte(f.Type+" "+f.Name))

		packed, err := packValue(f.Type, f.Value)
		if err != nil {
			return nil, fmt.Errorf("signing: field %q: %w", f.Name, err)
		}
		values = append(values, packed)
	}

	return crypto.Keccak256(crypto.Keccak256(schema...), crypto.Keccak256(values...)), nil
}

// packValue is Solidity's non-standard packed encoding for a single value.
func packValue(typ string, v any) ([]byte, error) {
	typ = strings.TrimSpace(typ)

	switch {
	case typ == "string":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("string value must be a string, got %T", v)
		}
		return []byte(s), nil

	case typ == "bytes":
		return toBytes(v)

	case typ == "bool":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("bool value must be a bool, got %T", v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case typ == "address":
		return packAddress(v)

	case strings.HasPrefix(typ, "uint"):
		bits, err := typeBits(typ, "uint", 256)
		if err != nil {
			return nil, err
		}
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		if n.Sign() < 0 || n.BitLen() > bits {
			return nil, fmt.Errorf("%s out of range: %s", typ, n)
		}
		return common.LeftPadBytes(n.Bytes(), bits/8), nil

	case strings.HasPrefix(typ, "int"):
		bits, err := typeBits(typ, "int", 256)
		if err != nil {
			return nil, err
		}
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s out of range: %s", typ, n)
		}
		if n.Sign() < 0 {
			n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
		}
		return common.LeftPadBytes(n.Bytes(), bits/8), nil

	case strings.HasPrefix(typ, "bytes"):
		size, err := strconv.Atoi(strings.TrimPrefix(typ, "bytes"))
		if err != nil || size < 1 || size > 32 {
			return nil, fmt.Errorf("unsupported type %q", typ)
		}
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > size {
			return nil, fmt.Errorf("%s value is %d bytes long", typ, len(b))
		}
		return common.RightPadBytes(b, size), nil
	}

	return nil, fmt.Errorf("unsupported type %q", typ)
}

func typeBits(typ, prefix string, def int) (int, error) {
	rest := strings.TrimPrefix(typ, prefix)
	if rest == "" {
		return def, nil
	}
	bits, err := strconv.Atoi(rest)
	if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, fmt.Errorf("unsupported type %q", typ)
	}
	return bits, nil
}

func packAddress(v any) ([]byte, error) {
	switch a := v.(type) {
	case common.Address:
		return a.Bytes(), nil
	case string:
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address %q", a)
		}
		return common.HexToAddress(a).Bytes(), nil
	default:
		return nil, fmt.Errorf("address value must be a hex string, got %T", v)
	}
}

// toBytes decodes 0x-prefixed hex and takes anything else as UTF-8.
func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case hexutil.Bytes:
		return b, nil
	case string:
		if has0xPrefix(b) {
			out, err := hexutil.Decode(b)
			if err != nil {
				return nil, fmt.Errorf("invalid hex %q: %w", b, err)
			}
			return out, nil
		}
		return []byte(b), nil
	default:
		return nil, fmt.Errorf("bytes value must be a string, got %T", v)
	}
}

// maxExactFloat is 2^53, the largest range in which float64 holds every integer.
const maxExactFloat = 1 << 53

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("integer value expected, got %v", n)
		}
		if math.Abs(n) > maxExactFloat {
			return nil, fmt.Errorf("integer %v is not exact as a float, pass it as a string", n)
		}
		out, _ := big.NewFloat(n).Int(nil)
		return out, nil
	case json.Number:
		return parseIntString(n.String())
	case string:
		return parseIntString(n)
	default:
		return nil, fmt.Errorf("integer value expected, got %T", v)
	}
}

func parseIntString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	base := 10
	if has0xPrefix(digits) {
		base = 16
		digits = digits[2:]
	}

	out, ok := new(big.Int).SetString(digits, base)
	if !ok || digits == "" || strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		out.Neg(out)
	}
	return out, nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
