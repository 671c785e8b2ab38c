package eth

import (
	"fmt"
	"math/big"
	"strings"
)

type Unit uint8

const (
	Wei   Unit = 0
	Gwei  Unit = 9
	Ether Unit = 18
)

// ToWei converts a decimal string such as "0.002" in the given unit to wei.
func ToWei(amount string, unit Unit) (*big.Int, error) {
	return ParseUnits(amount, uint8(unit))
}

// ParseUnits converts a non-negative decimal string to base units. Digits past
// the precision of decimals are rejected rather than truncated.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("eth: empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("eth: negative amount %q", amount)
	}

	intStr, fracStr, hasDot := strings.Cut(amount, ".")
	if strings.Contains(fracStr, ".") {
		return nil, fmt.Errorf("eth: invalid amount format %q", amount)
	}
	if hasDot && intStr == "" && fracStr == "" {
		return nil, fmt.Errorf("eth: invalid amount format %q", amount)
	}
	if intStr == "" {
		intStr = "0"
	}

	intPart, ok := new(big.Int).SetString(intStr, 10)
	if !ok {
		return nil, fmt.Errorf("eth: invalid integer part %q", intStr)
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if len(fracStr) > int(decimals) {
		return nil, fmt.Errorf("eth: %q has more than %d decimals", amount, decimals)
	}

	fracPart := new(big.Int)
	if fracStr != "" {
		padded := fracStr + strings.Repeat("0", int(decimals)-len(fracStr))
		if _, ok := fracPart.SetString(padded, 10); !ok {
			return nil, fmt.Errorf("eth: invalid decimal part %q", fracStr)
		}
	}

	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	out := new(big.Int).Mul(intPart, base)
	return out.Add(out, fracPart), nil
}

// FormatUnits renders a base-unit amount as a decimal string:
//   - divides by 10^decimals
//   - keeps at most maxFrac fractional digits
//   - removes trailing zeros
//
// Examples:
//
//	amount=1234500000000000000, decimals=18 -> "1.2345"
//	amount=1000000000000000000, decimals=18 -> "1"
//	amount=20000000000, decimals=9 -> "20"
func FormatUnits(amount *big.Int, decimals uint8, maxFrac int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(amount)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, fracPart := new(big.Int).DivMod(abs, base, new(big.Int))

	if fracPart.Sign() == 0 || maxFrac <= 0 {
		return sign + intPart.String()
	}

	fracStr := fracPart.String()
	if len(fracStr) < int(decimals) {
		fracStr = strings.Repeat("0", int(decimals)-len(fracStr)) + fracStr
	}
	if len(fracStr) > maxFrac {
		fracStr = fracStr[:maxFrac]
	}

	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		return sign + intPart.String()
	}
	return sign + intPart.String() + "." + fracStr
}
