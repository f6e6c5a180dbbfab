// Package units converts between the decimal ether strings shown to users and
// the wei integers the contract works with.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	marketerrors "github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

// EtherDecimals is the number of wei decimals in one ether.
const EtherDecimals = 18

// ParseEther converts a decimal ether amount such as "0.025" into wei.
// Negative amounts and amounts with more than 18 fractional digits are rejected.
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, marketerrors.NewValidationError("price", "is required", amount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, marketerrors.NewValidationError("price", "not a decimal number", amount)
	}
	if d.IsNegative() {
		return nil, marketerrors.NewValidationError("price", "must not be negative", amount)
	}

	wei := d.Shift(EtherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, marketerrors.NewValidationError("price", fmt.Sprintf("more than %d decimal places", EtherDecimals), amount)
	}
	return wei.BigInt(), nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros
// ("25000000000000000" -> "0.025"). Nil formats as "0".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).String()
}

// ComparePrices compares two decimal price strings numerically. Unparseable
// prices sort as zero.
func ComparePrices(a, b string) int {
	return toDecimal(a).Cmp(toDecimal(b))
}

func toDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
