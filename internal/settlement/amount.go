package settlement

import (
	"fmt"
	"math/big"
	"strings"
)

// AtomicAmount converts a dollar price such as "$2.50" into the token's smallest unit.
// Prices with more precision than the token supports are rejected.
func AtomicAmount(price string, decimals int) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(price), "$")
	amount, ok := new(big.Rat).SetString(raw)
	if !ok || amount.Sign() <= 0 {
		return "", fmt.Errorf("invalid price %q", price)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	amount.Mul(amount, new(big.Rat).SetInt(scale))
	if !amount.IsInt() {
		return "", fmt.Errorf("price %q has more than %d decimals", price, decimals)
	}
	return amount.Num().String(), nil
}
