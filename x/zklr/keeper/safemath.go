package keeper

import (
	"math"
	"math/bits"

	"github.com/zklr-network/zklr/x/zklr/types"
)

// SafeMath provides overflow-checked arithmetic for stake and liquidity
// bookkeeping. Every helper fails with a registered module error.

// SafeAddUint64 adds two uint64 values with overflow checking
func SafeAddUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, types.ErrArithmeticOverflow.Wrapf("%d + %d", a, b)
	}
	return sum, nil
}

// SafeSubUint64 subtracts b from a with underflow checking
func SafeSubUint64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, types.ErrArithmeticUnderflow.Wrapf("%d - %d", a, b)
	}
	return diff, nil
}

// SafeMulUint64 multiplies two uint64 values with overflow checking
func SafeMulUint64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, types.ErrArithmeticOverflow.Wrapf("%d * %d", a, b)
	}
	return lo, nil
}

// SafeQuoUint64 divides a by b with division by zero checking
func SafeQuoUint64(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, types.ErrDivisionByZero.Wrapf("%d / 0", a)
	}
	return a / b, nil
}

// SafeMulDivUint64 computes (a * b) / c, truncating. The product must fit
// in 64 bits.
func SafeMulDivUint64(a, b, c uint64) (uint64, error) {
	product, err := SafeMulUint64(a, b)
	if err != nil {
		return 0, err
	}
	return SafeQuoUint64(product, c)
}

// SafePercent returns amount * pct / 100, truncating
func SafePercent(amount, pct uint64) (uint64, error) {
	return SafeMulDivUint64(amount, pct, 100)
}

// SafeAddInt64 adds two timestamps or durations with overflow checking
func SafeAddInt64(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, types.ErrArithmeticOverflow.Wrapf("%d + %d", a, b)
	}
	return a + b, nil
}

// SafeIncrementUint32 adds one to a small counter with overflow checking
func SafeIncrementUint32(n uint32) (uint32, error) {
	if n == math.MaxUint32 {
		return 0, types.ErrArithmeticOverflow.Wrapf("%d + 1", n)
	}
	return n + 1, nil
}
