package exchange

import "github.com/shopspring/decimal"

// RoundToStep rounds value to the nearest multiple of step, half up.
// Rounding an already-on-step value is a no-op.
func RoundToStep(value, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return value
	}
	return value.DivRound(step, 0).Mul(step)
}

// RoundDownToStep rounds value down to the nearest multiple of step.
// Used for quantities, which must never round up past the risk budget.
func RoundDownToStep(value, step decimal.Decimal) decimal.Decimal {
	if step.Sign() <= 0 {
		return value
	}
	return DivDown(value, step, 0).Mul(step)
}

// DivDown divides a by b and truncates the quotient toward zero at the
// given scale.
func DivDown(a, b decimal.Decimal, scale int32) decimal.Decimal {
	q, _ := a.QuoRem(b, scale)
	return q
}
