package core

import (
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 18 // 18 decimal places, matching wrapped-token denominations

// ValidateBid decides whether a candidate amount is acceptable given the
// current highest bid and the optional reserve. A nil highest means the
// candidate would be the opening bid; a nil reserve means no reserve is
// configured. Uses decimal arithmetic with monetaryPrecision to avoid
// floating-point errors.
//
// Rules:
//   - every bid must be strictly positive, reserve or not
//   - the opening bid must meet or exceed the reserve when one is set
//   - every later bid must strictly exceed the current highest bid
func ValidateBid(highest, reserve *decimal.Decimal, amount decimal.Decimal) (bool, RejectReason) {
	candidate := amount.Round(monetaryPrecision)

	if !candidate.IsPositive() {
		return false, RejectNonPositive
	}

	if highest == nil {
		if reserve != nil && candidate.LessThan(reserve.Round(monetaryPrecision)) {
			return false, RejectBelowReserve
		}
		return true, RejectNone
	}

	if !candidate.GreaterThan(highest.Round(monetaryPrecision)) {
		return false, RejectNotAboveHighest
	}
	return true, RejectNone
}

// QuickFinishTriggered returns true if the new amount is at least
// QuickFinishMultiple times the immediately preceding bid. The comparison
// is always against the direct predecessor, never the opening bid or a
// running maximum.
func QuickFinishTriggered(previous, amount decimal.Decimal) bool {
	threshold := previous.Mul(decimal.NewFromInt(QuickFinishMultiple))
	return amount.Round(monetaryPrecision).GreaterThanOrEqual(threshold.Round(monetaryPrecision))
}
