// Package payments holds the marketplace money math. Everything is integer
// minor units of the base currency; display conversion lives elsewhere.
package payments

// Split divides total between the fulfilling operator and the platform for a
// commission given in basis points (1100 = 11%). The platform fee absorbs the
// rounding remainder, so the operator amount is reproducible from price
// tables: operator = total * (10000 - commissionBP) / 10000, rounded down.
// Invariant: operator + fee == total, both non-negative.
//
// The split is computed once at authorization time and persisted verbatim.
// Re-running it later against a changed commission rate would break settlement.
func Split(total, commissionBP int64) (operator, fee int64) {
	if total <= 0 {
		return 0, 0
	}
	if commissionBP < 0 {
		commissionBP = 0
	}
	if commissionBP > 10000 {
		commissionBP = 10000
	}

	operator = total * (10000 - commissionBP) / 10000
	fee = total - operator
	return operator, fee
}
