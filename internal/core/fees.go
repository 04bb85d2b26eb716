package core

import "fmt"

// ExpectedFee derives the fee a pupil owes for one term from the class
// termly fee and the bursary terms. The discount is floored to a whole
// minor unit, so the result is always an integer in [0, termlyFee].
func ExpectedFee(termlyFee Money, b Bursary) (Money, error) {
	if termlyFee.Cents < 0 {
		return Zero, fmt.Errorf("termly fee %d: %w", termlyFee.Cents, ErrNegativeFee)
	}
	if err := b.Validate(false); err != nil {
		return Zero, err
	}
	discount := termlyFee.Cents * int64(b.Percentage) / 100
	return Money{Cents: termlyFee.Cents - discount}, nil
}

// BursaryDiscount is the complement of ExpectedFee, exposed for display.
// It is derived from ExpectedFee rather than computed independently so the
// two can never drift apart.
func BursaryDiscount(termlyFee Money, b Bursary) (Money, error) {
	fee, err := ExpectedFee(termlyFee, b)
	if err != nil {
		return Zero, err
	}
	return termlyFee.Sub(fee), nil
}

// PaymentStatusOf classifies a pupil's standing from the cached totals.
// Precedence: Overpaid, Paid, Partial, Pending. A zero balance reads Paid
// even when nothing was ever paid (full-bursary pupils owe nothing).
func PaymentStatusOf(totalPaid, balance Money) PaymentStatus {
	switch {
	case balance.IsNegative():
		return StatusOverpaid
	case balance.IsZero():
		return StatusPaid
	case totalPaid.Cents > 0:
		return StatusPartial
	default:
		return StatusPending
	}
}

// ApplyPayment returns the totals after recording a payment of amount.
// The balance may go negative; overpayment is a valid state, not an error.
func ApplyPayment(totalPaid, balance, amount Money) (Money, Money, error) {
	if amount.Cents <= 0 {
		return totalPaid, balance, fmt.Errorf("apply payment of %d: %w", amount.Cents, ErrInvalidAmount)
	}
	return totalPaid.Add(amount), balance.Sub(amount), nil
}

// RevertPayment is the exact inverse of ApplyPayment, used when a payment
// is edited (revert old, apply new) or deleted. The caller is responsible
// for passing an amount that was actually applied; the ledger, not this
// function, is the record of what was.
func RevertPayment(totalPaid, balance, amount Money) (Money, Money, error) {
	if amount.Cents <= 0 {
		return totalPaid, balance, fmt.Errorf("revert payment of %d: %w", amount.Cents, ErrInvalidAmount)
	}
	return totalPaid.Sub(amount), balance.Add(amount), nil
}

// RecomputeFromLedger rebuilds a pupil's totals from the authoritative
// payment list. The result is order-independent and must match what
// incremental ApplyPayment calls over the same set would produce; it is
// the reconciliation oracle for the cached fields.
func RecomputeFromLedger(termlyFee Money, b Bursary, payments []Payment) (totalPaid, balance Money, err error) {
	fee, err := ExpectedFee(termlyFee, b)
	if err != nil {
		return Zero, Zero, err
	}
	for _, p := range payments {
		if p.Amount.Cents <= 0 {
			return Zero, Zero, fmt.Errorf("payment %s amount %d: %w", p.ID, p.Amount.Cents, ErrInvalidAmount)
		}
		totalPaid = totalPaid.Add(p.Amount)
	}
	return totalPaid, fee.Sub(totalPaid), nil
}

// ClassTotal sums payment amounts for pupils in the given membership set.
func ClassTotal(payments []Payment, pupilIDs map[string]struct{}) Money {
	var total Money
	for _, p := range payments {
		if _, ok := pupilIDs[p.PupilID]; ok {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// SchoolTotal sums all payment amounts.
func SchoolTotal(payments []Payment) Money {
	var total Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
