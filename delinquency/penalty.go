/*
Package delinquency turns billable items into amounts legally owed.

PURPOSE:
  This is the single implementation of the fine/interest rule. The
  receivables view, the collections dossiers and the period report all call
  ComputePenalty, so they agree to the last decimal for the same "today".

THE RULE (StatutoryRule):
  - Paid items carry no fine or interest.
  - An unpaid item due today or later is not late.
  - Once late: a flat 2% fine, charged once, plus 1% per 30-day month of
    interest applied per calendar day (daily rate = monthly rate / 30).

  Example: 500.00 due 2025-10-10, today 2025-10-20
    daysLate = 10
    fine     = 500 x 0.02          = 10.00
    interest = 500 x 0.01 / 30 x 10 = 1.666...  (displays 1.67)
    total    = 511.666...          (displays 511.67)

PRECISION:
  Amounts are never rounded here. Rounding to cents happens at presentation
  (core.Money.Display), so sums over many items carry no drift.

SEE ALSO:
  - dossier.go: Per-debtor aggregation
  - core/time.go: DaysLate and the end-of-day due rule
*/
package delinquency

import (
	"github.com/shopspring/decimal"
	"github.com/warp/condo-ledger/core"
)

// =============================================================================
// RULE
// =============================================================================

// Rule holds the jurisdiction's late-payment parameters.
type Rule struct {
	FineRate            decimal.Decimal // charged once when an item becomes late
	MonthlyInterestRate decimal.Decimal
	DaysPerMonth        int64 // interest month is always this many days
	CriticalAfterDays   int   // dossiers later than this are escalation-eligible
}

// StatutoryRule is the rule in force. It is not configurable.
var StatutoryRule = Rule{
	FineRate:            decimal.RequireFromString("0.02"),
	MonthlyInterestRate: decimal.RequireFromString("0.01"),
	DaysPerMonth:        30,
	CriticalAfterDays:   30,
}

// =============================================================================
// PENALTY RESULT
// =============================================================================

// PenaltyResult is derived from an item and a date; it is never persisted.
//
// CorrectedTotal is the legally owed figure. For paid items it equals the
// original amount; Collected carries the recorded payment amount, which may
// differ (e.g. interest negotiated at the counter). Callers choose.
type PenaltyResult struct {
	OriginalAmount core.Money
	Fine           core.Money
	Interest       core.Money
	DaysLate       int
	CorrectedTotal core.Money
	Collected      *core.Money
}

// Overdue reports whether any fine or interest applies.
func (p PenaltyResult) Overdue() bool { return p.DaysLate > 0 }

// =============================================================================
// CALCULATION
// =============================================================================

// ComputePenalty applies StatutoryRule to item as of today.
func ComputePenalty(item core.BillableItem, today core.Date) PenaltyResult {
	return StatutoryRule.Compute(item, today)
}

// Compute applies the rule to item as of today. It is pure.
func (r Rule) Compute(item core.BillableItem, today core.Date) PenaltyResult {
	result := PenaltyResult{
		OriginalAmount: item.OriginalAmount,
		Fine:           core.ZeroMoney,
		Interest:       core.ZeroMoney,
		CorrectedTotal: item.OriginalAmount,
	}

	switch item.Status {
	case core.StatusPaid:
		if item.PaymentAmount != nil {
			collected := *item.PaymentAmount
			result.Collected = &collected
		}
		return result
	case core.StatusPending, core.StatusLate:
	}

	dl := core.DaysLate(item.DueDate, today)
	if dl <= 0 {
		return result
	}

	result.DaysLate = dl
	result.Fine = item.OriginalAmount.Mul(r.FineRate)
	// original x monthly / daysPerMonth x dl, divided last to keep precision
	result.Interest = core.Money{Value: item.OriginalAmount.Value.
		Mul(r.MonthlyInterestRate).
		Mul(decimal.NewFromInt(int64(dl))).
		Div(decimal.NewFromInt(r.DaysPerMonth))}
	result.CorrectedTotal = item.OriginalAmount.Add(result.Fine).Add(result.Interest)
	return result
}

// IsOverdue reports whether item is unpaid and past its due date on today.
// This is the shared definition of "delinquent" for dossiers and reports.
func IsOverdue(item core.BillableItem, today core.Date) bool {
	return item.Status.Open() && core.DaysLate(item.DueDate, today) > 0
}
