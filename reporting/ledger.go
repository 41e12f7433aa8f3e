/*
Package reporting reconciles cash for an accounting period and exports
reports.

RECONCILIATION:
  Paid receipts and expenses are partitioned by payment date:

    paymentDate <  start          -> previous balance (receipts +, expenses -)
    start <= paymentDate <= end   -> period revenue / period expenses
    paymentDate >  end            -> excluded (not yet reconciled)

  Both boundaries are inclusive: a payment on the start or end date belongs
  to the period. Cash figures use the amount actually paid.

    closing = previous + revenue - expenses

  OutstandingDelinquencyTotal is a present-day disclosure computed with the
  penalty calculator over open items that are overdue today. It is not part
  of the period's cash arithmetic.

SEE ALSO:
  - delinquency/penalty.go: CorrectedTotal
  - export.go: XLSX output
*/
package reporting

import (
	"fmt"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
)

// LedgerPeriod is the reconciled cash position for one period.
type LedgerPeriod struct {
	Period                      core.Period `json:"period"`
	PreviousBalance             core.Money  `json:"previous_balance"`
	PeriodRevenue               core.Money  `json:"period_revenue"`
	PeriodExpenses              core.Money  `json:"period_expenses"`
	ClosingBalance              core.Money  `json:"closing_balance"`
	OutstandingDelinquencyTotal core.Money  `json:"outstanding_delinquency_total"`

	ReceiptCount    int `json:"receipt_count"`
	ExpenseCount    int `json:"expense_count"`
	FutureExcluded  int `json:"future_excluded"`
	DelinquentItems int `json:"delinquent_items"`
}

// Reconcile computes the ledger for period. receipts and expenses must be
// paid items with a payment date; anything else is a ValidationError.
func Reconcile(receipts, expenses, openItems []core.BillableItem, period core.Period, today core.Date) (LedgerPeriod, error) {
	if err := period.Validate(); err != nil {
		return LedgerPeriod{}, err
	}

	lp := LedgerPeriod{
		Period:                      period,
		PreviousBalance:             core.ZeroMoney,
		PeriodRevenue:               core.ZeroMoney,
		PeriodExpenses:              core.ZeroMoney,
		OutstandingDelinquencyTotal: core.ZeroMoney,
	}

	for _, r := range receipts {
		amount, on, err := cash(r, "receipt")
		if err != nil {
			return LedgerPeriod{}, err
		}
		switch {
		case on.Before(period.Start):
			lp.PreviousBalance = lp.PreviousBalance.Add(amount)
		case period.Contains(on):
			lp.PeriodRevenue = lp.PeriodRevenue.Add(amount)
			lp.ReceiptCount++
		default:
			lp.FutureExcluded++
		}
	}

	for _, e := range expenses {
		amount, on, err := cash(e, "expense")
		if err != nil {
			return LedgerPeriod{}, err
		}
		switch {
		case on.Before(period.Start):
			lp.PreviousBalance = lp.PreviousBalance.Sub(amount)
		case period.Contains(on):
			lp.PeriodExpenses = lp.PeriodExpenses.Add(amount)
			lp.ExpenseCount++
		default:
			lp.FutureExcluded++
		}
	}

	lp.ClosingBalance = lp.PreviousBalance.Add(lp.PeriodRevenue).Sub(lp.PeriodExpenses)

	for _, item := range openItems {
		if !delinquency.IsOverdue(item, today) {
			continue
		}
		lp.OutstandingDelinquencyTotal = lp.OutstandingDelinquencyTotal.Add(delinquency.ComputePenalty(item, today).CorrectedTotal)
		lp.DelinquentItems++
	}

	return lp, nil
}

func cash(item core.BillableItem, kind string) (core.Money, core.Date, error) {
	if item.Status != core.StatusPaid || item.PaymentDate == nil || item.PaymentAmount == nil {
		return core.Money{}, core.Date{}, &core.ValidationError{
			Field:  kind,
			Reason: fmt.Sprintf("%s is not a paid item with a payment date", item.ID),
		}
	}
	return *item.PaymentAmount, *item.PaymentDate, nil
}
