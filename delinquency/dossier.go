package delinquency

import (
	"sort"

	"github.com/warp/condo-ledger/core"
)

// =============================================================================
// DOSSIER - Per-debtor aggregation of overdue items
// =============================================================================

// DossierItem pairs an item with its penalty as of the build date.
type DossierItem struct {
	Item    core.BillableItem
	Penalty PenaltyResult
}

// Dossier is everything one debtor currently owes past due.
// It is rebuilt on demand from the items and never persisted.
type Dossier struct {
	DebtorRef     core.DebtorRef
	Items         []DossierItem
	TotalOriginal core.Money
	TotalFine     core.Money
	TotalInterest core.Money
	TotalDebt     core.Money
	MaxDaysLate   int
}

// Critical reports whether the dossier is eligible for escalation.
func (d Dossier) Critical() bool {
	return d.MaxDaysLate > StatutoryRule.CriticalAfterDays
}

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (d Dossier) Severity() Severity {
	if d.Critical() {
		return SeverityCritical
	}
	return SeverityWarning
}

// BuildDossiers groups overdue items by debtor.
//
// Only pending/late items that are actually past due count; items not yet
// due and items without a debtor are left out. Dossiers are ordered by total
// debt (largest first), then by debtor ref, so output is reproducible.
func BuildDossiers(items []core.BillableItem, today core.Date) []Dossier {
	byDebtor := make(map[core.DebtorRef]*Dossier)

	for _, item := range items {
		if !item.HasDebtor() || !IsOverdue(item, today) {
			continue
		}
		ref := *item.DebtorRef
		d, ok := byDebtor[ref]
		if !ok {
			d = &Dossier{
				DebtorRef:     ref,
				TotalOriginal: core.ZeroMoney,
				TotalFine:     core.ZeroMoney,
				TotalInterest: core.ZeroMoney,
				TotalDebt:     core.ZeroMoney,
			}
			byDebtor[ref] = d
		}
		d.add(item, ComputePenalty(item, today))
	}

	dossiers := make([]Dossier, 0, len(byDebtor))
	for _, d := range byDebtor {
		sort.Slice(d.Items, func(i, j int) bool {
			a, b := d.Items[i].Item, d.Items[j].Item
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate)
			}
			return a.ID < b.ID
		})
		dossiers = append(dossiers, *d)
	}
	sort.Slice(dossiers, func(i, j int) bool {
		if !dossiers[i].TotalDebt.Equal(dossiers[j].TotalDebt) {
			return dossiers[i].TotalDebt.GreaterThan(dossiers[j].TotalDebt)
		}
		return dossiers[i].DebtorRef < dossiers[j].DebtorRef
	})
	return dossiers
}

// BuildDossier returns the dossier for one debtor, or false if nothing of
// theirs is overdue.
func BuildDossier(items []core.BillableItem, ref core.DebtorRef, today core.Date) (Dossier, bool) {
	for _, d := range BuildDossiers(items, today) {
		if d.DebtorRef == ref {
			return d, true
		}
	}
	return Dossier{}, false
}

func (d *Dossier) add(item core.BillableItem, p PenaltyResult) {
	d.Items = append(d.Items, DossierItem{Item: item, Penalty: p})
	d.TotalOriginal = d.TotalOriginal.Add(p.OriginalAmount)
	d.TotalFine = d.TotalFine.Add(p.Fine)
	d.TotalInterest = d.TotalInterest.Add(p.Interest)
	d.TotalDebt = d.TotalDebt.Add(p.CorrectedTotal)
	if p.DaysLate > d.MaxDaysLate {
		d.MaxDaysLate = p.DaysLate
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the headline of the delinquency view.
type Summary struct {
	Debtors       int
	Critical      int
	Items         int
	TotalOriginal core.Money
	TotalFine     core.Money
	TotalInterest core.Money
	TotalDebt     core.Money
}

func Summarize(dossiers []Dossier) Summary {
	s := Summary{
		Debtors:       len(dossiers),
		TotalOriginal: core.ZeroMoney,
		TotalFine:     core.ZeroMoney,
		TotalInterest: core.ZeroMoney,
		TotalDebt:     core.ZeroMoney,
	}
	for _, d := range dossiers {
		if d.Critical() {
			s.Critical++
		}
		s.Items += len(d.Items)
		s.TotalOriginal = s.TotalOriginal.Add(d.TotalOriginal)
		s.TotalFine = s.TotalFine.Add(d.TotalFine)
		s.TotalInterest = s.TotalInterest.Add(d.TotalInterest)
		s.TotalDebt = s.TotalDebt.Add(d.TotalDebt)
	}
	return s
}
