/*
Package collections models the protest/collection track opened against a
delinquent debtor.

PURPOSE:
  A CollectionCase records how far the condominium has escalated a debtor's
  dossier: from the first notification letter up to a registry protest and,
  eventually, settlement.

STATES:
  notified -> awaiting_period -> sent_to_registry -> protested -> settled

  The arrows are the intended progression, not a guard. Operators may set
  any status at any time (e.g. to correct a mis-set status); the machine
  only records side effects:
    - entering protested stamps ProtestDate
    - entering settled stamps SettlementDate

OPENING A CASE:
  A case can only be opened when the evidence checklist is complete
  (letter sent, waiting period elapsed, documents attached) and the dossier
  is critical. The debt at opening is a snapshot; interest keeps accruing on
  the underlying items afterwards.

SEE ALSO:
  - checklist.go: Evidence gate
  - metadata.go: Labels and next-action text for display
  - service.go: Store-backed operations
*/
package collections

import (
	"fmt"
	"time"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
)

// noteTimeLayout prefixes every note line.
const noteTimeLayout = "2006-01-02 15:04"

// =============================================================================
// CASE CREATION
// =============================================================================

// NewCase builds the initial case for a dossier. It does not persist.
func NewCase(id core.CaseID, dossier delinquency.Dossier, checklist EvidenceChecklist, now time.Time) (core.CollectionCase, error) {
	if err := checklist.Require(); err != nil {
		return core.CollectionCase{}, err
	}
	if dossier.DebtorRef == "" || len(dossier.Items) == 0 {
		return core.CollectionCase{}, &core.ValidationError{Field: "dossier", Reason: "no overdue items"}
	}
	if !dossier.Critical() {
		return core.CollectionCase{}, &core.ValidationError{
			Field:  "dossier",
			Reason: fmt.Sprintf("not eligible for escalation: %d days late, needs more than %d", dossier.MaxDaysLate, delinquency.StatutoryRule.CriticalAfterDays),
		}
	}

	return core.CollectionCase{
		ID:               id,
		DebtorRef:        dossier.DebtorRef,
		TotalDebtAtOpen:  dossier.TotalDebt,
		Status:           core.CaseNotified,
		NotificationDate: now,
		Notes:            noteLine(now, OpeningNote(dossier)),
	}, nil
}

// OpeningNote records the debt breakdown at the moment a case is opened.
func OpeningNote(d delinquency.Dossier) string {
	return fmt.Sprintf("Case opened: %d overdue item(s), principal %s, fine %s, interest %s, total %s, max %d days late",
		len(d.Items),
		d.TotalOriginal.Display(),
		d.TotalFine.Display(),
		d.TotalInterest.Display(),
		d.TotalDebt.Display(),
		d.MaxDaysLate,
	)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Transition is the effect of moving a case to a new status.
type Transition struct {
	From  core.CaseStatus
	To    core.CaseStatus
	Patch core.CasePatch
}

// Plan computes the patch for moving c to target at now. Any target is
// accepted; only protested and settled carry timestamp side effects.
func Plan(c core.CollectionCase, target core.CaseStatus, now time.Time) (Transition, error) {
	if _, err := core.ParseCaseStatus(string(target)); err != nil {
		return Transition{}, err
	}

	patch := core.CasePatch{Status: &target}
	switch target {
	case core.CaseProtested:
		at := now
		patch.ProtestDate = &at
	case core.CaseSettled:
		at := now
		patch.SettlementDate = &at
	case core.CaseNotified, core.CaseAwaitingPeriod, core.CaseSentToRegistry:
	}
	patch.AppendNote = noteLine(now, fmt.Sprintf("Status changed: %s -> %s", Describe(c.Status).Label, Describe(target).Label))

	return Transition{From: c.Status, To: target, Patch: patch}, nil
}

// Apply returns c moved to target at now.
func Apply(c core.CollectionCase, target core.CaseStatus, now time.Time) (core.CollectionCase, error) {
	tr, err := Plan(c, target, now)
	if err != nil {
		return c, err
	}
	return tr.Patch.Apply(c), nil
}

func noteLine(at time.Time, text string) string {
	return "[" + at.Format(noteTimeLayout) + "] " + text
}
