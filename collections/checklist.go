package collections

import (
	"strings"

	"github.com/warp/condo-ledger/core"
)

// EvidenceChecklist gates case creation. It is transient, never persisted.
type EvidenceChecklist struct {
	LetterSent        bool `json:"letter_sent"`
	PeriodElapsed     bool `json:"period_elapsed"`
	DocumentsAttached bool `json:"documents_attached"`
}

// AmountComputed is always true: the engine computes the amount itself.
func (c EvidenceChecklist) AmountComputed() bool { return true }

// Satisfied reports whether a case may be opened.
func (c EvidenceChecklist) Satisfied() bool {
	return c.LetterSent && c.PeriodElapsed && c.DocumentsAttached && c.AmountComputed()
}

// Missing lists the unmet gates in checklist order.
func (c EvidenceChecklist) Missing() []string {
	var missing []string
	if !c.LetterSent {
		missing = append(missing, "letter_sent")
	}
	if !c.PeriodElapsed {
		missing = append(missing, "period_elapsed")
	}
	if !c.DocumentsAttached {
		missing = append(missing, "documents_attached")
	}
	return missing
}

// Require returns a ValidationError naming the unmet gates, if any.
func (c EvidenceChecklist) Require() error {
	if c.Satisfied() {
		return nil
	}
	return &core.ValidationError{Field: "checklist", Reason: "incomplete: " + strings.Join(c.Missing(), ", ")}
}
