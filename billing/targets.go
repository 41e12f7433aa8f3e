package billing

import (
	"fmt"
	"strings"

	"github.com/warp/condo-ledger/core"
)

// Target selects which debtors a batch is issued to.
type Target string

const (
	TargetAll       Target = "all"
	TargetOwners    Target = "owners"
	TargetNonOwners Target = "non_owners"
)

// ParseTarget accepts the target names; empty means all.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(s))) {
	case "", TargetAll:
		return TargetAll, nil
	case TargetOwners:
		return TargetOwners, nil
	case TargetNonOwners, "non-owners", "nonowners":
		return TargetNonOwners, nil
	}
	return "", &core.ValidationError{Field: "target", Reason: fmt.Sprintf("unknown target %q", s)}
}

// FilterTargets keeps the debtors selected by t, in input order.
func FilterTargets(debtors []core.Debtor, t Target) []core.Debtor {
	out := make([]core.Debtor, 0, len(debtors))
	for _, d := range debtors {
		switch t {
		case TargetOwners:
			if !d.Owner {
				continue
			}
		case TargetNonOwners:
			if d.Owner {
				continue
			}
		case TargetAll:
		}
		out = append(out, d)
	}
	return out
}
