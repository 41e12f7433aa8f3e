package collections

import "github.com/warp/condo-ledger/core"

// StatusInfo is display metadata for a case status. It has no effect on
// which transitions are allowed.
type StatusInfo struct {
	Status      core.CaseStatus `json:"status"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	NextAction  string          `json:"next_action"`
}

var statusInfo = map[core.CaseStatus]StatusInfo{
	core.CaseNotified: {
		Status:      core.CaseNotified,
		Label:       "Notified",
		Description: "Debtor received the formal collection letter.",
		NextAction:  "Wait for the response period to run out before escalating.",
	},
	core.CaseAwaitingPeriod: {
		Status:      core.CaseAwaitingPeriod,
		Label:       "Awaiting period",
		Description: "The response period granted in the letter is running.",
		NextAction:  "When the period ends without payment, send the dossier to the protest registry.",
	},
	core.CaseSentToRegistry: {
		Status:      core.CaseSentToRegistry,
		Label:       "Sent to registry",
		Description: "Dossier and supporting documents were filed with the protest registry.",
		NextAction:  "Follow up with the registry until the protest is recorded.",
	},
	core.CaseProtested: {
		Status:      core.CaseProtested,
		Label:       "Protested",
		Description: "The debt has been formally protested.",
		NextAction:  "Negotiate settlement or hand over to legal collection.",
	},
	core.CaseSettled: {
		Status:      core.CaseSettled,
		Label:       "Settled",
		Description: "The debt was paid or otherwise settled.",
		NextAction:  "Request cancellation of the protest if one was recorded.",
	},
}

// Describe returns the metadata for s. Unknown statuses get a bare label.
func Describe(s core.CaseStatus) StatusInfo {
	if info, ok := statusInfo[s]; ok {
		return info
	}
	return StatusInfo{Status: s, Label: string(s)}
}

// Statuses returns metadata for every status in progression order.
func Statuses() []StatusInfo {
	out := make([]StatusInfo, len(core.CaseStatuses))
	for i, s := range core.CaseStatuses {
		out[i] = Describe(s)
	}
	return out
}
