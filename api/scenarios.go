/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	condominium data for demos and UI development. Dates are relative to
	the handler's clock so every scenario stays meaningful whenever it is
	loaded.

AVAILABLE SCENARIOS:

	fresh-building:       Residents only, ready for a first batch of fees
	mixed-delinquency:    Three months of fees, some paid, some late, expenses
	critical-escalation:  One resident far behind with an open protest case

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Register residents
 3. Issue monthly fees through the batch generator
 4. Record payments and expenses through the ledger
 5. Optionally open and advance collection cases

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-delinquency"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to loadScenario

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Service wiring
  - billing/batch.go: Batch generation used for monthly fees
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/condo-ledger/billing"
	"github.com/warp/condo-ledger/collections"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/logger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-building",
		Name:        "Fresh Building",
		Description: "Six residents (owners and tenants), no charges yet",
	},
	{
		ID:          "mixed-delinquency",
		Name:        "Mixed Delinquency",
		Description: "Three monthly fees per resident, partial payments, late items and expenses",
	},
	{
		ID:          "critical-escalation",
		Name:        "Critical Escalation",
		Description: "One resident months behind with a collection case sent to the protest registry",
	},
}

var demoResidents = []core.Debtor{
	{Ref: "apt-101", Name: "Helena Prado", Unit: "101", Owner: true, Email: "helena.prado@example.com"},
	{Ref: "apt-102", Name: "Marcos Teixeira", Unit: "102", Owner: true, Email: "marcos.t@example.com"},
	{Ref: "apt-201", Name: "Lucia Andrade", Unit: "201", Owner: false, Email: "lucia.andrade@example.com"},
	{Ref: "apt-202", Name: "Rafael Moura", Unit: "202", Owner: true},
	{Ref: "apt-301", Name: "Beatriz Campos", Unit: "301", Owner: false, Email: "bia.campos@example.com"},
	{Ref: "apt-302", Name: "Otavio Lima", Unit: "302", Owner: true, Email: "otavio.lima@example.com"},
}

const demoFee = "650.00"

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		writeDomainError(w, r, "Failed to load scenario", err)
		return
	}

	logger.FromContext(r.Context()).Info("scenario loaded", zap.String("scenario", req.ScenarioID))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetStore clears all data.
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeDomainError(w, r, "Failed to reset store", err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "fresh-building":
		load = h.loadFreshBuildingScenario
	case "mixed-delinquency":
		load = h.loadMixedDelinquencyScenario
	case "critical-escalation":
		load = h.loadCriticalEscalationScenario
	default:
		return &core.NotFoundError{Kind: "scenario", ID: id}
	}

	if err := h.reset(ctx); err != nil {
		return err
	}
	if err := load(ctx); err != nil {
		return err
	}
	h.setScenario(id)
	return nil
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		return &core.ValidationError{Field: "store", Reason: "backend does not support reset"}
	}
	return core.StoreError("reset", resetter.Reset(ctx))
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) saveResidents(ctx context.Context) error {
	for _, d := range demoResidents {
		if err := h.Store.SaveDebtor(ctx, d); err != nil {
			return core.StoreError("save debtor", err)
		}
	}
	return nil
}

// issueFee bills every resident for the month whose due date is due.
func (h *Handler) issueFee(ctx context.Context, due core.Date) error {
	res, err := h.Billing.Run(ctx, billing.BatchRequest{
		Description: fmt.Sprintf("Condo fee %s", core.CycleKey(due)),
		Amount:      core.MustMoney(demoFee),
		DueDate:     due,
	}, billing.TargetAll)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		if s.Failed {
			return fmt.Errorf("issue fee for %s: %s", s.Debtor, s.Reason)
		}
	}
	return nil
}

// pay records payment of the fee due on due for ref, paid daysAfter days
// after the due date with the given amount.
func (h *Handler) pay(ctx context.Context, ref string, due core.Date, daysAfter int, amount string) error {
	items, err := h.Ledger.List(ctx, core.CollectionReceivables, core.ItemFilter{
		DebtorRef: core.RefPtr(ref),
		DueDate:   &due,
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return &core.NotFoundError{Kind: "receivable", ID: ref + "@" + due.String()}
	}
	_, err = h.Ledger.RecordPayment(ctx, core.CollectionReceivables, items[0].ID, due.AddDays(daysAfter), core.MustMoney(amount))
	return err
}

func (h *Handler) expense(ctx context.Context, description, amount string, due core.Date, paidOn *core.Date) error {
	item, err := h.Ledger.Create(ctx, core.CollectionPayables, core.BillableItem{
		Description:    description,
		OriginalAmount: core.MustMoney(amount),
		DueDate:        due,
	})
	if err != nil || paidOn == nil {
		return err
	}
	_, err = h.Ledger.RecordPayment(ctx, core.CollectionPayables, item.ID, *paidOn, item.OriginalAmount)
	return err
}

// feeDueDates returns the 10th of the last n months, oldest first, counting
// the current month.
func feeDueDates(today core.Date, n int) []core.Date {
	dates := make([]core.Date, n)
	first := core.NewDate(today.Year(), today.Month(), 10)
	for i := 0; i < n; i++ {
		dates[i] = first.AddMonths(i - n + 1)
	}
	return dates
}

// loadFreshBuildingScenario registers residents only.
func (h *Handler) loadFreshBuildingScenario(ctx context.Context) error {
	return h.saveResidents(ctx)
}

// loadMixedDelinquencyScenario bills three months and pays most of it.
func (h *Handler) loadMixedDelinquencyScenario(ctx context.Context) error {
	if err := h.saveResidents(ctx); err != nil {
		return err
	}

	today := core.Today(h.Clock)
	dues := feeDueDates(today, 3)
	for _, due := range dues {
		if err := h.issueFee(ctx, due); err != nil {
			return err
		}
	}

	// Owners of 101 and 302 are always on time; 102 paid the oldest fee
	// late with fine and interest; 201 and 301 paid nothing.
	payments := []struct {
		ref       string
		due       core.Date
		daysAfter int
		amount    string
	}{
		{"apt-101", dues[0], -2, demoFee},
		{"apt-101", dues[1], 0, demoFee},
		{"apt-302", dues[0], -5, demoFee},
		{"apt-302", dues[1], -1, demoFee},
		{"apt-102", dues[0], 12, "667.60"},
		{"apt-202", dues[0], 0, demoFee},
	}
	for _, p := range payments {
		if p.due.After(today) {
			continue
		}
		if err := h.pay(ctx, p.ref, p.due, p.daysAfter, p.amount); err != nil {
			return err
		}
	}

	paid := dues[1].AddDays(5)
	if err := h.expense(ctx, "Cleaning services", "1800.00", dues[1].AddDays(5), &paid); err != nil {
		return err
	}
	elevator := dues[0].AddDays(10)
	if err := h.expense(ctx, "Elevator maintenance", "950.00", elevator, &elevator); err != nil {
		return err
	}
	if err := h.expense(ctx, "Water bill", "1320.45", today.AddDays(15), nil); err != nil {
		return err
	}

	_, err := h.Sweeper.MarkOverdue(ctx)
	return err
}

// loadCriticalEscalationScenario leaves apt-201 six months behind and takes
// the case all the way to the protest registry.
func (h *Handler) loadCriticalEscalationScenario(ctx context.Context) error {
	if err := h.saveResidents(ctx); err != nil {
		return err
	}

	today := core.Today(h.Clock)
	dues := feeDueDates(today, 6)
	for _, due := range dues {
		if err := h.issueFee(ctx, due); err != nil {
			return err
		}
	}
	for _, d := range demoResidents {
		if d.Ref == "apt-201" {
			continue
		}
		for _, due := range dues {
			if due.After(today) {
				continue
			}
			if err := h.pay(ctx, string(d.Ref), due, 0, demoFee); err != nil {
				return err
			}
		}
	}
	if _, err := h.Sweeper.MarkOverdue(ctx); err != nil {
		return err
	}

	c, err := h.Collections.OpenForDebtor(ctx, "apt-201", collections.EvidenceChecklist{
		LetterSent:        true,
		PeriodElapsed:     true,
		DocumentsAttached: true,
	})
	if err != nil {
		return err
	}
	for _, status := range []core.CaseStatus{core.CaseAwaitingPeriod, core.CaseSentToRegistry} {
		if _, err := h.Collections.Transition(ctx, c.ID, status); err != nil {
			return err
		}
	}
	_, err = h.Collections.AddNote(ctx, c.ID, "Registry filing number 2291/B, awaiting protest record")
	return err
}
