package collections

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
	"github.com/warp/condo-ledger/observability/metrics"
)

// Service runs the state machine against the data store.
type Service struct {
	Cases core.CaseStore
	Items core.ItemStore
	Clock core.Clock
	Log   *zap.Logger

	// NewID allocates case IDs. Defaults to random UUIDs.
	NewID func() core.CaseID
}

func NewService(cases core.CaseStore, items core.ItemStore, clock core.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Cases: cases,
		Items: items,
		Clock: clock,
		Log:   log.Named("collections"),
		NewID: func() core.CaseID { return core.CaseID(uuid.NewString()) },
	}
}

// =============================================================================
// OPENING
// =============================================================================

// Open creates a case for dossier. The checklist is checked before anything
// else; an incomplete checklist never touches the store.
func (s *Service) Open(ctx context.Context, dossier delinquency.Dossier, checklist EvidenceChecklist) (core.CollectionCase, error) {
	if err := checklist.Require(); err != nil {
		return core.CollectionCase{}, err
	}

	existing, err := s.Cases.ListCases(ctx, core.CaseFilter{DebtorRef: &dossier.DebtorRef})
	if err != nil {
		return core.CollectionCase{}, core.StoreError("list cases", err)
	}
	for _, c := range existing {
		if c.Open() {
			return core.CollectionCase{}, &core.ConflictError{
				Kind:   "case",
				ID:     string(c.ID),
				Reason: fmt.Sprintf("debtor %s already has an open case", dossier.DebtorRef),
			}
		}
	}

	c, err := NewCase(s.NewID(), dossier, checklist, s.Clock.Now())
	if err != nil {
		return core.CollectionCase{}, err
	}
	if err := s.Cases.InsertCase(ctx, c); err != nil {
		return core.CollectionCase{}, core.StoreError("insert case", err)
	}

	metrics.ObserveCaseOpened()
	s.Log.Info("collection case opened",
		zap.String("case_id", string(c.ID)),
		zap.String("debtor", string(c.DebtorRef)),
		zap.String("total_debt", c.TotalDebtAtOpen.Display()),
		zap.Int("max_days_late", dossier.MaxDaysLate),
	)
	return c, nil
}

// OpenForDebtor builds the debtor's dossier from current receivables and
// opens a case for it.
func (s *Service) OpenForDebtor(ctx context.Context, ref core.DebtorRef, checklist EvidenceChecklist) (core.CollectionCase, error) {
	if err := checklist.Require(); err != nil {
		return core.CollectionCase{}, err
	}
	if strings.TrimSpace(string(ref)) == "" {
		return core.CollectionCase{}, &core.ValidationError{Field: "debtor_ref", Reason: "required"}
	}

	items, err := s.Items.ListItems(ctx, core.CollectionReceivables, core.ItemFilter{
		DebtorRef: &ref,
		Statuses:  []core.ItemStatus{core.StatusPending, core.StatusLate},
	})
	if err != nil {
		return core.CollectionCase{}, core.StoreError("list receivables", err)
	}

	dossier, ok := delinquency.BuildDossier(items, ref, core.Today(s.Clock))
	if !ok {
		return core.CollectionCase{}, &core.ValidationError{Field: "dossier", Reason: fmt.Sprintf("debtor %s has no overdue items", ref)}
	}
	return s.Open(ctx, dossier, checklist)
}

// =============================================================================
// TRANSITIONS AND NOTES
// =============================================================================

// Transition moves a case to target. Out-of-order moves are allowed.
func (s *Service) Transition(ctx context.Context, id core.CaseID, target core.CaseStatus) (core.CollectionCase, error) {
	if _, err := core.ParseCaseStatus(string(target)); err != nil {
		return core.CollectionCase{}, err
	}

	c, err := s.Cases.GetCase(ctx, id)
	if err != nil {
		return core.CollectionCase{}, core.StoreError("get case", err)
	}

	tr, err := Plan(c, target, s.Clock.Now())
	if err != nil {
		return core.CollectionCase{}, err
	}
	if err := s.Cases.UpdateCase(ctx, id, tr.Patch); err != nil {
		return core.CollectionCase{}, core.StoreError("update case", err)
	}

	metrics.ObserveCaseTransition(string(tr.To))
	s.Log.Info("collection case status changed",
		zap.String("case_id", string(id)),
		zap.String("from", string(tr.From)),
		zap.String("to", string(tr.To)),
	)
	return tr.Patch.Apply(c), nil
}

// AddNote appends an operator note to a case.
func (s *Service) AddNote(ctx context.Context, id core.CaseID, text string) (core.CollectionCase, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.CollectionCase{}, &core.ValidationError{Field: "note", Reason: "empty"}
	}

	c, err := s.Cases.GetCase(ctx, id)
	if err != nil {
		return core.CollectionCase{}, core.StoreError("get case", err)
	}

	patch := core.CasePatch{AppendNote: noteLine(s.Clock.Now(), text)}
	if err := s.Cases.UpdateCase(ctx, id, patch); err != nil {
		return core.CollectionCase{}, core.StoreError("update case", err)
	}
	return patch.Apply(c), nil
}

func (s *Service) Get(ctx context.Context, id core.CaseID) (core.CollectionCase, error) {
	c, err := s.Cases.GetCase(ctx, id)
	if err != nil {
		return core.CollectionCase{}, core.StoreError("get case", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, filter core.CaseFilter) ([]core.CollectionCase, error) {
	cases, err := s.Cases.ListCases(ctx, filter)
	if err != nil {
		return nil, core.StoreError("list cases", err)
	}
	return cases, nil
}
