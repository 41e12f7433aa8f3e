package collections_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/condo-ledger/collections"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/core/mocks"
	"github.com/warp/condo-ledger/core/store"
	"github.com/warp/condo-ledger/delinquency"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	now   = time.Date(2025, time.October, 20, 9, 30, 0, 0, time.UTC)
	today = core.DateOf(now)
	full  = collections.EvidenceChecklist{LetterSent: true, PeriodElapsed: true, DocumentsAttached: true}
)

func overdue(id, debtor, amount string, daysLate int) core.BillableItem {
	due := today.AddDays(-daysLate)
	return core.BillableItem{
		ID:             core.ItemID(id),
		DebtorRef:      core.RefPtr(debtor),
		Description:    "Condo fee",
		OriginalAmount: core.MustMoney(amount),
		DueDate:        due,
		Status:         core.StatusLate,
		CycleKey:       core.CycleKey(due),
	}
}

func criticalDossier(t *testing.T, debtor string) delinquency.Dossier {
	t.Helper()
	d, ok := delinquency.BuildDossier([]core.BillableItem{
		overdue("r1", debtor, "500.00", 45),
		overdue("r2", debtor, "500.00", 15),
	}, core.DebtorRef(debtor), today)
	require.True(t, ok)
	require.True(t, d.Critical())
	return d
}

func newService(s *store.Memory) *collections.Service {
	svc := collections.NewService(s, s, core.FixedClock{At: now}, nil)
	seq := 0
	svc.NewID = func() core.CaseID {
		seq++
		return core.CaseID("case-" + string(rune('0'+seq)))
	}
	return svc
}

// =============================================================================
// CHECKLIST
// =============================================================================

func TestChecklist(t *testing.T) {
	tests := []struct {
		name    string
		list    collections.EvidenceChecklist
		missing []string
	}{
		{"complete", full, nil},
		{"no letter", collections.EvidenceChecklist{PeriodElapsed: true, DocumentsAttached: true}, []string{"letter_sent"}},
		{"period running", collections.EvidenceChecklist{LetterSent: true, DocumentsAttached: true}, []string{"period_elapsed"}},
		{"nothing", collections.EvidenceChecklist{}, []string{"letter_sent", "period_elapsed", "documents_attached"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.list.Missing())
			assert.Equal(t, tt.missing == nil, tt.list.Satisfied())
			assert.True(t, tt.list.AmountComputed())
			if tt.missing == nil {
				assert.NoError(t, tt.list.Require())
			} else {
				assert.ErrorIs(t, tt.list.Require(), core.ErrValidation)
			}
		})
	}
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestNewCase(t *testing.T) {
	d := criticalDossier(t, "apt-101")

	c, err := collections.NewCase("c1", d, full, now)

	require.NoError(t, err)
	assert.Equal(t, core.CaseNotified, c.Status)
	assert.Equal(t, now, c.NotificationDate)
	assert.True(t, c.TotalDebtAtOpen.Equal(d.TotalDebt))
	assert.Nil(t, c.ProtestDate)
	assert.Nil(t, c.SettlementDate)
	assert.True(t, strings.HasPrefix(c.Notes, "[2025-10-20 09:30] Case opened: 2 overdue item(s)"))
	assert.Contains(t, c.Notes, "total "+d.TotalDebt.Display())
}

func TestNewCase_RejectsNonCritical(t *testing.T) {
	d, ok := delinquency.BuildDossier([]core.BillableItem{overdue("r1", "apt-102", "300.00", 5)}, "apt-102", today)
	require.True(t, ok)

	_, err := collections.NewCase("c1", d, full, now)

	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPlan_StampsAndNotes(t *testing.T) {
	tests := []struct {
		target     core.CaseStatus
		protest    bool
		settlement bool
		note       string
	}{
		{core.CaseAwaitingPeriod, false, false, "Status changed: Notified -> Awaiting period"},
		{core.CaseSentToRegistry, false, false, "Status changed: Notified -> Sent to registry"},
		{core.CaseProtested, true, false, "Status changed: Notified -> Protested"},
		{core.CaseSettled, false, true, "Status changed: Notified -> Settled"},
		{core.CaseNotified, false, false, "Status changed: Notified -> Notified"},
	}

	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			c, err := collections.NewCase("c1", criticalDossier(t, "apt-101"), full, now)
			require.NoError(t, err)
			later := now.Add(48 * time.Hour)

			moved, err := collections.Apply(c, tt.target, later)

			require.NoError(t, err)
			assert.Equal(t, tt.target, moved.Status)
			assert.Equal(t, tt.protest, moved.ProtestDate != nil)
			assert.Equal(t, tt.settlement, moved.SettlementDate != nil)
			if tt.protest {
				assert.Equal(t, later, *moved.ProtestDate)
			}
			assert.True(t, strings.HasPrefix(moved.Notes, c.Notes), "notes are append-only")
			assert.True(t, strings.HasSuffix(moved.Notes, "[2025-10-22 09:30] "+tt.note))
		})
	}
}

func TestPlan_OutOfOrderAllowed(t *testing.T) {
	// GIVEN: a case already protested
	c, err := collections.NewCase("c1", criticalDossier(t, "apt-101"), full, now)
	require.NoError(t, err)
	c, err = collections.Apply(c, core.CaseProtested, now)
	require.NoError(t, err)

	// WHEN: an operator moves it back to awaiting_period
	back, err := collections.Apply(c, core.CaseAwaitingPeriod, now.Add(time.Hour))

	// THEN: allowed, protest timestamp kept
	require.NoError(t, err)
	assert.Equal(t, core.CaseAwaitingPeriod, back.Status)
	assert.NotNil(t, back.ProtestDate)
}

func TestPlan_UnknownStatus(t *testing.T) {
	c, err := collections.NewCase("c1", criticalDossier(t, "apt-101"), full, now)
	require.NoError(t, err)

	_, err = collections.Plan(c, core.CaseStatus("archived"), now)

	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestStatuses(t *testing.T) {
	infos := collections.Statuses()
	require.Len(t, infos, len(core.CaseStatuses))
	for i, info := range infos {
		assert.Equal(t, core.CaseStatuses[i], info.Status)
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.NextAction)
	}
	assert.Equal(t, "Sent to registry", collections.Describe(core.CaseSentToRegistry).Label)
	assert.Equal(t, "mystery", collections.Describe("mystery").Label)
}

// =============================================================================
// SERVICE
// =============================================================================

func TestService_OpenRejectedChecklistCreatesNothing(t *testing.T) {
	// GIVEN: letter sent, documents attached, but the period is still running
	s := store.NewMemory()
	svc := newService(s)
	list := collections.EvidenceChecklist{LetterSent: true, PeriodElapsed: false, DocumentsAttached: true}

	// WHEN
	_, err := svc.Open(context.Background(), criticalDossier(t, "apt-101"), list)

	// THEN: rejected and nothing stored
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Contains(t, err.Error(), "period_elapsed")
	cases, err := s.ListCases(context.Background(), core.CaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestService_OpenTransitionAndNotes(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	svc := newService(s)

	c, err := svc.Open(ctx, criticalDossier(t, "apt-101"), full)
	require.NoError(t, err)
	assert.Equal(t, core.CaseID("case-1"), c.ID)

	moved, err := svc.Transition(ctx, c.ID, core.CaseProtested)
	require.NoError(t, err)
	assert.Equal(t, core.CaseProtested, moved.Status)
	require.NotNil(t, moved.ProtestDate)

	noted, err := svc.AddNote(ctx, c.ID, "  debtor called, promised payment  ")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(noted.Notes, "[2025-10-20 09:30] debtor called, promised payment"))

	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, noted, stored)
	assert.Len(t, strings.Split(stored.Notes, "\n"), 3)

	_, err = svc.AddNote(ctx, c.ID, "   ")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestService_OneOpenCasePerDebtor(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	svc := newService(s)
	d := criticalDossier(t, "apt-101")

	first, err := svc.Open(ctx, d, full)
	require.NoError(t, err)

	_, err = svc.Open(ctx, d, full)
	assert.ErrorIs(t, err, core.ErrConflict)

	// Once settled a new case may be opened
	_, err = svc.Transition(ctx, first.ID, core.CaseSettled)
	require.NoError(t, err)
	second, err := svc.Open(ctx, d, full)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	open, err := svc.List(ctx, core.CaseFilter{Statuses: []core.CaseStatus{core.CaseNotified}})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestService_ConcurrentOpenForDebtor(t *testing.T) {
	// GIVEN: One critical debtor and eight operators opening a case at once
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.InsertItem(ctx, core.CollectionReceivables, overdue("r1", "apt-101", "500.00", 40)))
	svc := collections.NewService(s, s, core.FixedClock{At: now}, nil)

	var (
		wg        sync.WaitGroup
		opened    atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.OpenForDebtor(ctx, "apt-101", full)
			switch {
			case err == nil:
				opened.Add(1)
			case errors.Is(err, core.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	// THEN: Exactly one case, every other request a conflict
	assert.Equal(t, int32(1), opened.Load())
	assert.Equal(t, int32(7), conflicts.Load())
	cases, err := s.ListCases(ctx, core.CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestService_OpenConflictFromStore(t *testing.T) {
	// GIVEN: The open-case check passes but another request wins the insert
	ctrl := gomock.NewController(t)
	cases := mocks.NewMockCaseStore(ctrl)
	svc := collections.NewService(cases, mocks.NewMockItemStore(ctrl), core.FixedClock{At: now}, nil)

	cases.EXPECT().ListCases(gomock.Any(), gomock.Any()).Return(nil, nil)
	cases.EXPECT().InsertCase(gomock.Any(), gomock.Any()).
		Return(&core.ConflictError{Kind: "case", ID: "other", Reason: "debtor apt-101 already has an open case"})

	// WHEN
	_, err := svc.Open(context.Background(), criticalDossier(t, "apt-101"), full)

	// THEN: Reported as a conflict, not a store failure
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.False(t, core.IsStoreFailure(err))
}

func TestService_OpenForDebtor(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	for _, item := range []core.BillableItem{
		overdue("r1", "apt-101", "500.00", 40),
		overdue("r2", "apt-102", "500.00", 3),
	} {
		require.NoError(t, s.InsertItem(ctx, core.CollectionReceivables, item))
	}
	svc := newService(s)

	c, err := svc.OpenForDebtor(ctx, "apt-101", full)
	require.NoError(t, err)
	assert.Equal(t, core.DebtorRef("apt-101"), c.DebtorRef)

	_, err = svc.OpenForDebtor(ctx, "apt-102", full)
	assert.ErrorIs(t, err, core.ErrValidation, "warning-level dossier cannot escalate")

	_, err = svc.OpenForDebtor(ctx, "apt-999", full)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestService_TransitionMissingCase(t *testing.T) {
	svc := newService(store.NewMemory())
	_, err := svc.Transition(context.Background(), "nope", core.CaseSettled)
	assert.True(t, core.IsNotFound(err))
}

func TestService_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	cases := mocks.NewMockCaseStore(ctrl)
	items := mocks.NewMockItemStore(ctrl)
	svc := collections.NewService(cases, items, core.FixedClock{At: now}, nil)

	cases.EXPECT().ListCases(gomock.Any(), gomock.Any()).Return(nil, nil)
	cases.EXPECT().InsertCase(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.Open(context.Background(), criticalDossier(t, "apt-101"), full)

	require.Error(t, err)
	assert.True(t, core.IsStoreFailure(err))
	assert.Contains(t, err.Error(), "disk full")
}
