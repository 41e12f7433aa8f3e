package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/condo-ledger/billing"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/core/mocks"
	"github.com/warp/condo-ledger/core/store"
	"github.com/warp/condo-ledger/reporting"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	ctx = context.Background()
	nov = billing.BatchRequest{
		Description: "Condo fee 2025-11",
		Amount:      core.MustMoney("450.00"),
		DueDate:     core.NewDate(2025, time.November, 10),
	}
)

func debtor(ref string, owner bool) core.Debtor {
	return core.Debtor{Ref: core.DebtorRef(ref), Name: "Resident " + ref, Unit: ref, Owner: owner}
}

func generator(s core.ItemStore) *billing.Generator {
	g := billing.NewGenerator(s, nil)
	seq := 0
	g.NewID = func() core.ItemID {
		seq++
		return core.ItemID(fmt.Sprintf("inv-%d", seq))
	}
	return g
}

func existingFor(ref string, req billing.BatchRequest) core.BillableItem {
	return core.BillableItem{
		ID:             core.ItemID("old-" + ref),
		DebtorRef:      core.RefPtr(ref),
		Description:    req.Description,
		OriginalAmount: req.Amount,
		DueDate:        req.DueDate,
		Status:         core.StatusPending,
		CycleKey:       core.CycleKey(req.DueDate),
	}
}

// =============================================================================
// TARGETS
// =============================================================================

func TestFilterTargets(t *testing.T) {
	all := []core.Debtor{debtor("a", true), debtor("b", false), debtor("c", true)}

	tests := []struct {
		target billing.Target
		want   []core.DebtorRef
	}{
		{billing.TargetAll, []core.DebtorRef{"a", "b", "c"}},
		{billing.TargetOwners, []core.DebtorRef{"a", "c"}},
		{billing.TargetNonOwners, []core.DebtorRef{"b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.target), func(t *testing.T) {
			var got []core.DebtorRef
			for _, d := range billing.FilterTargets(all, tt.target) {
				got = append(got, d.Ref)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]billing.Target{
		"":           billing.TargetAll,
		"ALL":        billing.TargetAll,
		"owners":     billing.TargetOwners,
		"non-owners": billing.TargetNonOwners,
		"non_owners": billing.TargetNonOwners,
	} {
		got, err := billing.ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := billing.ParseTarget("tenants")
	assert.ErrorIs(t, err, core.ErrValidation)
}

// =============================================================================
// BATCH GENERATION
// =============================================================================

func TestGenerateBatch_ThreeDebtorsOneExisting(t *testing.T) {
	// GIVEN: three debtors, apt-102 already billed for this cycle
	s := store.NewMemory()
	targets := []core.Debtor{debtor("apt-101", true), debtor("apt-102", true), debtor("apt-103", false)}
	existing := []core.BillableItem{existingFor("apt-102", nov)}

	// WHEN
	res, err := generator(s).GenerateBatch(ctx, targets, nov, existing)

	// THEN: created 2, one "already exists" skip
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, []billing.Skip{{Debtor: "apt-102", Reason: "already exists"}}, res.Skipped)

	stored, err := s.ListItems(ctx, core.CollectionReceivables, core.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, item := range stored {
		assert.Equal(t, core.StatusPending, item.Status)
		assert.Equal(t, "2025-11", item.CycleKey)
		assert.True(t, item.OriginalAmount.Equal(nov.Amount))
		assert.NoError(t, item.Validate())
	}
}

func TestGenerateBatch_Idempotent(t *testing.T) {
	s := store.NewMemory()
	targets := []core.Debtor{debtor("apt-101", true), debtor("apt-102", true), debtor("apt-103", false)}
	gen := generator(s)

	first, err := gen.GenerateBatch(ctx, targets, nov, nil)
	require.NoError(t, err)
	require.Equal(t, 3, first.Created)

	second, err := gen.GenerateBatch(ctx, targets, nov, first.CreatedItems)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Created)
	require.Len(t, second.Skipped, 3)
	for i, skip := range second.Skipped {
		assert.Equal(t, targets[i].Ref, skip.Debtor, "input order")
		assert.Equal(t, billing.ReasonAlreadyExists, skip.Reason)
		assert.False(t, skip.Failed)
	}
}

func TestGenerateBatch_OtherCycleDoesNotDedup(t *testing.T) {
	// An invoice for a different due date or description is a different cycle
	s := store.NewMemory()
	other := existingFor("apt-101", nov)
	other.DueDate = nov.DueDate.AddMonths(-1)
	renamed := existingFor("apt-101", nov)
	renamed.Description = "Extra fee"

	res, err := generator(s).GenerateBatch(ctx, []core.Debtor{debtor("apt-101", true)}, nov, []core.BillableItem{other, renamed})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Skipped)
}

func TestGenerateBatch_DuplicateTarget(t *testing.T) {
	s := store.NewMemory()
	targets := []core.Debtor{debtor("apt-101", true), debtor("apt-101", true)}

	res, err := generator(s).GenerateBatch(ctx, targets, nov, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []billing.Skip{{Debtor: "apt-101", Reason: billing.ReasonDuplicateInput}}, res.Skipped)
}

func TestGenerateBatch_InvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemStore(ctrl) // no calls expected

	tests := []struct {
		name  string
		req   billing.BatchRequest
		field string
	}{
		{"no description", billing.BatchRequest{Amount: nov.Amount, DueDate: nov.DueDate}, "description"},
		{"zero amount", billing.BatchRequest{Description: "x", Amount: core.ZeroMoney, DueDate: nov.DueDate}, "amount"},
		{"negative amount", billing.BatchRequest{Description: "x", Amount: core.MustMoney("-1"), DueDate: nov.DueDate}, "amount"},
		{"no due date", billing.BatchRequest{Description: "x", Amount: nov.Amount}, "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generator(items).GenerateBatch(ctx, []core.Debtor{debtor("a", true)}, tt.req, nil)
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestGenerateBatch_FailuresReportedPerItem(t *testing.T) {
	// GIVEN: the store rejects the write for apt-102 only
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemStore(ctrl)
	items.EXPECT().InsertItem(gomock.Any(), core.CollectionReceivables, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ core.Collection, item core.BillableItem) error {
			if *item.DebtorRef == "apt-102" {
				return errors.New("connection reset")
			}
			return nil
		}).Times(3)

	targets := []core.Debtor{debtor("apt-101", true), debtor("apt-102", true), debtor("apt-103", true)}
	gen := generator(items)
	gen.Concurrency = 3

	// WHEN
	res, err := gen.GenerateBatch(ctx, targets, nov, nil)

	// THEN: batch continues, failure captured on its debtor
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, core.DebtorRef("apt-102"), res.Skipped[0].Debtor)
	assert.True(t, res.Skipped[0].Failed)
	assert.Contains(t, res.Skipped[0].Reason, "connection reset")
	assert.Equal(t, len(targets), res.Created+len(res.Skipped))
}

func TestGenerateBatch_TimeoutReportedAsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemStore(ctrl)
	items.EXPECT().InsertItem(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(wctx context.Context, _ core.Collection, _ core.BillableItem) error {
			<-wctx.Done()
			return wctx.Err()
		})

	gen := generator(items)
	gen.WriteTimeout = 10 * time.Millisecond

	res, err := gen.GenerateBatch(ctx, []core.Debtor{debtor("apt-101", true)}, nov, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	require.Len(t, res.Skipped, 1)
	assert.True(t, res.Skipped[0].Failed)
	assert.Contains(t, res.Skipped[0].Reason, context.DeadlineExceeded.Error())
}

func TestGenerateBatch_OrderPreservedUnderConcurrency(t *testing.T) {
	s := store.NewMemory()
	var targets []core.Debtor
	var existing []core.BillableItem
	for i := 0; i < 40; i++ {
		ref := fmt.Sprintf("apt-%03d", i)
		targets = append(targets, debtor(ref, true))
		if i%3 == 0 {
			existing = append(existing, existingFor(ref, nov))
		}
	}
	gen := generator(s)
	gen.Concurrency = 8

	res, err := gen.GenerateBatch(ctx, targets, nov, existing)

	require.NoError(t, err)
	assert.Equal(t, len(targets), res.Created+len(res.Skipped))
	for i := 1; i < len(res.Skipped); i++ {
		assert.Less(t, string(res.Skipped[i-1].Debtor), string(res.Skipped[i].Debtor))
	}
	for i := 1; i < len(res.CreatedItems); i++ {
		assert.Less(t, string(*res.CreatedItems[i-1].DebtorRef), string(*res.CreatedItems[i].DebtorRef))
	}
}

// =============================================================================
// SERVICE
// =============================================================================

func TestService_RunOwnersOnly(t *testing.T) {
	s := store.NewMemory()
	for _, d := range []core.Debtor{debtor("apt-101", true), debtor("apt-102", false), debtor("apt-103", true)} {
		require.NoError(t, s.SaveDebtor(ctx, d))
	}
	require.NoError(t, s.InsertItem(ctx, core.CollectionReceivables, existingFor("apt-103", nov)))
	svc := billing.NewService(s, s, generator(s), nil)

	res, err := svc.Run(ctx, nov, billing.TargetOwners)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, []billing.Skip{{Debtor: "apt-103", Reason: "already exists"}}, res.Skipped)
	require.Len(t, res.CreatedItems, 1)
	assert.Equal(t, core.DebtorRef("apt-101"), *res.CreatedItems[0].DebtorRef)
}

func TestService_RunStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().ListDebtors(gomock.Any()).Return(nil, errors.New("timeout"))

	_, err := billing.NewService(st, st, nil, nil).Run(ctx, nov, billing.TargetAll)

	assert.True(t, core.IsStoreFailure(err))
}

// =============================================================================
// LEDGER
// =============================================================================

func TestLedger_CreateAndPay(t *testing.T) {
	s := store.NewMemory()
	l := billing.NewLedger(s, nil)

	item, err := l.Create(ctx, core.CollectionPayables, core.BillableItem{
		Description:    "Elevator maintenance",
		OriginalAmount: core.MustMoney("1200.00"),
		DueDate:        core.NewDate(2025, time.October, 5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, core.StatusPending, item.Status)
	assert.Equal(t, "2025-10", item.CycleKey)
	assert.False(t, item.HasDebtor())

	paidOn := core.NewDate(2025, time.October, 4)
	paid, err := l.RecordPayment(ctx, core.CollectionPayables, item.ID, paidOn, core.MustMoney("1200.00"))
	require.NoError(t, err)
	assert.Equal(t, core.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentDate)
	assert.True(t, paid.PaymentDate.Equal(paidOn))
	assert.NoError(t, paid.Validate())

	stored, err := l.Get(ctx, core.CollectionPayables, item.ID)
	require.NoError(t, err)
	assert.Equal(t, paid, stored)

	// WHEN: paid twice
	_, err = l.RecordPayment(ctx, core.CollectionPayables, item.ID, paidOn, core.MustMoney("1200.00"))
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestLedger_CreateNormalizesLegacyStatus(t *testing.T) {
	// GIVEN: A receivable entered with the old client's "atrasado" status
	s := store.NewMemory()
	l := billing.NewLedger(s, nil)
	clock := core.FixedClock{At: time.Date(2025, time.December, 20, 9, 0, 0, 0, time.UTC)}
	reports := reporting.NewService(s, clock, nil)

	// WHEN: Creating it
	item, err := l.Create(ctx, core.CollectionReceivables, core.BillableItem{
		ID:             "rcv-legacy",
		DebtorRef:      core.RefPtr("apt-101"),
		Description:    "Condo fee 2025-10",
		OriginalAmount: core.MustMoney("500.00"),
		DueDate:        core.NewDate(2025, time.October, 10),
		Status:         "atrasado",
	})
	require.NoError(t, err)

	// THEN: It is stored as late and every reader charges the same total
	assert.Equal(t, core.StatusLate, item.Status)
	stored, penalty, err := reports.Penalty(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusLate, stored.Status)
	assert.Equal(t, 71, penalty.DaysLate)

	dossiers, err := reports.Dossiers(ctx)
	require.NoError(t, err)
	require.Len(t, dossiers, 1)
	assert.True(t, dossiers[0].TotalDebt.Equal(penalty.CorrectedTotal), "dossier %s, penalty %s", dossiers[0].TotalDebt, penalty.CorrectedTotal)

	lp, err := reports.Period(ctx, core.MonthPeriod(2025, time.December))
	require.NoError(t, err)
	assert.True(t, lp.OutstandingDelinquencyTotal.Equal(penalty.CorrectedTotal), "outstanding %s, penalty %s", lp.OutstandingDelinquencyTotal, penalty.CorrectedTotal)
}

func TestLedger_CreateAcceptsLegacyPaid(t *testing.T) {
	l := billing.NewLedger(store.NewMemory(), nil)
	paidOn := core.NewDate(2025, time.October, 8)
	amount := core.MustMoney("500.00")

	item, err := l.Create(ctx, core.CollectionReceivables, core.BillableItem{
		Description:    "Condo fee 2025-10",
		OriginalAmount: amount,
		DueDate:        core.NewDate(2025, time.October, 10),
		Status:         "pago",
		PaymentDate:    &paidOn,
		PaymentAmount:  &amount,
	})

	require.NoError(t, err)
	assert.Equal(t, core.StatusPaid, item.Status)

	_, err = l.Create(ctx, core.CollectionReceivables, core.BillableItem{
		Description:    "Condo fee 2025-10",
		OriginalAmount: amount,
		DueDate:        core.NewDate(2025, time.October, 10),
		Status:         "void",
	})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestLedger_Errors(t *testing.T) {
	l := billing.NewLedger(store.NewMemory(), nil)
	on := core.NewDate(2025, time.October, 4)

	_, err := l.RecordPayment(ctx, core.CollectionReceivables, "missing", on, core.MustMoney("1"))
	assert.True(t, core.IsNotFound(err))

	_, err = l.RecordPayment(ctx, core.CollectionReceivables, "x", on, core.ZeroMoney)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = l.RecordPayment(ctx, core.CollectionReceivables, "x", core.Date{}, core.MustMoney("1"))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = l.Create(ctx, core.Collection("invoices"), core.BillableItem{})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = l.Create(ctx, core.CollectionReceivables, core.BillableItem{Description: "fee", DueDate: on})
	assert.ErrorIs(t, err, core.ErrValidation, "amount required")
}

// =============================================================================
// SWEEPER
// =============================================================================

func TestSweeper_MarkOverdue(t *testing.T) {
	s := store.NewMemory()
	today := core.NewDate(2025, time.October, 20)
	add := func(coll core.Collection, id string, due core.Date) {
		item := existingFor("apt-101", nov)
		item.ID = core.ItemID(id)
		item.DueDate = due
		require.NoError(t, s.InsertItem(ctx, coll, item))
	}
	add(core.CollectionReceivables, "past", today.AddDays(-1))
	add(core.CollectionReceivables, "today", today)
	add(core.CollectionPayables, "bill", today.AddDays(-10))

	sw := billing.NewSweeper(s, core.FixedClock{At: today.Time().Add(15 * time.Hour)}, nil)

	marked, err := sw.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	past, _ := s.GetItem(ctx, core.CollectionReceivables, "past")
	assert.Equal(t, core.StatusLate, past.Status)
	due, _ := s.GetItem(ctx, core.CollectionReceivables, "today")
	assert.Equal(t, core.StatusPending, due.Status)

	// Second run has nothing left to mark
	marked, err = sw.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestSweeper_ContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mocks.NewMockItemStore(ctrl)
	today := core.NewDate(2025, time.October, 20)
	old := existingFor("apt-101", nov)
	old.DueDate = today.AddDays(-5)
	a, b := old, old
	a.ID, b.ID = "a", "b"

	items.EXPECT().ListItems(gomock.Any(), core.CollectionReceivables, gomock.Any()).Return([]core.BillableItem{a, b}, nil)
	items.EXPECT().ListItems(gomock.Any(), core.CollectionPayables, gomock.Any()).Return(nil, errors.New("locked"))
	items.EXPECT().UpdateItem(gomock.Any(), core.CollectionReceivables, core.ItemID("a"), gomock.Any()).Return(errors.New("busy"))
	items.EXPECT().UpdateItem(gomock.Any(), core.CollectionReceivables, core.ItemID("b"), gomock.Any()).Return(nil)

	marked, err := billing.NewSweeper(items, core.FixedClock{At: today.Time()}, nil).MarkOverdue(ctx)

	assert.Equal(t, 1, marked)
	require.Error(t, err)
	assert.True(t, core.IsStoreFailure(err))
	assert.Contains(t, err.Error(), "busy")
	assert.Contains(t, err.Error(), "locked")
}
