package core_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/condo-ledger/core"
)

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

func TestDateOf_UsesCalendarDayOfInstantLocation(t *testing.T) {
	// GIVEN: 23:30 on Oct 10 in São Paulo (already Oct 11 in UTC)
	sp := time.FixedZone("BRT", -3*60*60)
	instant := time.Date(2025, time.October, 10, 23, 30, 0, 0, sp)

	// THEN: the calendar day is the local one, anchored to midnight
	d := core.DateOf(instant)
	assert.Equal(t, "2025-10-10", d.String())
	assert.True(t, d.Equal(core.NewDate(2025, time.October, 10)))
}

func TestDateOf_DateOnlyAndDateTimeCompareEqual(t *testing.T) {
	parsed := core.MustDate("2025-10-10")
	fromInstant := core.DateOf(time.Date(2025, time.October, 10, 15, 4, 5, 0, time.Local))
	assert.True(t, parsed.Equal(fromInstant))
}

func TestParseDate_Rejects(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "10/10/2025", "2025-10-10T00:00:00Z"} {
		t.Run(fmt.Sprintf("%q", s), func(t *testing.T) {
			_, err := core.ParseDate(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := core.NewDate(2025, time.November, 30)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-11-30"`, string(data))

	var back core.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))
}

// =============================================================================
// DAY COUNTING
// =============================================================================

func TestDaysLate(t *testing.T) {
	due := core.NewDate(2025, time.October, 10)

	tests := []struct {
		name  string
		today core.Date
		want  int
	}{
		{"due today is not late", due, 0},
		{"day after due is one day late", due.AddDays(1), 1},
		{"ten days later", core.NewDate(2025, time.October, 20), 10},
		{"before due is negative", due.AddDays(-3), -3},
		{"across month end", core.NewDate(2025, time.November, 9), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.DaysLate(due, tt.today))
		})
	}
}

func TestDaysLate_AcrossDSTTransition(t *testing.T) {
	// Dates are anchored to UTC midnight, so a DST change in the caller's
	// zone never shortens or lengthens a day.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	due := core.DateOf(time.Date(2025, time.March, 8, 12, 0, 0, 0, ny))
	today := core.DateOf(time.Date(2025, time.March, 10, 0, 30, 0, 0, ny))
	assert.Equal(t, 2, core.DaysLate(due, today))
}

func TestDaysLate_CenturiesApart(t *testing.T) {
	// GIVEN: A due date further back than a time.Duration can span
	due := core.MustDate("1600-01-01")
	today := core.NewDate(2025, time.October, 20)

	// THEN: The count is exact in both directions
	assert.Equal(t, 155521, core.DaysLate(due, today))
	assert.Equal(t, -155521, core.DaysBetween(today, due))
	assert.Equal(t, 3652058, core.DaysBetween(core.MustDate("0001-01-01"), core.MustDate("9999-12-31")))
}

func TestCycleKey(t *testing.T) {
	assert.Equal(t, "2025-11", core.CycleKey(core.NewDate(2025, time.November, 5)))
	assert.Equal(t, "", core.CycleKey(core.Date{}))
}

func TestToday_UsesInjectedClock(t *testing.T) {
	clock := core.FixedClock{At: time.Date(2025, time.October, 20, 8, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2025-10-20", core.Today(clock).String())
}

// =============================================================================
// MONEY
// =============================================================================

func TestMoney_SumHasNoDrift(t *testing.T) {
	// 0.1 summed 1000 times drifts with float64 but not with decimals
	amounts := make([]core.Money, 1000)
	for i := range amounts {
		amounts[i] = core.MustMoney("0.10")
	}
	assert.True(t, core.Sum(amounts...).Equal(core.MustMoney("100")))
}

func TestMoney_DisplayRoundsOnlyAtPresentation(t *testing.T) {
	third := core.NewMoneyFromInt(5).Mul(core.MustMoney("1").Value.Div(core.MustMoney("3").Value))
	assert.Equal(t, "1.67", third.Display())
	assert.NotEqual(t, "1.67", third.String())
}

func TestParseMoney(t *testing.T) {
	m, err := core.ParseMoney("12,34")
	require.NoError(t, err)
	assert.Equal(t, "12.34", m.Display())

	_, err = core.ParseMoney("abc")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestMoney_JSONAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber core.Money
	require.NoError(t, json.Unmarshal([]byte(`"500.00"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`500`), &fromNumber))
	assert.True(t, fromString.Equal(fromNumber))
}

// =============================================================================
// STATUS ENUMS
// =============================================================================

func TestParseItemStatus(t *testing.T) {
	tests := map[string]core.ItemStatus{
		"pending":  core.StatusPending,
		"PAID":     core.StatusPaid,
		"late":     core.StatusLate,
		"pendente": core.StatusPending,
		"pago":     core.StatusPaid,
		"atrasado": core.StatusLate,
	}
	for in, want := range tests {
		got, err := core.ParseItemStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := core.ParseItemStatus("cancelled")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParseCaseStatus_Exhaustive(t *testing.T) {
	for _, s := range core.CaseStatuses {
		got, err := core.ParseCaseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := core.ParseCaseStatus("archived")
	assert.ErrorIs(t, err, core.ErrValidation)
}

// =============================================================================
// BILLABLE ITEM VALIDATION
// =============================================================================

func validItem() core.BillableItem {
	return core.BillableItem{
		ID:             "rcv-1",
		DebtorRef:      core.RefPtr("apt-101"),
		Description:    "Condo fee",
		OriginalAmount: core.MustMoney("500.00"),
		DueDate:        core.NewDate(2025, time.October, 10),
		Status:         core.StatusPending,
	}
}

func TestBillableItem_Validate(t *testing.T) {
	amount := core.MustMoney("500.00")
	paidOn := core.NewDate(2025, time.October, 12)

	tests := []struct {
		name   string
		mutate func(*core.BillableItem)
		field  string
	}{
		{"valid", func(*core.BillableItem) {}, ""},
		{"zero amount", func(b *core.BillableItem) { b.OriginalAmount = core.ZeroMoney }, "original_amount"},
		{"missing description", func(b *core.BillableItem) { b.Description = " " }, "description"},
		{"missing due date", func(b *core.BillableItem) { b.DueDate = core.Date{} }, "due_date"},
		{"unknown status", func(b *core.BillableItem) { b.Status = "void" }, "status"},
		{"legacy status not normalized", func(b *core.BillableItem) { b.Status = "atrasado" }, "status"},
		{"paid without amount", func(b *core.BillableItem) { b.Status = core.StatusPaid; b.PaymentDate = &paidOn }, "payment_amount"},
		{"amount without paid", func(b *core.BillableItem) { b.PaymentAmount = &amount }, "payment_amount"},
		{"paid without date", func(b *core.BillableItem) { b.Status = core.StatusPaid; b.PaymentAmount = &amount }, "payment_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)
			err := item.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestBillableItem_Normalize(t *testing.T) {
	tests := map[core.ItemStatus]core.ItemStatus{
		"pendente":  core.StatusPending,
		" Atrasado": core.StatusLate,
		"pago":      core.StatusPaid,
		"late":      core.StatusLate,
	}
	for in, want := range tests {
		item := validItem()
		item.Status = in
		require.NoError(t, item.Normalize(), in)
		assert.Equal(t, want, item.Status)
	}

	item := validItem()
	item.Status = "void"
	assert.ErrorIs(t, item.Normalize(), core.ErrValidation)
	assert.Equal(t, core.ItemStatus("void"), item.Status, "left untouched on error")
}

// =============================================================================
// PERIOD
// =============================================================================

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := core.MonthPeriod(2025, time.November)
	assert.Equal(t, "2025-11-30", p.End.String())
	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.Start.AddDays(-1)))
	assert.False(t, p.Contains(p.End.AddDays(1)))
	assert.Equal(t, 30, p.Days())
}

func TestPeriod_Validate(t *testing.T) {
	inverted := core.Period{Start: core.NewDate(2025, 11, 30), End: core.NewDate(2025, 11, 1)}
	assert.ErrorIs(t, inverted.Validate(), core.ErrValidation)
	assert.NoError(t, core.MonthPeriod(2025, time.February).Validate())
}

func TestPeriod_PreviousPeriod(t *testing.T) {
	p := core.Period{Start: core.NewDate(2025, 11, 1), End: core.NewDate(2025, 11, 10)}
	prev := p.PreviousPeriod()
	assert.Equal(t, "[2025-10-22, 2025-10-31]", prev.String())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorKinds(t *testing.T) {
	driverErr := errors.New("disk I/O error")
	storeErr := core.StoreError("insert receivable", driverErr)

	assert.True(t, core.IsStoreFailure(storeErr))
	assert.ErrorIs(t, storeErr, driverErr)
	assert.False(t, core.IsClientError(storeErr))

	notFound := &core.NotFoundError{Kind: "case", ID: "c-1"}
	assert.True(t, core.IsNotFound(fmt.Errorf("transition: %w", notFound)))
	assert.Same(t, error(notFound), core.StoreError("get case", notFound))

	assert.True(t, core.IsClientError(&core.ConflictError{Kind: "case", Reason: "open case exists"}))
	assert.Nil(t, core.StoreError("noop", nil))
}

func TestCasePatch_AppendsNotes(t *testing.T) {
	c := core.CollectionCase{ID: "c-1", Notes: "opened"}
	status := core.CaseProtested
	c = core.CasePatch{Status: &status, AppendNote: "sent to registry"}.Apply(c)
	assert.Equal(t, "opened\nsent to registry", c.Notes)
	assert.Equal(t, core.CaseProtested, c.Status)
}
