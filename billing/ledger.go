package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/metrics"
)

// Ledger handles single-item entry and payment recording for both
// collections.
type Ledger struct {
	Store core.ItemStore
	NewID func() core.ItemID
	Log   *zap.Logger
}

func NewLedger(store core.ItemStore, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		Store: store,
		NewID: func() core.ItemID { return core.ItemID(uuid.NewString()) },
		Log:   log.Named("ledger"),
	}
}

// Create inserts a manually entered item. A missing ID or cycle key is
// filled in; the item is validated before the store is called.
func (l *Ledger) Create(ctx context.Context, coll core.Collection, item core.BillableItem) (core.BillableItem, error) {
	if err := checkCollection(coll); err != nil {
		return core.BillableItem{}, err
	}
	if strings.TrimSpace(string(item.ID)) == "" {
		item.ID = l.NewID()
	}
	if item.Status == "" {
		item.Status = core.StatusPending
	}
	if item.CycleKey == "" && !item.DueDate.IsZero() {
		item.CycleKey = core.CycleKey(item.DueDate)
	}
	if item.DebtorRef != nil && *item.DebtorRef == "" {
		item.DebtorRef = nil
	}
	if err := item.Normalize(); err != nil {
		return core.BillableItem{}, err
	}
	if err := item.Validate(); err != nil {
		return core.BillableItem{}, err
	}

	if err := l.Store.InsertItem(ctx, coll, item); err != nil {
		return core.BillableItem{}, core.StoreError("insert item", err)
	}
	l.Log.Info("item created",
		zap.String("collection", string(coll)),
		zap.String("item_id", string(item.ID)),
		zap.String("amount", item.OriginalAmount.Display()),
		zap.String("due_date", item.DueDate.String()),
	)
	return item, nil
}

func (l *Ledger) Get(ctx context.Context, coll core.Collection, id core.ItemID) (core.BillableItem, error) {
	if err := checkCollection(coll); err != nil {
		return core.BillableItem{}, err
	}
	item, err := l.Store.GetItem(ctx, coll, id)
	if err != nil {
		return core.BillableItem{}, core.StoreError("get item", err)
	}
	return item, nil
}

func (l *Ledger) List(ctx context.Context, coll core.Collection, filter core.ItemFilter) ([]core.BillableItem, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	items, err := l.Store.ListItems(ctx, coll, filter)
	if err != nil {
		return nil, core.StoreError("list items", err)
	}
	return items, nil
}

// RecordPayment marks an item paid. It is the only way an item's payment
// fields change. Paying an already paid item is a ConflictError.
func (l *Ledger) RecordPayment(ctx context.Context, coll core.Collection, id core.ItemID, on core.Date, amount core.Money) (core.BillableItem, error) {
	if err := checkCollection(coll); err != nil {
		return core.BillableItem{}, err
	}
	if on.IsZero() {
		return core.BillableItem{}, &core.ValidationError{Field: "payment_date", Reason: "required"}
	}
	if !amount.IsPositive() {
		return core.BillableItem{}, &core.ValidationError{Field: "payment_amount", Reason: "must be greater than zero"}
	}

	item, err := l.Store.GetItem(ctx, coll, id)
	if err != nil {
		return core.BillableItem{}, core.StoreError("get item", err)
	}
	if item.Status == core.StatusPaid {
		return core.BillableItem{}, &core.ConflictError{
			Kind:   "item",
			ID:     string(id),
			Reason: fmt.Sprintf("already paid on %s", item.PaymentDate),
		}
	}

	paid := core.StatusPaid
	patch := core.ItemPatch{Status: &paid, PaymentDate: &on, PaymentAmount: &amount}
	if err := l.Store.UpdateItem(ctx, coll, id, patch); err != nil {
		return core.BillableItem{}, core.StoreError("update item", err)
	}

	metrics.ObservePayment(string(coll))
	l.Log.Info("payment recorded",
		zap.String("collection", string(coll)),
		zap.String("item_id", string(id)),
		zap.String("amount", amount.Display()),
		zap.String("date", on.String()),
	)
	return patch.Apply(item), nil
}

func checkCollection(coll core.Collection) error {
	if !coll.Valid() {
		return &core.ValidationError{Field: "collection", Reason: fmt.Sprintf("unknown collection %q", coll)}
	}
	return nil
}
