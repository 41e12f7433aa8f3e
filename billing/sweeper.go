package billing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/metrics"
)

// Sweeper moves pending items past their due date to late. Penalties do not
// depend on the late status; it exists for listing and filtering.
type Sweeper struct {
	Store core.ItemStore
	Clock core.Clock
	Log   *zap.Logger
}

func NewSweeper(store core.ItemStore, clock core.Clock, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{Store: store, Clock: clock, Log: log.Named("sweeper")}
}

// MarkOverdue returns how many items it marked late. A failed update does
// not stop the sweep; all failures are returned joined.
func (s *Sweeper) MarkOverdue(ctx context.Context) (marked int, err error) {
	defer func() { metrics.ObserveSweep(marked, err) }()

	today := core.Today(s.Clock)
	late := core.StatusLate
	var errs []error

	for _, coll := range []core.Collection{core.CollectionReceivables, core.CollectionPayables} {
		items, err := s.Store.ListItems(ctx, coll, core.ItemFilter{Statuses: []core.ItemStatus{core.StatusPending}})
		if err != nil {
			errs = append(errs, core.StoreError("list "+string(coll), err))
			continue
		}
		for _, item := range items {
			if core.DaysLate(item.DueDate, today) <= 0 {
				continue
			}
			if err := s.Store.UpdateItem(ctx, coll, item.ID, core.ItemPatch{Status: &late}); err != nil {
				errs = append(errs, core.StoreError("mark "+string(item.ID)+" late", err))
				continue
			}
			marked++
		}
	}

	if len(errs) > 0 {
		s.Log.Warn("overdue sweep finished with errors", zap.Int("marked", marked), zap.Int("errors", len(errs)))
		return marked, errors.Join(errs...)
	}
	s.Log.Info("overdue sweep finished", zap.Int("marked", marked), zap.String("today", today.String()))
	return marked, nil
}
