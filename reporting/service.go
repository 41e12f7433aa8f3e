package reporting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
	"github.com/warp/condo-ledger/observability/metrics"
)

var openStatuses = []core.ItemStatus{core.StatusPending, core.StatusLate}

// Service loads snapshots from the store and builds reports over them.
type Service struct {
	Items core.ItemStore
	Clock core.Clock
	Log   *zap.Logger
}

func NewService(items core.ItemStore, clock core.Clock, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Items: items, Clock: clock, Log: log.Named("reporting")}
}

// Period reconciles period as of today.
func (s *Service) Period(ctx context.Context, period core.Period) (lp LedgerPeriod, err error) {
	start := time.Now()
	defer func() { metrics.ObserveReport("ledger", err, time.Since(start)) }()

	if err := period.Validate(); err != nil {
		return LedgerPeriod{}, err
	}

	paid := core.ItemFilter{Statuses: []core.ItemStatus{core.StatusPaid}}
	receipts, err := s.Items.ListItems(ctx, core.CollectionReceivables, paid)
	if err != nil {
		return LedgerPeriod{}, core.StoreError("list receipts", err)
	}
	expenses, err := s.Items.ListItems(ctx, core.CollectionPayables, paid)
	if err != nil {
		return LedgerPeriod{}, core.StoreError("list expenses", err)
	}
	open, err := s.Items.ListItems(ctx, core.CollectionReceivables, core.ItemFilter{Statuses: openStatuses})
	if err != nil {
		return LedgerPeriod{}, core.StoreError("list open receivables", err)
	}

	lp, err = Reconcile(receipts, expenses, open, period, core.Today(s.Clock))
	if err != nil {
		return LedgerPeriod{}, err
	}
	s.Log.Debug("ledger reconciled",
		zap.String("period", period.String()),
		zap.String("closing_balance", lp.ClosingBalance.Display()),
		zap.Int("future_excluded", lp.FutureExcluded),
	)
	return lp, nil
}

// Dossiers builds every debtor's dossier as of today.
func (s *Service) Dossiers(ctx context.Context) (dossiers []delinquency.Dossier, err error) {
	start := time.Now()
	defer func() { metrics.ObserveReport("dossiers", err, time.Since(start)) }()

	open, err := s.Items.ListItems(ctx, core.CollectionReceivables, core.ItemFilter{Statuses: openStatuses})
	if err != nil {
		return nil, core.StoreError("list open receivables", err)
	}
	return delinquency.BuildDossiers(open, core.Today(s.Clock)), nil
}

// Penalty computes the penalty for one receivable as of today.
func (s *Service) Penalty(ctx context.Context, id core.ItemID) (core.BillableItem, delinquency.PenaltyResult, error) {
	item, err := s.Items.GetItem(ctx, core.CollectionReceivables, id)
	if err != nil {
		return core.BillableItem{}, delinquency.PenaltyResult{}, core.StoreError("get receivable", err)
	}
	return item, delinquency.ComputePenalty(item, core.Today(s.Clock)), nil
}

// Today is the reporting date.
func (s *Service) Today() core.Date {
	return core.Today(s.Clock)
}
