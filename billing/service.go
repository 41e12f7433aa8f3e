package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/metrics"
)

// Service runs batches against the store: it loads the debtor registry and
// the existing cycle items, then hands them to the Generator.
type Service struct {
	Debtors   core.DebtorStore
	Items     core.ItemStore
	Generator *Generator
	Log       *zap.Logger
}

func NewService(debtors core.DebtorStore, items core.ItemStore, gen *Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if gen == nil {
		gen = NewGenerator(items, log)
	}
	return &Service{Debtors: debtors, Items: items, Generator: gen, Log: log.Named("billing")}
}

// Run issues req to the debtors selected by target.
func (s *Service) Run(ctx context.Context, req BatchRequest, target Target) (res BatchResult, err error) {
	defer func() { metrics.ObserveBatchRun(err) }()

	if err := req.Validate(); err != nil {
		return BatchResult{}, err
	}

	debtors, err := s.Debtors.ListDebtors(ctx)
	if err != nil {
		return BatchResult{}, core.StoreError("list debtors", err)
	}
	targets := FilterTargets(debtors, target)

	due := req.DueDate
	existing, err := s.Items.ListItems(ctx, core.CollectionReceivables, core.ItemFilter{
		Description: req.Description,
		DueDate:     &due,
	})
	if err != nil {
		return BatchResult{}, core.StoreError("list receivables", err)
	}

	s.Log.Debug("batch targets resolved",
		zap.String("target", string(target)),
		zap.Int("debtors", len(debtors)),
		zap.Int("targets", len(targets)),
		zap.Int("existing", len(existing)),
	)
	return s.Generator.GenerateBatch(ctx, targets, req, existing)
}
