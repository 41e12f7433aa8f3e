/*
Package billing issues and settles receivables.

BATCH GENERATION:
  GenerateBatch creates one pending receivable per target debtor for a
  billing cycle. The cycle is identified by (description, due date); a debtor
  who already has an item for that pair is skipped with "already exists".

  Every target yields exactly one outcome, created or skipped with a reason.
  The run is not atomic: a failed write is reported on that debtor and the
  rest of the batch continues. Nothing is rolled back.

CONCURRENCY:
  Skip decisions are made up front in input order. The remaining writes run
  through an errgroup bounded by Concurrency, each under its own
  WriteTimeout. Outcomes are stored by input index, so the reported order is
  always the input order regardless of which write finishes first.

SEE ALSO:
  - targets.go: Owner / non-owner filters
  - ledger.go: Manual entry and payment recording
  - sweeper.go: pending -> late
*/
package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/metrics"
)

// Skip reasons for targets that were not invoiced.
const (
	ReasonAlreadyExists  = "already exists"
	ReasonDuplicateInput = "duplicate target in batch"
)

const (
	DefaultConcurrency  = 4
	DefaultWriteTimeout = 5 * time.Second
)

// BatchRequest is the invoice to issue to every target.
type BatchRequest struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	DueDate     core.Date  `json:"due_date"`
}

func (r BatchRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return &core.ValidationError{Field: "description", Reason: "required"}
	}
	if !r.Amount.IsPositive() {
		return &core.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if r.DueDate.IsZero() {
		return &core.ValidationError{Field: "due_date", Reason: "required"}
	}
	return nil
}

// Skip records a target that did not get an invoice.
type Skip struct {
	Debtor core.DebtorRef `json:"debtor"`
	Reason string         `json:"reason"`
	// Failed is true for write failures, false for duplicates.
	Failed bool `json:"failed"`
}

// BatchResult reports every target: len(CreatedItems)+len(Skipped) equals
// the number of targets.
type BatchResult struct {
	Created      int                 `json:"created"`
	CreatedItems []core.BillableItem `json:"-"`
	Skipped      []Skip              `json:"skipped"`
}

// Generator writes batch invoices to an ItemStore.
type Generator struct {
	Store        core.ItemStore
	NewID        func() core.ItemID
	Log          *zap.Logger
	Concurrency  int
	WriteTimeout time.Duration
}

func NewGenerator(store core.ItemStore, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		Store:        store,
		NewID:        func() core.ItemID { return core.ItemID(uuid.NewString()) },
		Log:          log.Named("billing"),
		Concurrency:  DefaultConcurrency,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// outcome is the result slot for one target.
type outcome struct {
	item *core.BillableItem
	skip *Skip
}

// GenerateBatch invoices targets, skipping those already billed for the
// same (description, due date) in existing. It returns an error only when
// the request itself is invalid; per-target failures are in the result.
func (g *Generator) GenerateBatch(ctx context.Context, targets []core.Debtor, req BatchRequest, existing []core.BillableItem) (BatchResult, error) {
	if err := req.Validate(); err != nil {
		return BatchResult{}, err
	}

	billed := make(map[core.DebtorRef]bool)
	for _, it := range existing {
		if it.HasDebtor() && it.Description == req.Description && it.DueDate.Equal(req.DueDate) {
			billed[*it.DebtorRef] = true
		}
	}

	// Plan in input order.
	outcomes := make([]outcome, len(targets))
	pending := make([]int, 0, len(targets))
	seen := make(map[core.DebtorRef]bool, len(targets))
	for i, d := range targets {
		switch {
		case d.Ref == "":
			outcomes[i].skip = &Skip{Reason: "debtor reference is empty", Failed: true}
		case billed[d.Ref]:
			outcomes[i].skip = &Skip{Debtor: d.Ref, Reason: ReasonAlreadyExists}
		case seen[d.Ref]:
			outcomes[i].skip = &Skip{Debtor: d.Ref, Reason: ReasonDuplicateInput}
		default:
			seen[d.Ref] = true
			item := g.newItem(d.Ref, req)
			outcomes[i].item = &item
			pending = append(pending, i)
		}
	}

	// Write.
	var eg errgroup.Group
	eg.SetLimit(g.concurrency())
	for _, i := range pending {
		eg.Go(func() error {
			if err := g.write(ctx, *outcomes[i].item); err != nil {
				ref := *outcomes[i].item.DebtorRef
				g.Log.Warn("batch invoice failed", zap.String("debtor", string(ref)), zap.Error(err))
				outcomes[i] = outcome{skip: &Skip{Debtor: ref, Reason: err.Error(), Failed: true}}
			}
			return nil
		})
	}
	_ = eg.Wait() // write errors are captured per target

	// Report in input order.
	var res BatchResult
	failed := 0
	for _, o := range outcomes {
		if o.item != nil {
			res.Created++
			res.CreatedItems = append(res.CreatedItems, *o.item)
			continue
		}
		if o.skip.Failed {
			failed++
		}
		res.Skipped = append(res.Skipped, *o.skip)
	}

	metrics.AddBatchItems(metrics.BatchCreated, res.Created)
	metrics.AddBatchItems(metrics.BatchSkipped, len(res.Skipped)-failed)
	metrics.AddBatchItems(metrics.BatchFailed, failed)
	g.Log.Info("batch generated",
		zap.String("description", req.Description),
		zap.String("due_date", req.DueDate.String()),
		zap.Int("targets", len(targets)),
		zap.Int("created", res.Created),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", failed),
	)
	return res, nil
}

func (g *Generator) newItem(ref core.DebtorRef, req BatchRequest) core.BillableItem {
	r := ref
	return core.BillableItem{
		ID:             g.NewID(),
		DebtorRef:      &r,
		Description:    req.Description,
		OriginalAmount: req.Amount,
		DueDate:        req.DueDate,
		Status:         core.StatusPending,
		CycleKey:       core.CycleKey(req.DueDate),
	}
}

func (g *Generator) write(ctx context.Context, item core.BillableItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := g.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := g.Store.InsertItem(wctx, core.CollectionReceivables, item); err != nil {
		return core.StoreError("insert receivable", err)
	}
	return nil
}

func (g *Generator) concurrency() int {
	if g.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return g.Concurrency
}
