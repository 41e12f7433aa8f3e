/*
store.go - Persistence interfaces for billable items, cases and debtors

PURPOSE:
  Defines the boundary between the engine and the data store. The engine
  never talks to a database directly; it fetches snapshots through these
  interfaces, computes, and writes back through partial-field patches.

KEY INTERFACES:
  ItemStore:   receivables and payables (keyed by Collection)
  CaseStore:   collection cases
  DebtorStore: resident registry
  Store:       all three, what the server wires up

UPDATE CONTRACT:
  Items are never deleted. Updates are keyed by ID and apply only the fields
  set in the patch. Case notes are append-only: CasePatch.AppendNote is
  concatenated to the existing notes, never replacing them.

ERRORS:
  Get/Update on a missing ID return *NotFoundError. Insert with an existing
  ID returns *ConflictError. Anything else the backend reports is wrapped in
  *ExternalStoreError.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite with embedded migrations
  - core/store/memory.go: In-memory for tests and the "memory" backend
  - core/mocks: gomock doubles for failure injection

SEE ALSO:
  - errors.go: Error kinds returned by stores
*/
package core

import (
	"context"
	"time"
)

// =============================================================================
// FILTERS AND PATCHES
// =============================================================================

// ItemFilter narrows ListItems. Zero fields match everything.
type ItemFilter struct {
	DebtorRef   *DebtorRef
	Statuses    []ItemStatus
	Description string
	DueDate     *Date
}

// Matches reports whether item passes the filter.
func (f ItemFilter) Matches(item BillableItem) bool {
	if f.DebtorRef != nil && (item.DebtorRef == nil || *item.DebtorRef != *f.DebtorRef) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if item.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Description != "" && item.Description != f.Description {
		return false
	}
	if f.DueDate != nil && !item.DueDate.Equal(*f.DueDate) {
		return false
	}
	return true
}

// ItemPatch lists the mutable item fields. Nil fields are left untouched.
type ItemPatch struct {
	Status        *ItemStatus
	PaymentDate   *Date
	PaymentAmount *Money
}

// Apply returns item with the patch applied.
func (p ItemPatch) Apply(item BillableItem) BillableItem {
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.PaymentDate != nil {
		d := *p.PaymentDate
		item.PaymentDate = &d
	}
	if p.PaymentAmount != nil {
		m := *p.PaymentAmount
		item.PaymentAmount = &m
	}
	return item
}

// CaseFilter narrows ListCases. Zero fields match everything.
type CaseFilter struct {
	DebtorRef *DebtorRef
	Statuses  []CaseStatus
}

func (f CaseFilter) Matches(c CollectionCase) bool {
	if f.DebtorRef != nil && c.DebtorRef != *f.DebtorRef {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// CasePatch lists the mutable case fields. Nil fields are left untouched;
// AppendNote is concatenated to the existing notes.
type CasePatch struct {
	Status         *CaseStatus
	ProtestDate    *time.Time
	SettlementDate *time.Time
	AppendNote     string
}

// Apply returns c with the patch applied.
func (p CasePatch) Apply(c CollectionCase) CollectionCase {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.ProtestDate != nil {
		t := *p.ProtestDate
		c.ProtestDate = &t
	}
	if p.SettlementDate != nil {
		t := *p.SettlementDate
		c.SettlementDate = &t
	}
	c.Notes = AppendNote(c.Notes, p.AppendNote)
	return c
}

// AppendNote joins a new line onto existing notes.
func AppendNote(notes, line string) string {
	switch {
	case line == "":
		return notes
	case notes == "":
		return line
	default:
		return notes + "\n" + line
	}
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// ItemStore persists receivables and payables.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go
type ItemStore interface {
	ListItems(ctx context.Context, coll Collection, filter ItemFilter) ([]BillableItem, error)
	GetItem(ctx context.Context, coll Collection, id ItemID) (BillableItem, error)
	InsertItem(ctx context.Context, coll Collection, item BillableItem) error
	UpdateItem(ctx context.Context, coll Collection, id ItemID, patch ItemPatch) error
}

// CaseStore persists collection cases.
type CaseStore interface {
	ListCases(ctx context.Context, filter CaseFilter) ([]CollectionCase, error)
	GetCase(ctx context.Context, id CaseID) (CollectionCase, error)
	InsertCase(ctx context.Context, c CollectionCase) error
	UpdateCase(ctx context.Context, id CaseID, patch CasePatch) error
}

// DebtorStore persists the resident registry.
type DebtorStore interface {
	ListDebtors(ctx context.Context) ([]Debtor, error)
	GetDebtor(ctx context.Context, ref DebtorRef) (Debtor, error)
	SaveDebtor(ctx context.Context, d Debtor) error
}

// Store is the full data store the server runs against.
type Store interface {
	ItemStore
	CaseStore
	DebtorStore
}
