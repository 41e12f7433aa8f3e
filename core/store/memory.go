// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/condo-ledger/core"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	items   map[core.Collection]map[core.ItemID]core.BillableItem
	order   map[core.Collection][]core.ItemID // insertion order
	cases   map[core.CaseID]core.CollectionCase
	caseSeq []core.CaseID
	debtors map[core.DebtorRef]core.Debtor
}

var _ core.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		items: map[core.Collection]map[core.ItemID]core.BillableItem{
			core.CollectionReceivables: {},
			core.CollectionPayables:    {},
		},
		order:   make(map[core.Collection][]core.ItemID),
		cases:   make(map[core.CaseID]core.CollectionCase),
		debtors: make(map[core.DebtorRef]core.Debtor),
	}
}

// =============================================================================
// ITEMS
// =============================================================================

func (m *Memory) ListItems(_ context.Context, coll core.Collection, filter core.ItemFilter) ([]core.BillableItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket, ok := m.items[coll]
	if !ok {
		return nil, &core.ValidationError{Field: "collection", Reason: string(coll)}
	}
	var result []core.BillableItem
	for _, id := range m.order[coll] {
		item := bucket[id]
		if filter.Matches(item) {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

func (m *Memory) GetItem(_ context.Context, coll core.Collection, id core.ItemID) (core.BillableItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[coll][id]
	if !ok {
		return core.BillableItem{}, &core.NotFoundError{Kind: itemKind(coll), ID: string(id)}
	}
	return cloneItem(item), nil
}

// InsertItem adds an item. Items are never deleted.
func (m *Memory) InsertItem(_ context.Context, coll core.Collection, item core.BillableItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.items[coll]
	if !ok {
		return &core.ValidationError{Field: "collection", Reason: string(coll)}
	}
	if _, exists := bucket[item.ID]; exists {
		return &core.ConflictError{Kind: itemKind(coll), ID: string(item.ID), Reason: "already exists"}
	}
	bucket[item.ID] = cloneItem(item)
	m.order[coll] = append(m.order[coll], item.ID)
	return nil
}

func (m *Memory) UpdateItem(_ context.Context, coll core.Collection, id core.ItemID, patch core.ItemPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[coll][id]
	if !ok {
		return &core.NotFoundError{Kind: itemKind(coll), ID: string(id)}
	}
	m.items[coll][id] = patch.Apply(item)
	return nil
}

// =============================================================================
// CASES
// =============================================================================

func (m *Memory) ListCases(_ context.Context, filter core.CaseFilter) ([]core.CollectionCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.CollectionCase
	for _, id := range m.caseSeq {
		c := m.cases[id]
		if filter.Matches(c) {
			result = append(result, cloneCase(c))
		}
	}
	return result, nil
}

func (m *Memory) GetCase(_ context.Context, id core.CaseID) (core.CollectionCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cases[id]
	if !ok {
		return core.CollectionCase{}, &core.NotFoundError{Kind: "case", ID: string(id)}
	}
	return cloneCase(c), nil
}

func (m *Memory) InsertCase(_ context.Context, c core.CollectionCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cases[c.ID]; exists {
		return &core.ConflictError{Kind: "case", ID: string(c.ID), Reason: "already exists"}
	}
	if c.Open() {
		if other, ok := m.openCaseFor(c.DebtorRef, c.ID); ok {
			return &core.ConflictError{Kind: "case", ID: string(other), Reason: fmt.Sprintf("debtor %s already has an open case", c.DebtorRef)}
		}
	}
	m.cases[c.ID] = cloneCase(c)
	m.caseSeq = append(m.caseSeq, c.ID)
	return nil
}

func (m *Memory) UpdateCase(_ context.Context, id core.CaseID, patch core.CasePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[id]
	if !ok {
		return &core.NotFoundError{Kind: "case", ID: string(id)}
	}
	updated := patch.Apply(c)
	if updated.Open() && !c.Open() {
		if _, taken := m.openCaseFor(c.DebtorRef, id); taken {
			return &core.ConflictError{Kind: "case", ID: string(id), Reason: "debtor already has another open case"}
		}
	}
	m.cases[id] = updated
	return nil
}

// openCaseFor finds an open case for ref other than except. Callers hold mu.
func (m *Memory) openCaseFor(ref core.DebtorRef, except core.CaseID) (core.CaseID, bool) {
	for _, id := range m.caseSeq {
		c := m.cases[id]
		if id != except && c.DebtorRef == ref && c.Open() {
			return id, true
		}
	}
	return "", false
}

// =============================================================================
// DEBTORS
// =============================================================================

// ListDebtors returns debtors ordered by ref.
func (m *Memory) ListDebtors(_ context.Context) ([]core.Debtor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]core.Debtor, 0, len(m.debtors))
	for _, d := range m.debtors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ref < result[j].Ref })
	return result, nil
}

func (m *Memory) GetDebtor(_ context.Context, ref core.DebtorRef) (core.Debtor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.debtors[ref]
	if !ok {
		return core.Debtor{}, &core.NotFoundError{Kind: "debtor", ID: string(ref)}
	}
	return d, nil
}

// SaveDebtor inserts or replaces a registry entry.
func (m *Memory) SaveDebtor(_ context.Context, d core.Debtor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debtors[d.Ref] = d
	return nil
}

// Reset drops all data. Used when loading demo scenarios.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := NewMemory()
	m.items = fresh.items
	m.order = fresh.order
	m.cases = fresh.cases
	m.caseSeq = nil
	m.debtors = fresh.debtors
	return nil
}

func itemKind(coll core.Collection) string {
	if coll == core.CollectionPayables {
		return "payable"
	}
	return "receivable"
}

// cloneItem detaches the pointer fields so callers never alias stored data.
func cloneItem(item core.BillableItem) core.BillableItem {
	if item.DebtorRef != nil {
		ref := *item.DebtorRef
		item.DebtorRef = &ref
	}
	if item.PaymentDate != nil {
		d := *item.PaymentDate
		item.PaymentDate = &d
	}
	if item.PaymentAmount != nil {
		m := *item.PaymentAmount
		item.PaymentAmount = &m
	}
	return item
}

func cloneCase(c core.CollectionCase) core.CollectionCase {
	if c.ProtestDate != nil {
		t := *c.ProtestDate
		c.ProtestDate = &t
	}
	if c.SettlementDate != nil {
		t := *c.SettlementDate
		c.SettlementDate = &t
	}
	return c
}
