/*
Package core provides the shared vocabulary of the delinquency engine.

PURPOSE:
  This package contains the record types, money and calendar primitives,
  error kinds and store interfaces that every other package builds on.
  Receivables, payables and collection cases all flow through these types,
  whether they come from SQLite, memory, or a JSON request.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: an exact decimal currency amount
  - BillableItem: a single charge with due date, amount and payment status
  - Debtor: a resident/unit from the registry
  - CollectionCase: a persisted protest/collection track against a debtor

DESIGN PRINCIPLES:
  1. Precision: Money wraps decimal.Decimal, rounding only at presentation
  2. Closed enums: statuses are typed constants parsed exhaustively
  3. Type Safety: distinct ID types prevent mixing item/debtor/case IDs
  4. No ambient clock: nothing in this package reads time.Now()

USAGE:
  item := core.BillableItem{
      ID:             "rcv-1",
      DebtorRef:      core.RefPtr("apt-101"),
      Description:    "Condo fee",
      OriginalAmount: core.MustMoney("500.00"),
      DueDate:        core.NewDate(2025, time.October, 10),
      Status:         core.StatusPending,
  }

SEE ALSO:
  - time.go: Date normalization and day counting
  - period.go: Inclusive reporting periods
  - store.go: Persistence interfaces
*/
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Exact decimal currency amount
// =============================================================================

// Money is a currency amount. Arithmetic is exact; Display rounds to cents.
type Money struct {
	Value decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{Value: decimal.Zero}

func NewMoneyFromCents(cents int64) Money { return Money{Value: decimal.New(cents, -2)} }
func NewMoneyFromInt(units int64) Money   { return Money{Value: decimal.NewFromInt(units)} }

// ParseMoney parses a decimal string. Both "12.34" and "12,34" are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Reason: "empty"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("not a decimal: %q", s)}
	}
	return Money{Value: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(f decimal.Decimal) Money { return Money{Value: m.Value.Mul(f)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool       { return m.Value.LessThan(o.Value) }
func (m Money) Round() Money                { return Money{Value: m.Value.Round(2)} }

// Display renders the amount rounded half-up to two decimals.
func (m Money) Display() string { return m.Value.StringFixed(2) }

// String returns the exact value; use Display for presentation.
func (m Money) String() string { return m.Value.String() }

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...Money) Money {
	total := ZeroMoney
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes the exact value as a string so records round-trip.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value.String())
}

// UnmarshalJSON accepts a JSON string or number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemID string
type DebtorRef string
type CaseID string

// RefPtr is a convenience for the nullable debtor reference.
func RefPtr(s string) *DebtorRef {
	r := DebtorRef(s)
	return &r
}

// Collection names a family of billable records in the data store.
type Collection string

const (
	CollectionReceivables Collection = "receivables"
	CollectionPayables    Collection = "payables"
)

func (c Collection) Valid() bool {
	switch c {
	case CollectionReceivables, CollectionPayables:
		return true
	}
	return false
}

// =============================================================================
// ITEM STATUS
// =============================================================================

type ItemStatus string

const (
	StatusPending ItemStatus = "pending"
	StatusPaid    ItemStatus = "paid"
	StatusLate    ItemStatus = "late"
)

// ParseItemStatus maps a stored or submitted status onto the closed set.
// Legacy values written by the old client ("pendente", "pago", "atrasado")
// are accepted; anything else is a ValidationError.
func ParseItemStatus(s string) (ItemStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "pendente":
		return StatusPending, nil
	case "paid", "pago":
		return StatusPaid, nil
	case "late", "atrasado":
		return StatusLate, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown item status %q", s)}
}

// Open reports whether an item with this status is still owed.
func (s ItemStatus) Open() bool {
	switch s {
	case StatusPending, StatusLate:
		return true
	case StatusPaid:
		return false
	}
	return false
}

// =============================================================================
// BILLABLE ITEM
// =============================================================================

// BillableItem is an amount owed, by a debtor for receivables or by the
// condominium for payables.
type BillableItem struct {
	ID             ItemID
	DebtorRef      *DebtorRef // nil for ad-hoc charges
	Description    string
	OriginalAmount Money
	DueDate        Date
	Status         ItemStatus
	PaymentDate    *Date
	PaymentAmount  *Money
	CycleKey       string
}

// Normalize rewrites Status onto the closed set, so legacy values never
// reach the store or any computation.
func (b *BillableItem) Normalize() error {
	status, err := ParseItemStatus(string(b.Status))
	if err != nil {
		return err
	}
	b.Status = status
	return nil
}

// Validate rejects malformed items before they reach any computation.
// Status must already be canonical; see Normalize.
func (b BillableItem) Validate() error {
	if strings.TrimSpace(string(b.ID)) == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if strings.TrimSpace(b.Description) == "" {
		return &ValidationError{Field: "description", Reason: "required"}
	}
	if !b.OriginalAmount.IsPositive() {
		return &ValidationError{Field: "original_amount", Reason: "must be greater than zero"}
	}
	if b.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "required"}
	}
	status, err := ParseItemStatus(string(b.Status))
	if err != nil {
		return err
	}
	if status != b.Status {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not normalized, use %q", b.Status, status)}
	}
	paid := b.Status == StatusPaid
	if paid != (b.PaymentAmount != nil) {
		return &ValidationError{Field: "payment_amount", Reason: "must be set exactly when status is paid"}
	}
	if paid && b.PaymentDate == nil {
		return &ValidationError{Field: "payment_date", Reason: "required when status is paid"}
	}
	return nil
}

// HasDebtor reports whether the item can be collected from someone.
func (b BillableItem) HasDebtor() bool {
	return b.DebtorRef != nil && *b.DebtorRef != ""
}

// =============================================================================
// DEBTOR - Resident registry entry
// =============================================================================

type Debtor struct {
	Ref   DebtorRef
	Name  string
	Unit  string
	Owner bool // false for tenants and other non-owner residents
	Email string
}

func (d Debtor) Validate() error {
	if strings.TrimSpace(string(d.Ref)) == "" {
		return &ValidationError{Field: "ref", Reason: "required"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	return nil
}

// =============================================================================
// COLLECTION CASE
// =============================================================================

type CaseStatus string

const (
	CaseNotified       CaseStatus = "notified"
	CaseAwaitingPeriod CaseStatus = "awaiting_period"
	CaseSentToRegistry CaseStatus = "sent_to_registry"
	CaseProtested      CaseStatus = "protested"
	CaseSettled        CaseStatus = "settled"
)

// CaseStatuses lists the statuses in their intended order of progression.
var CaseStatuses = []CaseStatus{
	CaseNotified,
	CaseAwaitingPeriod,
	CaseSentToRegistry,
	CaseProtested,
	CaseSettled,
}

func ParseCaseStatus(s string) (CaseStatus, error) {
	switch CaseStatus(strings.ToLower(strings.TrimSpace(s))) {
	case CaseNotified:
		return CaseNotified, nil
	case CaseAwaitingPeriod:
		return CaseAwaitingPeriod, nil
	case CaseSentToRegistry:
		return CaseSentToRegistry, nil
	case CaseProtested:
		return CaseProtested, nil
	case CaseSettled:
		return CaseSettled, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown case status %q", s)}
}

// CollectionCase is one collection/protest track against a debtor.
// Notes are append-only.
type CollectionCase struct {
	ID               CaseID
	DebtorRef        DebtorRef
	TotalDebtAtOpen  Money // snapshot; debt keeps accruing afterwards
	Status           CaseStatus
	NotificationDate time.Time
	ProtestDate      *time.Time
	SettlementDate   *time.Time
	Notes            string
}

// Open reports whether the case has not reached its terminal status.
func (c CollectionCase) Open() bool { return c.Status != CaseSettled }
