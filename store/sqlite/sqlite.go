/*
Package sqlite provides a SQLite-backed implementation of core.Store.

PURPOSE:
  Persists debtors, receivables, payables and collection cases. The engine
  only sees core.Store; this package is swapped for the in-memory store in
  tests and in the "memory" backend.

KEY TABLES:
  debtors:          Resident registry
  receivables:      Amounts owed to the condominium
  payables:         Amounts owed by the condominium
  collection_cases: Protest / collection tracks

ENCODING:
  Money is stored as exact decimal TEXT (never REAL). Dates are stored as
  YYYY-MM-DD and instants as RFC 3339 with nanoseconds, so string order is
  chronological order.

UPDATE CONTRACT:
  Rows are never deleted (except by Reset). Updates set only the fields
  present in the patch; case notes are appended in SQL so concurrent
  writers cannot overwrite each other's notes.

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded and applied on New()
  with golang-migrate.

CONCURRENCY:
  Uses sync.RWMutex around the connection pool. ":memory:" databases are
  pinned to a single connection, since each new connection would otherwise
  open a fresh empty database.

WAL MODE:
  File databases are opened with WAL so readers don't block the writer.

USAGE:
  store, err := sqlite.New("./data/condo.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - core/store.go: Interface definitions
  - core/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/condo-ledger/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store implements core.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ core.Store = (*Store)(nil)

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	if dbPath == MemoryPath {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the pool for metrics gauges.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	// m.Close would close db as well; only the source is released.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// =============================================================================
// ITEMS (core.ItemStore)
// =============================================================================

const itemColumns = `id, debtor_ref, description, original_amount, due_date, status,
	payment_date, payment_amount, cycle_key`

// ListItems returns matching items in insertion order.
func (s *Store) ListItems(ctx context.Context, coll core.Collection, filter core.ItemFilter) ([]core.BillableItem, error) {
	table, err := tableFor(coll)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.DebtorRef != nil {
		where = append(where, "debtor_ref = ?")
		args = append(args, string(*filter.DebtorRef))
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.Description != "" {
		where = append(where, "description = ?")
		args = append(args, filter.Description)
	}
	if filter.DueDate != nil {
		where = append(where, "due_date = ?")
		args = append(args, filter.DueDate.String())
	}

	query := "SELECT " + itemColumns + " FROM " + table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.StoreError("list "+table, err)
	}
	defer rows.Close()

	var items []core.BillableItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, core.StoreError("scan "+table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreError("list "+table, err)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, coll core.Collection, id core.ItemID) (core.BillableItem, error) {
	table, err := tableFor(coll)
	if err != nil {
		return core.BillableItem{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM "+table+" WHERE id = ?", string(id))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BillableItem{}, &core.NotFoundError{Kind: itemKind(coll), ID: string(id)}
	}
	if err != nil {
		return core.BillableItem{}, core.StoreError("get "+itemKind(coll), err)
	}
	return item, nil
}

// InsertItem adds an item. Items are never deleted.
func (s *Store) InsertItem(ctx context.Context, coll core.Collection, item core.BillableItem) error {
	table, err := tableFor(coll)
	if err != nil {
		return err
	}

	var debtor sql.NullString
	if item.HasDebtor() {
		debtor = nullString(string(*item.DebtorRef))
	}
	var paymentDate, paymentAmount sql.NullString
	if item.PaymentDate != nil {
		paymentDate = nullString(item.PaymentDate.String())
	}
	if item.PaymentAmount != nil {
		paymentAmount = nullString(item.PaymentAmount.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO `+table+`
		(id, debtor_ref, description, original_amount, due_date, status,
		 payment_date, payment_amount, cycle_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(item.ID),
		debtor,
		item.Description,
		item.OriginalAmount.String(),
		item.DueDate.String(),
		string(item.Status),
		paymentDate,
		paymentAmount,
		item.CycleKey,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isUniqueConstraintError(err) {
		return &core.ConflictError{Kind: itemKind(coll), ID: string(item.ID), Reason: "already exists"}
	}
	if err != nil {
		return core.StoreError("insert "+itemKind(coll), err)
	}
	return nil
}

// UpdateItem applies the non-nil patch fields.
func (s *Store) UpdateItem(ctx context.Context, coll core.Collection, id core.ItemID, patch core.ItemPatch) error {
	table, err := tableFor(coll)
	if err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.PaymentDate != nil {
		sets = append(sets, "payment_date = ?")
		args = append(args, patch.PaymentDate.String())
	}
	if patch.PaymentAmount != nil {
		sets = append(sets, "payment_amount = ?")
		args = append(args, patch.PaymentAmount.String())
	}
	if len(sets) == 0 {
		_, err := s.GetItem(ctx, coll, id)
		return err
	}
	args = append(args, string(id))

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return core.StoreError("update "+itemKind(coll), err)
	}
	return requireRow(res, itemKind(coll), string(id))
}

// =============================================================================
// CASES (core.CaseStore)
// =============================================================================

const caseColumns = `id, debtor_ref, total_debt_at_open, status, notification_date,
	protest_date, settlement_date, notes`

// ListCases returns matching cases in creation order.
func (s *Store) ListCases(ctx context.Context, filter core.CaseFilter) ([]core.CollectionCase, error) {
	var (
		where []string
		args  []any
	)
	if filter.DebtorRef != nil {
		where = append(where, "debtor_ref = ?")
		args = append(args, string(*filter.DebtorRef))
	}
	if len(filter.Statuses) > 0 {
		marks := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			marks[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := "SELECT " + caseColumns + " FROM collection_cases"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.StoreError("list cases", err)
	}
	defer rows.Close()

	var cases []core.CollectionCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, core.StoreError("scan cases", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreError("list cases", err)
	}
	return cases, nil
}

func (s *Store) GetCase(ctx context.Context, id core.CaseID) (core.CollectionCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+caseColumns+" FROM collection_cases WHERE id = ?", string(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CollectionCase{}, &core.NotFoundError{Kind: "case", ID: string(id)}
	}
	if err != nil {
		return core.CollectionCase{}, core.StoreError("get case", err)
	}
	return c, nil
}

func (s *Store) InsertCase(ctx context.Context, c core.CollectionCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_cases
		(id, debtor_ref, total_debt_at_open, status, notification_date,
		 protest_date, settlement_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(c.ID),
		string(c.DebtorRef),
		c.TotalDebtAtOpen.String(),
		string(c.Status),
		formatInstant(c.NotificationDate),
		nullInstant(c.ProtestDate),
		nullInstant(c.SettlementDate),
		c.Notes,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isOpenCaseConflict(err) {
		return openCaseConflict(c.ID, c.DebtorRef)
	}
	if isUniqueConstraintError(err) {
		return &core.ConflictError{Kind: "case", ID: string(c.ID), Reason: "already exists"}
	}
	if err != nil {
		return core.StoreError("insert case", err)
	}
	return nil
}

// UpdateCase applies the patch. AppendNote is concatenated in SQL.
func (s *Store) UpdateCase(ctx context.Context, id core.CaseID, patch core.CasePatch) error {
	var (
		sets []string
		args []any
	)
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.ProtestDate != nil {
		sets = append(sets, "protest_date = ?")
		args = append(args, formatInstant(*patch.ProtestDate))
	}
	if patch.SettlementDate != nil {
		sets = append(sets, "settlement_date = ?")
		args = append(args, formatInstant(*patch.SettlementDate))
	}
	if patch.AppendNote != "" {
		sets = append(sets, "notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END")
		args = append(args, patch.AppendNote, patch.AppendNote)
	}
	if len(sets) == 0 {
		_, err := s.GetCase(ctx, id)
		return err
	}
	args = append(args, string(id))

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE collection_cases SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if isOpenCaseConflict(err) {
		return &core.ConflictError{Kind: "case", ID: string(id), Reason: "debtor already has another open case"}
	}
	if err != nil {
		return core.StoreError("update case", err)
	}
	return requireRow(res, "case", string(id))
}

// =============================================================================
// DEBTORS (core.DebtorStore)
// =============================================================================

// ListDebtors returns debtors ordered by ref.
func (s *Store) ListDebtors(ctx context.Context) ([]core.Debtor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT ref, name, unit, owner, email FROM debtors ORDER BY ref ASC")
	if err != nil {
		return nil, core.StoreError("list debtors", err)
	}
	defer rows.Close()

	var debtors []core.Debtor
	for rows.Next() {
		var d core.Debtor
		var ref string
		if err := rows.Scan(&ref, &d.Name, &d.Unit, &d.Owner, &d.Email); err != nil {
			return nil, core.StoreError("scan debtors", err)
		}
		d.Ref = core.DebtorRef(ref)
		debtors = append(debtors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, core.StoreError("list debtors", err)
	}
	return debtors, nil
}

func (s *Store) GetDebtor(ctx context.Context, ref core.DebtorRef) (core.Debtor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := core.Debtor{Ref: ref}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, unit, owner, email FROM debtors WHERE ref = ?", string(ref),
	).Scan(&d.Name, &d.Unit, &d.Owner, &d.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debtor{}, &core.NotFoundError{Kind: "debtor", ID: string(ref)}
	}
	if err != nil {
		return core.Debtor{}, core.StoreError("get debtor", err)
	}
	return d, nil
}

// SaveDebtor inserts or replaces a registry entry.
func (s *Store) SaveDebtor(ctx context.Context, d core.Debtor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debtors (ref, name, unit, owner, email, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(ref) DO UPDATE SET
			name = excluded.name,
			unit = excluded.unit,
			owner = excluded.owner,
			email = excluded.email,
			updated_at = excluded.updated_at`,
		string(d.Ref), d.Name, d.Unit, d.Owner, d.Email,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return core.StoreError("save debtor", err)
	}
	return nil
}

// Reset drops all data. Used when loading demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.StoreError("reset", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"collection_cases", "payables", "receivables", "debtors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return core.StoreError("reset "+table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.StoreError("reset", err)
	}
	return nil
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (core.BillableItem, error) {
	var (
		id, description, amount, due, status, cycle string
		debtor, paymentDate, paymentAmount          sql.NullString
	)
	if err := row.Scan(&id, &debtor, &description, &amount, &due, &status, &paymentDate, &paymentAmount, &cycle); err != nil {
		return core.BillableItem{}, err
	}

	item := core.BillableItem{
		ID:          core.ItemID(id),
		Description: description,
		CycleKey:    cycle,
	}
	var err error
	if debtor.Valid && debtor.String != "" {
		item.DebtorRef = core.RefPtr(debtor.String)
	}
	if item.OriginalAmount, err = core.ParseMoney(amount); err != nil {
		return core.BillableItem{}, fmt.Errorf("item %s: %w", id, err)
	}
	if item.DueDate, err = core.ParseDate(due); err != nil {
		return core.BillableItem{}, fmt.Errorf("item %s: %w", id, err)
	}
	if item.Status, err = core.ParseItemStatus(status); err != nil {
		return core.BillableItem{}, fmt.Errorf("item %s: %w", id, err)
	}
	if paymentDate.Valid {
		d, err := core.ParseDate(paymentDate.String)
		if err != nil {
			return core.BillableItem{}, fmt.Errorf("item %s: %w", id, err)
		}
		item.PaymentDate = &d
	}
	if paymentAmount.Valid {
		m, err := core.ParseMoney(paymentAmount.String)
		if err != nil {
			return core.BillableItem{}, fmt.Errorf("item %s: %w", id, err)
		}
		item.PaymentAmount = &m
	}
	return item, nil
}

func scanCase(row scanner) (core.CollectionCase, error) {
	var (
		id, debtor, total, status, notified, notes string
		protested, settled                         sql.NullString
	)
	if err := row.Scan(&id, &debtor, &total, &status, &notified, &protested, &settled, &notes); err != nil {
		return core.CollectionCase{}, err
	}

	c := core.CollectionCase{
		ID:        core.CaseID(id),
		DebtorRef: core.DebtorRef(debtor),
		Notes:     notes,
	}
	var err error
	if c.TotalDebtAtOpen, err = core.ParseMoney(total); err != nil {
		return core.CollectionCase{}, fmt.Errorf("case %s: %w", id, err)
	}
	if c.Status, err = core.ParseCaseStatus(status); err != nil {
		return core.CollectionCase{}, fmt.Errorf("case %s: %w", id, err)
	}
	if c.NotificationDate, err = time.Parse(time.RFC3339Nano, notified); err != nil {
		return core.CollectionCase{}, fmt.Errorf("case %s: notification date: %w", id, err)
	}
	if c.ProtestDate, err = parseNullInstant(protested); err != nil {
		return core.CollectionCase{}, fmt.Errorf("case %s: protest date: %w", id, err)
	}
	if c.SettlementDate, err = parseNullInstant(settled); err != nil {
		return core.CollectionCase{}, fmt.Errorf("case %s: settlement date: %w", id, err)
	}
	return c, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func tableFor(coll core.Collection) (string, error) {
	switch coll {
	case core.CollectionReceivables:
		return "receivables", nil
	case core.CollectionPayables:
		return "payables", nil
	}
	return "", &core.ValidationError{Field: "collection", Reason: string(coll)}
}

func itemKind(coll core.Collection) string {
	if coll == core.CollectionPayables {
		return "payable"
	}
	return "receivable"
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return core.StoreError("update "+kind, err)
	}
	if n == 0 {
		return &core.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatInstant(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullInstant(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return nullString(formatInstant(*t))
}

func parseNullInstant(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isOpenCaseConflict matches idx_collection_cases_open_debtor, which SQLite
// reports by column rather than by index name.
func isOpenCaseConflict(err error) bool {
	return isUniqueConstraintError(err) && strings.Contains(err.Error(), "collection_cases.debtor_ref")
}

func openCaseConflict(id core.CaseID, ref core.DebtorRef) error {
	return &core.ConflictError{Kind: "case", ID: string(id), Reason: fmt.Sprintf("debtor %s already has an open case", ref)}
}
