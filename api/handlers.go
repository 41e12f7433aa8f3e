/*
handlers.go - HTTP API handlers for the condominium ledger

PURPOSE:
  Exposes the delinquency engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the domain
  services in billing, collections and reporting.

ENDPOINTS:
  Debtors:
    GET    /api/debtors                          List residents
    POST   /api/debtors                          Register/update resident

  Items ({coll} is receivables or payables):
    GET    /api/{coll}                           List (?status=pending,late&debtor=)
    POST   /api/{coll}                           Create item
    GET    /api/{coll}/{id}                      Get item
    POST   /api/{coll}/{id}/payment              Record payment
    GET    /api/receivables/{id}/penalty         Penalty as of today

  Delinquency:
    GET    /api/delinquency/dossiers             Dossiers + summary
    GET    /api/delinquency/dossiers.xlsx        Same, as a spreadsheet

  Billing:
    POST   /api/billing/batch                    Batch invoice generation

  Collections:
    GET    /api/collections/cases                List (?debtor=&status=)
    POST   /api/collections/cases                Open case
    GET    /api/collections/cases/{id}           Get case
    POST   /api/collections/cases/{id}/status    Transition
    POST   /api/collections/cases/{id}/notes     Append note
    GET    /api/collections/statuses             Status metadata

  Reports:
    GET    /api/reports/ledger                   Period reconciliation (?start=&end= or ?month=)
    GET    /api/reports/ledger.xlsx              Same, as a spreadsheet

  Admin:
    POST   /api/admin/sweep                      Mark overdue items late
    GET    /api/admin/sweep/status               Last scheduled sweep

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: data access, also used directly for debtors
  - Ledger, Billing, Sweeper: billing package services
  - Collections: case workflow
  - Reports: dossiers, penalties, period ledger, exports

REQUEST FLOW:
  1. Parse HTTP request
  2. Call domain service (validation happens there)
  3. Convert to DTO
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: ValidationError, malformed body
  - 404: NotFoundError
  - 409: ConflictError (already paid, case already open)
  - 502: ExternalStoreError
  - 500: anything else

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/condo-ledger/billing"
	"github.com/warp/condo-ledger/collections"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/observability/logger"
	"github.com/warp/condo-ledger/reporting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that can be wiped for demo scenarios.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Pinger is implemented by stores with a reachable backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       core.Store
	Ledger      *billing.Ledger
	Billing     *billing.Service
	Sweeper     *billing.Sweeper
	Collections *collections.Service
	Reports     *reporting.Service
	Clock       core.Clock
	Log         *zap.Logger

	// Set by the server when the overdue scheduler runs
	Scheduler *OverdueSweepScheduler

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler wires every service against one store.
func NewHandler(store core.Store, clock core.Clock, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	ledger := billing.NewLedger(store, log)
	gen := billing.NewGenerator(store, log)
	return &Handler{
		Store:       store,
		Ledger:      ledger,
		Billing:     billing.NewService(store, store, gen, log),
		Sweeper:     billing.NewSweeper(store, clock, log),
		Collections: collections.NewService(store, store, clock, log),
		Reports:     reporting.NewService(store, clock, log),
		Clock:       clock,
		Log:         log.Named("api"),
	}
}

// =============================================================================
// DEBTOR HANDLERS
// =============================================================================

// ListDebtors returns every registered resident.
func (h *Handler) ListDebtors(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.Store.ListDebtors(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to list debtors", core.StoreError("list debtors", err))
		return
	}

	dtos := make([]DebtorDTO, len(debtors))
	for i, d := range debtors {
		dtos[i] = toDebtorDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDebtor registers a resident, replacing any with the same ref.
func (h *Handler) CreateDebtor(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	d := core.Debtor{
		Ref:   core.DebtorRef(strings.TrimSpace(req.Ref)),
		Name:  strings.TrimSpace(req.Name),
		Unit:  req.Unit,
		Owner: req.Owner,
		Email: req.Email,
	}
	if err := d.Validate(); err != nil {
		writeDomainError(w, r, "Invalid debtor", err)
		return
	}
	if err := h.Store.SaveDebtor(r.Context(), d); err != nil {
		writeDomainError(w, r, "Failed to save debtor", core.StoreError("save debtor", err))
		return
	}

	logger.FromContext(r.Context()).Info("debtor saved",
		zap.String("debtor", string(d.Ref)),
		zap.String("email", logger.MaskEmail(d.Email)),
	)
	writeJSON(w, http.StatusCreated, toDebtorDTO(d))
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns the items of one collection, optionally filtered by
// ?status= (comma separated) and ?debtor=.
func (h *Handler) ListItems(coll core.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := itemFilterFromQuery(r)
		if err != nil {
			writeDomainError(w, r, "Invalid filter", err)
			return
		}

		items, err := h.Ledger.List(r.Context(), coll, filter)
		if err != nil {
			writeDomainError(w, r, "Failed to list "+string(coll), err)
			return
		}
		writeJSON(w, http.StatusOK, toItemDTOs(items))
	}
}

// GetItem returns one item.
func (h *Handler) GetItem(coll core.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := h.Ledger.Get(r.Context(), coll, core.ItemID(chi.URLParam(r, "id")))
		if err != nil {
			writeDomainError(w, r, "Failed to get item", err)
			return
		}
		writeJSON(w, http.StatusOK, toItemDTO(item))
	}
}

// CreateItem records a manually entered receivable or payable.
func (h *Handler) CreateItem(coll core.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateItemRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDomainError(w, r, "Invalid request body", err)
			return
		}

		item, err := h.Ledger.Create(r.Context(), coll, req.toItem())
		if err != nil {
			writeDomainError(w, r, "Failed to create item", err)
			return
		}
		writeJSON(w, http.StatusCreated, toItemDTO(item))
	}
}

// RecordPayment marks an item paid.
func (h *Handler) RecordPayment(coll core.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordPaymentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDomainError(w, r, "Invalid request body", err)
			return
		}

		id := core.ItemID(chi.URLParam(r, "id"))
		item, err := h.Ledger.RecordPayment(r.Context(), coll, id, req.PaymentDate, req.PaymentAmount)
		if err != nil {
			writeDomainError(w, r, "Failed to record payment", err)
			return
		}
		writeJSON(w, http.StatusOK, toItemDTO(item))
	}
}

// GetPenalty returns the penalty owed on one receivable as of today.
func (h *Handler) GetPenalty(w http.ResponseWriter, r *http.Request) {
	item, penalty, err := h.Reports.Penalty(r.Context(), core.ItemID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "Failed to compute penalty", err)
		return
	}

	dto := toPenaltyDTO(penalty)
	dto.ItemID = string(item.ID)
	dto.AsOf = h.Reports.Today().String()
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// DELINQUENCY HANDLERS
// =============================================================================

// ListDossiers returns every debtor dossier with the headline summary.
func (h *Handler) ListDossiers(w http.ResponseWriter, r *http.Request) {
	dossiers, err := h.Reports.Dossiers(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to build dossiers", err)
		return
	}
	writeJSON(w, http.StatusOK, toDossiersResponse(dossiers, h.Reports.Today()))
}

// ExportDossiers returns the dossiers as an XLSX workbook.
func (h *Handler) ExportDossiers(w http.ResponseWriter, r *http.Request) {
	dossiers, err := h.Reports.Dossiers(r.Context())
	if err != nil {
		writeDomainError(w, r, "Failed to build dossiers", err)
		return
	}

	today := h.Reports.Today()
	data, err := reporting.WriteDossiersXLSX(dossiers, today)
	if err != nil {
		writeDomainError(w, r, "Failed to export dossiers", err)
		return
	}
	writeXLSX(w, fmt.Sprintf("dossiers-%s.xlsx", today), data)
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// RunBatch issues one charge per targeted debtor.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	target, err := billing.ParseTarget(req.Target)
	if err != nil {
		writeDomainError(w, r, "Invalid target", err)
		return
	}

	res, err := h.Billing.Run(r.Context(), billing.BatchRequest{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	}, target)
	if err != nil {
		writeDomainError(w, r, "Failed to generate batch", err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResultDTO(res))
}

// =============================================================================
// COLLECTION CASE HANDLERS
// =============================================================================

// ListCases returns cases, optionally filtered by ?debtor= and ?status=.
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	var filter core.CaseFilter
	if ref := strings.TrimSpace(r.URL.Query().Get("debtor")); ref != "" {
		filter.DebtorRef = core.RefPtr(ref)
	}
	for _, s := range splitQuery(r.URL.Query().Get("status")) {
		status, err := core.ParseCaseStatus(s)
		if err != nil {
			writeDomainError(w, r, "Invalid filter", err)
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	cases, err := h.Collections.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "Failed to list cases", err)
		return
	}

	dtos := make([]CaseDTO, len(cases))
	for i, c := range cases {
		dtos[i] = toCaseDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// OpenCase opens a collection case against a debtor's current dossier.
func (h *Handler) OpenCase(w http.ResponseWriter, r *http.Request) {
	var req OpenCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	c, err := h.Collections.OpenForDebtor(r.Context(), core.DebtorRef(strings.TrimSpace(req.DebtorRef)), req.Checklist)
	if err != nil {
		writeDomainError(w, r, "Failed to open case", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCaseDTO(c))
}

// GetCase returns one case.
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.Collections.Get(r.Context(), core.CaseID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "Failed to get case", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(c))
}

// TransitionCase moves a case to the requested status.
func (h *Handler) TransitionCase(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	target, err := core.ParseCaseStatus(req.Status)
	if err != nil {
		writeDomainError(w, r, "Invalid status", err)
		return
	}

	c, err := h.Collections.Transition(r.Context(), core.CaseID(chi.URLParam(r, "id")), target)
	if err != nil {
		writeDomainError(w, r, "Failed to change status", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(c))
}

// AddCaseNote appends a timestamped note.
func (h *Handler) AddCaseNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, "Invalid request body", err)
		return
	}

	c, err := h.Collections.AddNote(r.Context(), core.CaseID(chi.URLParam(r, "id")), req.Text)
	if err != nil {
		writeDomainError(w, r, "Failed to add note", err)
		return
	}
	writeJSON(w, http.StatusOK, toCaseDTO(c))
}

// ListCaseStatuses returns the display metadata for every case status.
func (h *Handler) ListCaseStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, collections.Statuses())
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// LedgerReport reconciles the requested period.
func (h *Handler) LedgerReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeDomainError(w, r, "Invalid period", err)
		return
	}

	lp, err := h.Reports.Period(r.Context(), period)
	if err != nil {
		writeDomainError(w, r, "Failed to reconcile period", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerPeriodDTO(lp))
}

// ExportLedger returns the period reconciliation as an XLSX workbook.
func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		writeDomainError(w, r, "Invalid period", err)
		return
	}

	lp, err := h.Reports.Period(r.Context(), period)
	if err != nil {
		writeDomainError(w, r, "Failed to reconcile period", err)
		return
	}
	data, err := reporting.WriteLedgerXLSX(lp, h.Reports.Today())
	if err != nil {
		writeDomainError(w, r, "Failed to export ledger", err)
		return
	}
	writeXLSX(w, fmt.Sprintf("ledger-%s-%s.xlsx", period.Start, period.End), data)
}

// periodFromQuery reads ?start=&end=, or ?month=YYYY-MM, defaulting to the
// current calendar month.
func (h *Handler) periodFromQuery(r *http.Request) (core.Period, error) {
	q := r.URL.Query()

	if month := q.Get("month"); month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return core.Period{}, &core.ValidationError{Field: "month", Reason: "use YYYY-MM"}
		}
		return core.MonthPeriod(t.Year(), t.Month()), nil
	}

	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		today := core.Today(h.Clock)
		return core.MonthPeriod(today.Year(), today.Month()), nil
	}
	if start == "" || end == "" {
		return core.Period{}, &core.ValidationError{Field: "period", Reason: "start and end are both required"}
	}

	s, err := core.ParseDate(start)
	if err != nil {
		return core.Period{}, err
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return core.Period{}, err
	}
	p := core.Period{Start: s, End: e}
	return p, p.Validate()
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunSweep marks every past-due pending item late.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	marked, err := h.Sweeper.MarkOverdue(r.Context())
	if err != nil {
		writeDomainError(w, r, "Sweep finished with errors", err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{Marked: marked})
}

// SweepStatus reports the last scheduled sweep, or null when the scheduler
// is not running.
func (h *Handler) SweepStatus(w http.ResponseWriter, r *http.Request) {
	if h.Scheduler == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Scheduler.LastRun())
}

// Health reports whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the engine's error kinds onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(message, zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case core.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case core.IsStoreFailure(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", reporting.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// decodeJSON rejects unknown fields and reports malformed bodies as
// validation errors.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return &core.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

func itemFilterFromQuery(r *http.Request) (core.ItemFilter, error) {
	var filter core.ItemFilter
	q := r.URL.Query()
	if ref := strings.TrimSpace(q.Get("debtor")); ref != "" {
		filter.DebtorRef = core.RefPtr(ref)
	}
	for _, s := range splitQuery(q.Get("status")) {
		status, err := core.ParseItemStatus(s)
		if err != nil {
			return core.ItemFilter{}, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	return filter, nil
}

func splitQuery(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
