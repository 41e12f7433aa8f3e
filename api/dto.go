/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain records in core from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY AND DATES:
  Amounts are rendered as 2-digit strings ("1033.33"); rounding happens
  here and nowhere else. Dates are "YYYY-MM-DD", instants RFC3339.
  Request amounts accept a JSON string or number.

TYPES:
  Debtors:      DebtorDTO, CreateDebtorRequest
  Items:        ItemDTO, CreateItemRequest, RecordPaymentRequest
  Delinquency:  PenaltyDTO, DossierDTO, DossierItemDTO, DossiersResponse
  Billing:      BatchRequestDTO, BatchResultDTO
  Collections:  CaseDTO, OpenCaseRequest, TransitionRequest, NoteRequest
  Reports:      LedgerPeriodDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done by the domain packages, not in DTOs. DTOs are pure
  data carriers plus conversion helpers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/condo-ledger/billing"
	"github.com/warp/condo-ledger/collections"
	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
	"github.com/warp/condo-ledger/reporting"
)

// =============================================================================
// DEBTORS
// =============================================================================

// DebtorDTO represents a resident in API responses.
type DebtorDTO struct {
	Ref   string `json:"ref"`
	Name  string `json:"name"`
	Unit  string `json:"unit,omitempty"`
	Owner bool   `json:"owner"`
	Email string `json:"email,omitempty"`
}

// CreateDebtorRequest registers or updates a resident.
type CreateDebtorRequest struct {
	Ref   string `json:"ref"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Owner bool   `json:"owner"`
	Email string `json:"email"`
}

func toDebtorDTO(d core.Debtor) DebtorDTO {
	return DebtorDTO{
		Ref:   string(d.Ref),
		Name:  d.Name,
		Unit:  d.Unit,
		Owner: d.Owner,
		Email: d.Email,
	}
}

// =============================================================================
// ITEMS
// =============================================================================

// ItemDTO represents a receivable or payable.
type ItemDTO struct {
	ID             string  `json:"id"`
	DebtorRef      *string `json:"debtor_ref"`
	Description    string  `json:"description"`
	OriginalAmount string  `json:"original_amount"`
	DueDate        string  `json:"due_date"`
	Status         string  `json:"status"`
	PaymentDate    *string `json:"payment_date"`
	PaymentAmount  *string `json:"payment_amount"`
	CycleKey       string  `json:"cycle_key"`
}

// CreateItemRequest is a manually entered item. ID and cycle key are
// optional; status defaults to pending.
type CreateItemRequest struct {
	ID             string     `json:"id"`
	DebtorRef      *string    `json:"debtor_ref"`
	Description    string     `json:"description"`
	OriginalAmount core.Money `json:"original_amount"`
	DueDate        core.Date  `json:"due_date"`
	CycleKey       string     `json:"cycle_key"`
}

func (r CreateItemRequest) toItem() core.BillableItem {
	item := core.BillableItem{
		ID:             core.ItemID(r.ID),
		Description:    r.Description,
		OriginalAmount: r.OriginalAmount,
		DueDate:        r.DueDate,
		CycleKey:       r.CycleKey,
	}
	if r.DebtorRef != nil {
		item.DebtorRef = core.RefPtr(*r.DebtorRef)
	}
	return item
}

// RecordPaymentRequest marks an item paid.
type RecordPaymentRequest struct {
	PaymentDate   core.Date  `json:"payment_date"`
	PaymentAmount core.Money `json:"payment_amount"`
}

func toItemDTO(item core.BillableItem) ItemDTO {
	dto := ItemDTO{
		ID:             string(item.ID),
		Description:    item.Description,
		OriginalAmount: item.OriginalAmount.Display(),
		DueDate:        item.DueDate.String(),
		Status:         string(item.Status),
		CycleKey:       item.CycleKey,
	}
	if item.DebtorRef != nil {
		ref := string(*item.DebtorRef)
		dto.DebtorRef = &ref
	}
	if item.PaymentDate != nil {
		d := item.PaymentDate.String()
		dto.PaymentDate = &d
	}
	if item.PaymentAmount != nil {
		a := item.PaymentAmount.Display()
		dto.PaymentAmount = &a
	}
	return dto
}

func toItemDTOs(items []core.BillableItem) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	return dtos
}

// =============================================================================
// DELINQUENCY
// =============================================================================

// PenaltyDTO is the penalty breakdown of one item.
type PenaltyDTO struct {
	ItemID         string  `json:"item_id,omitempty"`
	OriginalAmount string  `json:"original_amount"`
	Fine           string  `json:"fine"`
	Interest       string  `json:"interest"`
	DaysLate       int     `json:"days_late"`
	CorrectedTotal string  `json:"corrected_total"`
	Collected      *string `json:"collected,omitempty"`
	AsOf           string  `json:"as_of,omitempty"`
}

func toPenaltyDTO(p delinquency.PenaltyResult) PenaltyDTO {
	dto := PenaltyDTO{
		OriginalAmount: p.OriginalAmount.Display(),
		Fine:           p.Fine.Display(),
		Interest:       p.Interest.Display(),
		DaysLate:       p.DaysLate,
		CorrectedTotal: p.CorrectedTotal.Display(),
	}
	if p.Collected != nil {
		c := p.Collected.Display()
		dto.Collected = &c
	}
	return dto
}

// DossierItemDTO is one overdue item inside a dossier.
type DossierItemDTO struct {
	Item    ItemDTO    `json:"item"`
	Penalty PenaltyDTO `json:"penalty"`
}

// DossierDTO is one debtor's aggregated delinquency.
type DossierDTO struct {
	DebtorRef     string           `json:"debtor_ref"`
	Severity      string           `json:"severity"`
	Items         []DossierItemDTO `json:"items"`
	TotalOriginal string           `json:"total_original"`
	TotalFine     string           `json:"total_fine"`
	TotalInterest string           `json:"total_interest"`
	TotalDebt     string           `json:"total_debt"`
	MaxDaysLate   int              `json:"max_days_late"`
}

// SummaryDTO is the headline of the delinquency view.
type SummaryDTO struct {
	Debtors       int    `json:"debtors"`
	Critical      int    `json:"critical"`
	Items         int    `json:"items"`
	TotalOriginal string `json:"total_original"`
	TotalFine     string `json:"total_fine"`
	TotalInterest string `json:"total_interest"`
	TotalDebt     string `json:"total_debt"`
}

// DossiersResponse wraps the dossier list with its summary.
type DossiersResponse struct {
	AsOf     string       `json:"as_of"`
	Summary  SummaryDTO   `json:"summary"`
	Dossiers []DossierDTO `json:"dossiers"`
}

func toDossierDTO(d delinquency.Dossier) DossierDTO {
	dto := DossierDTO{
		DebtorRef:     string(d.DebtorRef),
		Severity:      string(d.Severity()),
		Items:         make([]DossierItemDTO, len(d.Items)),
		TotalOriginal: d.TotalOriginal.Display(),
		TotalFine:     d.TotalFine.Display(),
		TotalInterest: d.TotalInterest.Display(),
		TotalDebt:     d.TotalDebt.Display(),
		MaxDaysLate:   d.MaxDaysLate,
	}
	for i, di := range d.Items {
		dto.Items[i] = DossierItemDTO{Item: toItemDTO(di.Item), Penalty: toPenaltyDTO(di.Penalty)}
	}
	return dto
}

func toDossiersResponse(dossiers []delinquency.Dossier, asOf core.Date) DossiersResponse {
	s := delinquency.Summarize(dossiers)
	resp := DossiersResponse{
		AsOf: asOf.String(),
		Summary: SummaryDTO{
			Debtors:       s.Debtors,
			Critical:      s.Critical,
			Items:         s.Items,
			TotalOriginal: s.TotalOriginal.Display(),
			TotalFine:     s.TotalFine.Display(),
			TotalInterest: s.TotalInterest.Display(),
			TotalDebt:     s.TotalDebt.Display(),
		},
		Dossiers: make([]DossierDTO, len(dossiers)),
	}
	for i, d := range dossiers {
		resp.Dossiers[i] = toDossierDTO(d)
	}
	return resp
}

// =============================================================================
// BILLING
// =============================================================================

// BatchRequestDTO asks for one charge per targeted debtor.
type BatchRequestDTO struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	DueDate     core.Date  `json:"due_date"`
	Target      string     `json:"target"` // all, owners, non_owners
}

// SkipDTO is a debtor left out of a batch.
type SkipDTO struct {
	DebtorRef string `json:"debtor_ref"`
	Reason    string `json:"reason"`
	Failed    bool   `json:"failed"`
}

// BatchResultDTO reports what a batch did.
type BatchResultDTO struct {
	Created int       `json:"created"`
	Items   []ItemDTO `json:"items"`
	Skipped []SkipDTO `json:"skipped"`
}

func toBatchResultDTO(res billing.BatchResult) BatchResultDTO {
	dto := BatchResultDTO{
		Created: res.Created,
		Items:   toItemDTOs(res.CreatedItems),
		Skipped: make([]SkipDTO, len(res.Skipped)),
	}
	for i, s := range res.Skipped {
		dto.Skipped[i] = SkipDTO{DebtorRef: string(s.Debtor), Reason: s.Reason, Failed: s.Failed}
	}
	return dto
}

// =============================================================================
// COLLECTIONS
// =============================================================================

// CaseDTO represents a collection case.
type CaseDTO struct {
	ID               string                 `json:"id"`
	DebtorRef        string                 `json:"debtor_ref"`
	TotalDebtAtOpen  string                 `json:"total_debt_at_open"`
	Status           string                 `json:"status"`
	StatusInfo       collections.StatusInfo `json:"status_info"`
	NotificationDate string                 `json:"notification_date"`
	ProtestDate      *string                `json:"protest_date"`
	SettlementDate   *string                `json:"settlement_date"`
	Notes            string                 `json:"notes"`
}

// OpenCaseRequest opens a case against a debtor's current dossier.
type OpenCaseRequest struct {
	DebtorRef string                        `json:"debtor_ref"`
	Checklist collections.EvidenceChecklist `json:"checklist"`
}

// TransitionRequest moves a case to another status.
type TransitionRequest struct {
	Status string `json:"status"`
}

// NoteRequest appends a note to a case.
type NoteRequest struct {
	Text string `json:"text"`
}

func toCaseDTO(c core.CollectionCase) CaseDTO {
	return CaseDTO{
		ID:               string(c.ID),
		DebtorRef:        string(c.DebtorRef),
		TotalDebtAtOpen:  c.TotalDebtAtOpen.Display(),
		Status:           string(c.Status),
		StatusInfo:       collections.Describe(c.Status),
		NotificationDate: c.NotificationDate.Format(time.RFC3339),
		ProtestDate:      formatInstant(c.ProtestDate),
		SettlementDate:   formatInstant(c.SettlementDate),
		Notes:            c.Notes,
	}
}

func formatInstant(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// =============================================================================
// REPORTS
// =============================================================================

// LedgerPeriodDTO is a reconciled accounting period.
type LedgerPeriodDTO struct {
	PeriodStart                 string `json:"period_start"`
	PeriodEnd                   string `json:"period_end"`
	PreviousBalance             string `json:"previous_balance"`
	PeriodRevenue               string `json:"period_revenue"`
	PeriodExpenses              string `json:"period_expenses"`
	ClosingBalance              string `json:"closing_balance"`
	OutstandingDelinquencyTotal string `json:"outstanding_delinquency_total"`
	ReceiptCount                int    `json:"receipt_count"`
	ExpenseCount                int    `json:"expense_count"`
	FutureExcluded              int    `json:"future_excluded"`
	DelinquentItems             int    `json:"delinquent_items"`
}

func toLedgerPeriodDTO(lp reporting.LedgerPeriod) LedgerPeriodDTO {
	return LedgerPeriodDTO{
		PeriodStart:                 lp.Period.Start.String(),
		PeriodEnd:                   lp.Period.End.String(),
		PreviousBalance:             lp.PreviousBalance.Display(),
		PeriodRevenue:               lp.PeriodRevenue.Display(),
		PeriodExpenses:              lp.PeriodExpenses.Display(),
		ClosingBalance:              lp.ClosingBalance.Display(),
		OutstandingDelinquencyTotal: lp.OutstandingDelinquencyTotal.Display(),
		ReceiptCount:                lp.ReceiptCount,
		ExpenseCount:                lp.ExpenseCount,
		FutureExcluded:              lp.FutureExcluded,
		DelinquentItems:             lp.DelinquentItems,
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS AND MISC
// =============================================================================

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SweepResponse reports an overdue sweep.
type SweepResponse struct {
	Marked int `json:"marked"`
}
