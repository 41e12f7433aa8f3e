package reporting

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/warp/condo-ledger/core"
	"github.com/warp/condo-ledger/delinquency"
)

// XLSXContentType is the media type of the exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteLedgerXLSX renders a reconciled period as a one-sheet workbook.
func WriteLedgerXLSX(lp LedgerPeriod, today core.Date) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "ledger"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Period ledger"},
		{},
		{"Period start", lp.Period.Start.String()},
		{"Period end", lp.Period.End.String()},
		{"Previous balance", amount(lp.PreviousBalance)},
		{"Period revenue", amount(lp.PeriodRevenue)},
		{"Period expenses", amount(lp.PeriodExpenses)},
		{"Closing balance", amount(lp.ClosingBalance)},
		{},
		{fmt.Sprintf("Outstanding delinquency as of %s", today), amount(lp.OutstandingDelinquencyTotal)},
		{"Delinquent items", lp.DelinquentItems},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cell("A", i+1), &row); err != nil {
			return nil, err
		}
	}

	return write(f)
}

// WriteDossiersXLSX renders dossiers as a summary sheet plus one line per
// overdue item.
func WriteDossiersXLSX(dossiers []delinquency.Dossier, today core.Date) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary, items := "dossiers", "items"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(items); err != nil {
		return nil, err
	}

	header := []interface{}{"Debtor", "Items", "Principal", "Fine", "Interest", "Total debt", "Max days late", "Severity"}
	if err := f.SetSheetRow(summary, "A1", &header); err != nil {
		return nil, err
	}
	itemHeader := []interface{}{"Debtor", "Item", "Description", "Due date", "Days late", "Principal", "Fine", "Interest", "Total"}
	if err := f.SetSheetRow(items, "A1", &itemHeader); err != nil {
		return nil, err
	}

	line := 2
	for i, d := range dossiers {
		row := []interface{}{
			string(d.DebtorRef),
			len(d.Items),
			amount(d.TotalOriginal),
			amount(d.TotalFine),
			amount(d.TotalInterest),
			amount(d.TotalDebt),
			d.MaxDaysLate,
			string(d.Severity()),
		}
		if err := f.SetSheetRow(summary, cell("A", i+2), &row); err != nil {
			return nil, err
		}
		for _, it := range d.Items {
			row := []interface{}{
				string(d.DebtorRef),
				string(it.Item.ID),
				it.Item.Description,
				it.Item.DueDate.String(),
				it.Penalty.DaysLate,
				amount(it.Penalty.OriginalAmount),
				amount(it.Penalty.Fine),
				amount(it.Penalty.Interest),
				amount(it.Penalty.CorrectedTotal),
			}
			if err := f.SetSheetRow(items, cell("A", line), &row); err != nil {
				return nil, err
			}
			line++
		}
	}

	s := delinquency.Summarize(dossiers)
	footer := []interface{}{fmt.Sprintf("As of %s", today), s.Items, amount(s.TotalOriginal), amount(s.TotalFine), amount(s.TotalInterest), amount(s.TotalDebt)}
	if err := f.SetSheetRow(summary, cell("A", len(dossiers)+3), &footer); err != nil {
		return nil, err
	}

	return write(f)
}

// amount rounds for display; spreadsheets hold the 2-decimal figure.
func amount(m core.Money) float64 {
	return m.Round().Value.InexactFloat64()
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
