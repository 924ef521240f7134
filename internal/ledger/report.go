package ledger

import (
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/money"

	"github.com/shopspring/decimal"
)

// reportTypes is the fixed order of the per-type subtotal lines, so that
// two reports over the same transactions render identical content.
var reportTypes = []models.TransactionType{
	models.TypeDeposit,
	models.TypeExpense,
	models.TypeTransfer,
}

// GenerateReport aggregates a user's transactions in the window selected by
// the report type and persists the result. Daily covers the given day,
// Monthly the calendar month containing it; a zero date defaults to today
// (UTC). Accounts and transactions are never touched, and every call
// appends a new report row even when the content is unchanged.
func (s *Service) GenerateReport(userID int64, reportType models.ReportType, date time.Time) (*models.Report, error) {
	if !reportType.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrValidation, reportType)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	date = day(date.UTC())

	var from, to time.Time
	switch reportType {
	case models.ReportDaily:
		from = date
		to = from.AddDate(0, 0, 1)
	case models.ReportMonthly:
		from = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	}

	transactions, err := s.db.ListTransactionsInRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions: %v", ErrStorage, err)
	}

	content := buildReportContent(reportType, date, transactions)

	report, err := s.db.CreateReport(userID, reportType, date, content)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: create report: %v", ErrStorage, err)
	}
	return report, nil
}

// ListReports returns a user's reports, newest first.
func (s *Service) ListReports(userID int64) ([]models.Report, error) {
	reports, err := s.db.ListReports(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reports: %v", ErrStorage, err)
	}
	return reports, nil
}

func buildReportContent(reportType models.ReportType, date time.Time, transactions []models.Transaction) string {
	inflow := decimal.Zero
	outflow := decimal.Zero
	net := decimal.Zero
	byType := make(map[models.TransactionType]decimal.Decimal)

	for _, t := range transactions {
		if t.Amount.IsPositive() {
			inflow = inflow.Add(t.Amount)
		} else {
			outflow = outflow.Add(t.Amount.Abs())
		}
		net = net.Add(t.Amount)
		byType[t.Type] = byType[t.Type].Add(t.Amount)
	}

	period := date.Format("2006-01-02")
	if reportType == models.ReportMonthly {
		period = date.Format("2006-01")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s report for %s\n", reportType, period)
	fmt.Fprintf(&b, "Transactions: %d\n", len(transactions))
	fmt.Fprintf(&b, "Total inflow: %s\n", money.Format(inflow))
	fmt.Fprintf(&b, "Total outflow: %s\n", money.Format(outflow))
	fmt.Fprintf(&b, "Net change: %s\n", money.Format(net))
	b.WriteString("By type:\n")
	for _, txType := range reportTypes {
		fmt.Fprintf(&b, "  %s: %s\n", txType, money.Format(byType[txType]))
	}
	return b.String()
}
