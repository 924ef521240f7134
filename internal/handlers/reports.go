package handlers

import (
	"fmt"
	"net/http"
	"time"

	"finance-tracker/internal/models"
)

// ReportItem represents a generated report in the list view.
type ReportItem struct {
	models.Report
	DateDisplay    string
	CreatedDisplay string
}

// ReportsViewModel is the data passed to the reports page template.
type ReportsViewModel struct {
	Reports []ReportItem
	Types   []models.ReportType
}

var reportTypes = []models.ReportType{
	models.ReportDaily,
	models.ReportMonthly,
}

// Reports renders the report page with previously generated reports.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	reports, err := h.ledger.ListReports(user.ID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	items := make([]ReportItem, 0, len(reports))
	for _, rep := range reports {
		format := "Jan 02, 2006"
		if rep.Type == models.ReportMonthly {
			format = "January 2006"
		}
		items = append(items, ReportItem{
			Report:         rep,
			DateDisplay:    rep.Date.Format(format),
			CreatedDisplay: rep.CreatedAt.Format("Jan 02, 2006 15:04"),
		})
	}

	h.render(w, r, "reports.html", ReportsViewModel{Reports: items, Types: reportTypes})
}

// GenerateReport handles the report form submission.
func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	reportType := models.ReportType(r.FormValue("type"))

	// An empty date means "today"; the generator fills it in
	var date time.Time
	if dateStr := r.FormValue("date"); dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid date %q", dateStr), http.StatusBadRequest)
			return
		}
	}

	if _, err := h.ledger.GenerateReport(user.ID, reportType, date); err != nil {
		h.renderError(w, err)
		return
	}

	w.Header().Set("HX-Location", `{"path":"/reports", "target":"#content"}`)
}
