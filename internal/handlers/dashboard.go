package handlers

import (
	"net/http"
	"time"

	"finance-tracker/internal/money"

	"github.com/shopspring/decimal"
)

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	UserName     string
	TotalBalance string
	MonthInflow  string
	MonthOutflow string
	MonthName    string
	Accounts     []AccountItem
	Recent       []TransactionItem
}

// recentLimit caps how many transactions the dashboard shows.
const recentLimit = 10

// Dashboard renders the overview page: account balances plus the current
// month's inflow and outflow.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	accounts, err := h.ledger.ListAccounts(user.ID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthly, err := h.ledger.ListTransactions(user.ID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		h.renderError(w, err)
		return
	}

	inflow := decimal.Zero
	outflow := decimal.Zero
	for _, t := range monthly {
		if t.Amount.IsPositive() {
			inflow = inflow.Add(t.Amount)
		} else {
			outflow = outflow.Add(t.Amount.Abs())
		}
	}

	recent := monthly
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	h.render(w, r, "dashboard.html", DashboardViewModel{
		UserName:     user.Name,
		TotalBalance: money.Format(total),
		MonthInflow:  money.Format(inflow),
		MonthOutflow: money.Format(outflow),
		MonthName:    now.Month().String(),
		Accounts:     accountItems(accounts),
		Recent:       transactionItems(recent),
	})
}
