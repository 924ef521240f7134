package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/money"
)

// TypeStyle defines the visual style for a transaction type.
type TypeStyle struct {
	Icon  string
	Color string
}

var typeStyles = map[models.TransactionType]TypeStyle{
	models.TypeDeposit:  {"⬆️", "#34d399"},
	models.TypeExpense:  {"⬇️", "#f87171"},
	models.TypeTransfer: {"🔁", "#60a5fa"},
}

func getTypeStyle(txType models.TransactionType) TypeStyle {
	if s, ok := typeStyles[txType]; ok {
		return s
	}
	return TypeStyle{"📦", "#94a3b8"}
}

// TransactionItem represents a transaction in the list view.
type TransactionItem struct {
	models.Transaction
	AmountDisplay string
	DateDisplay   string
	TypeStyle     TypeStyle
	IsInflow      bool
}

// TransactionsViewModel is the data passed to the transactions page template.
type TransactionsViewModel struct {
	Accounts     []AccountItem
	Transactions []TransactionItem
	Types        []models.TransactionType
}

var transactionTypes = []models.TransactionType{
	models.TypeDeposit,
	models.TypeExpense,
	models.TypeTransfer,
}

// Transactions renders the transaction entry page with the recent history.
func (h *Handlers) Transactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	accounts, err := h.ledger.ListAccounts(user.ID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := h.ledger.ListTransactions(user.ID, from, to)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, r, "transactions.html", TransactionsViewModel{
		Accounts:     accountItems(accounts),
		Transactions: transactionItems(transactions),
		Types:        transactionTypes,
	})
}

// RecordTransaction handles the transaction form submission.
func (h *Handlers) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	accountID, err := strconv.ParseInt(r.FormValue("account_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account", http.StatusBadRequest)
		return
	}

	amount, err := money.Parse(r.FormValue("amount"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// An empty date means "today"; the ledger fills it in
	var date time.Time
	if dateStr := r.FormValue("date"); dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid date %q", dateStr), http.StatusBadRequest)
			return
		}
	}

	txType := models.TransactionType(r.FormValue("type"))
	description := r.FormValue("description")

	if _, err := h.ledger.RecordTransaction(user.ID, accountID, date, txType, amount, description); err != nil {
		h.renderError(w, err)
		return
	}

	w.Header().Set("HX-Location", `{"path":"/transactions", "target":"#content"}`)
}

func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" && toStr == "" {
		return time.Time{}, time.Time{}, nil
	}
	from, err = time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", fromStr)
	}
	to, err = time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", toStr)
	}
	// The range end is exclusive; include the whole "to" day
	return from, to.AddDate(0, 0, 1), nil
}

func transactionItems(transactions []models.Transaction) []TransactionItem {
	items := make([]TransactionItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionItem{
			Transaction:   t,
			AmountDisplay: money.Format(t.Amount),
			DateDisplay:   t.Date.Format("Jan 02, 2006"),
			TypeStyle:     getTypeStyle(t.Type),
			IsInflow:      t.Amount.IsPositive(),
		})
	}
	return items
}
