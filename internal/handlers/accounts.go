package handlers

import (
	"net/http"
	"strconv"

	"finance-tracker/internal/models"
	"finance-tracker/internal/money"
)

// AccountItem represents an account in the list views.
type AccountItem struct {
	models.Account
	BalanceDisplay string
	IsActive       bool
}

// AccountsViewModel is the data passed to the accounts page template.
type AccountsViewModel struct {
	Accounts []AccountItem
	Types    []models.AccountType
	Error    string
}

var accountTypes = []models.AccountType{
	models.AccountCash,
	models.AccountSavings,
	models.AccountCredit,
}

// Accounts renders the account management page.
func (h *Handlers) Accounts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	accounts, err := h.ledger.ListAccounts(user.ID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, r, "accounts.html", AccountsViewModel{
		Accounts: accountItems(accounts),
		Types:    accountTypes,
	})
}

// CreateAccount handles the new-account form submission.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	opening, err := money.Parse(r.FormValue("opening_balance"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	accountType := models.AccountType(r.FormValue("type"))

	if _, err := h.ledger.CreateAccount(user.ID, name, opening, accountType); err != nil {
		h.renderError(w, err)
		return
	}

	w.Header().Set("HX-Location", `{"path":"/accounts", "target":"#content"}`)
}

// ToggleAccountStatus flips an account between Active and Inactive.
func (h *Handlers) ToggleAccountStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	accountID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	account, err := h.ledger.GetAccount(user.ID, accountID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	status := models.StatusInactive
	if account.Status == models.StatusInactive {
		status = models.StatusActive
	}

	if err := h.ledger.SetAccountStatus(user.ID, accountID, status); err != nil {
		h.renderError(w, err)
		return
	}

	w.Header().Set("HX-Location", `{"path":"/accounts", "target":"#content"}`)
}

func accountItems(accounts []models.Account) []AccountItem {
	items := make([]AccountItem, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, AccountItem{
			Account:        a,
			BalanceDisplay: money.Format(a.Balance),
			IsActive:       a.Status == models.StatusActive,
		})
	}
	return items
}
