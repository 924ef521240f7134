package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the closed set of account kinds.
type AccountType string

const (
	AccountCash    AccountType = "cash"
	AccountSavings AccountType = "savings"
	AccountCredit  AccountType = "credit"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountSavings, AccountCredit:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive   AccountStatus = "Active"
	StatusInactive AccountStatus = "Inactive"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// TransactionType is the closed set of transaction kinds. A deposit is
// recorded with a positive signed amount, an expense with a negative one,
// and a transfer keeps the sign the caller supplied.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// ReportType selects the aggregation window of a report.
type ReportType string

const (
	ReportDaily   ReportType = "Daily"
	ReportMonthly ReportType = "Monthly"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportDaily || t == ReportMonthly
}

// User represents a registered user.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account represents a monetary account owned by one user. Balance is a
// cached value kept equal to the opening balance plus the signed sum of
// all transactions recorded against the account; only the ledger writes it.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Type      AccountType     `json:"type"`
	Status    AccountStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction is one immutable ledger entry. Amount is the signed value
// applied to the account balance.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	AccountID   int64           `json:"account_id"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Report is a generated aggregate over a user's transactions. Content is
// fixed at generation time; reports are never updated.
type Report struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      ReportType `json:"type"`
	Date      time.Time  `json:"date"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

// Session represents a logged-in browser session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
