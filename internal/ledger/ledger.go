// Package ledger is the balance engine: it creates accounts, records
// transactions against them, and generates reports. It is the only writer
// of account balances, and it keeps the invariant
//
//	balance == opening balance + sum of signed transaction amounts
//
// under every code path, including concurrent records and partial failures.
package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/money"
	"finance-tracker/internal/storage"

	"github.com/shopspring/decimal"
)

// maxRetries bounds how often a contended append is retried before the
// conflict is surfaced as ErrConcurrency.
const maxRetries = 3

// Service exposes the core ledger operations over the entity store.
type Service struct {
	db *storage.DB

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a ledger service backed by db.
func NewService(db *storage.DB) *Service {
	return &Service{db: db, locks: make(map[int64]*sync.Mutex)}
}

// accountLock returns the mutex serializing writes to one account.
func (s *Service) accountLock(accountID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

// CreateAccount opens a new account for a user. The account starts Active
// with its balance equal to the opening balance.
func (s *Service) CreateAccount(userID int64, name string, openingBalance decimal.Decimal, accountType models.AccountType) (*models.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name is empty", ErrValidation)
	}
	if openingBalance.Exponent() < -money.MaxPrecision {
		return nil, fmt.Errorf("%w: opening balance %s has more than %d decimal places", ErrValidation, openingBalance, money.MaxPrecision)
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}

	account, err := s.db.CreateAccount(userID, name, openingBalance, accountType)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: create account: %v", ErrStorage, err)
	}
	return account, nil
}

// GetAccount returns an account owned by the given user.
func (s *Service) GetAccount(userID, accountID int64) (*models.Account, error) {
	account, err := s.db.GetAccount(userID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %d", ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("%w: get account: %v", ErrStorage, err)
	}
	return account, nil
}

// ListAccounts returns all accounts owned by a user.
func (s *Service) ListAccounts(userID int64) ([]models.Account, error) {
	accounts, err := s.db.ListAccounts(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", ErrStorage, err)
	}
	return accounts, nil
}

// SetAccountStatus transitions an account between Active and Inactive.
// Inactive accounts reject new transactions but remain readable.
func (s *Service) SetAccountStatus(userID, accountID int64, status models.AccountStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown account status %q", ErrValidation, status)
	}
	if _, err := s.GetAccount(userID, accountID); err != nil {
		return err
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.db.UpdateAccountStatus(accountID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: account %d", ErrNotFound, accountID)
		}
		return fmt.Errorf("%w: update status: %v", ErrStorage, err)
	}
	return nil
}

// RecordTransaction validates and appends one transaction, applying its
// signed amount to the owning account's balance atomically. A zero date
// defaults to today (UTC); dates are kept at day granularity. The account
// lock is held across the read-compute-write sequence so concurrent records
// against the same account never lose an update.
func (s *Service) RecordTransaction(userID, accountID int64, date time.Time, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, txType)
	}
	if amount.Exponent() < -money.MaxPrecision {
		return nil, fmt.Errorf("%w: amount %s has more than %d decimal places", ErrValidation, amount, money.MaxPrecision)
	}

	signed, err := signedAmount(txType, amount)
	if err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = time.Now().UTC()
	}
	date = day(date.UTC())

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.GetAccount(userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == models.StatusInactive {
		return nil, fmt.Errorf("%w: account %d", ErrAccountInactive, accountID)
	}

	t := &models.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		Date:        date,
		Type:        txType,
		Amount:      signed,
		Description: description,
	}
	newBalance := account.Balance.Add(signed)

	var recorded *models.Transaction
	for attempt := 0; ; attempt++ {
		recorded, err = s.db.AppendTransaction(t, newBalance)
		if err == nil {
			break
		}
		if !isBusy(err) {
			return nil, fmt.Errorf("%w: append transaction: %v", ErrStorage, err)
		}
		if attempt+1 >= maxRetries {
			return nil, fmt.Errorf("%w: account %d busy after %d attempts", ErrConcurrency, accountID, maxRetries)
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}

	return recorded, nil
}

// signedAmount applies the sign convention of the transaction type: a
// deposit adds, an expense subtracts, a transfer keeps the caller's sign
// (positive into this account, negative out of it).
func signedAmount(txType models.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch txType {
	case models.TypeDeposit:
		if !amount.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: deposit amount must be positive, got %s", ErrValidation, amount)
		}
		return amount, nil
	case models.TypeExpense:
		if !amount.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: expense amount must be positive, got %s", ErrValidation, amount)
		}
		return amount.Neg(), nil
	case models.TypeTransfer:
		if amount.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: transfer amount must not be zero", ErrValidation)
		}
		return amount, nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, txType)
}

// ListTransactions returns a user's transactions, newest first. Zero from
// and to mean no date filter; otherwise the range is from <= date < to.
func (s *Service) ListTransactions(userID int64, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	var err error
	if from.IsZero() && to.IsZero() {
		transactions, err = s.db.ListTransactions(userID)
	} else {
		if !from.Before(to) {
			return nil, fmt.Errorf("%w: date range start %s is not before end %s", ErrValidation, from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
		transactions, err = s.db.ListTransactionsInRange(userID, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", ErrStorage, err)
	}
	return transactions, nil
}

// ListAccountTransactions returns the transactions recorded against one
// account, newest first.
func (s *Service) ListAccountTransactions(userID, accountID int64) ([]models.Transaction, error) {
	if _, err := s.GetAccount(userID, accountID); err != nil {
		return nil, err
	}
	transactions, err := s.db.ListTransactionsByAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", ErrStorage, err)
	}
	return transactions, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
