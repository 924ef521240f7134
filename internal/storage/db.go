package storage

import (
	"database/sql"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; one pooled connection keeps the
	// foreign_keys pragma in effect for every statement.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			balance TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			account_id INTEGER NOT NULL REFERENCES accounts(id),
			date DATETIME NOT NULL,
			type TEXT NOT NULL,
			amount TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			date DATETIME NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user. The unique indexes on name and email
// reject duplicates.
func (db *DB) CreateUser(name, email, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)",
		name, email, passwordHash,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

// GetUserByName retrieves a user by name.
func (db *DB) GetUserByName(name string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM users WHERE name = ?",
		name,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateAccount inserts a new account owned by the given user.
func (db *DB) CreateAccount(userID int64, name string, balance decimal.Decimal, accountType models.AccountType) (*models.Account, error) {
	result, err := db.conn.Exec(
		"INSERT INTO accounts (user_id, name, balance, type, status) VALUES (?, ?, ?, ?, ?)",
		userID, name, balance.StringFixed(2), string(accountType), string(models.StatusActive),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetAccount(userID, id)
}

const accountColumns = "id, user_id, name, balance, type, status, created_at, updated_at"

// GetAccount retrieves an account by ID, scoped to its owner. Returns
// sql.ErrNoRows when the account does not exist or belongs to another user.
func (db *DB) GetAccount(userID, accountID int64) (*models.Account, error) {
	row := db.conn.QueryRow(
		"SELECT "+accountColumns+" FROM accounts WHERE id = ? AND user_id = ?",
		accountID, userID,
	)
	return scanAccount(row)
}

// ListAccounts retrieves all accounts owned by a user, oldest first.
func (db *DB) ListAccounts(userID int64) ([]models.Account, error) {
	rows, err := db.conn.Query(
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

// UpdateAccountStatus sets the status of an account.
func (db *DB) UpdateAccountStatus(accountID int64, status models.AccountStatus) error {
	result, err := db.conn.Exec(
		"UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC(), accountID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var balance, accountType, status string
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &balance, &accountType, &status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for account %d: %w", a.ID, err)
	}
	a.Balance = b
	a.Type = models.AccountType(accountType)
	a.Status = models.AccountStatus(status)
	return &a, nil
}

// AppendTransaction inserts a transaction row and writes the new account
// balance in a single sql transaction. Either both changes commit or
// neither does; no intermediate state is ever visible to readers.
func (db *DB) AppendTransaction(t *models.Transaction, newBalance decimal.Decimal) (*models.Transaction, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO transactions (user_id, account_id, date, type, amount, description) VALUES (?, ?, ?, ?, ?, ?)",
		t.UserID, t.AccountID, t.Date, string(t.Type), t.Amount.StringFixed(2), t.Description,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(
		"UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?",
		newBalance.StringFixed(2), time.Now().UTC(), t.AccountID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return db.GetTransaction(id)
}

const transactionColumns = "id, user_id, account_id, date, type, amount, description"

// GetTransaction retrieves a single transaction by ID.
func (db *DB) GetTransaction(id int64) (*models.Transaction, error) {
	row := db.conn.QueryRow(
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?",
		id,
	)
	return scanTransaction(row)
}

// ListTransactions retrieves all transactions for a user, newest first.
func (db *DB) ListTransactions(userID int64) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsInRange retrieves a user's transactions with
// from <= date < to, newest first.
func (db *DB) ListTransactionsInRange(userID int64, from, to time.Time) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND date >= ? AND date < ? ORDER BY date DESC, id DESC",
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListTransactionsByAccount retrieves all transactions recorded against one
// account, newest first.
func (db *DB) ListTransactionsByAccount(accountID int64) ([]models.Transaction, error) {
	rows, err := db.conn.Query(
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = ? ORDER BY date DESC, id DESC",
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var txType, amount string
	if err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Date, &txType, &amount, &t.Description); err != nil {
		return nil, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for transaction %d: %w", t.ID, err)
	}
	t.Amount = a
	t.Type = models.TransactionType(txType)
	return &t, nil
}

// CreateReport inserts a generated report. Reports are append-only.
func (db *DB) CreateReport(userID int64, reportType models.ReportType, date time.Time, content string) (*models.Report, error) {
	result, err := db.conn.Exec(
		"INSERT INTO reports (user_id, type, date, content) VALUES (?, ?, ?, ?)",
		userID, string(reportType), date, content,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := db.conn.QueryRow(
		"SELECT id, user_id, type, date, content, created_at FROM reports WHERE id = ?",
		id,
	)
	return scanReport(row)
}

// ListReports retrieves all reports for a user, newest first.
func (db *DB) ListReports(userID int64) ([]models.Report, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, type, date, content, created_at FROM reports WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}

	return reports, rows.Err()
}

func scanReport(row rowScanner) (*models.Report, error) {
	var r models.Report
	var reportType string
	if err := row.Scan(&r.ID, &r.UserID, &reportType, &r.Date, &r.Content, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Type = models.ReportType(reportType)
	return &r, nil
}
