package ledger

import (
	"sync"
	"testing"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// LedgerTestSuite provides a test suite for the ledger service.
type LedgerTestSuite struct {
	suite.Suite
	db      *storage.DB
	service *Service
	user    *models.User
}

// SetupTest runs before each test
func (suite *LedgerTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.service = NewService(db)

	hash, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err)
	user, err := db.CreateUser("testuser", "test@example.com", hash)
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *LedgerTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *LedgerTestSuite) mustCreateAccount(opening string) *models.Account {
	account, err := suite.service.CreateAccount(suite.user.ID, "Checking", dec(opening), models.AccountCash)
	require.NoError(suite.T(), err, "failed to create account")
	return account
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *LedgerTestSuite) TestCreateAccount() {
	account := suite.mustCreateAccount("100.00")

	assert.Equal(suite.T(), suite.user.ID, account.UserID)
	assert.Equal(suite.T(), "Checking", account.Name)
	assert.Equal(suite.T(), models.StatusActive, account.Status)
	assert.True(suite.T(), account.Balance.Equal(dec("100.00")), "balance should equal opening balance")
}

func (suite *LedgerTestSuite) TestCreateAccount_Validation() {
	tests := []struct {
		name        string
		accountName string
		opening     string
		accountType models.AccountType
	}{
		{"empty name", "", "0", models.AccountCash},
		{"blank name", "   ", "0", models.AccountCash},
		{"unknown type", "Checking", "0", models.AccountType("bitcoin")},
		{"three decimals", "Checking", "10.005", models.AccountSavings},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.CreateAccount(suite.user.ID, tt.accountName, dec(tt.opening), tt.accountType)
			assert.ErrorIs(suite.T(), err, ErrValidation)
		})
	}
}

func (suite *LedgerTestSuite) TestCreateAccount_UnknownUser() {
	_, err := suite.service.CreateAccount(9999, "Checking", dec("0"), models.AccountCash)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// Worked example: opening 100.00, expense 20.00 -> 80.00, deposit 50.00 ->
// 130.00, and the daily report shows a net change of 30.00.
func (suite *LedgerTestSuite) TestRecordTransaction_BalanceFollowsLedger() {
	account := suite.mustCreateAccount("100.00")
	today := time.Now().UTC()

	_, err := suite.service.RecordTransaction(suite.user.ID, account.ID, today, models.TypeExpense, dec("20.00"), "groceries")
	require.NoError(suite.T(), err)

	updated, err := suite.service.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "80.00", updated.Balance.StringFixed(2))

	_, err = suite.service.RecordTransaction(suite.user.ID, account.ID, today, models.TypeDeposit, dec("50.00"), "salary")
	require.NoError(suite.T(), err)

	updated, err = suite.service.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "130.00", updated.Balance.StringFixed(2))

	report, err := suite.service.GenerateReport(suite.user.ID, models.ReportDaily, today)
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), report.Content, "Net change: 30.00")
	assert.Contains(suite.T(), report.Content, "Total inflow: 50.00")
	assert.Contains(suite.T(), report.Content, "Total outflow: 20.00")
}

// The invariant balance == opening + sum of signed amounts must hold after
// every successful record.
func (suite *LedgerTestSuite) TestBalanceInvariant() {
	account := suite.mustCreateAccount("250.00")
	expected := dec("250.00")

	steps := []struct {
		txType models.TransactionType
		amount string
		signed string
	}{
		{models.TypeDeposit, "10.50", "10.50"},
		{models.TypeExpense, "3.25", "-3.25"},
		{models.TypeTransfer, "-42.00", "-42.00"},
		{models.TypeTransfer, "100.01", "100.01"},
		{models.TypeExpense, "0.01", "-0.01"},
	}

	for _, step := range steps {
		recorded, err := suite.service.RecordTransaction(suite.user.ID, account.ID, time.Time{}, step.txType, dec(step.amount), "")
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), step.signed, recorded.Amount.StringFixed(2), "persisted amount should carry the type's sign")

		expected = expected.Add(dec(step.signed))
		current, err := suite.service.GetAccount(suite.user.ID, account.ID)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), current.Balance.Equal(expected),
			"balance %s diverged from ledger sum %s", current.Balance, expected)
	}

	transactions, err := suite.service.ListAccountTransactions(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), transactions, len(steps))
}

func (suite *LedgerTestSuite) TestRecordTransaction_ValidationLeavesStateUnchanged() {
	account := suite.mustCreateAccount("100.00")

	tests := []struct {
		name   string
		txType models.TransactionType
		amount string
	}{
		{"three decimal places", models.TypeDeposit, "12.345"},
		{"unknown type", models.TransactionType("bribe"), "10.00"},
		{"negative deposit", models.TypeDeposit, "-5.00"},
		{"zero expense", models.TypeExpense, "0"},
		{"zero transfer", models.TypeTransfer, "0.00"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.service.RecordTransaction(suite.user.ID, account.ID, time.Time{}, tt.txType, dec(tt.amount), "")
			require.ErrorIs(suite.T(), err, ErrValidation)

			current, err := suite.service.GetAccount(suite.user.ID, account.ID)
			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), "100.00", current.Balance.StringFixed(2), "rejected transaction must not move the balance")

			transactions, err := suite.service.ListAccountTransactions(suite.user.ID, account.ID)
			require.NoError(suite.T(), err)
			assert.Empty(suite.T(), transactions, "rejected transaction must not be recorded")
		})
	}
}

func (suite *LedgerTestSuite) TestRecordTransaction_UnknownAccount() {
	_, err := suite.service.RecordTransaction(suite.user.ID, 9999, time.Time{}, models.TypeDeposit, dec("10.00"), "")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *LedgerTestSuite) TestRecordTransaction_OtherUsersAccount() {
	account := suite.mustCreateAccount("100.00")

	hash, err := auth.HashPassword("otherpass")
	require.NoError(suite.T(), err)
	other, err := suite.db.CreateUser("otheruser", "other@example.com", hash)
	require.NoError(suite.T(), err)

	_, err = suite.service.RecordTransaction(other.ID, account.ID, time.Time{}, models.TypeDeposit, dec("10.00"), "")
	assert.ErrorIs(suite.T(), err, ErrNotFound, "accounts are scoped to their owner")
}

func (suite *LedgerTestSuite) TestInactiveAccountRejectsTransactions() {
	account := suite.mustCreateAccount("100.00")

	err := suite.service.SetAccountStatus(suite.user.ID, account.ID, models.StatusInactive)
	require.NoError(suite.T(), err)

	_, err = suite.service.RecordTransaction(suite.user.ID, account.ID, time.Time{}, models.TypeDeposit, dec("10.00"), "")
	require.ErrorIs(suite.T(), err, ErrAccountInactive)

	// Still readable, balance untouched
	current, err := suite.service.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusInactive, current.Status)
	assert.Equal(suite.T(), "100.00", current.Balance.StringFixed(2))

	// Reactivation restores writes
	err = suite.service.SetAccountStatus(suite.user.ID, account.ID, models.StatusActive)
	require.NoError(suite.T(), err)

	_, err = suite.service.RecordTransaction(suite.user.ID, account.ID, time.Time{}, models.TypeDeposit, dec("10.00"), "")
	assert.NoError(suite.T(), err)
}

func (suite *LedgerTestSuite) TestSetAccountStatus_Validation() {
	account := suite.mustCreateAccount("0")

	err := suite.service.SetAccountStatus(suite.user.ID, account.ID, models.AccountStatus("Frozen"))
	assert.ErrorIs(suite.T(), err, ErrValidation)

	err = suite.service.SetAccountStatus(suite.user.ID, 9999, models.StatusInactive)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// N concurrent records against one account must sum exactly, with no lost
// updates, regardless of interleaving.
func (suite *LedgerTestSuite) TestConcurrentRecords() {
	account := suite.mustCreateAccount("1000.00")

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			txType := models.TypeDeposit
			if n%2 == 1 {
				txType = models.TypeExpense
			}
			_, err := suite.service.RecordTransaction(suite.user.ID, account.ID, time.Time{}, txType, dec("1.50"), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(suite.T(), err)
	}

	// 10 deposits and 10 expenses of 1.50 cancel out
	current, err := suite.service.GetAccount(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "1000.00", current.Balance.StringFixed(2))

	transactions, err := suite.service.ListAccountTransactions(suite.user.ID, account.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), transactions, workers)
}

func (suite *LedgerTestSuite) TestListTransactions_DateRange() {
	account := suite.mustCreateAccount("0")
	jan10 := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	feb05 := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)

	for _, d := range []time.Time{jan10, jan20, feb05} {
		_, err := suite.service.RecordTransaction(suite.user.ID, account.ID, d, models.TypeDeposit, dec("5.00"), "")
		require.NoError(suite.T(), err)
	}

	all, err := suite.service.ListTransactions(suite.user.ID, time.Time{}, time.Time{})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 3)

	january, err := suite.service.ListTransactions(suite.user.ID,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), january, 2)

	_, err = suite.service.ListTransactions(suite.user.ID, jan20, jan10)
	assert.ErrorIs(suite.T(), err, ErrValidation, "inverted range should be rejected")
}

// TestLedgerSuite runs the ledger test suite
func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
