package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login() {
	// Wait for login form
	err := suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	// Fill in credentials
	err = suite.page.Locator("input[name=username]").Fill("testuser")
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("input[name=password]").Fill("testpass123")
	require.NoError(suite.T(), err, "failed to fill password")

	// Submit login
	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")

	// Wait for redirect to the dashboard
	err = suite.expect.Locator(suite.page.Locator(".dashboard")).ToBeVisible()
	require.NoError(suite.T(), err, "did not redirect to dashboard after login")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	// Login
	suite.login()

	// Verify dashboard summary
	err := suite.expect.Locator(suite.page.Locator(".summary small")).ToHaveText("Total balance")
	require.NoError(suite.T(), err, "dashboard assertion failed")

	// Create an account with an opening balance of 100.00
	_, err = suite.page.Goto(appURL + "/accounts")
	require.NoError(suite.T(), err, "could not open accounts page")

	err = suite.page.Locator("input[name=name]").Fill("Checking")
	require.NoError(suite.T(), err, "failed to fill account name")

	err = suite.page.Locator("input[name=opening_balance]").Fill("100.00")
	require.NoError(suite.T(), err, "failed to fill opening balance")

	_, err = suite.page.Locator("select[name=type]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"cash"},
	})
	require.NoError(suite.T(), err, "failed to select account type")

	err = suite.page.Locator("#account-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit account form")

	err = suite.expect.Locator(suite.page.Locator(".account-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "account item count mismatch")

	account := suite.page.Locator(".account-item").First()
	err = suite.expect.Locator(account.Locator(".account-balance")).ToHaveText("100.00")
	require.NoError(suite.T(), err, "opening balance mismatch")

	// Record an expense of 20.00
	_, err = suite.page.Goto(appURL + "/transactions")
	require.NoError(suite.T(), err, "could not open transactions page")

	_, err = suite.page.Locator("select[name=type]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"expense"},
	})
	require.NoError(suite.T(), err, "failed to select transaction type")

	err = suite.page.Locator("input[name=amount]").Fill("20.00")
	require.NoError(suite.T(), err, "failed to fill amount")

	err = suite.page.Locator("input[name=description]").Fill("Groceries")
	require.NoError(suite.T(), err, "failed to fill description")

	err = suite.page.Locator("#transaction-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit transaction")

	err = suite.expect.Locator(suite.page.Locator(".transaction-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "transaction item count mismatch")

	item := suite.page.Locator(".transaction-item").First()
	err = suite.expect.Locator(item.Locator(".tx-amount")).ToContainText("-20.00")
	require.NoError(suite.T(), err, "signed amount mismatch")

	// Balance on the dashboard reflects the expense
	_, err = suite.page.Goto(appURL + "/dashboard")
	require.NoError(suite.T(), err, "could not open dashboard")

	err = suite.expect.Locator(suite.page.Locator(".total-balance")).ToHaveText("80.00")
	require.NoError(suite.T(), err, "balance did not follow the ledger")

	// Generate a daily report and verify the net change
	_, err = suite.page.Goto(appURL + "/reports")
	require.NoError(suite.T(), err, "could not open reports page")

	_, err = suite.page.Locator("select[name=type]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"Daily"},
	})
	require.NoError(suite.T(), err, "failed to select report type")

	err = suite.page.Locator("#report-form button.submit").Click()
	require.NoError(suite.T(), err, "failed to submit report form")

	err = suite.expect.Locator(suite.page.Locator(".report-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "report item count mismatch")

	report := suite.page.Locator(".report-item").First()
	err = suite.expect.Locator(report.Locator(".report-content")).ToContainText("Net change: -20.00")
	require.NoError(suite.T(), err, "report content mismatch")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
