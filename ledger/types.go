/*
Package ledger implements a double-entry bookkeeping engine.

Every economic event is recorded as a balanced set of debit/credit
postings against a hierarchical chart of accounts. The package holds
the domain types, the store contracts, and three stateless services:

  AccountService:     chart-of-accounts rules and balance computation
  TransactionService: posting validation and atomic recording
  ReportService:      cross-account aggregation (net worth, monthlies)

Balances are never cached in memory. Every computation re-derives
from the stored postings, so the store is the single source of truth.

KEY CONCEPTS IN THIS FILE (types.go):
  - AccountType: the closed five-type set with its normal-balance rule
  - Account: one node of the chart-of-accounts forest
  - Transaction / TransactionEntry: an immutable balanced posting set
  - EntryInput: a proposed posting, before persistence

SEE ALSO:
  - money.go: exact minor-unit amounts
  - store.go: persistence contracts
  - accounts.go, transactions.go, reports.go: the services
*/
package ledger

import "time"

// =============================================================================
// ACCOUNT TYPES - Closed set with the normal-balance sign rule
// =============================================================================

// AccountType classifies an account. The set is fixed: every account is
// exactly one of these five, persisted as the lowercase string.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists all types in display rank order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeIncome,
	AccountTypeExpense,
}

// ParseAccountType accepts either casing used at the edges
// ("Asset" from clients, "asset" from storage).
func ParseAccountType(s string) (AccountType, error) {
	switch s {
	case "asset", "Asset":
		return AccountTypeAsset, nil
	case "liability", "Liability":
		return AccountTypeLiability, nil
	case "equity", "Equity":
		return AccountTypeEquity, nil
	case "income", "Income":
		return AccountTypeIncome, nil
	case "expense", "Expense":
		return AccountTypeExpense, nil
	}
	return "", NewValidationError("invalid account type: %s", s)
}

// NormalBalance returns the entry side that makes this account type's
// typical balance positive. This is the single definition of the sign
// rule: balance = normal-side sum minus opposite-side sum.
func (t AccountType) NormalBalance() EntryType {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return EntryTypeDebit
	default:
		return EntryTypeCredit
	}
}

// Rank orders account types for tree display:
// Asset, Liability, Equity, Income, Expense.
func (t AccountType) Rank() int {
	switch t {
	case AccountTypeAsset:
		return 1
	case AccountTypeLiability:
		return 2
	case AccountTypeEquity:
		return 3
	case AccountTypeIncome:
		return 4
	case AccountTypeExpense:
		return 5
	}
	return 6
}

// =============================================================================
// ENTRY TYPES
// =============================================================================

// EntryType is the side of a posting. Persisted as the lowercase string.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

func ParseEntryType(s string) (EntryType, error) {
	switch s {
	case "debit", "Debit":
		return EntryTypeDebit, nil
	case "credit", "Credit":
		return EntryTypeCredit, nil
	}
	return "", NewValidationError("invalid entry type: %s", s)
}

// =============================================================================
// ACCOUNT
// =============================================================================

// Account is one node of the chart-of-accounts forest.
//
// INVARIANTS (enforced by AccountService):
//   - a non-root account's parent exists and has the same AccountType
//   - the ancestor chain never exceeds the configured depth
//   - an account is never its own parent
//   - an account with active children cannot be deactivated
type Account struct {
	ID          int64
	Name        string
	Type        AccountType
	ParentID    *int64 // nil for root accounts
	Currency    Currency
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool { return a.ParentID == nil }

// AccountNode is an account annotated with its place in the hierarchy:
// depth below the root (root = 0) and a breadcrumb path like
// "Assets > Bank > Checking".
type AccountNode struct {
	Account
	Depth int
	Path  string
}

// =============================================================================
// TRANSACTION
// =============================================================================

// Transaction is an immutable balanced posting set. Once recorded it is
// never amended or voided; header and entries are written as one unit.
type Transaction struct {
	ID          int64
	Description string
	Reference   string
	Date        time.Time // calendar date, no time of day
	CreatedAt   time.Time
	Tags        string
	Notes       string
	Entries     []TransactionEntry
}

// TransactionEntry is one leg of a recorded transaction.
type TransactionEntry struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Amount        Money
	Type          EntryType
	Description   string
	CreatedAt     time.Time
}

// EntryInput is a proposed posting leg, before persistence assigns ids.
type EntryInput struct {
	AccountID   int64
	Amount      Money
	Type        EntryType
	Description string
}

// TransactionFilters narrows a transaction listing. Nil/zero fields are
// ignored. Date bounds are inclusive.
type TransactionFilters struct {
	AccountID *int64
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// DateFormat is the persistence layout for calendar dates.
const DateFormat = "2006-01-02"
