/*
store.go - Persistence contracts for accounts and transactions

PURPOSE:
  Defines the interface between the domain services and the database.
  Different implementations can use SQLite or in-memory storage.

OWNERSHIP:
  AccountStore exclusively owns durable account rows; TransactionStore
  exclusively owns transaction and entry rows. Services hold no
  persistent state of their own.

ATOMICITY CONTRACT:
  CreateTransaction is the only multi-row write in the system. It must
  persist the header and every entry as one unit: either all rows are
  committed or none are, and no partial transaction is ever observable
  to other readers.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store (bounded connection pool)
  - ledger/store: in-memory store for tests and development

SEE ALSO:
  - accounts.go: AccountService over AccountStore
  - transactions.go: TransactionService over TransactionStore
*/
package ledger

import (
	"context"
	"time"
)

// EntrySums carries raw grouped posting sums for an account set, in
// minor units. The sign rule is applied by the service, not here.
type EntrySums struct {
	Debits   int64
	Credits  int64
	Currency string // currency code of the summed entries
}

// AccountStore persists the chart of accounts and answers posting-sum
// queries over it.
type AccountStore interface {
	// CreateAccount persists a new account and returns the stored row
	// including the generated id.
	CreateAccount(ctx context.Context, account Account) (Account, error)

	// GetAccount returns the account or NotFoundError.
	GetAccount(ctx context.Context, id int64) (Account, error)

	// GetAccounts returns every account, active or not.
	GetAccounts(ctx context.Context) ([]Account, error)

	// GetChildren returns the direct active children of an account,
	// ordered by name.
	GetChildren(ctx context.Context, parentID int64) ([]Account, error)

	// UpdateAccount persists the mutable fields (name, description,
	// updated_at) and returns the stored row.
	UpdateAccount(ctx context.Context, account Account) (Account, error)

	// DeactivateAccount flips is_active to false. One-way.
	DeactivateAccount(ctx context.Context, id int64) error

	// SumEntries returns raw debit/credit minor-unit sums over every
	// posting of the given accounts, or nil when no postings exist.
	// When before is non-nil only postings dated strictly earlier are
	// summed.
	SumEntries(ctx context.Context, accountIDs []int64, before *time.Time) (*EntrySums, error)
}

// TransactionStore persists transactions and their entries.
type TransactionStore interface {
	// CreateTransaction atomically persists a header plus its entries
	// and returns the stored transaction fully hydrated.
	CreateTransaction(ctx context.Context, description string, date time.Time, entries []EntryInput) (Transaction, error)

	// GetTransaction returns a transaction with its entries, or
	// NotFoundError.
	GetTransaction(ctx context.Context, id int64) (Transaction, error)

	// GetTransactions returns transactions matching the filters,
	// ordered by transaction date descending then id descending, each
	// hydrated with its entries.
	GetTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error)
}

// Store combines both contracts; the production SQLite store and the
// in-memory store implement it over one shared handle.
type Store interface {
	AccountStore
	TransactionStore
}
