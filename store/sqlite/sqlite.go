/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.AccountStore and ledger.TransactionStore over
  database/sql with the go-sqlite3 driver.

SCHEMA:
  accounts:            the chart of accounts (soft-deactivated, never deleted)
  transactions:        immutable transaction headers
  transaction_entries: debit/credit legs, integer minor units + currency code

  Money is persisted as an integer minor-unit column plus a currency
  code column. Never as floating point. account_type and entry_type
  are persisted as their lowercase string names.

ATOMIC WRITES:
  CreateTransaction is the only multi-row write: header and entries go
  through one BEGIN/COMMIT. Any failure rolls the whole unit back, so
  no partial transaction is ever observable.

CONNECTION POOL:
  The pool is capped at 5 open connections. Callers block while
  waiting for a slot. There is no application-level locking on top;
  concurrent balance reads are not isolated from writes.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  without blocking, a single writer at a time.

MIGRATION:
  Schema is created on New(). The first migration of an empty database
  also seeds the five root accounts (Assets, Liabilities, Equity,
  Income, Expenses); all later account creation goes through
  AccountService and requires a parent.

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/walletd/ledger-engine/ledger"
)

// Store implements both ledger storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

var _ ledger.Store = (*Store)(nil)

// New opens (creating if missing) the database at dbPath and migrates
// the schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own private
		// in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		parent_id INTEGER REFERENCES accounts(id),
		currency TEXT NOT NULL,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_parent
		ON accounts(parent_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_type
		ON accounts(account_type);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		reference TEXT,
		transaction_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		tags TEXT,
		notes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(transaction_date DESC);

	CREATE TABLE IF NOT EXISTS transaction_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id INTEGER NOT NULL REFERENCES transactions(id),
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		amount_minor INTEGER NOT NULL,
		currency TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Balance calculation hot path
	CREATE INDEX IF NOT EXISTS idx_entries_account
		ON transaction_entries(account_id);
	CREATE INDEX IF NOT EXISTS idx_entries_transaction
		ON transaction_entries(transaction_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seedRootAccounts()
}

// seedRootAccounts inserts the five root accounts into an empty chart.
// Runs once; a populated accounts table is left untouched.
func (s *Store) seedRootAccounts() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roots := []struct {
		name string
		typ  ledger.AccountType
	}{
		{"Assets", ledger.AccountTypeAsset},
		{"Liabilities", ledger.AccountTypeLiability},
		{"Equity", ledger.AccountTypeEquity},
		{"Income", ledger.AccountTypeIncome},
		{"Expenses", ledger.AccountTypeExpense},
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, root := range roots {
		_, err := s.db.Exec(`
			INSERT INTO accounts (name, account_type, parent_id, currency, description, is_active, created_at, updated_at)
			VALUES (?, ?, NULL, 'EUR', NULL, TRUE, ?, ?)`,
			root.name, string(root.typ), now, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

const accountColumns = "id, name, account_type, parent_id, currency, description, is_active, created_at, updated_at"

func (s *Store) CreateAccount(ctx context.Context, account ledger.Account) (ledger.Account, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, account_type, parent_id, currency, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Name,
		string(account.Type),
		nullInt64(account.ParentID),
		account.Currency.Code(),
		nullString(account.Description),
		account.IsActive,
		account.CreatedAt.UTC().Format(time.RFC3339),
		account.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Account{}, &ledger.StorageError{Op: "create account", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Account{}, &ledger.StorageError{Op: "create account", Err: err}
	}
	return s.GetAccount(ctx, id)
}

func (s *Store) GetAccount(ctx context.Context, id int64) (ledger.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return ledger.Account{}, &ledger.NotFoundError{Resource: "account", ID: id}
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return account, nil
}

func (s *Store) GetAccounts(ctx context.Context) ([]ledger.Account, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY id")
}

func (s *Store) GetChildren(ctx context.Context, parentID int64) ([]ledger.Account, error) {
	return s.queryAccounts(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE parent_id = ? AND is_active = TRUE ORDER BY name",
		parentID)
}

func (s *Store) UpdateAccount(ctx context.Context, account ledger.Account) (ledger.Account, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		account.Name,
		nullString(account.Description),
		account.UpdatedAt.UTC().Format(time.RFC3339),
		account.ID,
	)
	if err != nil {
		return ledger.Account{}, &ledger.StorageError{Op: "update account", Err: err}
	}
	return s.GetAccount(ctx, account.ID)
}

func (s *Store) DeactivateAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_active = FALSE, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return &ledger.StorageError{Op: "deactivate account", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &ledger.StorageError{Op: "deactivate account", Err: err}
	}
	if affected == 0 {
		return &ledger.NotFoundError{Resource: "account", ID: id}
	}
	return nil
}

func (s *Store) SumEntries(ctx context.Context, accountIDs []int64, before *time.Time) (*ledger.EntrySums, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(accountIDs)), ",")
	args := make([]any, 0, len(accountIDs)+1)
	for _, id := range accountIDs {
		args = append(args, id)
	}

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN te.entry_type = 'debit' THEN te.amount_minor ELSE 0 END), 0) AS total_debits,
			COALESCE(SUM(CASE WHEN te.entry_type = 'credit' THEN te.amount_minor ELSE 0 END), 0) AS total_credits,
			te.currency
		FROM transaction_entries te`
	if before != nil {
		query += `
		JOIN transactions t ON te.transaction_id = t.id
		WHERE te.account_id IN (` + placeholders + `) AND t.transaction_date < ?`
		args = append(args, before.Format(ledger.DateFormat))
	} else {
		query += `
		WHERE te.account_id IN (` + placeholders + `)`
	}
	query += `
		GROUP BY te.currency`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "sum entries", Err: err}
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var sums ledger.EntrySums
	if err := rows.Scan(&sums.Debits, &sums.Credits, &sums.Currency); err != nil {
		return nil, &ledger.StorageError{Op: "sum entries", Err: err}
	}
	return &sums, rows.Err()
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query accounts", Err: err}
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (ledger.Account, error) {
	var (
		account      ledger.Account
		accountType  string
		parentID     sql.NullInt64
		currencyCode string
		description  sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := row.Scan(&account.ID, &account.Name, &accountType, &parentID,
		&currencyCode, &description, &account.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return account, err
	}
	if err != nil {
		return account, &ledger.StorageError{Op: "scan account", Err: err}
	}

	account.Type = ledger.AccountType(accountType)
	if parentID.Valid {
		account.ParentID = &parentID.Int64
	}
	currency, err := ledger.CurrencyFromCode(currencyCode)
	if err != nil {
		return account, err
	}
	account.Currency = currency
	account.Description = description.String
	account.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	account.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return account, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (s *Store) CreateTransaction(ctx context.Context, description string, date time.Time, entries []ledger.EntryInput) (ledger.Transaction, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "begin transaction", Err: err}
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC()
	res, err := sqlTx.ExecContext(ctx, `
		INSERT INTO transactions (description, transaction_date, created_at)
		VALUES (?, ?, ?)`,
		description, date.Format(ledger.DateFormat), now.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "insert transaction", Err: err}
	}
	txID, err := res.LastInsertId()
	if err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "insert transaction", Err: err}
	}

	for _, entry := range entries {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO transaction_entries (transaction_id, account_id, amount_minor, currency, entry_type, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			txID,
			entry.AccountID,
			entry.Amount.AmountMinor(),
			entry.Amount.Currency().Code(),
			string(entry.Type),
			nullString(entry.Description),
			now.Format(time.RFC3339),
		)
		if err != nil {
			return ledger.Transaction{}, &ledger.StorageError{Op: "insert transaction entry", Err: err}
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return ledger.Transaction{}, &ledger.StorageError{Op: "commit transaction", Err: err}
	}
	return s.GetTransaction(ctx, txID)
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (ledger.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, description, reference, transaction_date, created_at, tags, notes
		FROM transactions
		WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return ledger.Transaction{}, &ledger.NotFoundError{Resource: "transaction", ID: id}
	}
	if err != nil {
		return ledger.Transaction{}, err
	}

	tx.Entries, err = s.entriesFor(ctx, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) GetTransactions(ctx context.Context, filters ledger.TransactionFilters) ([]ledger.Transaction, error) {
	var conditions []string
	var args []any

	join := ""
	if filters.AccountID != nil {
		join = " JOIN transaction_entries te ON t.id = te.transaction_id"
		conditions = append(conditions, "te.account_id = ?")
		args = append(args, *filters.AccountID)
	}
	if filters.FromDate != nil {
		conditions = append(conditions, "t.transaction_date >= ?")
		args = append(args, filters.FromDate.Format(ledger.DateFormat))
	}
	if filters.ToDate != nil {
		conditions = append(conditions, "t.transaction_date <= ?")
		args = append(args, filters.ToDate.Format(ledger.DateFormat))
	}

	query := `
		SELECT DISTINCT t.id, t.description, t.reference, t.transaction_date, t.created_at, t.tags, t.notes
		FROM transactions t` + join
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.id DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	} else if filters.Offset > 0 {
		// SQLite requires a LIMIT clause before OFFSET.
		query += " LIMIT -1"
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filters.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query transactions", Err: err}
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StorageError{Op: "query transactions", Err: err}
	}

	for i := range transactions {
		transactions[i].Entries, err = s.entriesFor(ctx, transactions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return transactions, nil
}

func (s *Store) entriesFor(ctx context.Context, transactionID int64) ([]ledger.TransactionEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, amount_minor, currency, entry_type, description, created_at
		FROM transaction_entries
		WHERE transaction_id = ?
		ORDER BY id`, transactionID)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query transaction entries", Err: err}
	}
	defer rows.Close()

	var entries []ledger.TransactionEntry
	for rows.Next() {
		var (
			entry        ledger.TransactionEntry
			amountMinor  int64
			currencyCode string
			entryType    string
			description  sql.NullString
			createdAt    string
		)
		if err := rows.Scan(&entry.ID, &entry.TransactionID, &entry.AccountID,
			&amountMinor, &currencyCode, &entryType, &description, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan transaction entry", Err: err}
		}

		currency, err := ledger.CurrencyFromCode(currencyCode)
		if err != nil {
			return nil, err
		}
		entry.Amount = ledger.FromMinorUnits(amountMinor, currency)
		entry.Type, err = ledger.ParseEntryType(entryType)
		if err != nil {
			return nil, err
		}
		entry.Description = description.String
		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanTransaction(row scanner) (ledger.Transaction, error) {
	var (
		tx        ledger.Transaction
		reference sql.NullString
		date      string
		createdAt string
		tags      sql.NullString
		notes     sql.NullString
	)
	err := row.Scan(&tx.ID, &tx.Description, &reference, &date, &createdAt, &tags, &notes)
	if err == sql.ErrNoRows {
		return tx, err
	}
	if err != nil {
		return tx, &ledger.StorageError{Op: "scan transaction", Err: err}
	}

	tx.Reference = reference.String
	tx.Tags = tags.String
	tx.Notes = notes.String
	tx.Date, _ = time.Parse(ledger.DateFormat, date)
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return tx, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
