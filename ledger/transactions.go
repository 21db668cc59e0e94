/*
transactions.go - Posting validation and atomic recording

PURPOSE:
  TransactionService checks the double-entry balance law on proposed
  postings and orchestrates their atomic persistence. Transactions are
  immutable once created: no amendment, no void.

THE BALANCE LAW:
  A posting set is accepted only when
    - it has at least two entries,
    - every amount is strictly positive,
    - every entry shares one currency, and
    - total debits equal total credits (in minor units).
  All checks run before any write, so a rejected transaction leaves
  storage untouched.

SEE ALSO:
  - store.go: the atomic CreateTransaction contract
  - accounts.go: ValidateAccounts for leg account checks
*/
package ledger

import (
	"context"
	"time"
)

// TransactionService records balanced transactions. Stateless; every
// instance is a cheap façade over the shared store handle.
type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

// ValidateEntries is the pure double-entry check. No I/O. The returned
// ValidationError names the specific violation; the unbalanced case
// reports both computed totals.
func ValidateEntries(entries []EntryInput) error {
	if len(entries) < 2 {
		return NewValidationError("transaction must have at least 2 entries")
	}

	for _, e := range entries {
		if !e.Amount.IsPositive() {
			return NewValidationError("all transaction amounts must be positive")
		}
	}

	first := entries[0].Amount.Currency().Code()
	for _, e := range entries {
		if e.Amount.Currency().Code() != first {
			return NewValidationError("multi-currency transactions are not supported")
		}
	}

	var debits, credits int64
	for _, e := range entries {
		switch e.Type {
		case EntryTypeDebit:
			debits += e.Amount.AmountMinor()
		case EntryTypeCredit:
			credits += e.Amount.AmountMinor()
		default:
			return NewValidationError("invalid entry type: %s", e.Type)
		}
	}
	if debits != credits {
		return NewValidationError("transaction is not balanced: debits=%d, credits=%d", debits, credits)
	}
	return nil
}

// CreateTransaction validates the posting set and persists the header
// plus every entry as one atomic unit.
func (s *TransactionService) CreateTransaction(ctx context.Context, description string, date time.Time, entries []EntryInput) (Transaction, error) {
	if err := ValidateEntries(entries); err != nil {
		return Transaction{}, err
	}
	return s.store.CreateTransaction(ctx, description, date, entries)
}

// CreateSimpleTransaction records a two-leg transfer: amount leaves
// from (credit) and enters to (debit).
func (s *TransactionService) CreateSimpleTransaction(ctx context.Context, description string, date time.Time, amount Money, fromAccountID, toAccountID int64) (Transaction, error) {
	entries := []EntryInput{
		{AccountID: fromAccountID, Amount: amount, Type: EntryTypeCredit},
		{AccountID: toAccountID, Amount: amount, Type: EntryTypeDebit},
	}
	return s.CreateTransaction(ctx, description, date, entries)
}

// GetTransaction returns a transaction with its entries.
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// GetTransactions returns transactions matching the filters, newest
// first (date descending, then id descending).
func (s *TransactionService) GetTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error) {
	return s.store.GetTransactions(ctx, filters)
}
