// Package store provides an in-memory Store implementation for tests
// and development. It mirrors the production SQLite store's ordering
// and filtering semantics.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/walletd/ledger-engine/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	accounts      map[int64]ledger.Account
	transactions  map[int64]ledger.Transaction
	nextAccountID int64
	nextTxID      int64
	nextEntryID   int64
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[int64]ledger.Account),
		transactions: make(map[int64]ledger.Transaction),
	}
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (m *Memory) CreateAccount(_ context.Context, account ledger.Account) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAccountID++
	account.ID = m.nextAccountID
	if account.ParentID != nil {
		// Own the value, like the SQLite store does on round-trip; the
		// caller's pointer may be reused and mutated after this call.
		pid := *account.ParentID
		account.ParentID = &pid
	}
	m.accounts[account.ID] = account
	return account, nil
}

func (m *Memory) GetAccount(_ context.Context, id int64) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return ledger.Account{}, &ledger.NotFoundError{Resource: "account", ID: id}
	}
	return account, nil
}

func (m *Memory) GetAccounts(_ context.Context) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]ledger.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (m *Memory) GetChildren(_ context.Context, parentID int64) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var children []ledger.Account
	for _, a := range m.accounts {
		if a.ParentID != nil && *a.ParentID == parentID && a.IsActive {
			children = append(children, a)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

func (m *Memory) UpdateAccount(_ context.Context, account ledger.Account) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.accounts[account.ID]
	if !ok {
		return ledger.Account{}, &ledger.NotFoundError{Resource: "account", ID: account.ID}
	}
	existing.Name = account.Name
	existing.Description = account.Description
	existing.UpdatedAt = account.UpdatedAt
	m.accounts[account.ID] = existing
	return existing, nil
}

func (m *Memory) DeactivateAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return &ledger.NotFoundError{Resource: "account", ID: id}
	}
	account.IsActive = false
	account.UpdatedAt = time.Now().UTC()
	m.accounts[id] = account
	return nil
}

func (m *Memory) SumEntries(_ context.Context, accountIDs []int64, before *time.Time) (*ledger.EntrySums, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[int64]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}

	var sums *ledger.EntrySums
	for _, tx := range m.transactions {
		if before != nil && !tx.Date.Before(*before) {
			continue
		}
		for _, entry := range tx.Entries {
			if !wanted[entry.AccountID] {
				continue
			}
			if sums == nil {
				sums = &ledger.EntrySums{Currency: entry.Amount.Currency().Code()}
			}
			switch entry.Type {
			case ledger.EntryTypeDebit:
				sums.Debits += entry.Amount.AmountMinor()
			case ledger.EntryTypeCredit:
				sums.Credits += entry.Amount.AmountMinor()
			}
		}
	}
	return sums, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

func (m *Memory) CreateTransaction(_ context.Context, description string, date time.Time, entries []ledger.EntryInput) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	m.nextTxID++
	tx := ledger.Transaction{
		ID:          m.nextTxID,
		Description: description,
		Date:        date,
		CreatedAt:   now,
	}
	for _, input := range entries {
		m.nextEntryID++
		tx.Entries = append(tx.Entries, ledger.TransactionEntry{
			ID:            m.nextEntryID,
			TransactionID: tx.ID,
			AccountID:     input.AccountID,
			Amount:        input.Amount,
			Type:          input.Type,
			Description:   input.Description,
			CreatedAt:     now,
		})
	}
	m.transactions[tx.ID] = tx
	return tx, nil
}

func (m *Memory) GetTransaction(_ context.Context, id int64) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok {
		return ledger.Transaction{}, &ledger.NotFoundError{Resource: "transaction", ID: id}
	}
	return tx, nil
}

func (m *Memory) GetTransactions(_ context.Context, filters ledger.TransactionFilters) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []ledger.Transaction
	for _, tx := range m.transactions {
		if filters.AccountID != nil && !touchesAccount(tx, *filters.AccountID) {
			continue
		}
		if filters.FromDate != nil && tx.Date.Before(*filters.FromDate) {
			continue
		}
		if filters.ToDate != nil && tx.Date.After(*filters.ToDate) {
			continue
		}
		matches = append(matches, tx)
	}

	// Newest first: date descending, then id descending.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.After(matches[j].Date)
		}
		return matches[i].ID > matches[j].ID
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(matches) {
			return nil, nil
		}
		matches = matches[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matches) {
		matches = matches[:filters.Limit]
	}
	return matches, nil
}

func touchesAccount(tx ledger.Transaction, accountID int64) bool {
	for _, entry := range tx.Entries {
		if entry.AccountID == accountID {
			return true
		}
	}
	return false
}
