/*
accounts.go - Business rules over the chart of accounts

PURPOSE:
  AccountService enforces the hierarchy invariants and computes
  balances under the normal-balance sign convention.

HIERARCHY RULES:
  - No root creation through CreateAccount: a parent is required.
    Root accounts are seeded once by the storage layer.
  - A child's type must equal its parent's type, so every subtree is
    type-homogeneous by construction and roll-up balances can apply
    a single sign rule.
  - The ancestor chain is capped (Config.MaxHierarchyDepth).
  - An account is never its own parent. Longer cycles are not
    detected; the bounded ancestor walk fails with a depth error
    instead of looping.

BALANCES:
  Balance is always re-derived from stored postings:
    debit-normal types (asset, expense):    debits - credits
    credit-normal types (liability, equity, income): credits - debits
  Hierarchical balances resolve the active descendant set with an
  explicit graph walk over a parent->children index built from one
  full account scan, then sum postings across the whole set and apply
  the sign rule once.

SEE ALSO:
  - types.go: AccountType.NormalBalance, the sign rule definition
  - store.go: AccountStore contract
*/
package ledger

import (
	"context"
	"sort"
	"strings"
	"time"
)

// AccountService applies the chart-of-accounts rules. It is stateless:
// every instance is a cheap façade over the shared store handle.
type AccountService struct {
	store AccountStore
	cfg   Config
}

func NewAccountService(store AccountStore, cfg Config) *AccountService {
	return &AccountService{store: store, cfg: cfg}
}

// =============================================================================
// CREATION & MUTATION
// =============================================================================

// CreateAccount validates and persists a new account under an existing
// parent of the same type. The account starts active with fresh
// timestamps; the stored row including the generated id is returned.
func (s *AccountService) CreateAccount(ctx context.Context, name string, accountType AccountType, parentID *int64, currency Currency) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, NewValidationError("account name must not be empty")
	}
	if parentID == nil {
		return Account{}, NewValidationError("a parent account is required; root accounts cannot be created here")
	}

	parent, err := s.store.GetAccount(ctx, *parentID)
	if err != nil {
		return Account{}, err
	}
	if parent.Type != accountType {
		return Account{}, NewValidationError(
			"parent account type %s does not match requested type %s", parent.Type, accountType)
	}
	if err := s.checkDepth(ctx, parent); err != nil {
		return Account{}, err
	}

	now := time.Now().UTC()
	return s.store.CreateAccount(ctx, Account{
		Name:      name,
		Type:      accountType,
		ParentID:  parentID,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpdateAccount re-validates the hierarchy and persists the mutable
// fields (name, description).
func (s *AccountService) UpdateAccount(ctx context.Context, account Account) (Account, error) {
	if account.ID == 0 {
		return Account{}, NewValidationError("account id is required for update")
	}
	if strings.TrimSpace(account.Name) == "" {
		return Account{}, NewValidationError("account name must not be empty")
	}
	if _, err := s.store.GetAccount(ctx, account.ID); err != nil {
		return Account{}, err
	}

	if account.ParentID != nil {
		if *account.ParentID == account.ID {
			return Account{}, NewValidationError("account %d cannot be its own parent", account.ID)
		}
		parent, err := s.store.GetAccount(ctx, *account.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Type != account.Type {
			return Account{}, NewValidationError(
				"parent account type %s does not match account type %s", parent.Type, account.Type)
		}
		if err := s.checkDepth(ctx, parent); err != nil {
			return Account{}, err
		}
	}

	account.Name = strings.TrimSpace(account.Name)
	account.UpdatedAt = time.Now().UTC()
	return s.store.UpdateAccount(ctx, account)
}

// DeactivateAccount soft-deletes an account. Guarded: an account with
// any active child stays active. There is no reactivation path.
func (s *AccountService) DeactivateAccount(ctx context.Context, id int64) error {
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return err
	}
	children, err := s.store.GetChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return NewValidationError("account %d has %d active child accounts and cannot be deactivated", id, len(children))
	}
	return s.store.DeactivateAccount(ctx, id)
}

// checkDepth walks the ancestor chain of parent and fails if hanging a
// new account below it would exceed the configured depth. The walk is
// bounded, so an undetected cycle surfaces as a depth error rather
// than an endless loop.
func (s *AccountService) checkDepth(ctx context.Context, parent Account) error {
	depth := 1 // the new account itself
	current := parent
	for {
		depth++
		if depth > s.cfg.MaxHierarchyDepth {
			return NewValidationError("account hierarchy exceeds maximum depth of %d", s.cfg.MaxHierarchyDepth)
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.store.GetAccount(ctx, *current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
}

// =============================================================================
// LOOKUPS
// =============================================================================

// GetAccount returns a single account by id.
func (s *AccountService) GetAccount(ctx context.Context, id int64) (Account, error) {
	return s.store.GetAccount(ctx, id)
}

// GetAccounts returns every account, active or not.
func (s *AccountService) GetAccounts(ctx context.Context) ([]Account, error) {
	return s.store.GetAccounts(ctx)
}

// GetChildren returns the direct active children, name-ordered.
func (s *AccountService) GetChildren(ctx context.Context, parentID int64) ([]Account, error) {
	return s.store.GetChildren(ctx, parentID)
}

// ValidateAccounts checks that every id resolves to an active account.
func (s *AccountService) ValidateAccounts(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		account, err := s.store.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return NewValidationError("account %d is inactive", id)
		}
	}
	return nil
}

// =============================================================================
// BALANCES
// =============================================================================

// Balance computes the account's own balance from its postings. With no
// postings it returns zero in the default currency.
func (s *AccountService) Balance(ctx context.Context, accountID int64) (Money, error) {
	return s.balanceOf(ctx, []int64{accountID}, nil)
}

// BalanceAsOf computes a point-in-time balance from only the postings
// dated strictly before asOf. A nil asOf is the plain balance.
func (s *AccountService) BalanceAsOf(ctx context.Context, accountID int64, asOf *time.Time) (Money, error) {
	return s.balanceOf(ctx, []int64{accountID}, asOf)
}

// BalanceWithChildren rolls the account up with all of its active
// descendants: the posting sums span the whole subtree and the sign
// rule is applied once. Subtrees are type-homogeneous by construction
// (CreateAccount/UpdateAccount require parent type equality).
func (s *AccountService) BalanceWithChildren(ctx context.Context, accountID int64) (Money, error) {
	ids, err := s.descendantIDs(ctx, accountID)
	if err != nil {
		return Money{}, err
	}
	return s.balanceOf(ctx, ids, nil)
}

// balanceOf sums postings over an account set and applies the sign
// rule of the first account's type.
func (s *AccountService) balanceOf(ctx context.Context, accountIDs []int64, before *time.Time) (Money, error) {
	account, err := s.store.GetAccount(ctx, accountIDs[0])
	if err != nil {
		return Money{}, err
	}

	sums, err := s.store.SumEntries(ctx, accountIDs, before)
	if err != nil {
		return Money{}, err
	}
	if sums == nil {
		return Zero(s.cfg.DefaultCurrency), nil
	}

	currency, err := CurrencyFromCode(sums.Currency)
	if err != nil {
		return Money{}, err
	}
	return FromMinorUnits(signedBalance(account.Type, sums), currency), nil
}

// signedBalance applies the normal-balance rule to raw sums.
func signedBalance(t AccountType, sums *EntrySums) int64 {
	if t.NormalBalance() == EntryTypeDebit {
		return sums.Debits - sums.Credits
	}
	return sums.Credits - sums.Debits
}

// descendantIDs resolves the account plus all active descendants with
// a breadth-first walk over a parent->children adjacency index.
func (s *AccountService) descendantIDs(ctx context.Context, accountID int64) ([]int64, error) {
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[int64][]int64)
	for _, a := range accounts {
		if a.ParentID != nil && a.IsActive {
			children[*a.ParentID] = append(children[*a.ParentID], a.ID)
		}
	}

	ids := []int64{accountID}
	for frontier := []int64{accountID}; len(frontier) > 0; {
		next := frontier[0]
		frontier = frontier[1:]
		for _, child := range children[next] {
			ids = append(ids, child)
			frontier = append(frontier, child)
		}
	}
	return ids, nil
}

// =============================================================================
// TREE
// =============================================================================

// GetAccountTree returns every active account annotated with its depth
// and breadcrumb path, ordered by account-type rank then path.
func (s *AccountService) GetAccountTree(ctx context.Context) ([]AccountNode, error) {
	return s.accountTree(ctx, false)
}

// GetAccountTreeFiltered optionally includes inactive accounts.
func (s *AccountService) GetAccountTreeFiltered(ctx context.Context, includeInactive bool) ([]AccountNode, error) {
	return s.accountTree(ctx, includeInactive)
}

func (s *AccountService) accountTree(ctx context.Context, includeInactive bool) ([]AccountNode, error) {
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[int64][]Account)
	var roots []Account
	for _, a := range accounts {
		if !includeInactive && !a.IsActive {
			continue
		}
		if a.ParentID == nil {
			roots = append(roots, a)
		} else {
			byParent[*a.ParentID] = append(byParent[*a.ParentID], a)
		}
	}

	var nodes []AccountNode
	var walk func(a Account, depth int, path string)
	walk = func(a Account, depth int, path string) {
		nodes = append(nodes, AccountNode{Account: a, Depth: depth, Path: path})
		kids := byParent[a.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
		for _, child := range kids {
			walk(child, depth+1, path+" > "+child.Name)
		}
	}
	for _, root := range roots {
		walk(root, 0, root.Name)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Type.Rank() != nodes[j].Type.Rank() {
			return nodes[i].Type.Rank() < nodes[j].Type.Rank()
		}
		return nodes[i].Path < nodes[j].Path
	})
	return nodes, nil
}
