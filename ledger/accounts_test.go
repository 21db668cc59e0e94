package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletd/ledger-engine/ledger"
	"github.com/walletd/ledger-engine/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestChart builds an in-memory store seeded with the five root
// accounts and returns the service plus the roots keyed by type.
func newTestChart(t *testing.T) (*ledger.AccountService, *store.Memory, map[ledger.AccountType]ledger.Account) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	roots := make(map[ledger.AccountType]ledger.Account)
	names := map[ledger.AccountType]string{
		ledger.AccountTypeAsset:     "Assets",
		ledger.AccountTypeLiability: "Liabilities",
		ledger.AccountTypeEquity:    "Equity",
		ledger.AccountTypeIncome:    "Income",
		ledger.AccountTypeExpense:   "Expenses",
	}
	now := time.Now().UTC()
	for _, at := range ledger.AccountTypes {
		root, err := mem.CreateAccount(ctx, ledger.Account{
			Name:      names[at],
			Type:      at,
			Currency:  ledger.EUR(),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, err)
		roots[at] = root
	}

	svc := ledger.NewAccountService(mem, ledger.DefaultConfig())
	return svc, mem, roots
}

func eur(minor int64) ledger.Money {
	return ledger.FromMinorUnits(minor, ledger.EUR())
}

// =============================================================================
// CREATION TESTS
// =============================================================================

func TestCreateAccount_UnderMatchingParent(t *testing.T) {
	// GIVEN: The seeded root chart
	// WHEN: Creating "Bank" under the Assets root
	// THEN: The account is stored active with the parent link

	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)

	assert.NotZero(t, bank.ID)
	assert.Equal(t, "Bank", bank.Name)
	assert.Equal(t, ledger.AccountTypeAsset, bank.Type)
	require.NotNil(t, bank.ParentID)
	assert.Equal(t, assets.ID, *bank.ParentID)
	assert.True(t, bank.IsActive)
	assert.False(t, bank.CreatedAt.IsZero())
}

func TestCreateAccount_RequiresParent(t *testing.T) {
	svc, _, _ := newTestChart(t)

	_, err := svc.CreateAccount(context.Background(), "Orphan", ledger.AccountTypeAsset, nil, ledger.EUR())
	assert.Error(t, err)
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "parent account is required")
}

func TestCreateAccount_EmptyName(t *testing.T) {
	svc, _, roots := newTestChart(t)
	assets := roots[ledger.AccountTypeAsset]

	_, err := svc.CreateAccount(context.Background(), "   ", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	assert.True(t, ledger.IsValidation(err))
}

func TestCreateAccount_ParentTypeMismatch(t *testing.T) {
	// GIVEN: The Assets root
	// WHEN: Creating an expense account under it
	// THEN: Rejected; subtrees stay type-homogeneous

	svc, _, roots := newTestChart(t)
	assets := roots[ledger.AccountTypeAsset]

	_, err := svc.CreateAccount(context.Background(), "Groceries", ledger.AccountTypeExpense, &assets.ID, ledger.EUR())
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "does not match")
}

func TestCreateAccount_NonexistentParent(t *testing.T) {
	svc, _, _ := newTestChart(t)

	missing := int64(999)
	_, err := svc.CreateAccount(context.Background(), "Bank", ledger.AccountTypeAsset, &missing, ledger.EUR())
	assert.True(t, ledger.IsNotFound(err))
}

func TestCreateAccount_DepthLimit(t *testing.T) {
	// GIVEN: A chain Assets > L2 > L3 > L4 > L5 at the maximum depth
	// WHEN: Creating a sixth level
	// THEN: Rejected with a depth error

	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	parent := roots[ledger.AccountTypeAsset]
	for _, name := range []string{"L2", "L3", "L4", "L5"} {
		child, err := svc.CreateAccount(ctx, name, ledger.AccountTypeAsset, &parent.ID, ledger.EUR())
		require.NoError(t, err, "depth up to 5 should be allowed")
		parent = child
	}

	_, err := svc.CreateAccount(ctx, "L6", ledger.AccountTypeAsset, &parent.ID, ledger.EUR())
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "maximum depth of 5")
}

// =============================================================================
// UPDATE & DEACTIVATION TESTS
// =============================================================================

func TestUpdateAccount_RenamePersists(t *testing.T) {
	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)

	bank.Name = "  Checking  "
	bank.Description = "main account"
	updated, err := svc.UpdateAccount(ctx, bank)
	require.NoError(t, err)

	assert.Equal(t, "Checking", updated.Name, "name should be trimmed")
	assert.Equal(t, "main account", updated.Description)
}

func TestUpdateAccount_Validations(t *testing.T) {
	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)

	// Missing id
	_, err = svc.UpdateAccount(ctx, ledger.Account{Name: "x"})
	assert.True(t, ledger.IsValidation(err))

	// Nonexistent account
	_, err = svc.UpdateAccount(ctx, ledger.Account{ID: 999, Name: "x"})
	assert.True(t, ledger.IsNotFound(err))

	// Self-parent
	self := bank
	self.ParentID = &self.ID
	_, err = svc.UpdateAccount(ctx, self)
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "its own parent")

	// Parent of a different type
	mismatched := bank
	expenses := roots[ledger.AccountTypeExpense]
	mismatched.ParentID = &expenses.ID
	_, err = svc.UpdateAccount(ctx, mismatched)
	assert.True(t, ledger.IsValidation(err))
}

func TestDeactivateAccount_GuardedByActiveChildren(t *testing.T) {
	// GIVEN: Assets > Bank > Checking, all active
	// WHEN: Deactivating Bank while Checking is still active
	// THEN: Rejected; after deactivating Checking first it succeeds

	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	checking, err := svc.CreateAccount(ctx, "Checking", ledger.AccountTypeAsset, &bank.ID, ledger.EUR())
	require.NoError(t, err)

	err = svc.DeactivateAccount(ctx, bank.ID)
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "active child accounts")

	require.NoError(t, svc.DeactivateAccount(ctx, checking.ID))
	require.NoError(t, svc.DeactivateAccount(ctx, bank.ID))

	got, err := svc.GetAccount(ctx, bank.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDeactivateAccount_NotFound(t *testing.T) {
	svc, _, _ := newTestChart(t)
	err := svc.DeactivateAccount(context.Background(), 999)
	assert.True(t, ledger.IsNotFound(err))
}

func TestValidateAccounts_InactiveRejected(t *testing.T) {
	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateAccount(ctx, bank.ID))

	err = svc.ValidateAccounts(ctx, []int64{assets.ID, bank.ID})
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "inactive")
}

// =============================================================================
// BALANCE TESTS
// =============================================================================

// postSimple records a two-leg transfer directly through the store.
func postSimple(t *testing.T, mem *store.Memory, date time.Time, amount ledger.Money, fromID, toID int64) {
	t.Helper()
	_, err := mem.CreateTransaction(context.Background(), "test posting", date, []ledger.EntryInput{
		{AccountID: fromID, Amount: amount, Type: ledger.EntryTypeCredit},
		{AccountID: toID, Amount: amount, Type: ledger.EntryTypeDebit},
	})
	require.NoError(t, err)
}

func TestBalance_NormalBalanceSigns(t *testing.T) {
	// GIVEN: A salary of 1000.00 credited to Income, debited to Bank,
	//        then 50.00 spent on Groceries out of Bank
	// WHEN: Reading the individual balances
	// THEN: Bank 950.00, Salary 1000.00, Groceries 50.00 - all positive
	//       under their own normal-balance convention

	svc, mem, roots := newTestChart(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	assets := roots[ledger.AccountTypeAsset]
	income := roots[ledger.AccountTypeIncome]
	expenses := roots[ledger.AccountTypeExpense]

	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	salary, err := svc.CreateAccount(ctx, "Salary", ledger.AccountTypeIncome, &income.ID, ledger.EUR())
	require.NoError(t, err)
	groceries, err := svc.CreateAccount(ctx, "Groceries", ledger.AccountTypeExpense, &expenses.ID, ledger.EUR())
	require.NoError(t, err)

	postSimple(t, mem, day, eur(100000), salary.ID, bank.ID)
	postSimple(t, mem, day.AddDate(0, 0, 1), eur(5000), bank.ID, groceries.ID)

	bankBal, err := svc.Balance(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(95000), bankBal.AmountMinor(), "asset: debits - credits")

	salaryBal, err := svc.Balance(ctx, salary.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), salaryBal.AmountMinor(), "income: credits - debits")

	grocBal, err := svc.Balance(ctx, groceries.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), grocBal.AmountMinor(), "expense: debits - credits")
}

func TestBalance_NoPostings_ZeroDefaultCurrency(t *testing.T) {
	svc, _, roots := newTestChart(t)

	bal, err := svc.Balance(context.Background(), roots[ledger.AccountTypeAsset].ID)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
	assert.Equal(t, "EUR", bal.Currency().Code())
}

func TestBalanceAsOf_StrictlyBefore(t *testing.T) {
	// GIVEN: A posting dated exactly March 10
	// WHEN: Reading the balance as of March 10, then as of March 11
	// THEN: The March 10 read excludes the posting (strictly before),
	//       the March 11 read includes it

	svc, mem, roots := newTestChart(t)
	ctx := context.Background()
	march10 := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	assets := roots[ledger.AccountTypeAsset]
	income := roots[ledger.AccountTypeIncome]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)

	postSimple(t, mem, march10, eur(100000), income.ID, bank.ID)

	atBoundary, err := svc.BalanceAsOf(ctx, bank.ID, &march10)
	require.NoError(t, err)
	assert.True(t, atBoundary.IsZero(), "same-day posting is excluded")

	march11 := march10.AddDate(0, 0, 1)
	after, err := svc.BalanceAsOf(ctx, bank.ID, &march11)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), after.AmountMinor())
}

func TestBalanceWithChildren_RollsUpSubtree(t *testing.T) {
	// GIVEN: Assets > Bank > {Checking, Savings}, with postings on the
	//        leaves and one directly on Bank
	// WHEN: Reading Bank's roll-up balance
	// THEN: It equals the sum of the individual balances; an inactive
	//       child is excluded

	svc, mem, roots := newTestChart(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	assets := roots[ledger.AccountTypeAsset]
	income := roots[ledger.AccountTypeIncome]

	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	checking, err := svc.CreateAccount(ctx, "Checking", ledger.AccountTypeAsset, &bank.ID, ledger.EUR())
	require.NoError(t, err)
	savings, err := svc.CreateAccount(ctx, "Savings", ledger.AccountTypeAsset, &bank.ID, ledger.EUR())
	require.NoError(t, err)

	postSimple(t, mem, day, eur(10000), income.ID, bank.ID)
	postSimple(t, mem, day, eur(20000), income.ID, checking.ID)
	postSimple(t, mem, day, eur(30000), income.ID, savings.ID)

	rollup, err := svc.BalanceWithChildren(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), rollup.AmountMinor())

	// Deactivating Savings drops its postings from the roll-up.
	require.NoError(t, svc.DeactivateAccount(ctx, savings.ID))
	rollup, err = svc.BalanceWithChildren(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), rollup.AmountMinor())
}

// =============================================================================
// TREE TESTS
// =============================================================================

func TestGetAccountTree_DepthPathAndOrder(t *testing.T) {
	// GIVEN: Assets > Bank > Checking plus an Expenses > Rent branch
	// WHEN: Building the tree
	// THEN: Depth and breadcrumb paths are correct and nodes are
	//       ordered by type rank then path

	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	expenses := roots[ledger.AccountTypeExpense]

	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "Checking", ledger.AccountTypeAsset, &bank.ID, ledger.EUR())
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, "Rent", ledger.AccountTypeExpense, &expenses.ID, ledger.EUR())
	require.NoError(t, err)

	nodes, err := svc.GetAccountTree(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 8) // 5 roots + 3 children

	byPath := make(map[string]ledger.AccountNode)
	for _, n := range nodes {
		byPath[n.Path] = n
	}

	assert.Equal(t, 0, byPath["Assets"].Depth)
	assert.Equal(t, 1, byPath["Assets > Bank"].Depth)
	assert.Equal(t, 2, byPath["Assets > Bank > Checking"].Depth)
	assert.Equal(t, 1, byPath["Expenses > Rent"].Depth)

	// Asset branch comes first, expense branch last.
	assert.Equal(t, "Assets", nodes[0].Path)
	assert.Equal(t, ledger.AccountTypeExpense, nodes[len(nodes)-1].Type)
}

func TestGetAccountTreeFiltered_IncludesInactive(t *testing.T) {
	svc, _, roots := newTestChart(t)
	ctx := context.Background()

	assets := roots[ledger.AccountTypeAsset]
	bank, err := svc.CreateAccount(ctx, "Bank", ledger.AccountTypeAsset, &assets.ID, ledger.EUR())
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateAccount(ctx, bank.ID))

	active, err := svc.GetAccountTree(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 5, "inactive accounts are hidden by default")

	all, err := svc.GetAccountTreeFiltered(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}
