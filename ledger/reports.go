/*
reports.go - Cross-account aggregation

PURPOSE:
  ReportService derives net worth, totals per account type, and
  monthly activity entirely from the account and transaction services.
  Nothing here reads the store directly.

PARTIAL FAILURE:
  This is the one place partial failure is tolerated. A root account
  whose balance cannot be computed is excluded from the total, and the
  failure is carried in the Aggregate result so callers can surface it.
  Failures are never swallowed silently.

CONSISTENCY:
  Balance reads are not isolated from concurrent writes. A monthly
  figure issues two sequential point-in-time queries (month end, day
  before month start); a transaction committing between them can be
  seen by one query and not the other. Known gap, kept as-is.
*/
package ledger

import (
	"context"
	"time"
)

// AccountFailure records one root account excluded from an aggregate.
type AccountFailure struct {
	AccountID int64
	Err       error
}

// Aggregate is a computed total plus the per-account failures that
// were excluded from it.
type Aggregate struct {
	Total    Money
	Failures []AccountFailure
}

// ReportService aggregates across the two domain services. Stateless.
type ReportService struct {
	accounts     *AccountService
	transactions *TransactionService
	cfg          Config
}

func NewReportService(accounts *AccountService, transactions *TransactionService, cfg Config) *ReportService {
	return &ReportService{accounts: accounts, transactions: transactions, cfg: cfg}
}

// =============================================================================
// TOTALS
// =============================================================================

// TotalAssets sums the roll-up balances of every root asset account.
func (s *ReportService) TotalAssets(ctx context.Context) (Aggregate, error) {
	return s.totalByType(ctx, AccountTypeAsset)
}

// TotalLiabilities sums the roll-up balances of every root liability
// account.
func (s *ReportService) TotalLiabilities(ctx context.Context) (Aggregate, error) {
	return s.totalByType(ctx, AccountTypeLiability)
}

// NetWorth is total assets minus total liabilities, in the asset
// currency. Failures from both sides are carried over.
func (s *ReportService) NetWorth(ctx context.Context) (Aggregate, error) {
	assets, err := s.TotalAssets(ctx)
	if err != nil {
		return Aggregate{}, err
	}
	liabilities, err := s.TotalLiabilities(ctx)
	if err != nil {
		return Aggregate{}, err
	}
	return Aggregate{
		Total:    assets.Total.Sub(liabilities.Total),
		Failures: append(assets.Failures, liabilities.Failures...),
	}, nil
}

func (s *ReportService) totalByType(ctx context.Context, accountType AccountType) (Aggregate, error) {
	accounts, err := s.accounts.GetAccounts(ctx)
	if err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{Total: Zero(s.cfg.DefaultCurrency)}
	for _, account := range accounts {
		if !account.IsRoot() || account.Type != accountType {
			continue
		}
		balance, err := s.accounts.BalanceWithChildren(ctx, account.ID)
		if err != nil {
			agg.Failures = append(agg.Failures, AccountFailure{AccountID: account.ID, Err: err})
			continue
		}
		agg.Total = FromMinorUnits(agg.Total.AmountMinor()+balance.AmountMinor(), s.cfg.DefaultCurrency)
	}
	return agg, nil
}

// =============================================================================
// MONTHLY ACTIVITY
// =============================================================================

// MonthlyIncome is the income-type activity of one calendar month.
func (s *ReportService) MonthlyIncome(ctx context.Context, year int, month time.Month) (Aggregate, error) {
	return s.monthlyByType(ctx, AccountTypeIncome, year, month)
}

// MonthlyExpenses is the expense-type activity of one calendar month.
func (s *ReportService) MonthlyExpenses(ctx context.Context, year int, month time.Month) (Aggregate, error) {
	return s.monthlyByType(ctx, AccountTypeExpense, year, month)
}

// CurrentMonthIncome is MonthlyIncome for the local current month.
func (s *ReportService) CurrentMonthIncome(ctx context.Context) (Aggregate, error) {
	now := time.Now()
	return s.MonthlyIncome(ctx, now.Year(), now.Month())
}

// CurrentMonthExpenses is MonthlyExpenses for the local current month.
func (s *ReportService) CurrentMonthExpenses(ctx context.Context) (Aggregate, error) {
	now := time.Now()
	return s.MonthlyExpenses(ctx, now.Year(), now.Month())
}

// monthlyByType isolates one month's activity per root account as the
// point-in-time balance at month end minus the point-in-time balance
// at the day before month start, summed across roots. No dedicated
// period-scoped query is needed.
func (s *ReportService) monthlyByType(ctx context.Context, accountType AccountType, year int, month time.Month) (Aggregate, error) {
	start, end, err := monthBounds(year, month)
	if err != nil {
		return Aggregate{}, err
	}
	dayBeforeStart := start.AddDate(0, 0, -1)

	accounts, err := s.accounts.GetAccounts(ctx)
	if err != nil {
		return Aggregate{}, err
	}

	agg := Aggregate{Total: Zero(s.cfg.DefaultCurrency)}
	for _, account := range accounts {
		if !account.IsRoot() || account.Type != accountType {
			continue
		}
		endBalance, err := s.accounts.BalanceAsOf(ctx, account.ID, &end)
		if err != nil {
			agg.Failures = append(agg.Failures, AccountFailure{AccountID: account.ID, Err: err})
			continue
		}
		// No postings before the month means a zero opening balance.
		var opening int64
		if startBalance, err := s.accounts.BalanceAsOf(ctx, account.ID, &dayBeforeStart); err == nil {
			opening = startBalance.AmountMinor()
		}
		agg.Total = FromMinorUnits(agg.Total.AmountMinor()+endBalance.AmountMinor()-opening, s.cfg.DefaultCurrency)
	}
	return agg, nil
}

// =============================================================================
// TRANSACTION LISTINGS
// =============================================================================

// RecentTransactions returns the newest transactions up to limit.
func (s *ReportService) RecentTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	return s.transactions.GetTransactions(ctx, TransactionFilters{Limit: limit})
}

// MonthlyTransactions returns every transaction of one calendar month.
func (s *ReportService) MonthlyTransactions(ctx context.Context, year int, month time.Month) ([]Transaction, error) {
	start, end, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.transactions.GetTransactions(ctx, TransactionFilters{FromDate: &start, ToDate: &end})
}

// monthBounds returns the first and last calendar day of a month.
func monthBounds(year int, month time.Month) (time.Time, time.Time, error) {
	if month < time.January || month > time.December || year < 1 {
		return time.Time{}, time.Time{}, NewValidationError("invalid date: year %d month %d", year, int(month))
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
