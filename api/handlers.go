/*
handlers.go - HTTP handlers for the ledger engine

PURPOSE:
  Exposes the ledger services over REST. Handles HTTP request/response
  and JSON serialization, and delegates everything else to the domain
  services.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                    List accounts
    POST   /api/accounts                    Create account
    GET    /api/accounts/tree               Hierarchy with depth and path
    GET    /api/accounts/{id}               Fetch account
    PUT    /api/accounts/{id}               Update name/description
    POST   /api/accounts/{id}/deactivate    Soft-deactivate
    GET    /api/accounts/{id}/children      Direct active children
    GET    /api/accounts/{id}/balance       Balance (?children, ?as_of)

  Transactions:
    GET    /api/transactions                List with filters
    POST   /api/transactions                Create balanced transaction
    POST   /api/transactions/simple         Two-leg transfer helper
    GET    /api/transactions/{id}           Fetch with entries

  Reports:
    GET    /api/reports/net-worth           Assets minus liabilities
    GET    /api/reports/summary             Net worth + totals
    GET    /api/reports/monthly             ?year&month activity

ERROR HANDLING:
  Domain error kinds map onto HTTP status codes:
  - 400: validation and currency errors
  - 404: account/transaction not found
  - 500: storage failures

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/walletd/ledger-engine/ledger"
)

// Handler holds the service dependencies for all HTTP handlers.
type Handler struct {
	Accounts     *ledger.AccountService
	Transactions *ledger.TransactionService
	Reports      *ledger.ReportService
}

// NewHandler wires the three services over one shared store handle.
func NewHandler(store ledger.Store, cfg ledger.Config) *Handler {
	accounts := ledger.NewAccountService(store, cfg)
	transactions := ledger.NewTransactionService(store)
	return &Handler{
		Accounts:     accounts,
		Transactions: transactions,
		Reports:      ledger.NewReportService(accounts, transactions, cfg),
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Accounts.GetAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.NewValidationError("invalid request body: %v", err))
		return
	}

	accountType, err := ledger.ParseAccountType(req.AccountType)
	if err != nil {
		writeError(w, err)
		return
	}
	currency, err := ledger.CurrencyFromCode(req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.Accounts.CreateAccount(r.Context(), req.Name, accountType, req.ParentID, currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	account, err := h.Accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.NewValidationError("invalid request body: %v", err))
		return
	}

	account, err := h.Accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	account.Name = req.Name
	account.Description = req.Description

	updated, err := h.Accounts.UpdateAccount(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Accounts.DeactivateAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAccountTree(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	nodes, err := h.Accounts.GetAccountTreeFiltered(r.Context(), includeInactive)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AccountNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toAccountNodeResponse(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	children, err := h.Accounts.GetChildren(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]AccountResponse, 0, len(children))
	for _, a := range children {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBalance serves the three balance flavors: own postings only,
// rolled up with active descendants (?children=true), or point in
// time (?as_of=YYYY-MM-DD).
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var balance ledger.Money
	switch {
	case r.URL.Query().Get("children") == "true":
		balance, err = h.Accounts.BalanceWithChildren(r.Context(), id)
	case r.URL.Query().Get("as_of") != "":
		asOf, perr := time.Parse(ledger.DateFormat, r.URL.Query().Get("as_of"))
		if perr != nil {
			writeError(w, ledger.NewValidationError("invalid as_of date: %v", perr))
			return
		}
		balance, err = h.Accounts.BalanceAsOf(r.Context(), id, &asOf)
	default:
		balance, err = h.Accounts.Balance(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMoneyResponse(balance))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txs, err := h.Transactions.GetTransactions(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.NewValidationError("invalid request body: %v", err))
		return
	}

	date, err := time.Parse(ledger.DateFormat, req.Date)
	if err != nil {
		writeError(w, ledger.NewValidationError("invalid transaction date: %v", err))
		return
	}

	entries := make([]ledger.EntryInput, 0, len(req.Entries))
	accountIDs := make([]int64, 0, len(req.Entries))
	for _, e := range req.Entries {
		input, err := e.toInput()
		if err != nil {
			writeError(w, err)
			return
		}
		entries = append(entries, input)
		accountIDs = append(accountIDs, input.AccountID)
	}

	// Every leg must reference an existing, active account.
	if err := h.Accounts.ValidateAccounts(r.Context(), accountIDs); err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.Transactions.CreateTransaction(r.Context(), req.Description, date, entries)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) CreateSimpleTransaction(w http.ResponseWriter, r *http.Request) {
	var req SimpleTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ledger.NewValidationError("invalid request body: %v", err))
		return
	}

	date, err := time.Parse(ledger.DateFormat, req.Date)
	if err != nil {
		writeError(w, ledger.NewValidationError("invalid transaction date: %v", err))
		return
	}
	currency, err := ledger.CurrencyFromCode(req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Accounts.ValidateAccounts(r.Context(), []int64{req.FromAccountID, req.ToAccountID}); err != nil {
		writeError(w, err)
		return
	}

	amount := ledger.FromMinorUnits(req.AmountMinor, currency)
	tx, err := h.Transactions.CreateSimpleTransaction(r.Context(), req.Description, date, amount, req.FromAccountID, req.ToAccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tx, err := h.Transactions.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	agg, err := h.Reports.NetWorth(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAggregateResponse(agg))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	netWorth, err := h.Reports.NetWorth(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	assets, err := h.Reports.TotalAssets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	liabilities, err := h.Reports.TotalLiabilities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{
		NetWorth:         toAggregateResponse(netWorth),
		TotalAssets:      toAggregateResponse(assets),
		TotalLiabilities: toAggregateResponse(liabilities),
	})
}

func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, ledger.NewValidationError("invalid year: %v", err))
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, ledger.NewValidationError("invalid month: %v", err))
		return
	}
	month := time.Month(monthNum)

	income, err := h.Reports.MonthlyIncome(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	expenses, err := h.Reports.MonthlyExpenses(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	txs, err := h.Reports.MonthlyTransactions(r.Context(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MonthlyReportResponse{
		Year:         year,
		Month:        monthNum,
		Income:       toAggregateResponse(income),
		Expenses:     toAggregateResponse(expenses),
		Transactions: toTransactionResponses(txs),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, ledger.NewValidationError("invalid id: %s", chi.URLParam(r, "id"))
	}
	return id, nil
}

func parseFilters(r *http.Request) (ledger.TransactionFilters, error) {
	var filters ledger.TransactionFilters
	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, ledger.NewValidationError("invalid account_id: %s", v)
		}
		filters.AccountID = &id
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(ledger.DateFormat, v)
		if err != nil {
			return filters, ledger.NewValidationError("invalid from date: %s", v)
		}
		filters.FromDate = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(ledger.DateFormat, v)
		if err != nil {
			return filters, ledger.NewValidationError("invalid to date: %s", v)
		}
		filters.ToDate = &to
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filters, ledger.NewValidationError("invalid limit: %s", v)
		}
		filters.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filters, ledger.NewValidationError("invalid offset: %s", v)
		}
		filters.Offset = offset
	}
	return filters, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsValidation(err), ledger.IsCurrency(err):
		status = http.StatusBadRequest
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
