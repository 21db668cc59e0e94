/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API, decoupled from the domain types.
  Conversion to and from ledger types happens here so the domain
  package carries no serialization concerns.

MONEY ON THE WIRE:
  Amounts travel as integer minor units plus a currency code, with a
  formatted major-unit string for display. Floating point never
  appears in the payloads.
*/
package api

import (
	"time"

	"github.com/walletd/ledger-engine/ledger"
)

// =============================================================================
// REQUESTS
// =============================================================================

type CreateAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	ParentID    *int64 `json:"parent_id"`
	Currency    string `json:"currency"`
}

type UpdateAccountRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type EntryRequest struct {
	AccountID   int64  `json:"account_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	EntryType   string `json:"entry_type"`
	Description string `json:"description,omitempty"`
}

type CreateTransactionRequest struct {
	Description string         `json:"description"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Entries     []EntryRequest `json:"entries"`
}

type SimpleTransactionRequest struct {
	Description   string `json:"description"`
	Date          string `json:"date"` // YYYY-MM-DD
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
}

func (r EntryRequest) toInput() (ledger.EntryInput, error) {
	currency, err := ledger.CurrencyFromCode(r.Currency)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	entryType, err := ledger.ParseEntryType(r.EntryType)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	return ledger.EntryInput{
		AccountID:   r.AccountID,
		Amount:      ledger.FromMinorUnits(r.AmountMinor, currency),
		Type:        entryType,
		Description: r.Description,
	}, nil
}

// =============================================================================
// RESPONSES
// =============================================================================

type MoneyResponse struct {
	AmountMinor int64  `json:"amount_minor"`
	Amount      string `json:"amount"` // major units, for display
	Currency    string `json:"currency"`
}

func toMoneyResponse(m ledger.Money) MoneyResponse {
	return MoneyResponse{
		AmountMinor: m.AmountMinor(),
		Amount:      m.Decimal().StringFixed(int32(m.Currency().MinorUnitScale())),
		Currency:    m.Currency().Code(),
	}
}

type AccountResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toAccountResponse(a ledger.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		AccountType: string(a.Type),
		ParentID:    a.ParentID,
		Currency:    a.Currency.Code(),
		Description: a.Description,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type AccountNodeResponse struct {
	AccountResponse
	Depth int    `json:"depth"`
	Path  string `json:"path"`
}

func toAccountNodeResponse(n ledger.AccountNode) AccountNodeResponse {
	return AccountNodeResponse{
		AccountResponse: toAccountResponse(n.Account),
		Depth:           n.Depth,
		Path:            n.Path,
	}
}

type EntryResponse struct {
	ID            int64         `json:"id"`
	TransactionID int64         `json:"transaction_id"`
	AccountID     int64         `json:"account_id"`
	Amount        MoneyResponse `json:"amount"`
	EntryType     string        `json:"entry_type"`
	Description   string        `json:"description,omitempty"`
	CreatedAt     string        `json:"created_at"`
}

type TransactionResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Date        string          `json:"date"`
	Tags        string          `json:"tags,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   string          `json:"created_at"`
	Entries     []EntryResponse `json:"entries"`
}

func toTransactionResponse(tx ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		Description: tx.Description,
		Reference:   tx.Reference,
		Date:        tx.Date.Format(ledger.DateFormat),
		Tags:        tx.Tags,
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
		Entries:     []EntryResponse{},
	}
	for _, e := range tx.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			ID:            e.ID,
			TransactionID: e.TransactionID,
			AccountID:     e.AccountID,
			Amount:        toMoneyResponse(e.Amount),
			EntryType:     string(e.Type),
			Description:   e.Description,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

func toTransactionResponses(txs []ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type FailureResponse struct {
	AccountID int64  `json:"account_id"`
	Error     string `json:"error"`
}

// AggregateResponse carries a report total plus the accounts that were
// excluded because their balance could not be computed.
type AggregateResponse struct {
	Total    MoneyResponse     `json:"total"`
	Failures []FailureResponse `json:"failures,omitempty"`
}

func toAggregateResponse(a ledger.Aggregate) AggregateResponse {
	resp := AggregateResponse{Total: toMoneyResponse(a.Total)}
	for _, f := range a.Failures {
		resp.Failures = append(resp.Failures, FailureResponse{AccountID: f.AccountID, Error: f.Err.Error()})
	}
	return resp
}

type SummaryResponse struct {
	NetWorth         AggregateResponse `json:"net_worth"`
	TotalAssets      AggregateResponse `json:"total_assets"`
	TotalLiabilities AggregateResponse `json:"total_liabilities"`
}

type MonthlyReportResponse struct {
	Year         int                   `json:"year"`
	Month        int                   `json:"month"`
	Income       AggregateResponse     `json:"income"`
	Expenses     AggregateResponse     `json:"expenses"`
	Transactions []TransactionResponse `json:"transactions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
