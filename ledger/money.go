/*
money.go - Exact monetary values

PURPOSE:
  Money is stored as integer minor units (cents, satoshis) plus a
  Currency descriptor. All arithmetic happens on the integer minor
  units so repeated sums never drift. Floating point is never used
  for amounts anywhere in this module.

CONVERSION:
  Major-unit values (user input like "10.50") go through
  decimal.Decimal and are scaled by the currency's minor unit scale.
  The reverse conversion is Decimal(), used only for display.

CURRENCIES:
  EUR and BTC are built in. Any other ISO 4217 code is resolved
  through the go-money registry, which supplies the decimal scale
  and display symbol. Unknown codes fail with CurrencyError.

SEE ALSO:
  - types.go: Account and transaction types carrying Money
  - transactions.go: Balance validation over minor-unit sums
*/
package ledger

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CURRENCY
// =============================================================================

// Currency describes a monetary unit: ISO code, decimal scale of the
// minor unit, and a display symbol.
type Currency struct {
	code           string
	minorUnitScale uint8
	symbol         string
}

// NewCurrency builds a Currency. The code must be exactly 3 letters.
func NewCurrency(code string, minorUnitScale uint8, symbol string) (Currency, error) {
	if len(code) != 3 {
		return Currency{}, &CurrencyError{Code: code}
	}
	return Currency{
		code:           strings.ToUpper(code),
		minorUnitScale: minorUnitScale,
		symbol:         symbol,
	}, nil
}

// CurrencyFromCode resolves a currency by its 3-letter code.
// EUR and BTC are built in; everything else goes through the ISO
// registry. Unknown codes return CurrencyError.
func CurrencyFromCode(code string) (Currency, error) {
	switch strings.ToUpper(code) {
	case "EUR":
		return EUR(), nil
	case "BTC":
		return BTC(), nil
	}
	if len(code) != 3 {
		return Currency{}, &CurrencyError{Code: code}
	}
	cur := gomoney.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return Currency{}, &CurrencyError{Code: code}
	}
	return Currency{
		code:           cur.Code,
		minorUnitScale: uint8(cur.Fraction),
		symbol:         cur.Grapheme,
	}, nil
}

// EUR is the default currency of the ledger.
func EUR() Currency {
	return Currency{code: "EUR", minorUnitScale: 2, symbol: "€"}
}

func BTC() Currency {
	return Currency{code: "BTC", minorUnitScale: 8, symbol: "₿"}
}

func (c Currency) Code() string          { return c.code }
func (c Currency) MinorUnitScale() uint8 { return c.minorUnitScale }
func (c Currency) Symbol() string        { return c.symbol }
func (c Currency) IsZero() bool          { return c.code == "" }

// =============================================================================
// MONEY
// =============================================================================

// Money is an exact monetary amount: integer minor units plus Currency.
type Money struct {
	amountMinor int64
	currency    Currency
}

// NewMoney converts a major-unit decimal amount into minor units,
// rounding to the currency's scale.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	minor := amount.Shift(int32(currency.MinorUnitScale())).Round(0)
	return Money{amountMinor: minor.IntPart(), currency: currency}
}

// FromMinorUnits wraps an already-scaled integer amount.
func FromMinorUnits(amountMinor int64, currency Currency) Money {
	return Money{amountMinor: amountMinor, currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

func (m Money) AmountMinor() int64 { return m.amountMinor }
func (m Money) Currency() Currency { return m.currency }
func (m Money) IsZero() bool       { return m.amountMinor == 0 }
func (m Money) IsPositive() bool   { return m.amountMinor > 0 }
func (m Money) IsNegative() bool   { return m.amountMinor < 0 }

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amountMinor, -int32(m.currency.MinorUnitScale()))
}

// Add sums two amounts on minor units. A zero-valued currency on either
// side is weak and adopts the other's.
func (m Money) Add(n Money) Money {
	return Money{amountMinor: m.amountMinor + n.amountMinor, currency: pickCurrency(m, n)}
}

// Sub subtracts n from m on minor units.
func (m Money) Sub(n Money) Money {
	return Money{amountMinor: m.amountMinor - n.amountMinor, currency: pickCurrency(m, n)}
}

func (m Money) Neg() Money {
	return Money{amountMinor: -m.amountMinor, currency: m.currency}
}

// String renders the amount in major units with the currency code,
// e.g. "123.45 EUR".
func (m Money) String() string {
	return m.Decimal().StringFixed(int32(m.currency.MinorUnitScale())) + " " + m.currency.code
}

func pickCurrency(a, b Money) Currency {
	if a.currency.IsZero() {
		return b.currency
	}
	if b.currency.IsZero() {
		return a.currency
	}
	if a.currency.code != b.currency.code {
		panic("currency mismatch: " + a.currency.code + " != " + b.currency.code)
	}
	return a.currency
}
