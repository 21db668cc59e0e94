package ledger

// Config carries the policy constants the services are built with.
type Config struct {
	// MaxHierarchyDepth caps the ancestor chain length of an account,
	// counting the account itself.
	MaxHierarchyDepth int

	// DefaultCurrency is the currency of balances computed over
	// accounts that have no postings yet, and of report aggregates.
	DefaultCurrency Currency
}

// DefaultConfig returns the stock policy: chains of at most 5 accounts,
// EUR balances.
func DefaultConfig() Config {
	return Config{
		MaxHierarchyDepth: 5,
		DefaultCurrency:   EUR(),
	}
}
