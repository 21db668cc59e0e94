// Package config loads server configuration from a YAML file with
// sensible defaults. Policy constants end up in ledger.Config at
// service construction; nothing in the domain reads files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/walletd/ledger-engine/ledger"
)

// Config is the process configuration.
//
// Example file:
//
//	addr: ":8080"
//	database: "./data/wallet.db"
//	max_hierarchy_depth: 5
//	default_currency: EUR
type Config struct {
	Addr              string `yaml:"addr"`
	Database          string `yaml:"database"`
	MaxHierarchyDepth int    `yaml:"max_hierarchy_depth"`
	DefaultCurrency   string `yaml:"default_currency"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Addr:              ":8080",
		Database:          "wallet.db",
		MaxHierarchyDepth: 5,
		DefaultCurrency:   "EUR",
	}
}

// Load reads a YAML config file over the defaults. Fields missing from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Ledger resolves the policy constants into a ledger.Config.
func (c Config) Ledger() (ledger.Config, error) {
	currency, err := ledger.CurrencyFromCode(c.DefaultCurrency)
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		MaxHierarchyDepth: c.MaxHierarchyDepth,
		DefaultCurrency:   currency,
	}, nil
}
