package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletd/ledger-engine/config"
	"github.com/walletd/ledger-engine/ledger"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "wallet.db", cfg.Database)
	assert.Equal(t, 5, cfg.MaxHierarchyDepth)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
addr: ":3000"
database: "./data/wallet.db"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "./data/wallet.db", cfg.Database)
	// Fields missing from the file keep their defaults.
	assert.Equal(t, 5, cfg.MaxHierarchyDepth)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "addr: [unterminated")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLedger_ResolvesCurrency(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultCurrency = "btc"

	ledgerCfg, err := cfg.Ledger()
	require.NoError(t, err)
	assert.Equal(t, 5, ledgerCfg.MaxHierarchyDepth)
	assert.Equal(t, "BTC", ledgerCfg.DefaultCurrency.Code())
}

func TestLedger_UnknownCurrency(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultCurrency = "XQZ"

	_, err := cfg.Ledger()
	assert.Error(t, err)
	assert.True(t, ledger.IsCurrency(err))
}
