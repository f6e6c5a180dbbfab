package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Market.ContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	cfg.Wallet.KeystoreDir = "/tmp/keystore"
	return cfg
}

func hasPath(errs []error, path string) bool {
	for _, err := range errs {
		var ve ValidationError
		if errors.As(err, &ve) && ve.Path == path {
			return true
		}
	}
	return false
}

func TestValidate_Valid(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"missing contract", func(c *Config) { c.Market.ContractAddress = "" }, "market.contract_address"},
		{"bad contract", func(c *Config) { c.Market.ContractAddress = "0x123" }, "market.contract_address"},
		{"bad rpc scheme", func(c *Config) { c.Market.RPCURL = "ftp://node" }, "market.rpc_url"},
		{"zero chain id", func(c *Config) { c.Market.ChainID = 0 }, "market.chain_id"},
		{"zero tx timeout", func(c *Config) { c.Market.TxTimeout = 0 }, "market.tx_timeout"},
		{"zero concurrency", func(c *Config) { c.Market.ResolveConcurrency = 0 }, "market.resolve_concurrency"},
		{"unknown wallet", func(c *Config) { c.Wallet.Type = "metamask" }, "wallet.type"},
		{"rpc wallet without url", func(c *Config) { c.Wallet.Type = WalletRPC }, "wallet.signer_url"},
		{"half ipfs auth", func(c *Config) { c.IPFS.ProjectID = "id" }, "ipfs.project_secret"},
		{"missing ca cert", func(c *Config) { c.IPFS.CACert = "/nonexistent/ca.pem" }, "ipfs.ca_cert"},
		{"bad gateway url", func(c *Config) { c.IPFS.GatewayURL = "not a url" }, "ipfs.gateway_url"},
		{"negative debounce", func(c *Config) { c.UI.SearchDebounce = -time.Second }, "ui.search_debounce"},
		{"bad listen addr", func(c *Config) { c.Gateway.ListenAddr = "7070" }, "gateway.listen_addr"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if !hasPath(errs, tt.path) {
				t.Errorf("expected error at %s, got %v", tt.path, errs)
			}
		})
	}
}

func TestValidate_NoneWallet(t *testing.T) {
	cfg := validConfig()
	cfg.Wallet.Type = WalletNone
	cfg.Wallet.KeystoreDir = ""
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("none wallet should need no settings, got %v", errs)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
market:
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  chain_id: 5
wallet:
  type: keystore
  keystore_dir: keys
ipfs:
  project_id: souls
ui:
  search_debounce: 250ms
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvIPFSProjectSecret, "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Market.ChainID != 5 {
		t.Errorf("chain id = %d", cfg.Market.ChainID)
	}
	if cfg.Market.Currency != "ETH" {
		t.Errorf("defaults should survive, currency = %q", cfg.Market.Currency)
	}
	if cfg.IPFS.ProjectSecret != "from-env" {
		t.Errorf("secret should come from env, got %q", cfg.IPFS.ProjectSecret)
	}
	if cfg.Wallet.KeystoreDir != filepath.Join(dir, "keys") {
		t.Errorf("keystore dir not resolved: %s", cfg.Wallet.KeystoreDir)
	}
	if cfg.UI.SearchDebounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.UI.SearchDebounce)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("loaded config invalid: %v", errs)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("market:\n  contract: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected strict decode error, got %v", err)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("explicit missing file should fail")
	}
}
