package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override secrets from the file
const (
	EnvIPFSProjectSecret = "SOULS_IPFS_PROJECT_SECRET"
	EnvWalletPassphrase  = "SOULS_WALLET_PASSPHRASE"
	EnvRPCURL            = "SOULS_RPC_URL"
)

// Load reads the YAML config at path on top of DefaultConfig. An empty path
// means ~/.lostsouls/config.yaml; a missing default file is not an error.
// Relative paths inside the config are resolved against the config directory.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath("config.yaml")
		if err != nil {
			return nil, err
		}
		path = p
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := DecodeStrict(f, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvIPFSProjectSecret); v != "" {
		c.IPFS.ProjectSecret = v
	}
	if v := os.Getenv(EnvWalletPassphrase); v != "" {
		c.Wallet.Passphrase = v
	}
	if v := os.Getenv(EnvRPCURL); v != "" {
		c.Market.RPCURL = v
	}
}

func (c *Config) resolvePaths(base string) {
	if c.Wallet.KeystoreDir == "" {
		c.Wallet.KeystoreDir = filepath.Join(base, "keystore")
	} else if !filepath.IsAbs(c.Wallet.KeystoreDir) {
		c.Wallet.KeystoreDir = filepath.Join(base, c.Wallet.KeystoreDir)
	}
	if c.IPFS.CACert != "" && !filepath.IsAbs(c.IPFS.CACert) {
		c.IPFS.CACert = filepath.Join(base, c.IPFS.CACert)
	}
	if c.Logging.OutputFile != "" && !filepath.IsAbs(c.Logging.OutputFile) {
		c.Logging.OutputFile = filepath.Join(base, c.Logging.OutputFile)
	}
}
