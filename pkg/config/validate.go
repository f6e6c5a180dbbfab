package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "market.contract_address"
	Message string // e.g., "invalid address"
	Hint    string // e.g., "expected 0x-prefixed 20-byte hex"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs validation of the entire config.
// It aggregates all errors so the caller can print every issue at once.
func (c *Config) Validate() []error {
	var errs []error
	errs = append(errs, c.validateMarket()...)
	errs = append(errs, c.validateWallet()...)
	errs = append(errs, c.validateIPFS()...)
	errs = append(errs, c.validateUI()...)
	errs = append(errs, c.validateGateway()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func validateHTTPURL(path, raw string, required bool) []error {
	if raw == "" {
		if required {
			return []error{ValidationError{Path: path, Message: "must not be empty"}}
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return []error{ValidationError{Path: path, Message: fmt.Sprintf("invalid URL %q", raw)}}
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	}
	return []error{ValidationError{
		Path:    path,
		Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
		Hint:    "use http, https, ws or wss",
	}}
}

func (c *Config) validateMarket() []error {
	var errs []error
	mc := c.Market

	errs = append(errs, validateHTTPURL("market.rpc_url", mc.RPCURL, true)...)

	if mc.ContractAddress == "" {
		errs = append(errs, ValidationError{
			Path:    "market.contract_address",
			Message: "must not be empty",
			Hint:    "address of the deployed marketplace contract",
		})
	} else if !common.IsHexAddress(mc.ContractAddress) {
		errs = append(errs, ValidationError{
			Path:    "market.contract_address",
			Message: fmt.Sprintf("invalid address %q", mc.ContractAddress),
			Hint:    "expected 0x-prefixed 20-byte hex",
		})
	}

	if mc.ChainID <= 0 {
		errs = append(errs, ValidationError{Path: "market.chain_id", Message: "must be positive"})
	}
	if strings.TrimSpace(mc.Currency) == "" {
		errs = append(errs, ValidationError{Path: "market.currency", Message: "must not be empty"})
	}
	if mc.TxTimeout <= 0 {
		errs = append(errs, ValidationError{Path: "market.tx_timeout", Message: "must be positive"})
	}
	if mc.ResolveConcurrency < 1 {
		errs = append(errs, ValidationError{Path: "market.resolve_concurrency", Message: "must be >= 1"})
	}
	return errs
}

func (c *Config) validateWallet() []error {
	var errs []error
	wc := c.Wallet

	switch wc.Type {
	case WalletKeystore:
		if wc.KeystoreDir == "" {
			errs = append(errs, ValidationError{Path: "wallet.keystore_dir", Message: "must not be empty for keystore wallets"})
		}
	case WalletRPC:
		errs = append(errs, validateHTTPURL("wallet.signer_url", wc.SignerURL, true)...)
		if wc.PollInterval <= 0 {
			errs = append(errs, ValidationError{Path: "wallet.poll_interval", Message: "must be positive"})
		}
	case WalletNone:
	default:
		errs = append(errs, ValidationError{
			Path:    "wallet.type",
			Message: fmt.Sprintf("unknown wallet type %q", wc.Type),
			Hint:    "one of keystore, rpc, none",
		})
	}
	return errs
}

func (c *Config) validateIPFS() []error {
	var errs []error
	ic := c.IPFS

	errs = append(errs, validateHTTPURL("ipfs.api_url", ic.APIURL, true)...)
	errs = append(errs, validateHTTPURL("ipfs.gateway_url", ic.GatewayURL, true)...)

	if (ic.ProjectID == "") != (ic.ProjectSecret == "") {
		errs = append(errs, ValidationError{
			Path:    "ipfs.project_secret",
			Message: "project_id and project_secret must be set together",
			Hint:    "set SOULS_IPFS_PROJECT_SECRET to keep the secret out of the file",
		})
	}
	if ic.Timeout <= 0 {
		errs = append(errs, ValidationError{Path: "ipfs.timeout", Message: "must be positive"})
	}
	if ic.CacheSize < 1 {
		errs = append(errs, ValidationError{Path: "ipfs.cache_size", Message: "must be >= 1"})
	}
	if ic.CACert != "" {
		if _, err := os.Stat(ic.CACert); err != nil {
			errs = append(errs, ValidationError{Path: "ipfs.ca_cert", Message: err.Error()})
		}
	}
	return errs
}

func (c *Config) validateUI() []error {
	if c.UI.SearchDebounce < 0 {
		return []error{ValidationError{Path: "ui.search_debounce", Message: "must not be negative"}}
	}
	return nil
}

func (c *Config) validateGateway() []error {
	if c.Gateway.ListenAddr == "" {
		return []error{ValidationError{Path: "gateway.listen_addr", Message: "must not be empty"}}
	}
	if _, _, err := net.SplitHostPort(c.Gateway.ListenAddr); err != nil {
		return []error{ValidationError{
			Path:    "gateway.listen_addr",
			Message: fmt.Sprintf("invalid address %q", c.Gateway.ListenAddr),
			Hint:    "expected host:port",
		}}
	}
	return nil
}

func (c *Config) validateLogging() []error {
	var errs []error
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid level %q", c.Logging.Level),
			Hint:    "one of debug, info, warn, error",
		})
	}
	switch c.Logging.Format {
	case "", "console":
	default:
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("unsupported format %q", c.Logging.Format),
			Hint:    "console",
		})
	}
	return errs
}
