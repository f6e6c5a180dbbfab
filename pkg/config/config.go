package config

import "time"

// Config represents the full client configuration
type Config struct {
	Market  MarketConfig  `yaml:"market"`
	Wallet  WalletConfig  `yaml:"wallet"`
	IPFS    IPFSConfig    `yaml:"ipfs"`
	UI      UIConfig      `yaml:"ui"`
	Gateway GatewayConfig `yaml:"gateway"`
	Logging LoggingConfig `yaml:"logging"`
}

// MarketConfig points the client at the deployed marketplace contract
type MarketConfig struct {
	RPCURL             string        `yaml:"rpc_url"`             // JSON-RPC endpoint of the chain
	ContractAddress    string        `yaml:"contract_address"`    // Deployed marketplace address
	ChainID            int64         `yaml:"chain_id"`            // Used for EIP-155 signing
	Currency           string        `yaml:"currency"`            // Display symbol, e.g. "ETH"
	TxTimeout          time.Duration `yaml:"tx_timeout"`          // Max wait for a receipt
	ResolveConcurrency int           `yaml:"resolve_concurrency"` // Parallel tokenURI/metadata lookups
}

// WalletConfig selects the wallet provider.
// Type is one of "keystore", "rpc" or "none" (no wallet present).
type WalletConfig struct {
	Type         string        `yaml:"type"`
	KeystoreDir  string        `yaml:"keystore_dir"`  // keystore: directory of encrypted key files
	Passphrase   string        `yaml:"passphrase"`    // keystore: prefer SOULS_WALLET_PASSPHRASE
	SignerURL    string        `yaml:"signer_url"`    // rpc: external signer / node endpoint
	PollInterval time.Duration `yaml:"poll_interval"` // rpc: account-change polling period
}

// IPFSConfig describes the storage gateway
type IPFSConfig struct {
	APIURL        string        `yaml:"api_url"`        // Upload endpoint base, e.g. https://ipfs.infura.io:5001
	GatewayURL    string        `yaml:"gateway_url"`    // Public base for <base>/ipfs/<cid>
	ProjectID     string        `yaml:"project_id"`     // Basic auth user, optional
	ProjectSecret string        `yaml:"project_secret"` // Basic auth password; prefer SOULS_IPFS_PROJECT_SECRET
	Timeout       time.Duration `yaml:"timeout"`
	CacheSize     int           `yaml:"cache_size"` // Metadata documents kept in the LRU
	CACert        string        `yaml:"ca_cert"`    // Extra PEM root for self-hosted nodes
	Insecure      bool          `yaml:"insecure"`   // Skip TLS verification, local development only
}

// UIConfig tunes the terminal UI
type UIConfig struct {
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

// GatewayConfig configures the local HTTP API
type GatewayConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // console
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// Wallet provider types
const (
	WalletKeystore = "keystore"
	WalletRPC      = "rpc"
	WalletNone     = "none"
)

// DefaultConfig returns a configuration for a local development chain
func DefaultConfig() *Config {
	return &Config{
		Market: MarketConfig{
			RPCURL:             "http://127.0.0.1:8545",
			ChainID:            31337,
			Currency:           "ETH",
			TxTimeout:          2 * time.Minute,
			ResolveConcurrency: 8,
		},
		Wallet: WalletConfig{
			Type:         WalletKeystore,
			PollInterval: 5 * time.Second,
		},
		IPFS: IPFSConfig{
			APIURL:     "http://127.0.0.1:5001",
			GatewayURL: "http://127.0.0.1:8080",
			Timeout:    60 * time.Second,
			CacheSize:  512,
		},
		UI: UIConfig{
			SearchDebounce: time.Second,
		},
		Gateway: GatewayConfig{
			ListenAddr: "127.0.0.1:7070",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
