// Package contracts defines the interfaces between the marketplace context
// object and the three external systems it proxies.
//
// Each interface is small and owned by the consumer (pkg/market); concrete
// implementations live in pkg/wallet, pkg/ipfs and pkg/marketplace, and
// in-memory fakes live in pkg/market/markettest.
//
// Interfaces:
//   - WalletProvider: account discovery, authorization and transaction signing
//   - StorageProvider: content-addressed uploads and metadata lookups (IPFS)
//   - Marketplace: the fixed marketplace contract ABI
//   - Alerter: user-facing alerts
package contracts
