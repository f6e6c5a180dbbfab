// Package tlsutil builds HTTP clients that additionally trust a private CA,
// for IPFS nodes and gateways served with self-signed certificates.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// EnvCACertPath overrides Options.CACertPath.
const EnvCACertPath = "SOULS_CA_CERT_PATH"

// Options selects the extra trust applied on top of the system roots.
type Options struct {
	// CACertPath is a PEM bundle appended to the system pool.
	CACertPath string
	// InsecureSkipVerify disables verification entirely. Local development only.
	InsecureSkipVerify bool
}

// Enabled reports whether the options change anything over http.DefaultTransport.
func (o Options) Enabled() bool {
	return o.CACertPath != "" || o.InsecureSkipVerify || os.Getenv(EnvCACertPath) != ""
}

// LoadCAPool returns the system pool with the PEM certificates at path added.
func LoadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate %s: %w", path, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no PEM certificates in %s", path)
	}
	return pool, nil
}

// GetTLSConfig returns a TLS config for opts.
func GetTLSConfig(opts Options) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	path := opts.CACertPath
	if env := os.Getenv(EnvCACertPath); env != "" {
		path = env
	}
	if path != "" {
		pool, err := LoadCAPool(path)
		if err != nil {
			return nil, err
		}
		config.RootCAs = pool
	}
	config.InsecureSkipVerify = opts.InsecureSkipVerify
	return config, nil
}

// NewHTTPClient creates an HTTP client using GetTLSConfig(opts).
func NewHTTPClient(timeout time.Duration, opts Options) (*http.Client, error) {
	tlsConfig, err := GetTLSConfig(opts)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
