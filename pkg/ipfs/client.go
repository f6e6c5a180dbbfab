package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/tlsutil"
)

// Client talks to an IPFS HTTP API for uploads and to a public gateway for reads
type Client struct {
	apiURL     string
	gatewayURL string
	authHeader string
	httpClient *http.Client
	metadata   *lru.Cache[string, *nft.Metadata]
	logger     *zap.Logger
}

var _ contracts.StorageProvider = (*Client)(nil)

// Config holds configuration for the IPFS client
type Config struct {
	// APIURL is the base URL of the IPFS HTTP API (e.g., "https://ipfs.infura.io:5001").
	// If empty, defaults to "http://localhost:5001"
	APIURL string

	// GatewayURL is the base used for <base>/ipfs/<cid> links.
	// If empty, defaults to "http://localhost:8080"
	GatewayURL string

	// ProjectID and ProjectSecret enable HTTP basic auth on the API
	ProjectID     string
	ProjectSecret string

	// Timeout is the timeout for client operations
	// If zero, defaults to 60 seconds
	Timeout time.Duration

	// CacheSize bounds the number of decoded metadata documents kept in memory.
	// If zero, defaults to 512
	CacheSize int

	// TLS adds a private CA for self-hosted nodes. Zero value uses the system roots
	TLS tlsutil.Options
}

// apiAddResponse is one NDJSON line of /api/v0/add
type apiAddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// NewClient creates a new IPFS client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}

	gatewayURL := strings.TrimRight(cfg.GatewayURL, "/")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8080"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, *nft.Metadata](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.TLS.Enabled() {
		httpClient, err = tlsutil.NewHTTPClient(timeout, cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	c := &Client{
		apiURL:     apiURL,
		gatewayURL: gatewayURL,
		httpClient: httpClient,
		metadata:   cache,
		logger:     logger,
	}
	if cfg.ProjectID != "" {
		req, _ := http.NewRequest(http.MethodGet, apiURL, nil)
		req.SetBasicAuth(cfg.ProjectID, cfg.ProjectSecret)
		c.authHeader = req.Header.Get("Authorization")
	}
	return c, nil
}

func (c *Client) newAPIRequest(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	// The IPFS RPC API only accepts POST
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}
	return req, nil
}

// Health checks if the IPFS API answers
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newAPIRequest(ctx, "/api/v0/version", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Add uploads content to IPFS and returns the CID
func (c *Client) Add(ctx context.Context, reader io.Reader, name string) (*contracts.AddResponse, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to copy data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := c.newAPIRequest(ctx, "/api/v0/add?pin=true&cid-version=1", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create add request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("add request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("add failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// /add streams NDJSON progress objects; the last one carries the root hash.
	dec := json.NewDecoder(resp.Body)
	var last apiAddResponse
	var hasResult bool
	for {
		var chunk apiAddResponse
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode add response: %w", err)
		}
		if chunk.Hash != "" {
			last = chunk
			hasResult = true
		}
	}
	if !hasResult {
		return nil, fmt.Errorf("add response missing CID")
	}

	parsed, err := cid.Decode(last.Hash)
	if err != nil {
		return nil, fmt.Errorf("add returned invalid CID %q: %w", last.Hash, err)
	}

	if last.Name == "" {
		last.Name = name
	}

	c.logger.Debug("ipfs add complete",
		zap.String("name", last.Name),
		zap.String("cid", parsed.String()),
		zap.Int("bytes", len(data)))

	return &contracts.AddResponse{
		Name: last.Name,
		Cid:  parsed.String(),
		Size: int64(len(data)),
	}, nil
}

// AddJSON marshals v and uploads it
func (c *Client) AddJSON(ctx context.Context, v any, name string) (*contracts.AddResponse, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return c.Add(ctx, bytes.NewReader(data), name)
}

// URL returns the gateway URL for a CID
func (c *Client) URL(cidStr string) string {
	return c.gatewayURL + "/ipfs/" + cidStr
}

// resolve maps ipfs:// URIs onto the configured gateway and passes HTTP URLs through
func (c *Client) resolve(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return c.URL(strings.TrimPrefix(rest, "ipfs/"))
	}
	return uri
}

// Get fetches raw content by URI. The caller must close the body.
func (c *Client) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(uri), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create get request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s failed with status: %d", uri, resp.StatusCode)
	}
	return resp.Body, nil
}

// FetchMetadata downloads and decodes a token metadata document. Results are
// cached by URI since content-addressed documents never change.
func (c *Client) FetchMetadata(ctx context.Context, uri string) (*nft.Metadata, error) {
	if md, ok := c.metadata.Get(uri); ok {
		return md, nil
	}

	body, err := c.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var md nft.Metadata
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&md); err != nil {
		return nil, fmt.Errorf("failed to decode metadata at %s: %w", uri, err)
	}

	c.metadata.Add(uri, &md)
	return &md, nil
}

// CachedMetadata reports how many metadata documents are cached
func (c *Client) CachedMetadata() int {
	return c.metadata.Len()
}

