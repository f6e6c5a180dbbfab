package contracts

import (
	"context"
	"io"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// StorageProvider defines the storage gateway operations the marketplace needs.
type StorageProvider interface {
	// Add uploads content to the storage network and returns its CID.
	Add(ctx context.Context, reader io.Reader, name string) (*AddResponse, error)

	// URL returns the public gateway URL <base>/ipfs/<cid>.
	URL(cid string) string

	// FetchMetadata dereferences a token URI and decodes the metadata document.
	FetchMetadata(ctx context.Context, uri string) (*nft.Metadata, error)
}

// AddResponse represents the result of adding content to storage.
type AddResponse struct {
	Name string `json:"name"`
	Cid  string `json:"cid"`
	Size int64  `json:"size"`
}
