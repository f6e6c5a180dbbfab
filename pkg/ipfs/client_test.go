package ipfs

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/tlsutil"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	t.Run("default_config", func(t *testing.T) {
		client, err := NewClient(Config{}, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}
		if client.apiURL != "http://localhost:5001" {
			t.Errorf("Expected default API URL, got %s", client.apiURL)
		}
		if client.gatewayURL != "http://localhost:8080" {
			t.Errorf("Expected default gateway URL, got %s", client.gatewayURL)
		}
		if client.httpClient.Timeout != 60*time.Second {
			t.Errorf("Expected default timeout 60s, got %v", client.httpClient.Timeout)
		}
		if client.authHeader != "" {
			t.Error("no auth header expected without project id")
		}
	})

	t.Run("custom_config", func(t *testing.T) {
		client, err := NewClient(Config{
			APIURL:        "https://ipfs.infura.io:5001/",
			GatewayURL:    "https://souls.infura-ipfs.io/",
			ProjectID:     "id",
			ProjectSecret: "secret",
			Timeout:       30 * time.Second,
		}, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}
		if client.apiURL != "https://ipfs.infura.io:5001" {
			t.Errorf("trailing slash not trimmed: %s", client.apiURL)
		}
		if !strings.HasPrefix(client.authHeader, "Basic ") {
			t.Errorf("expected basic auth header, got %q", client.authHeader)
		}
		if got := client.URL(testCID); got != "https://souls.infura-ipfs.io/ipfs/"+testCID {
			t.Errorf("URL() = %s", got)
		}
	})
}

func TestNewClient_PrivateCA(t *testing.T) {
	logger := zap.NewNop()
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	caPath := filepath.Join(t.TempDir(), "ca.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	if err := os.WriteFile(caPath, pemBytes, 0600); err != nil {
		t.Fatal(err)
	}

	client, err := NewClient(Config{APIURL: server.URL, TLS: tlsutil.Options{CACertPath: caPath}}, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health() with private CA: %v", err)
	}

	if _, err := NewClient(Config{TLS: tlsutil.Options{CACertPath: filepath.Join(t.TempDir(), "missing.pem")}}, logger); err == nil {
		t.Error("expected error for missing CA file")
	}
}

func TestClient_Add(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		content := "soul image bytes"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v0/add" {
				t.Errorf("Expected path '/api/v0/add', got %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("Expected method POST, got %s", r.Method)
			}
			if r.URL.Query().Get("pin") != "true" {
				t.Errorf("expected pin=true, got %s", r.URL.RawQuery)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "id" || pass != "secret" {
				t.Errorf("basic auth = %q %q %v", user, pass, ok)
			}

			file, header, err := r.FormFile("file")
			if err != nil {
				t.Errorf("Failed to get file: %v", err)
				return
			}
			defer file.Close()
			body, _ := io.ReadAll(file)
			if string(body) != content {
				t.Errorf("uploaded %q", body)
			}

			// progress line first, result line last
			fmt.Fprintf(w, `{"Name":"%s","Bytes":16}`+"\n", header.Filename)
			fmt.Fprintf(w, `{"Name":"%s","Hash":"%s","Size":"24"}`+"\n", header.Filename, testCID)
		}))
		defer server.Close()

		client, err := NewClient(Config{APIURL: server.URL, ProjectID: "id", ProjectSecret: "secret"}, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		resp, err := client.Add(context.Background(), strings.NewReader(content), "soul.png")
		if err != nil {
			t.Fatalf("Failed to add content: %v", err)
		}
		if resp.Cid != testCID {
			t.Errorf("Expected CID %s, got %s", testCID, resp.Cid)
		}
		if resp.Name != "soul.png" {
			t.Errorf("Expected name soul.png, got %s", resp.Name)
		}
		if resp.Size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), resp.Size)
		}
	})

	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("project id required"))
		}))
		defer server.Close()

		client, _ := NewClient(Config{APIURL: server.URL}, logger)
		_, err := client.Add(context.Background(), strings.NewReader("x"), "x")
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Fatalf("expected status error, got %v", err)
		}
	})

	t.Run("invalid_cid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Name":"x","Hash":"not-a-cid"}`)
		}))
		defer server.Close()

		client, _ := NewClient(Config{APIURL: server.URL}, logger)
		_, err := client.Add(context.Background(), strings.NewReader("x"), "x")
		if err == nil || !strings.Contains(err.Error(), "invalid CID") {
			t.Fatalf("expected invalid CID error, got %v", err)
		}
	})

	t.Run("missing_hash", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Name":"x","Bytes":1}`)
		}))
		defer server.Close()

		client, _ := NewClient(Config{APIURL: server.URL}, logger)
		if _, err := client.Add(context.Background(), strings.NewReader("x"), "x"); err == nil {
			t.Fatal("expected error when no hash is returned")
		}
	})
}

func TestClient_AddJSON(t *testing.T) {
	var got nft.Metadata
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		fmt.Fprintf(w, `{"Name":"metadata.json","Hash":"%s"}`, testCID)
	}))
	defer server.Close()

	client, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
	md := nft.Metadata{Name: "Lost Soul", Description: "wanders", Image: "https://gw/ipfs/img"}
	if _, err := client.AddJSON(context.Background(), md, "metadata.json"); err != nil {
		t.Fatalf("AddJSON: %v", err)
	}
	if got != md {
		t.Errorf("uploaded metadata = %+v, want %+v", got, md)
	}
}

func TestClient_FetchMetadata(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/ipfs/"+testCID {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(nft.Metadata{Name: "Phantom", Description: "boo", Image: "img"})
	}))
	defer server.Close()

	client, _ := NewClient(Config{GatewayURL: server.URL, CacheSize: 4}, zap.NewNop())

	t.Run("http_uri_cached", func(t *testing.T) {
		uri := client.URL(testCID)
		for i := 0; i < 3; i++ {
			md, err := client.FetchMetadata(context.Background(), uri)
			if err != nil {
				t.Fatalf("FetchMetadata: %v", err)
			}
			if md.Name != "Phantom" {
				t.Errorf("name = %s", md.Name)
			}
		}
		if n := atomic.LoadInt32(&hits); n != 1 {
			t.Errorf("expected 1 gateway hit, got %d", n)
		}
		if client.CachedMetadata() != 1 {
			t.Errorf("cache size = %d", client.CachedMetadata())
		}
	})

	t.Run("ipfs_scheme", func(t *testing.T) {
		md, err := client.FetchMetadata(context.Background(), "ipfs://"+testCID)
		if err != nil {
			t.Fatalf("FetchMetadata: %v", err)
		}
		if md.Description != "boo" {
			t.Errorf("description = %s", md.Description)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		if _, err := client.FetchMetadata(context.Background(), server.URL+"/ipfs/missing"); err == nil {
			t.Fatal("expected error for missing document")
		}
	})
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v0/version" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, `{"Version":"0.29.0"}`)
	}))
	defer server.Close()

	client, _ := NewClient(Config{APIURL: server.URL}, zap.NewNop())
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
