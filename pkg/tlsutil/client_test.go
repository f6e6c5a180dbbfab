package tlsutil

import (
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeServerCA(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return path
}

func TestNewHTTPClient_TrustsCA(t *testing.T) {
	t.Setenv(EnvCACertPath, "")
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(5*time.Second, Options{CACertPath: writeServerCA(t, srv)})
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request with CA should succeed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestNewHTTPClient_RejectsUnknownCA(t *testing.T) {
	t.Setenv(EnvCACertPath, "")
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client, err := NewHTTPClient(5*time.Second, Options{})
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if resp, err := client.Get(srv.URL); err == nil {
		resp.Body.Close()
		t.Fatal("expected certificate error without the CA")
	}
}

func TestNewHTTPClient_EnvOverride(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	t.Setenv(EnvCACertPath, writeServerCA(t, srv))

	opts := Options{}
	if !opts.Enabled() {
		t.Fatal("env path should enable the options")
	}
	client, err := NewHTTPClient(5*time.Second, opts)
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("request with env CA should succeed: %v", err)
	}
	resp.Body.Close()
}

func TestLoadCAPool_Errors(t *testing.T) {
	if _, err := LoadCAPool(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}

	junk := filepath.Join(t.TempDir(), "junk.pem")
	if err := os.WriteFile(junk, []byte("not a certificate"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCAPool(junk); err == nil {
		t.Error("expected error for file without PEM blocks")
	}
}
