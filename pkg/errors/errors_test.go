package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		message       string
		expectedError string
	}{
		{
			name:          "with field",
			field:         "price",
			message:       "is required",
			expectedError: "validation error: price: is required",
		},
		{
			name:          "without field",
			message:       "All fields are required",
			expectedError: "validation error: All fields are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, nil)
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, err.Error())
			}
			if err.Code() != CodeValidation {
				t.Errorf("Expected code %q, got %q", CodeValidation, err.Code())
			}
			if !IsValidation(err) {
				t.Error("IsValidation should be true")
			}
		})
	}
}

func TestWalletErrors(t *testing.T) {
	missing := NewWalletMissingError()
	if !IsWalletMissing(missing) {
		t.Error("missing wallet error should match ErrWalletMissing")
	}
	if !IsWalletError(missing) {
		t.Error("missing wallet error should be a wallet error")
	}
	if missing.Code() != CodeWalletMissing {
		t.Errorf("code = %s", missing.Code())
	}

	rejected := NewWalletRejectedError("keystore", fmt.Errorf("bad passphrase"))
	if IsWalletMissing(rejected) {
		t.Error("rejected wallet must not look missing")
	}
	if !IsWalletError(rejected) {
		t.Error("rejected should be a wallet error")
	}
	if !strings.Contains(rejected.Error(), "bad passphrase") {
		t.Errorf("cause not in message: %s", rejected.Error())
	}
}

func TestTransactionError(t *testing.T) {
	cause := errors.New("insufficient funds")
	err := NewTransactionError("createMarketSale", cause).WithTxHash("0xabc")

	if !IsTransaction(err) {
		t.Error("IsTransaction should be true")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable with errors.Is")
	}
	if err.Error() != "createMarketSale failed: insufficient funds" {
		t.Errorf("unexpected message %q", err.Error())
	}

	wrapped := fmt.Errorf("purchase: %w", err)
	if GetErrorCode(wrapped) != CodeTransactionFailed {
		t.Errorf("code through wrap = %s", GetErrorCode(wrapped))
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "noop") != nil {
		t.Fatal("Wrap(nil) must be nil")
	}

	storage := NewStorageError("upload", errors.New("503"))
	wrapped := Wrap(storage, "upload metadata")
	if GetErrorCode(wrapped) != CodeStorageError {
		t.Errorf("Wrap should keep the code, got %s", GetErrorCode(wrapped))
	}
	if !IsStorage(wrapped) {
		t.Error("IsStorage should see through Wrap")
	}

	plain := Wrap(errors.New("boom"), "something")
	var internal *InternalError
	if !errors.As(plain, &internal) {
		t.Error("plain errors should be wrapped as internal")
	}
}

func TestGetErrorCode_Sentinels(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, CodeOK},
		{context.Canceled, CodeCancelled},
		{context.DeadlineExceeded, CodeTimeout},
		{ErrNotFound, CodeNotFound},
		{ErrWalletMissing, CodeWalletMissing},
		{fmt.Errorf("list: %w", ErrNoAccount), CodeUnauthorized},
		{errors.New("other"), CodeInternal},
	}
	for _, tt := range tests {
		if got := GetErrorCode(tt.err); got != tt.want {
			t.Errorf("GetErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestCause(t *testing.T) {
	root := errors.New("root")
	err := Wrap(NewTransactionError("createToken", root), "create listing")
	if Cause(err) != root {
		t.Errorf("Cause = %v, want root", Cause(err))
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("name", "required", nil), http.StatusBadRequest},
		{"not found", NewNotFoundError("nft", "7"), http.StatusNotFound},
		{"wallet missing", NewWalletMissingError(), http.StatusPreconditionFailed},
		{"no account", ErrNoAccount, http.StatusUnauthorized},
		{"transaction", NewTransactionError("createToken", nil), http.StatusBadGateway},
		{"storage", NewStorageError("upload", nil), http.StatusBadGateway},
		{"timeout", NewTimeoutError("receipt", "2m"), http.StatusGatewayTimeout},
		{"unknown", errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHTTPError(w, NewTransactionError("createMarketSale", errors.New("reverted")).WithTxHash("0x01"), "trace-1")

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}

	var body HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != CodeTransactionFailed {
		t.Errorf("code = %s", body.Code)
	}
	if body.Details["tx_hash"] != "0x01" || body.Details["method"] != "createMarketSale" {
		t.Errorf("details = %v", body.Details)
	}
	if body.TraceID != "trace-1" {
		t.Errorf("trace id = %s", body.TraceID)
	}
}
