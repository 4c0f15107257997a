package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nftgate/pkg/domain-errors"
)

type walletRequest struct {
	WalletAddress string `json:"walletAddress"`
	normalized    bool
}

func (r *walletRequest) Normalize() {
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
	r.normalized = true
}

func (r *walletRequest) Validate() error {
	if r.WalletAddress == "" {
		return errors.New("walletAddress is required")
	}
	return nil
}

type domainValidatedRequest struct {
	Name string `json:"name"`
}

func (r *domainValidatedRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"walletAddress":"0xabc"}`))
		rec := httptest.NewRecorder()

		result, ok := DecodeJSON[walletRequest](rec, req, discardLogger())

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "0xabc", result.WalletAddress)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{nope`))
		rec := httptest.NewRecorder()

		result, ok := DecodeJSON[walletRequest](rec, req, discardLogger())

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeBody(t, rec)["error"])
	})

	t.Run("empty body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
		rec := httptest.NewRecorder()

		_, ok := DecodeJSON[walletRequest](rec, req, discardLogger())

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"walletAddress":"  0xabc  "}`))
		rec := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[walletRequest](rec, req, discardLogger())

		require.True(t, ok)
		assert.True(t, result.normalized)
		assert.Equal(t, "0xabc", result.WalletAddress)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"walletAddress":"   "}`))
		rec := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[walletRequest](rec, req, discardLogger())

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "validation_error", body["error"])
		assert.Contains(t, body["error_description"], "walletAddress is required")
	})

	t.Run("domain error code is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":""}`))
		rec := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[domainValidatedRequest](rec, req, discardLogger())

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeBody(t, rec)["error"])
	})
}

func TestWriteError(t *testing.T) {
	t.Run("conflict carries its description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeConflict, "wallet address already registered"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "conflict", body["error"])
		assert.Equal(t, "wallet address already registered", body["error_description"])
	})

	t.Run("internal errors hide their message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.Wrap(errors.New("pq: relation users does not exist"), dErrors.CodeInternal, "SQLSTATE 42P01"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "internal_error", body["error"])
		assert.Equal(t, "internal server error", body["error_description"])
		assert.NotContains(t, rec.Body.String(), "42P01")
	})

	t.Run("non-domain errors are opaque", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "10.0.0.1")
	})
}
