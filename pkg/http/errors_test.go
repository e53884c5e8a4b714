package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/mbnr/matrimonial/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkghttp.ErrorResponse {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteError(w, http.StatusBadRequest, "test_error", "Test message")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeError(t, w)
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
	assert.Empty(t, resp.Details)
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteValidationError(w, "Validation failed", map[string]string{"rating": "must be at most 5"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, pkghttp.CodeValidation, resp.Error)
	assert.Equal(t, "must be at most 5", resp.Details["rating"])
}

func TestWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { pkghttp.WriteBadRequest(w, "x") }, http.StatusBadRequest, pkghttp.CodeBadRequest},
		{"duplicate", func(w http.ResponseWriter) { pkghttp.WriteDuplicate(w, "x") }, http.StatusBadRequest, pkghttp.CodeDuplicate},
		{"unauthorized", func(w http.ResponseWriter) { pkghttp.WriteUnauthorized(w, "x") }, http.StatusUnauthorized, pkghttp.CodeUnauthorized},
		{"forbidden", func(w http.ResponseWriter) { pkghttp.WriteForbidden(w, "x") }, http.StatusForbidden, pkghttp.CodeForbidden},
		{"not found", func(w http.ResponseWriter) { pkghttp.WriteNotFound(w, "x") }, http.StatusNotFound, pkghttp.CodeNotFound},
		{"rate limited", func(w http.ResponseWriter) { pkghttp.WriteTooManyRequests(w, "x") }, http.StatusTooManyRequests, pkghttp.CodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error)
		})
	}
}

func TestWriteInternalError_IsGeneric(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteInternalError(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, pkghttp.CodeInternal, resp.Error)
	assert.NotContains(t, resp.Message, "sql")
}
