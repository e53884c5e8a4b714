package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbnr/matrimonial/internal/handlers"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(&handlers.MockHealthChecker{})(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())
}

func TestHealth_DatabaseDown(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(&handlers.MockHealthChecker{Err: errors.New("dial tcp: refused")})(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unhealthy","database":"down"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "refused")
}
