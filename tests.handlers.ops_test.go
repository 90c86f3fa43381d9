package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMaintenanceHandler ensures the maintenance mode can be toggled and displayed.
func TestMaintenanceHandler(t *testing.T) {
	api := newTestAPIHandler(nil, nil)

	w := httptest.NewRecorder()
	api.Maintenance(w, httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=enable&msg=upgrade", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, api.mode.enabled.Load())
	assert.Equal(t, "upgrade", api.mode.message)

	w = httptest.NewRecorder()
	api.Maintenance(w, httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, true, m["enabled"])
	assert.Equal(t, "upgrade", m["reason"])
	assert.Equal(t, "Sun, 02 Jul 2023 00:00:00 UTC", m["since"])

	w = httptest.NewRecorder()
	api.Maintenance(w, httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, api.mode.enabled.Load())
	assert.Empty(t, api.mode.message)

	w = httptest.NewRecorder()
	api.Maintenance(w, httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=pause", nil), httprouter.Params{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestGetStatisticsHandler ensures the stats exclude the ops request itself.
func TestGetStatisticsHandler(t *testing.T) {
	api := newTestAPIHandler(nil, nil)
	api.stats.called = 3
	api.stats.status[http.StatusOK] = 2

	w := httptest.NewRecorder()
	api.GetStatistics(w, httptest.NewRequest(http.MethodGet, "/ops/stats", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)

	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, float64(2), m["called"])
	assert.Equal(t, "0 mins", m["uptime"])
	status, ok := m["status"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), status["200"])
}

// TestGetConfigsHandler ensures secrets never leave the service.
func TestGetConfigsHandler(t *testing.T) {
	api := newTestAPIHandler(nil, nil)
	api.config.Postgres.DSN = "postgres://user:secret@db:5432/books"
	api.config.Redis.Password = "hidden"

	w := httptest.NewRecorder()
	api.GetConfigs(w, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "hidden")
}

// TestGetArchivedBooksHandler ensures archive listing depends on the feed state.
func TestGetArchivedBooksHandler(t *testing.T) {
	t.Run("should fail: archive disabled", func(t *testing.T) {
		api := newTestAPIHandler(nil, nil)
		w := httptest.NewRecorder()
		api.GetArchivedBooks(w, httptest.NewRequest(http.MethodGet, "/ops/archive/books", nil), httprouter.Params{})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("should pass: archive enabled", func(t *testing.T) {
		api := newTestAPIHandler(nil, nil)
		api.archive = &MockBookStorage{
			ListAllFunc: func(ctx context.Context) ([]Book, error) {
				return []Book{testBook("00000000")}, nil
			},
		}
		w := httptest.NewRecorder()
		api.GetArchivedBooks(w, httptest.NewRequest(http.MethodGet, "/ops/archive/books", nil), httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Code)
		var resp BooksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Books, 1)
	})
}

// TestDebugHandlers ensures runtime helpers answer without failure.
func TestDebugHandlers(t *testing.T) {
	api := newTestAPIHandler(nil, nil)

	w := httptest.NewRecorder()
	api.RunGC(w, httptest.NewRequest(http.MethodGet, "/ops/debug/gc", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	api.FreeOSMemory(w, httptest.NewRequest(http.MethodGet, "/ops/debug/fos", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	GetMemStats(w, httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil), httprouter.Params{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines")
}
