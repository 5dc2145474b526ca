package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finance-dashboard/dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApplication(t *testing.T, backend string) *Application {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.Backend = backend
	cfg.Storage.CsvPath = filepath.Join(dir, "data", "expenses.csv")
	cfg.Storage.SqlitePath = filepath.Join(dir, "data", "expenses.db")

	a, err := newApplication(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func serve(a *Application, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestApplication_ExpenseFlow(t *testing.T) {
	for _, backend := range []string{config.BackendCsv, config.BackendSqlite} {
		t.Run(backend, func(t *testing.T) {
			a := setupApplication(t, backend)

			w := serve(a, http.MethodPost, "/api/finance/expenses",
				`{"paid":false,"description":"Card","amount":500,"dueDay":10,"remaining":200}`)
			require.Equal(t, http.StatusCreated, w.Code)
			w = serve(a, http.MethodPost, "/api/finance/expenses",
				`{"paid":true,"description":"Rent","amount":1000,"dueDay":5,"remaining":300}`)
			require.Equal(t, http.StatusCreated, w.Code)

			w = serve(a, http.MethodGet, "/api/finance/expenses", "")
			require.Equal(t, http.StatusOK, w.Code)
			var expenses []map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &expenses))
			require.Len(t, expenses, 2)
			assert.Equal(t, "Rent", expenses[0]["description"])
			assert.Equal(t, "Card", expenses[1]["description"])

			w = serve(a, http.MethodGet, "/api/finance/summary", "")
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, `"totalPlanned":1500.00`)
			assert.Contains(t, body, `"totalPaid":1000.00`)
			assert.Contains(t, body, `"totalRemaining":200.00`)
		})
	}
}

func TestApplication_Healthz(t *testing.T) {
	a := setupApplication(t, config.BackendCsv)

	w := serve(a, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestApplication_Middleware(t *testing.T) {
	t.Run("should generate a request id", func(t *testing.T) {
		a := setupApplication(t, config.BackendCsv)

		w := serve(a, http.MethodGet, "/api/finance/expenses", "")

		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("should keep the request id sent by the client", func(t *testing.T) {
		a := setupApplication(t, config.BackendCsv)
		req := httptest.NewRequest(http.MethodGet, "/api/finance/summary", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		w := httptest.NewRecorder()

		a.router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
	})

	t.Run("should answer preflight requests", func(t *testing.T) {
		a := setupApplication(t, config.BackendCsv)

		w := serve(a, http.MethodOptions, "/api/finance/expenses", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		allowed := w.Header().Get("Access-Control-Allow-Methods")
		assert.Contains(t, allowed, "POST")
		assert.Contains(t, allowed, "PUT")
	})
}

func TestApplication_Frontend(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Storage.CsvPath = filepath.Join(dir, "expenses.csv")
	cfg.Frontend.Enabled = true
	cfg.Frontend.Dir = filepath.Join("..", "..", "static")
	a, err := newApplication(cfg)
	require.NoError(t, err)
	t.Cleanup(a.close)

	t.Run("should serve the dashboard page", func(t *testing.T) {
		w := serve(a, http.MethodGet, "/", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<script src="app.js"></script>`)
	})

	t.Run("should serve the script that loads the summary", func(t *testing.T) {
		w := serve(a, http.MethodGet, "/app.js", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/api/finance/summary")
	})

	t.Run("should keep API routes ahead of the frontend", func(t *testing.T) {
		w := serve(a, http.MethodGet, "/api/finance/summary", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})
}

func TestNewApplication_RejectsUnknownBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Backend = "mongo"

	_, err := newApplication(cfg)

	assert.ErrorContains(t, err, "unsupported storage backend")
}
