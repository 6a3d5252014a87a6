package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaibs3/scrapeapi/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	file := filepath.Join(t.TempDir(), "defs.db")
	return &config.Config{
		Port:                "0",
		DefinitionsDBConfig: `{"db_type":"sqlite","extra_details":{"file":"` + file + `"}}`,
		RPSBurst:            10,
		MaxRedirects:        10,
		UserAgent:           "scrapeapi-test",
	}
}

func TestNewApp_ServesRoutes(t *testing.T) {
	a, err := NewApp(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.stop()) })

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/definition",
		strings.NewReader(`{"endpoint":"e","url":"https://example.com","element_selector":"h1"}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getdefs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"endpoint":"e"`)

	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "storage_operation_count_total")
}

func TestNewApp_InvalidStorageConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DefinitionsDBConfig = `{"db_type":"oracle"}`
	_, err := NewApp(cfg, zap.NewNop())
	require.Error(t, err)
}
