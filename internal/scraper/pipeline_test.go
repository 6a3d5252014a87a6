package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := NewPipeline(NewFetcher(FetcherOptions{}, zap.NewNop()), zap.NewNop(), nil)
	require.NoError(t, err)
	return p
}

func TestPipeline_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(listPage))
	}))
	defer server.Close()

	items, err := newTestPipeline(t).Run(context.Background(), server.URL, "li.item", db_model.ScrapeConfig{})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, items)
}

func TestPipeline_RejectsUnsupportedMethodBeforeFetching(t *testing.T) {
	_, err := newTestPipeline(t).Run(context.Background(), "http://127.0.0.1:1/", "p", db_model.ScrapeConfig{Method: "PUT"})
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestPipeline_NetworkFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	_, err := newTestPipeline(t).Run(context.Background(), target, "p", db_model.ScrapeConfig{})
	var scrapeErr *ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	require.Equal(t, ErrorTypeNetwork, scrapeErr.Type)
}
