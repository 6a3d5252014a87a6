package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readAll(t *testing.T, body io.ReadCloser) string {
	t.Helper()
	defer body.Close()
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(b)
}

func TestFetcher_GetSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Method + "|" + r.Header.Get("X-Test") + "|" + r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{UserAgent: "scrapeapi-test"}, zap.NewNop())
	body, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{
		Headers: map[string]string{"X-Test": "1"},
	})
	require.NoError(t, err)
	require.Equal(t, "GET|1|scrapeapi-test", readAll(t, body))
}

func TestFetcher_CallerUserAgentWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{UserAgent: "default-agent"}, zap.NewNop())
	body, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{
		Headers: map[string]string{"user-agent": "custom"},
	})
	require.NoError(t, err)
	require.Equal(t, "custom", readAll(t, body))
}

func TestFetcher_PostSendsFormData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(r.Method + "|" + r.PostForm.Get("a") + "|" + r.PostForm.Get("n")))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{}, zap.NewNop())
	body, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{
		Method: "post",
		Data:   map[string]any{"a": "b", "n": float64(2)},
	})
	require.NoError(t, err)
	require.Equal(t, "POST|b|2", readAll(t, body))
}

func TestFetcher_ErrorStatusStillReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<p>gone</p>"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{}, zap.NewNop())
	body, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{})
	require.NoError(t, err)
	require.Equal(t, "<p>gone</p>", readAll(t, body))
}

func TestFetcher_MaxBodyBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{MaxBodyBytes: 4}, zap.NewNop())
	body, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{})
	require.NoError(t, err)
	require.Equal(t, "0123", readAll(t, body))
}

func TestFetcher_RedirectLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{MaxRedirects: 3}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL+"/loop", db_model.ScrapeConfig{})
	require.Error(t, err)

	var scrapeErr *ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	require.Equal(t, ErrorTypeNetwork, scrapeErr.Type)
}

func TestFetcher_UnsupportedMethodIssuesNoRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	f := NewFetcher(FetcherOptions{}, zap.NewNop())
	_, err := f.Fetch(context.Background(), server.URL, db_model.ScrapeConfig{Method: "DELETE"})
	require.ErrorIs(t, err, ErrUnsupportedMethod)
	require.EqualError(t, err, "unsupported method: DELETE")
	require.False(t, called)
}

func TestFetcher_BlockPrivateTargets(t *testing.T) {
	f := NewFetcher(FetcherOptions{BlockPrivateTargets: true}, zap.NewNop())
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/", db_model.ScrapeConfig{})

	var scrapeErr *ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	require.Equal(t, ErrorTypeInvalidURL, scrapeErr.Type)
}

func TestFetcher_ZeroMaxRedirectsRejectsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("end"))
	}))
	defer server.Close()

	_, err := NewFetcher(FetcherOptions{MaxRedirects: 0}, zap.NewNop()).
		Fetch(context.Background(), server.URL+"/start", db_model.ScrapeConfig{})
	var scrapeErr *ScrapeError
	require.True(t, errors.As(err, &scrapeErr))
	require.Equal(t, ErrorTypeNetwork, scrapeErr.Type)

	body, err := NewFetcher(FetcherOptions{MaxRedirects: -1}, zap.NewNop()).
		Fetch(context.Background(), server.URL+"/start", db_model.ScrapeConfig{})
	require.NoError(t, err)
	require.Equal(t, "end", readAll(t, body))
}

func TestFetcher_DecodesCharset(t *testing.T) {
	cases := map[string]struct {
		contentType string
		body        string
	}{
		"declared latin1":   {contentType: "text/html; charset=iso-8859-1", body: "<p>caf\xe9</p>"},
		"undeclared latin1": {contentType: "text/html", body: "<p>caf\xe9</p>"},
		"meta tag":          {contentType: "text/html", body: `<html><head><meta charset="windows-1252"></head><body><p>caf` + "\xe9" + `</p></body></html>`},
		"utf8":              {contentType: "text/html; charset=utf-8", body: "<p>café</p>"},
		"undeclared utf8":   {contentType: "text/html", body: "<p>café</p>"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			body, err := NewFetcher(FetcherOptions{}, zap.NewNop()).Fetch(context.Background(), server.URL, db_model.ScrapeConfig{})
			require.NoError(t, err)
			defer body.Close()

			items, err := Extract(body, "p")
			require.NoError(t, err)
			require.Equal(t, []string{"café"}, items)
		})
	}
}

func TestFetcher_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	body, err := NewFetcher(FetcherOptions{}, zap.NewNop()).Fetch(context.Background(), server.URL, db_model.ScrapeConfig{})
	require.NoError(t, err)
	require.Equal(t, "", readAll(t, body))
}
