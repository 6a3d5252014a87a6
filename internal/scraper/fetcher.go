package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shaibs3/scrapeapi/internal/db_model"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// DefaultMaxRedirects applies when FetcherOptions.MaxRedirects is negative
const DefaultMaxRedirects = 10

// FetcherOptions tune the outbound HTTP client. Zero values mean no timeout, no body limit
// and no redirects followed.
type FetcherOptions struct {
	Timeout             time.Duration
	MaxRedirects        int
	MaxBodyBytes        int64
	UserAgent           string
	BlockPrivateTargets bool
}

// Fetcher issues the GET or POST request described by a definition's config
type Fetcher struct {
	client *resty.Client
	opts   FetcherOptions
	logger *zap.Logger
}

func NewFetcher(opts FetcherOptions, logger *zap.Logger) *Fetcher {
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	redirects := resty.FlexibleRedirectPolicy(opts.MaxRedirects)
	if opts.MaxRedirects == 0 {
		redirects = resty.NoRedirectPolicy()
	}
	fetchLogger := logger.Named("fetcher")
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(redirects).
		SetLogger(fetchLogger.Sugar())

	return &Fetcher{
		client: client,
		opts:   opts,
		logger: fetchLogger,
	}
}

// Fetch requests target and returns the unread response body converted to UTF-8 from the
// charset named by Content-Type or the document itself. The caller must close it.
// Non-2xx responses are returned like any other; only transport failures are errors.
func (f *Fetcher) Fetch(ctx context.Context, target string, cfg db_model.ScrapeConfig) (io.ReadCloser, error) {
	if err := validateURL(target, f.opts.BlockPrivateTargets); err != nil {
		return nil, newInvalidURLError(target, err)
	}

	req := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if f.opts.UserAgent != "" {
		req.SetHeader("User-Agent", f.opts.UserAgent)
	}
	req.SetHeaders(cfg.Headers)

	var (
		resp *resty.Response
		err  error
	)
	switch method := cfg.HTTPMethod(); method {
	case db_model.MethodGet:
		resp, err = req.Get(target)
	case db_model.MethodPost:
		resp, err = req.SetFormData(formData(cfg.Data)).Post(target)
	default:
		return nil, newUnsupportedMethodError(cfg.Method)
	}
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			_ = resp.RawBody().Close()
		}
		return nil, newNetworkError(target, err)
	}

	if resp.IsError() {
		f.logger.Warn("remote returned an error status, parsing body anyway",
			zap.String("url", target),
			zap.Int("status_code", resp.StatusCode()))
	}

	raw := resp.RawBody()
	var body io.Reader = raw
	if f.opts.MaxBodyBytes > 0 {
		body = io.LimitReader(raw, f.opts.MaxBodyBytes)
	}
	buffered := bufio.NewReaderSize(body, sniffLen)
	preview, err := buffered.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = raw.Close()
		return nil, newNetworkError(target, err)
	}
	enc, name, _ := charset.DetermineEncoding(preview, resp.Header().Get("Content-Type"))
	f.logger.Debug("decoding response body", zap.String("url", target), zap.String("charset", name))
	return decodedBody{Reader: enc.NewDecoder().Reader(buffered), Closer: raw}, nil
}

// sniffLen is how much of the body charset detection looks at
const sniffLen = 1024

// decodedBody reads the UTF-8 converted body and closes the underlying response
type decodedBody struct {
	io.Reader
	io.Closer
}

// formData renders a config data mapping as form fields
func formData(data map[string]any) map[string]string {
	fields := make(map[string]string, len(data))
	for k, v := range data {
		if v == nil {
			fields[k] = ""
			continue
		}
		fields[k] = fmt.Sprint(v)
	}
	return fields
}
