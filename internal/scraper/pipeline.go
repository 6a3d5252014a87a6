package scraper

import (
	"context"
	"time"

	"github.com/shaibs3/scrapeapi/internal/db_model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Pipeline fetches a page and extracts the text of the selected elements
type Pipeline struct {
	fetcher *Fetcher
	logger  *zap.Logger

	fetches  metric.Int64Counter
	duration metric.Float64Histogram
	items    metric.Int64Histogram
}

// NewPipeline wires the fetcher to the extractor. meter may be nil.
func NewPipeline(fetcher *Fetcher, logger *zap.Logger, meter metric.Meter) (*Pipeline, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("scraper")
	}
	fetches, err := meter.Int64Counter("scraper.fetch.count",
		metric.WithDescription("Number of scrape runs by method and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("scraper.fetch.duration",
		metric.WithDescription("Duration of scrape runs"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	items, err := meter.Int64Histogram("scraper.extract.items",
		metric.WithDescription("Number of elements extracted per scrape run"))
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fetcher:  fetcher,
		logger:   logger.Named("scraper"),
		fetches:  fetches,
		duration: duration,
		items:    items,
	}, nil
}

// Run fetches url with cfg and returns the trimmed text of every element matching selector
func (p *Pipeline) Run(ctx context.Context, url, selector string, cfg db_model.ScrapeConfig) ([]string, error) {
	start := time.Now()
	method := cfg.HTTPMethod()

	items, err := p.run(ctx, url, selector, cfg)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	)
	p.fetches.Add(ctx, 1, attrs)
	p.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		p.logger.Warn("scrape failed",
			zap.String("url", url),
			zap.String("method", method),
			zap.Error(err))
		return nil, err
	}
	p.items.Record(ctx, int64(len(items)))
	p.logger.Debug("scrape completed",
		zap.String("url", url),
		zap.String("selector", selector),
		zap.Int("items", len(items)),
		zap.Duration("took", time.Since(start)))
	return items, nil
}

func (p *Pipeline) run(ctx context.Context, url, selector string, cfg db_model.ScrapeConfig) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newUnsupportedMethodError(cfg.Method)
	}

	body, err := p.fetcher.Fetch(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return Extract(body, selector)
}
