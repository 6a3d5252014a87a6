package executor

import (
	"context"

	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/shaibs3/scrapeapi/internal/filter"
)

// Scraper is the fetch-and-extract step
type Scraper interface {
	Run(ctx context.Context, url, selector string, cfg db_model.ScrapeConfig) ([]string, error)
}

// Executor runs a scrape and applies the optional filter expression to its output
type Executor struct {
	scraper Scraper
}

func NewExecutor(scraper Scraper) *Executor {
	return &Executor{scraper: scraper}
}

// Execute returns the extracted strings, or a filter.Result when filterExpr is non-empty
func (e *Executor) Execute(ctx context.Context, url, selector string, cfg db_model.ScrapeConfig, filterExpr string) (any, error) {
	items, err := e.scraper.Run(ctx, url, selector, cfg)
	if err != nil {
		return nil, err
	}
	if filterExpr == "" {
		return items, nil
	}
	return filter.Apply(items, filterExpr), nil
}

// ExecuteDefinition runs a stored definition
func (e *Executor) ExecuteDefinition(ctx context.Context, def db_model.ScrapingDefinition) (any, error) {
	return e.Execute(ctx, def.URL, def.ElementSelector, def.Config, def.Filter())
}
