package storage

import (
	"context"

	"github.com/shaibs3/scrapeapi/internal/db_model"
)

// DefinitionProvider persists scraping definitions.
// GetDefinitionByEndpoint returns nil, nil when nothing is registered under the name.
type DefinitionProvider interface {
	CreateDefinition(ctx context.Context, def db_model.ScrapingDefinition) (int64, error)
	UpdateDefinition(ctx context.Context, id int64, def db_model.ScrapingDefinition) error
	DeleteDefinition(ctx context.Context, id int64) error
	GetDefinitionByEndpoint(ctx context.Context, endpoint string) (*db_model.ScrapingDefinition, error)
	ListDefinitions(ctx context.Context) ([]db_model.ScrapingDefinition, error)
	Close() error
}
