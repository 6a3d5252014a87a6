package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaibs3/scrapeapi/internal/storage/postgres"
	"github.com/shaibs3/scrapeapi/internal/storage/shared"
	"github.com/shaibs3/scrapeapi/internal/storage/sqlite"
	"github.com/shaibs3/scrapeapi/internal/telemetry"
	"go.uber.org/zap"
)

// ProviderFactory defines the interface for creating definition providers
type ProviderFactory interface {
	CreateProvider(configJSON string) (DefinitionProvider, error)
}

// DbProviderFactory implements ProviderFactory
type DbProviderFactory struct {
	logger    *zap.Logger
	telemetry *telemetry.Telemetry
}

func NewDbProviderFactory(logger *zap.Logger, tel *telemetry.Telemetry) *DbProviderFactory {
	return &DbProviderFactory{
		logger:    logger.Named("factory"),
		telemetry: tel,
	}
}

// CreateProvider builds a provider from a JSON document such as
// {"db_type": "sqlite", "extra_details": {"file": "scraping.db"}}.
// An empty document selects the sqlite provider with its default file.
func (f *DbProviderFactory) CreateProvider(configJSON string) (DefinitionProvider, error) {
	config := shared.DbProviderConfig{DbType: shared.DbTypeSQLite}
	if strings.TrimSpace(configJSON) != "" {
		if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
			return nil, fmt.Errorf("failed to parse database configuration JSON: %w", err)
		}
	}

	f.logger.Info("creating definition provider",
		zap.String("db_type", config.DbType.String()),
		zap.Int("extra_details", len(config.ExtraDetails)))

	if !config.DbType.IsValid() {
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}

	var (
		provider DefinitionProvider
		err      error
	)
	switch config.DbType {
	case shared.DbTypeSQLite:
		provider, err = sqlite.NewSQLiteProvider(config, f.logger)
	case shared.DbTypePostgres:
		provider, err = postgres.NewPostgresProvider(config, f.logger)
	case shared.DbTypeMemory:
		f.logger.Info("Using InMemoryProvider for definitions")
		provider = NewInMemoryProvider()
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.DbType)
	}
	if err != nil {
		return nil, err
	}

	if f.telemetry == nil {
		return provider, nil
	}
	instrumented, err := newInstrumentedProvider(provider, config.DbType, f.telemetry.Meter)
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to instrument provider: %w", err)
	}
	return instrumented, nil
}
