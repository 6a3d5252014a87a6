package storage

import (
	"context"

	"github.com/shaibs3/scrapeapi/internal/db_model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentedProvider counts every storage call by operation and outcome
type instrumentedProvider struct {
	next       DefinitionProvider
	operations metric.Int64Counter
	backend    attribute.KeyValue
}

func newInstrumentedProvider(next DefinitionProvider, dbType DbType, meter metric.Meter) (DefinitionProvider, error) {
	counter, err := meter.Int64Counter(
		"storage.operation.count",
		metric.WithDescription("Number of scraping definition storage operations"),
	)
	if err != nil {
		return nil, err
	}
	return &instrumentedProvider{
		next:       next,
		operations: counter,
		backend:    attribute.String("db_type", dbType.String()),
	}, nil
}

func (p *instrumentedProvider) record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.operations.Add(ctx, 1, metric.WithAttributes(
		p.backend,
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func (p *instrumentedProvider) CreateDefinition(ctx context.Context, def db_model.ScrapingDefinition) (int64, error) {
	id, err := p.next.CreateDefinition(ctx, def)
	p.record(ctx, "create", err)
	return id, err
}

func (p *instrumentedProvider) UpdateDefinition(ctx context.Context, id int64, def db_model.ScrapingDefinition) error {
	err := p.next.UpdateDefinition(ctx, id, def)
	p.record(ctx, "update", err)
	return err
}

func (p *instrumentedProvider) DeleteDefinition(ctx context.Context, id int64) error {
	err := p.next.DeleteDefinition(ctx, id)
	p.record(ctx, "delete", err)
	return err
}

func (p *instrumentedProvider) GetDefinitionByEndpoint(ctx context.Context, endpoint string) (*db_model.ScrapingDefinition, error) {
	def, err := p.next.GetDefinitionByEndpoint(ctx, endpoint)
	p.record(ctx, "get_by_endpoint", err)
	return def, err
}

func (p *instrumentedProvider) ListDefinitions(ctx context.Context) ([]db_model.ScrapingDefinition, error) {
	defs, err := p.next.ListDefinitions(ctx)
	p.record(ctx, "list", err)
	return defs, err
}

func (p *instrumentedProvider) Close() error {
	return p.next.Close()
}
