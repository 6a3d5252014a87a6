package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/shaibs3/scrapeapi/internal/db_model"
)

type InMemoryProvider struct {
	mu          sync.RWMutex
	definitions map[int64]db_model.ScrapingDefinition
	nextID      int64
}

func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		definitions: make(map[int64]db_model.ScrapingDefinition),
		nextID:      1,
	}
}

func (m *InMemoryProvider) CreateDefinition(ctx context.Context, def db_model.ScrapingDefinition) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def.ID = m.nextID
	m.definitions[def.ID] = cloneDefinition(def)
	m.nextID++
	return def.ID, nil
}

func (m *InMemoryProvider) UpdateDefinition(ctx context.Context, id int64, def db_model.ScrapingDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.definitions[id]; !ok {
		return nil
	}
	def.ID = id
	m.definitions[id] = cloneDefinition(def)
	return nil
}

func (m *InMemoryProvider) DeleteDefinition(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.definitions, id)
	return nil
}

func (m *InMemoryProvider) GetDefinitionByEndpoint(ctx context.Context, endpoint string) (*db_model.ScrapingDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, def := range m.sorted() {
		if def.Endpoint == endpoint {
			found := cloneDefinition(def)
			return &found, nil
		}
	}
	return nil, nil
}

func (m *InMemoryProvider) ListDefinitions(ctx context.Context) ([]db_model.ScrapingDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := m.sorted()
	for i := range defs {
		defs[i] = cloneDefinition(defs[i])
	}
	return defs, nil
}

func (m *InMemoryProvider) Close() error {
	return nil
}

// sorted returns the stored definitions ordered by id; callers hold the lock
func (m *InMemoryProvider) sorted() []db_model.ScrapingDefinition {
	defs := make([]db_model.ScrapingDefinition, 0, len(m.definitions))
	for _, def := range m.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// cloneDefinition copies the maps and filter pointer so callers cannot mutate stored state
func cloneDefinition(def db_model.ScrapingDefinition) db_model.ScrapingDefinition {
	if def.Config.Headers != nil {
		headers := make(map[string]string, len(def.Config.Headers))
		for k, v := range def.Config.Headers {
			headers[k] = v
		}
		def.Config.Headers = headers
	}
	if def.Config.Data != nil {
		data := make(map[string]any, len(def.Config.Data))
		for k, v := range def.Config.Data {
			data[k] = v
		}
		def.Config.Data = data
	}
	if def.Config.Raw != nil {
		def.Config.Raw = append(json.RawMessage(nil), def.Config.Raw...)
	}
	if def.FilterExpression != nil {
		f := *def.FilterExpression
		def.FilterExpression = &f
	}
	return def
}
