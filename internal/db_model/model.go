package db_model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingFields is returned when a definition payload lacks endpoint, url or element_selector
var ErrMissingFields = errors.New("Missing required fields")

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// ScrapeConfig holds the optional HTTP settings of a definition.
// Raw keeps the document it was decoded from, unknown keys and empty maps included,
// and is what gets encoded back when set.
type ScrapeConfig struct {
	Headers map[string]string `json:"headers,omitempty"`
	Method  string            `json:"method,omitempty"`
	Data    map[string]any    `json:"data,omitempty"`

	Raw json.RawMessage `json:"-"`
}

type scrapeConfigFields ScrapeConfig

func (c *ScrapeConfig) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var fields scrapeConfigFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	fields.Raw = append(json.RawMessage(nil), trimmed...)
	*c = ScrapeConfig(fields)
	return nil
}

func (c ScrapeConfig) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	return json.Marshal(scrapeConfigFields(c))
}

// HTTPMethod returns the upper-cased method, GET when unset
func (c ScrapeConfig) HTTPMethod() string {
	if c.Method == "" {
		return MethodGet
	}
	return strings.ToUpper(c.Method)
}

// Validate rejects methods other than GET and POST
func (c ScrapeConfig) Validate() error {
	switch c.HTTPMethod() {
	case MethodGet, MethodPost:
		return nil
	default:
		return fmt.Errorf("unsupported method: %s", c.Method)
	}
}

// Encode serializes the config to the text form kept in storage
func (c ScrapeConfig) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(b), nil
}

// DecodeConfig parses a stored config. Empty text yields the empty config.
func DecodeConfig(raw string) (ScrapeConfig, error) {
	var cfg ScrapeConfig
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ScrapingDefinition is a persisted scraping definition
type ScrapingDefinition struct {
	ID               int64        `db_model:"id" json:"id"`
	Endpoint         string       `db_model:"endpoint" json:"endpoint"`
	URL              string       `db_model:"url" json:"url"`
	ElementSelector  string       `db_model:"element_selector" json:"element_selector"`
	Config           ScrapeConfig `db_model:"config" json:"config"`
	FilterExpression *string      `db_model:"filter_expression" json:"filter_expression"`
}

// Filter returns the filter expression, or "" when none is set
func (d ScrapingDefinition) Filter() string {
	if d.FilterExpression == nil {
		return ""
	}
	return *d.FilterExpression
}

// DefinitionRequest is the JSON body accepted by the definition routes.
// Pointer fields distinguish a missing key from an empty value.
type DefinitionRequest struct {
	Endpoint         *string       `json:"endpoint"`
	URL              *string       `json:"url"`
	ElementSelector  *string       `json:"element_selector"`
	Config           *ScrapeConfig `json:"config"`
	FilterExpression *string       `json:"filter_expression"`
}

// Validate checks that endpoint, url and element_selector are present
// and that the config names a supported method.
func (r DefinitionRequest) Validate() error {
	if r.Endpoint == nil || r.URL == nil || r.ElementSelector == nil {
		return ErrMissingFields
	}
	return r.ScrapeConfig().Validate()
}

// ScrapeConfig returns the submitted config or the empty one
func (r DefinitionRequest) ScrapeConfig() ScrapeConfig {
	if r.Config == nil {
		return ScrapeConfig{}
	}
	return *r.Config
}

// Definition converts a validated request into a definition without an id
func (r DefinitionRequest) Definition() ScrapingDefinition {
	return ScrapingDefinition{
		Endpoint:         deref(r.Endpoint),
		URL:              deref(r.URL),
		ElementSelector:  deref(r.ElementSelector),
		Config:           r.ScrapeConfig(),
		FilterExpression: r.FilterExpression,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
