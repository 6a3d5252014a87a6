package shared

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DbType names a storage backend for scraping definitions
type DbType string

const (
	DbTypeSQLite   DbType = "sqlite"
	DbTypePostgres DbType = "postgres"
	DbTypeMemory   DbType = "memory"
)

func (t DbType) String() string {
	return string(t)
}

// IsValid reports whether t is a known backend
func (t DbType) IsValid() bool {
	switch t {
	case DbTypeSQLite, DbTypePostgres, DbTypeMemory:
		return true
	default:
		return false
	}
}

// UnmarshalJSON accepts the type name case-insensitively
func (t *DbType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("db_type must be a string: %w", err)
	}
	*t = DbType(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// DbProviderConfig is the JSON document selecting and configuring a provider
type DbProviderConfig struct {
	DbType       DbType                 `json:"db_type"`
	ExtraDetails map[string]interface{} `json:"extra_details"`
}

// StringDetail returns a string entry of ExtraDetails
func (c DbProviderConfig) StringDetail(key string) (string, bool) {
	v, ok := c.ExtraDetails[key].(string)
	return v, ok && v != ""
}
