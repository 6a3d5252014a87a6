package db

// Dialect selects the SQL flavour of a provider
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Schema returns the DDL for the scraping_definitions table
func (d Dialect) Schema() string {
	if d == DialectPostgres {
		return PostgresSchema
	}
	return SQLiteSchema
}

// SQLiteSchema is the SQL schema for the scraping_definitions table on SQLite
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS scraping_definitions (
    id INTEGER PRIMARY KEY,
    endpoint TEXT NOT NULL,
    url TEXT NOT NULL,
    element_selector TEXT NOT NULL,
    config TEXT,
    filter_expression TEXT
);
`

// PostgresSchema is the SQL schema for the scraping_definitions table on Postgres
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS scraping_definitions (
    id SERIAL PRIMARY KEY,
    endpoint TEXT NOT NULL,
    url TEXT NOT NULL,
    element_selector TEXT NOT NULL,
    config TEXT,
    filter_expression TEXT
);
`
