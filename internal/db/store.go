package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shaibs3/scrapeapi/internal/db_model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectColumns = `SELECT id, endpoint, url, element_selector, config, filter_expression FROM scraping_definitions`

// Rebind rewrites ? placeholders into the form the dialect expects
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WithTx runs fn inside a transaction, committing on success and rolling back otherwise
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertDefinition inserts a definition and returns the id assigned to it
func InsertDefinition(ctx context.Context, q DBTX, d Dialect, def db_model.ScrapingDefinition) (int64, error) {
	cfg, err := def.Config.Encode()
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.QueryRowContext(ctx, Rebind(d, `
		INSERT INTO scraping_definitions (endpoint, url, element_selector, config, filter_expression)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		def.Endpoint, def.URL, def.ElementSelector, cfg, nullString(def.FilterExpression),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert definition: %w", err)
	}
	return id, nil
}

// UpdateDefinition overwrites every column of the row with the given id.
// Zero affected rows is not an error.
func UpdateDefinition(ctx context.Context, q DBTX, d Dialect, id int64, def db_model.ScrapingDefinition) error {
	cfg, err := def.Config.Encode()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, Rebind(d, `
		UPDATE scraping_definitions
		SET endpoint = ?, url = ?, element_selector = ?, config = ?, filter_expression = ?
		WHERE id = ?`),
		def.Endpoint, def.URL, def.ElementSelector, cfg, nullString(def.FilterExpression), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update definition %d: %w", id, err)
	}
	return nil
}

// DeleteDefinition removes the row with the given id, if any
func DeleteDefinition(ctx context.Context, q DBTX, d Dialect, id int64) error {
	if _, err := q.ExecContext(ctx, Rebind(d, `DELETE FROM scraping_definitions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete definition %d: %w", id, err)
	}
	return nil
}

// GetDefinitionByEndpoint returns the lowest-id definition registered under endpoint, or nil
func GetDefinitionByEndpoint(ctx context.Context, q DBTX, d Dialect, endpoint string) (*db_model.ScrapingDefinition, error) {
	row := q.QueryRowContext(ctx, Rebind(d, selectColumns+` WHERE endpoint = ? ORDER BY id ASC LIMIT 1`), endpoint)
	def, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get definition %q: %w", endpoint, err)
	}
	return &def, nil
}

// ListDefinitions returns every definition ordered by id
func ListDefinitions(ctx context.Context, q DBTX) ([]db_model.ScrapingDefinition, error) {
	rows, err := q.QueryContext(ctx, selectColumns+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	defer rows.Close()

	defs := []db_model.ScrapingDefinition{}
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	return defs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDefinition(s scanner) (db_model.ScrapingDefinition, error) {
	var (
		def    db_model.ScrapingDefinition
		cfg    sql.NullString
		filter sql.NullString
	)
	if err := s.Scan(&def.ID, &def.Endpoint, &def.URL, &def.ElementSelector, &cfg, &filter); err != nil {
		return def, err
	}
	decoded, err := db_model.DecodeConfig(cfg.String)
	if err != nil {
		return def, err
	}
	def.Config = decoded
	if filter.Valid {
		f := filter.String
		def.FilterExpression = &f
	}
	return def, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
