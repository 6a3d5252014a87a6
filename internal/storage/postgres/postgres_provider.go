package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	_ "github.com/lib/pq"
	"github.com/shaibs3/scrapeapi/internal/db"
	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/shaibs3/scrapeapi/internal/storage/shared"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type PostgresProvider struct {
	db     *sql.DB
	logger *zap.Logger
	cb     *gobreaker.CircuitBreaker
	runTx  func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func NewPostgresProvider(config shared.DbProviderConfig, logger *zap.Logger) (*PostgresProvider, error) {
	pgLogger := logger.Named("postgres")

	connStr, ok := config.StringDetail("conn_str")
	if !ok {
		return nil, fmt.Errorf("conn_str is required for Postgres provider")
	}
	pgLogger.Info("initializing Postgres provider")

	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		pgLogger.Error("failed to open Postgres connection", zap.Error(err))
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		pgLogger.Error("failed to ping Postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	// Automatically create tables if they do not exist
	if _, err := dbConn.Exec(db.DialectPostgres.Schema()); err != nil {
		_ = dbConn.Close()
		pgLogger.Error("failed to create initial tables", zap.Error(err))
		return nil, fmt.Errorf("failed to create initial tables: %w", err)
	}

	pgLogger.Info("Postgres provider initialized successfully")
	return &PostgresProvider{
		db:     dbConn,
		logger: pgLogger,
		cb:     newCircuitBreaker(pgLogger),
		runTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			return db.WithTx(ctx, dbConn, fn)
		},
	}, nil
}

func newCircuitBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PostgresDB",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

const (
	// inserts run once; a lost commit acknowledgment must not store the row twice
	insertAttempts uint = 1
	attempts       uint = 3
)

// execute runs fn in its own transaction behind the circuit breaker, retrying with backoff
func (p *PostgresProvider) execute(ctx context.Context, op string, maxAttempts uint, fn func(tx *sql.Tx) error) error {
	return retry.Do(
		func() error {
			_, err := p.cb.Execute(func() (interface{}, error) {
				return nil, p.runTx(ctx, fn)
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.LastErrorOnly(true),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("retrying "+op, zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func (p *PostgresProvider) CreateDefinition(ctx context.Context, def db_model.ScrapingDefinition) (int64, error) {
	var id int64
	err := p.execute(ctx, "CreateDefinition", insertAttempts, func(tx *sql.Tx) error {
		var err error
		id, err = db.InsertDefinition(ctx, tx, db.DialectPostgres, def)
		return err
	})
	return id, err
}

func (p *PostgresProvider) UpdateDefinition(ctx context.Context, id int64, def db_model.ScrapingDefinition) error {
	return p.execute(ctx, "UpdateDefinition", attempts, func(tx *sql.Tx) error {
		return db.UpdateDefinition(ctx, tx, db.DialectPostgres, id, def)
	})
}

func (p *PostgresProvider) DeleteDefinition(ctx context.Context, id int64) error {
	return p.execute(ctx, "DeleteDefinition", attempts, func(tx *sql.Tx) error {
		return db.DeleteDefinition(ctx, tx, db.DialectPostgres, id)
	})
}

func (p *PostgresProvider) GetDefinitionByEndpoint(ctx context.Context, endpoint string) (*db_model.ScrapingDefinition, error) {
	var def *db_model.ScrapingDefinition
	err := p.execute(ctx, "GetDefinitionByEndpoint", attempts, func(tx *sql.Tx) error {
		var err error
		def, err = db.GetDefinitionByEndpoint(ctx, tx, db.DialectPostgres, endpoint)
		return err
	})
	return def, err
}

func (p *PostgresProvider) ListDefinitions(ctx context.Context) ([]db_model.ScrapingDefinition, error) {
	var defs []db_model.ScrapingDefinition
	err := p.execute(ctx, "ListDefinitions", attempts, func(tx *sql.Tx) error {
		var err error
		defs, err = db.ListDefinitions(ctx, tx)
		return err
	})
	return defs, err
}

func (p *PostgresProvider) Close() error {
	p.logger.Info("closing Postgres provider")
	return p.db.Close()
}
