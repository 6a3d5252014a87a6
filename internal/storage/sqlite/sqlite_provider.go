package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shaibs3/scrapeapi/internal/db"
	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/shaibs3/scrapeapi/internal/storage/shared"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultFile is used when extra_details.file is not set
const DefaultFile = "scraping.db"

type SQLiteProvider struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteProvider(config shared.DbProviderConfig, logger *zap.Logger) (*SQLiteProvider, error) {
	sqliteLogger := logger.Named("sqlite")

	file, ok := config.StringDetail("file")
	if !ok {
		file = DefaultFile
	}
	sqliteLogger.Info("initializing SQLite provider", zap.String("file", file))

	dbConn, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY between them
	dbConn.SetMaxOpenConns(1)

	if _, err := dbConn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to enable WAL journal: %w", err)
	}
	if _, err := dbConn.Exec(db.DialectSQLite.Schema()); err != nil {
		_ = dbConn.Close()
		sqliteLogger.Error("failed to create initial tables", zap.Error(err))
		return nil, fmt.Errorf("failed to create initial tables: %w", err)
	}

	sqliteLogger.Info("SQLite provider initialized successfully")
	return &SQLiteProvider{db: dbConn, logger: sqliteLogger}, nil
}

func (p *SQLiteProvider) CreateDefinition(ctx context.Context, def db_model.ScrapingDefinition) (int64, error) {
	var id int64
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		var err error
		id, err = db.InsertDefinition(ctx, tx, db.DialectSQLite, def)
		return err
	})
	return id, err
}

func (p *SQLiteProvider) UpdateDefinition(ctx context.Context, id int64, def db_model.ScrapingDefinition) error {
	return db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		return db.UpdateDefinition(ctx, tx, db.DialectSQLite, id, def)
	})
}

func (p *SQLiteProvider) DeleteDefinition(ctx context.Context, id int64) error {
	return db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		return db.DeleteDefinition(ctx, tx, db.DialectSQLite, id)
	})
}

func (p *SQLiteProvider) GetDefinitionByEndpoint(ctx context.Context, endpoint string) (*db_model.ScrapingDefinition, error) {
	var def *db_model.ScrapingDefinition
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		var err error
		def, err = db.GetDefinitionByEndpoint(ctx, tx, db.DialectSQLite, endpoint)
		return err
	})
	return def, err
}

func (p *SQLiteProvider) ListDefinitions(ctx context.Context) ([]db_model.ScrapingDefinition, error) {
	var defs []db_model.ScrapingDefinition
	err := db.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		var err error
		defs, err = db.ListDefinitions(ctx, tx)
		return err
	})
	return defs, err
}

func (p *SQLiteProvider) Close() error {
	p.logger.Info("closing SQLite provider")
	return p.db.Close()
}
