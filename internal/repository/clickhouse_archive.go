package repository

import (
	"context"
	"database/sql"
	"fmt"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/domain/repository"
)

// ClickHouseArchive stores price events in a ReplacingMergeTree keyed by the
// Postgres row id, so redelivered Kafka messages collapse on merge.
type ClickHouseArchive struct {
	db       *sql.DB
	database string
	table    string
}

func NewClickHouseArchive(db *sql.DB, database, table string) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, database: database, table: table}
}

// SchemaStatements returns the idempotent DDL for the archive.
func (a *ClickHouseArchive) SchemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", a.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	row_id UInt64,
	ts DateTime64(3, 'UTC'),
	source LowCardinality(String),
	ticker LowCardinality(String),
	price Decimal(24, 8),
	volume Decimal(30, 8)
) ENGINE = ReplacingMergeTree
PARTITION BY toYYYYMM(ts)
ORDER BY (ticker, source, ts, row_id)`, a.qualified()),
	}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	for _, stmt := range a.SchemaStatements() {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init archive schema: %w", err)
		}
	}
	return nil
}

// StoreBatch inserts rows in one block.
func (a *ClickHouseArchive) StoreBatch(ctx context.Context, obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, a.insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare archive batch: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if o.AssetTicker == "" || o.Timestamp.IsZero() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, o.ID, o.Timestamp.UTC(), o.Source, o.AssetTicker, o.Price, o.Volume); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append archive row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive batch: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) Close() error {
	return nil // the pool is owned by pkg/clickhouse.Client
}

func (a *ClickHouseArchive) qualified() string {
	return a.database + "." + a.table
}

func (a *ClickHouseArchive) insertSQL() string {
	return fmt.Sprintf("INSERT INTO %s (row_id, ts, source, ticker, price, volume)", a.qualified())
}

var _ repository.TickArchive = (*ClickHouseArchive)(nil)
