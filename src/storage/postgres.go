package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresArchive(cfg *models.MConfig, log *logger.Logger) (*PostgresArchive, error) {
	// Schema follows the executable name so multiple deployments can share
	// one database.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresArchive{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresArchive initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."snapshots" (
			symbol TEXT,
			sequence BIGINT,
			generated_at BIGINT,
			price DOUBLE PRECISION,
			stale BOOLEAN,
			rsi DOUBLE PRECISION,
			adx DOUBLE PRECISION,
			atr DOUBLE PRECISION,
			sentiment_score DOUBLE PRECISION,
			sentiment_label TEXT,
			signal_kind TEXT,
			signal_strength TEXT,
			composite_score DOUBLE PRECISION,
			confidence DOUBLE PRECISION,
			position_size DOUBLE PRECISION,
			stop_loss DOUBLE PRECISION,
			take_profit DOUBLE PRECISION,
			PRIMARY KEY (symbol, sequence)
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_snapshots_generated_at ON "%s"."snapshots" (generated_at)`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) SaveSnapshot(snap models.MSnapshot) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."snapshots" (symbol, sequence, generated_at, price, stale, rsi, adx, atr,
			sentiment_score, sentiment_label, signal_kind, signal_strength,
			composite_score, confidence, position_size, stop_loss, take_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, d.Schema)

	_, err := d.DB.Exec(query,
		snap.Symbol, snap.SequenceNumber, snap.GeneratedAt.Unix(), snap.Price, snap.Stale,
		snap.Indicators.RSI, snap.Indicators.ADX, snap.Indicators.ATR,
		snap.Sentiment.Score, snap.Sentiment.Label,
		snap.Signal.Kind, snap.Signal.Strength,
		snap.Signal.CompositeScore, snap.Signal.Confidence,
		snap.Risk.PositionSize, snap.Risk.StopLoss, snap.Risk.TakeProfit,
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	query := fmt.Sprintf(`DELETE FROM "%s"."snapshots" WHERE generated_at < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup snapshots error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention %d days)", retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
