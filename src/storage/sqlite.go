package storage

import (
	"database/sql"
	"fmt"
	"time"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteArchive struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteArchive(cfg *models.MConfig, log *logger.Logger) (*SQLiteArchive, error) {
	return &SQLiteArchive{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			symbol TEXT,
			sequence INTEGER,
			generated_at INTEGER,
			price REAL,
			stale INTEGER,
			rsi REAL,
			adx REAL,
			atr REAL,
			sentiment_score REAL,
			sentiment_label TEXT,
			signal_kind TEXT,
			signal_strength TEXT,
			composite_score REAL,
			confidence REAL,
			position_size REAL,
			stop_loss REAL,
			take_profit REAL,
			PRIMARY KEY (symbol, sequence)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_snapshots_generated_at ON snapshots (generated_at)"); err != nil {
		return fmt.Errorf("failed to create snapshots index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) SaveSnapshot(snap models.MSnapshot) error {
	stale := 0
	if snap.Stale {
		stale = 1
	}

	_, err := d.DB.Exec(`
		INSERT INTO snapshots (symbol, sequence, generated_at, price, stale, rsi, adx, atr,
			sentiment_score, sentiment_label, signal_kind, signal_strength,
			composite_score, confidence, position_size, stop_loss, take_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.Symbol, snap.SequenceNumber, snap.GeneratedAt.Unix(), snap.Price, stale,
		snap.Indicators.RSI, snap.Indicators.ADX, snap.Indicators.ATR,
		snap.Sentiment.Score, snap.Sentiment.Label,
		snap.Signal.Kind, snap.Signal.Strength,
		snap.Signal.CompositeScore, snap.Signal.Confidence,
		snap.Risk.PositionSize, snap.Risk.StopLoss, snap.Risk.TakeProfit,
	)
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	if _, err := d.DB.Exec("DELETE FROM snapshots WHERE generated_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup snapshots error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention %d days)", retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
