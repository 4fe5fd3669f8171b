package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"stock-forecast-service/internal/domain"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// alertTimeLayout keeps a fixed fraction width so created_at sorts as text
const alertTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStockRepository persists stock data in SQLite.
// Writes go through a single writer guarded by mu; reads run concurrently under WAL.
type SQLiteStockRepository struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // Mutex to ensure single writer
}

// NewSQLiteStockRepository opens the database and creates the schema
func NewSQLiteStockRepository(path string, logger *zap.Logger) (*SQLiteStockRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &SQLiteStockRepository{
		db:     db,
		logger: logger,
	}

	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteStockRepository) initSchema() error {
	schema := `
	-- Stock items: one row per tracked casting stock
	CREATE TABLE IF NOT EXISTS stock_items (
		stock_id INTEGER PRIMARY KEY,
		casting_type TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		threshold INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK(quantity >= 0),
		CHECK(threshold >= 0)
	);

	-- Usage events: append-only history fed to the forecaster
	CREATE TABLE IF NOT EXISTS usage_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stock_id INTEGER NOT NULL,
		usage_date TEXT NOT NULL,
		quantity_used INTEGER NOT NULL,
		FOREIGN KEY (stock_id) REFERENCES stock_items(stock_id) ON DELETE CASCADE,
		CHECK(quantity_used >= 0)
	);

	-- Alert history survives stock deletion
	CREATE TABLE IF NOT EXISTS alert_history (
		id TEXT PRIMARY KEY,
		stock_id INTEGER NOT NULL,
		casting_type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		threshold INTEGER NOT NULL,
		message TEXT NOT NULL,
		email TEXT,
		sms_number TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contact_config (
		id INTEGER PRIMARY KEY CHECK(id = 1),
		email TEXT,
		sms_number TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_events_stock_date ON usage_events(stock_id, usage_date);
	CREATE INDEX IF NOT EXISTS idx_alert_history_created_at ON alert_history(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Ping checks the database connection
func (r *SQLiteStockRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *SQLiteStockRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteStockRepository) Create(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO stock_items (stock_id, casting_type, quantity, threshold, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.CastingType, item.Quantity, item.Threshold, item.Version,
		item.CreatedAt.UTC().Format(time.RFC3339), item.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return domain.ErrDuplicateStock
		}
		return fmt.Errorf("failed to create stock item: %w", err)
	}

	return nil
}

func (r *SQLiteStockRepository) FindByID(ctx context.Context, id int64) (*domain.StockItem, error) {
	query := `
		SELECT stock_id, casting_type, quantity, threshold, version, created_at, updated_at
		FROM stock_items
		WHERE stock_id = ?
	`

	item, err := scanStockItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStockNotFound
		}
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}

	return item, nil
}

func (r *SQLiteStockRepository) List(ctx context.Context) ([]*domain.StockItem, error) {
	query := `
		SELECT stock_id, casting_type, quantity, threshold, version, created_at, updated_at
		FROM stock_items
		ORDER BY stock_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.StockItem, 0)
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *SQLiteStockRepository) Update(ctx context.Context, item *domain.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updateItem(ctx, r.db, item)
}

func (r *SQLiteStockRepository) SaveDeduction(ctx context.Context, item *domain.StockItem, event domain.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.updateItem(ctx, tx, item); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO usage_events (stock_id, usage_date, quantity_used) VALUES (?, ?, ?)`,
		event.StockID, domain.FormatDate(event.Date), event.QuantityUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deduction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// updateItem writes quantity and threshold with optimistic locking
func (r *SQLiteStockRepository) updateItem(ctx context.Context, db execer, item *domain.StockItem) error {
	query := `
		UPDATE stock_items
		SET quantity = ?, threshold = ?, version = ?, updated_at = ?
		WHERE stock_id = ? AND version = ?
	`

	result, err := db.ExecContext(ctx, query,
		item.Quantity, item.Threshold, item.Version,
		item.UpdatedAt.UTC().Format(time.RFC3339),
		item.ID, item.Version-1,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM stock_items WHERE stock_id = ?`, item.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check stock item: %w", err)
		}
		if exists == 0 {
			return domain.ErrStockNotFound
		}
		return ErrOptimisticLockFailed
	}

	return nil
}

func (r *SQLiteStockRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM usage_events WHERE stock_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete usage history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM stock_items WHERE stock_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrStockNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (r *SQLiteStockRepository) UsageHistory(ctx context.Context, id int64) ([]domain.UsageEvent, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT stock_id, usage_date, quantity_used
		FROM usage_events
		WHERE stock_id = ?
		ORDER BY usage_date, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.UsageEvent, 0)
	for rows.Next() {
		var event domain.UsageEvent
		var dateStr string
		if err := rows.Scan(&event.StockID, &dateStr, &event.QuantityUsed); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		event.Date, err = domain.ParseDate(dateStr)
		if err != nil {
			r.logger.Warn("Skipping usage event with malformed date",
				zap.Int64("stock_id", event.StockID),
				zap.String("usage_date", dateStr),
			)
			continue
		}
		history = append(history, event)
	}

	return history, rows.Err()
}

func (r *SQLiteStockRepository) SaveAlert(ctx context.Context, alert *domain.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO alert_history (id, stock_id, casting_type, quantity, threshold, message, email, sms_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID.String(), alert.StockID, alert.CastingType, alert.Quantity, alert.Threshold,
		alert.Message, alert.Email, alert.SMSNumber, alert.CreatedAt.UTC().Format(alertTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (r *SQLiteStockRepository) ListAlerts(ctx context.Context, limit int) ([]*domain.AlertRecord, error) {
	query := `
		SELECT id, stock_id, casting_type, quantity, threshold, message, email, sms_number, created_at
		FROM alert_history
		ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*domain.AlertRecord, 0)
	for rows.Next() {
		var alert domain.AlertRecord
		var idStr, createdAtStr string
		var email, sms sql.NullString

		err := rows.Scan(
			&idStr, &alert.StockID, &alert.CastingType, &alert.Quantity, &alert.Threshold,
			&alert.Message, &email, &sms, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}

		alert.ID, _ = uuid.Parse(idStr)
		alert.Email = email.String
		alert.SMSNumber = sms.String
		alert.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
		alerts = append(alerts, &alert)
	}

	return alerts, rows.Err()
}

func (r *SQLiteStockRepository) GetContact(ctx context.Context) (domain.ContactConfig, error) {
	var contact domain.ContactConfig
	var email, sms sql.NullString
	var updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT email, sms_number, updated_at FROM contact_config WHERE id = 1`,
	).Scan(&email, &sms, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contact, nil
		}
		return contact, fmt.Errorf("failed to get contact config: %w", err)
	}

	contact.Email = email.String
	contact.SMSNumber = sms.String
	contact.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return contact, nil
}

func (r *SQLiteStockRepository) SaveContact(ctx context.Context, contact domain.ContactConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO contact_config (id, email, sms_number, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, sms_number = excluded.sms_number, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		contact.Email, contact.SMSNumber, contact.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save contact config: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStockItem(row rowScanner) (*domain.StockItem, error) {
	var item domain.StockItem
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&item.ID, &item.CastingType, &item.Quantity, &item.Threshold, &item.Version,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	item.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &item, nil
}
