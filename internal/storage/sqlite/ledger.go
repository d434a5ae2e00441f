package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sciloc/internal/observability"
	"sciloc/internal/scraper"
	"sciloc/internal/storage"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

CREATE TABLE IF NOT EXISTS pages (
    page_index INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    link TEXT NOT NULL,
    status INTEGER NOT NULL DEFAULT 0,
    checksum TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status);
`

// Ledger — журнал статусов страниц в SQLite
type Ledger struct {
	db     *sql.DB
	logger *observability.Logger
}

// Open открывает (или создаёт) журнал по пути dbPath
func Open(dbPath string, logger *observability.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Один writer: SQLite не любит параллельные соединения на запись
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close() // ошибка закрытия менее важна
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Ledger{db: db, logger: logger}, nil
}

// Register добавляет строки списка; уже известные индексы не меняются
func (l *Ledger) Register(ctx context.Context, refs []scraper.ScientistRef) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO pages (page_index, name, link, status) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			l.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	for i, ref := range refs {
		if _, err := stmt.ExecContext(ctx, i+1, ref.Name, ref.Link, int(storage.StatusUnfetched)); err != nil {
			return fmt.Errorf("failed to register page %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Get возвращает запись журнала по индексу
func (l *Ledger) Get(ctx context.Context, index int) (storage.PageEntry, bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT page_index, name, link, status, checksum, updated_at FROM pages WHERE page_index = ?`, index)

	var (
		entry  storage.PageEntry
		status int
	)
	err := row.Scan(&entry.Index, &entry.Name, &entry.Link, &status, &entry.CheckSum, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PageEntry{}, false, nil
		}
		return storage.PageEntry{}, false, fmt.Errorf("failed to query page %d: %w", index, err)
	}
	entry.Status = storage.PageStatus(status)
	return entry, true, nil
}

// SetStatus обновляет статус страницы
func (l *Ledger) SetStatus(ctx context.Context, index int, status storage.PageStatus, checkSum string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE pages SET status = ?, checksum = ?, updated_at = ? WHERE page_index = ?`,
		int(status), checkSum, time.Now().UTC(), index)
	if err != nil {
		return fmt.Errorf("failed to update page %d: %w", index, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("page %d is not registered", index)
	}
	return nil
}

// CountByStatus считает страницы по статусам
func (l *Ledger) CountByStatus(ctx context.Context) (map[storage.PageStatus]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM pages GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[storage.PageStatus]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		counts[storage.PageStatus(status)] = count
	}
	return counts, rows.Err()
}

// Close закрывает соединение с БД
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
