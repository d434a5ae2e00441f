package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"sciloc/internal/observability"
	"sciloc/internal/scraper"
)

const (
	deleteRecordsQuery = `DELETE FROM TblScientists`

	insertRecordQuery = `
		INSERT INTO TblScientists ([Rank], [Name], [City], [ArticleLen])
		VALUES (@Rank, @Name, @City, @ArticleLen);
	`
)

// Repository выгружает итоговые записи в MS SQL
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newRepository(db, commandTimeout, logger), nil
}

func newRepository(db *sql.DB, commandTimeout time.Duration, logger *observability.Logger) *Repository {
	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

// ReplaceRecords заменяет содержимое таблицы одним набором в транзакции.
// Rank — позиция записи после сортировки (с 1).
func (r *Repository) ReplaceRecords(ctx context.Context, records []scraper.ScientistRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			r.logger.Error("Failed to rollback transaction", "error", err.Error())
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteRecordsQuery); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	for i, rec := range records {
		_, err := tx.ExecContext(ctx, insertRecordQuery,
			sql.Named("Rank", i+1),
			sql.Named("Name", rec.Name),
			sql.Named("City", rec.City),
			sql.Named("ArticleLen", rec.ArticleLen),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("Records exported", "count", len(records))
	return nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
