package storage

import (
	"context"
	"fmt"
	"time"

	"sciloc/internal/scraper"
)

// PageStatus — состояние страницы учёного по её индексу в списке
type PageStatus int

const (
	StatusUnfetched PageStatus = iota
	StatusFetchFailed
	StatusNoInfobox
	StatusSaved
)

func (s PageStatus) String() string {
	switch s {
	case StatusUnfetched:
		return "unfetched"
	case StatusFetchFailed:
		return "fetch_failed"
	case StatusNoInfobox:
		return "no_infobox"
	case StatusSaved:
		return "saved"
	default:
		return fmt.Sprintf("PageStatus(%d)", int(s))
	}
}

// PageEntry — строка журнала статусов
type PageEntry struct {
	Index     int
	Name      string
	Link      string
	Status    PageStatus
	CheckSum  string
	UpdatedAt time.Time
}

// StatusLedger хранит статус каждой страницы между запусками
type StatusLedger interface {
	// Register добавляет строки списка как Unfetched; существующие не трогает
	Register(ctx context.Context, refs []scraper.ScientistRef) error

	// Get возвращает запись по индексу; ok=false если индекса нет
	Get(ctx context.Context, index int) (entry PageEntry, ok bool, err error)

	// SetStatus обновляет статус и контрольную сумму
	SetStatus(ctx context.Context, index int, status PageStatus, checkSum string) error

	// CountByStatus считает записи по статусам
	CountByStatus(ctx context.Context) (map[PageStatus]int, error)

	Close() error
}

// RecordRepository — внешнее хранилище итоговых записей
type RecordRepository interface {
	// ReplaceRecords заменяет весь набор записей, rank = позиция после сортировки
	ReplaceRecords(ctx context.Context, records []scraper.ScientistRecord) error

	Close() error
}
