package app

import (
	"context"

	"sciloc/internal/checksum"
	"sciloc/internal/fetcher"
	"sciloc/internal/observability"
	"sciloc/internal/scraper"
	"sciloc/internal/storage"
)

type CollectStats struct {
	Total     int
	Saved     int
	Skipped   int
	NoInfobox int
	Failed    int
}

// Collector загружает страницы учёных и сохраняет те, где есть инфобокс.
// Результат по каждому индексу фиксируется в журнале статусов.
type Collector struct {
	fetcher   fetcher.Fetcher
	pages     *storage.PageStore
	ledger    storage.StatusLedger
	extractor *scraper.Extractor
	checksum  *checksum.Generator
	logger    *observability.Logger
}

func NewCollector(
	f fetcher.Fetcher,
	pages *storage.PageStore,
	ledger storage.StatusLedger,
	extractor *scraper.Extractor,
	logger *observability.Logger,
) *Collector {
	return &Collector{
		fetcher:   f,
		pages:     pages,
		ledger:    ledger,
		extractor: extractor,
		checksum:  checksum.NewGenerator(),
		logger:    logger,
	}
}

// Collect обходит ссылки по порядку; индекс страницы — позиция в списке (с 1).
// Ошибка возвращается только при сбое журнала или отмене контекста.
func (c *Collector) Collect(ctx context.Context, refs []scraper.ScientistRef) (*CollectStats, error) {
	stats := &CollectStats{Total: len(refs)}

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		index := i + 1

		entry, _, err := c.ledger.Get(ctx, index)
		if err != nil {
			return stats, err
		}

		// Файл уже есть — не перезагружаем и не проверяем свежесть
		if c.pages.Has(index) {
			if entry.Status != storage.StatusSaved {
				if err := c.ledger.SetStatus(ctx, index, storage.StatusSaved, c.fileHash(index, ref.Link)); err != nil {
					return stats, err
				}
			}
			stats.Skipped++
			continue
		}

		if entry.Status == storage.StatusNoInfobox {
			stats.Skipped++
			continue
		}

		status, sum := c.collectOne(ctx, index, ref)
		switch status {
		case storage.StatusSaved:
			stats.Saved++
		case storage.StatusNoInfobox:
			stats.NoInfobox++
		default:
			stats.Failed++
		}

		if err := c.ledger.SetStatus(ctx, index, status, sum); err != nil {
			return stats, err
		}
	}

	c.logger.Info("Collection completed",
		"total", stats.Total,
		"saved", stats.Saved,
		"skipped", stats.Skipped,
		"no_infobox", stats.NoInfobox,
		"failed", stats.Failed,
	)

	return stats, nil
}

func (c *Collector) collectOne(ctx context.Context, index int, ref scraper.ScientistRef) (storage.PageStatus, string) {
	html, err := c.fetcher.Fetch(ctx, ref.Link)
	if err != nil {
		c.logger.Warn("Fetch failed",
			"index", index,
			"name", ref.Name,
			"url", ref.Link,
			"error", err.Error(),
		)
		return storage.StatusFetchFailed, ""
	}

	doc, err := scraper.ParseDocument(html)
	if err != nil || !c.extractor.HasInfobox(doc) {
		c.logger.Debug("No infobox, page dropped", "index", index, "name", ref.Name)
		return storage.StatusNoInfobox, ""
	}

	if err := c.pages.Save(index, html); err != nil {
		c.logger.Error("Failed to save page",
			"index", index,
			"path", c.pages.Path(index),
			"error", err.Error(),
		)
		return storage.StatusFetchFailed, ""
	}

	c.logger.Info("Page saved", "index", index, "name", ref.Name)
	return storage.StatusSaved, c.checksum.GeneratePageHash(ref.Link, html)
}

func (c *Collector) fileHash(index int, link string) string {
	html, err := c.pages.Read(index)
	if err != nil {
		return ""
	}
	return c.checksum.GeneratePageHash(link, html)
}
