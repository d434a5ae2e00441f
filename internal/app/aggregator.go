package app

import (
	"context"
	"sort"

	"sciloc/internal/checksum"
	"sciloc/internal/observability"
	"sciloc/internal/scraper"
	"sciloc/internal/storage"
)

// Aggregator строит записи по сохранённым страницам. Ничего не загружает.
type Aggregator struct {
	pages         *storage.PageStore
	ledger        storage.StatusLedger
	extractor     *scraper.Extractor
	checksum      *checksum.Generator
	minArticleLen int
	logger        *observability.Logger
}

func NewAggregator(
	pages *storage.PageStore,
	ledger storage.StatusLedger,
	extractor *scraper.Extractor,
	minArticleLen int,
	logger *observability.Logger,
) *Aggregator {
	return &Aggregator{
		pages:         pages,
		ledger:        ledger,
		extractor:     extractor,
		checksum:      checksum.NewGenerator(),
		minArticleLen: minArticleLen,
		logger:        logger,
	}
}

// Aggregate возвращает записи страниц длиннее порога, отсортированные по
// длине статьи по убыванию (стабильно)
func (a *Aggregator) Aggregate(ctx context.Context) ([]scraper.ScientistRecord, error) {
	indexes, err := a.pages.Indexes()
	if err != nil {
		return nil, err
	}

	var records []scraper.ScientistRecord
	for _, index := range indexes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Ошибка чтения = пустая страница: пропускаем, но не останавливаемся
		html, err := a.pages.Read(index)
		if err != nil {
			a.logger.Warn("Failed to read page", "index", index, "error", err.Error())
			continue
		}
		a.verify(ctx, index, html)

		doc, err := scraper.ParseDocument(html)
		if err != nil {
			a.logger.Warn("Failed to parse page", "index", index, "error", err.Error())
			continue
		}

		rec := a.extractor.Extract(doc)
		if rec.ArticleLen <= a.minArticleLen {
			a.logger.Debug("Article too short", "index", index, "article_len", rec.ArticleLen)
			continue
		}

		a.logger.Debug("Record extracted",
			"index", index,
			"name", rec.Name,
			"city", rec.City,
			"article_len", rec.ArticleLen,
		)
		records = append(records, rec)
	}

	SortByArticleLen(records)

	a.logger.Info("Aggregation completed", "pages", len(indexes), "records", len(records))
	return records, nil
}

// verify сверяет страницу с контрольной суммой из журнала; расхождение только логируется
func (a *Aggregator) verify(ctx context.Context, index int, html string) {
	entry, ok, err := a.ledger.Get(ctx, index)
	if err != nil || !ok || entry.CheckSum == "" {
		return
	}
	if !a.checksum.VerifyPageHash(entry.CheckSum, entry.Link, html) {
		a.logger.Warn("Page checksum mismatch", "index", index, "path", a.pages.Path(index))
	}
}

// SortByArticleLen сортирует по убыванию ArticleLen, равные сохраняют порядок
func SortByArticleLen(records []scraper.ScientistRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ArticleLen > records[j].ArticleLen
	})
}
