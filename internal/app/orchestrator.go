package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"sciloc/internal/classify"
	"sciloc/internal/config"
	"sciloc/internal/fetcher"
	"sciloc/internal/observability"
	"sciloc/internal/report"
	"sciloc/internal/scraper"
	"sciloc/internal/storage"
)

type Orchestrator struct {
	cfg         *config.Config
	logger      *observability.Logger
	fetcher     fetcher.Fetcher
	ledger      storage.StatusLedger
	pages       *storage.PageStore
	categorizer *classify.Categorizer
	collector   *Collector
	aggregator  *Aggregator
	records     storage.RecordRepository
	chartOut    io.Writer
}

// NewOrchestrator собирает конвейер. records может быть nil — тогда выгрузка
// записей во внешнее хранилище пропускается.
func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	f fetcher.Fetcher,
	ledger storage.StatusLedger,
	geo *classify.GeoData,
	records storage.RecordRepository,
	chartOut io.Writer,
) *Orchestrator {
	pages := storage.NewPageStore(cfg.Paths.PagesDir)
	categorizer := classify.NewCategorizer(geo)
	extractor := scraper.NewExtractor(&scraper.Selectors{
		Title:    cfg.Extract.TitleSelector,
		Infobox:  cfg.Extract.InfoboxSelector,
		Keywords: cfg.Extract.Keywords,
	}, categorizer, cfg.Extract.UnknownCity)

	return &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		fetcher:     f,
		ledger:      ledger,
		pages:       pages,
		categorizer: categorizer,
		collector:   NewCollector(f, pages, ledger, extractor, logger.With("component", "collector")),
		aggregator:  NewAggregator(pages, ledger, extractor, cfg.Extract.MinArticleLen, logger.With("component", "aggregator")),
		records:     records,
		chartOut:    chartOut,
	}
}

// DetectStage определяет, докуда конвейер уже дошёл
func (o *Orchestrator) DetectStage(ctx context.Context) (Stage, error) {
	if storage.FileExists(o.cfg.Paths.RecordsFile) {
		return StageAggregated, nil
	}

	counts, err := o.ledger.CountByStatus(ctx)
	if err != nil {
		return StageNotStarted, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 && counts[storage.StatusUnfetched] == 0 && counts[storage.StatusFetchFailed] == 0 {
		return StagePagesCollected, nil
	}
	return StageNotStarted, nil
}

// Run проходит все оставшиеся этапы: сбор страниц, агрегация, диаграмма
func (o *Orchestrator) Run(ctx context.Context) error {
	stage, err := o.DetectStage(ctx)
	if err != nil {
		return fmt.Errorf("detect stage: %w", err)
	}

	if stage < StageAggregated {
		refs, err := o.loadListing(ctx)
		if err != nil {
			return err
		}
		if err := o.ledger.Register(ctx, refs); err != nil {
			return fmt.Errorf("register listing: %w", err)
		}

		// Журнал мог пополниться новыми строками списка
		if stage, err = o.DetectStage(ctx); err != nil {
			return fmt.Errorf("detect stage: %w", err)
		}
		o.logger.Info("Pipeline stage", "stage", stage.String(), "scientists", len(refs))

		if stage < StagePagesCollected {
			stats, err := o.collector.Collect(ctx, refs)
			if err != nil {
				return fmt.Errorf("collect pages: %w", err)
			}
			if stats.Failed > 0 {
				o.logger.Warn("Some pages failed to load; remove the records file and re-run to retry them",
					"failed", stats.Failed,
				)
			}
		}

		if err := o.aggregate(ctx); err != nil {
			return err
		}
	} else {
		o.logger.Info("Pipeline stage", "stage", stage.String())
	}

	return o.renderChart()
}

// loadListing читает сохранённую страницу списка или загружает её
func (o *Orchestrator) loadListing(ctx context.Context) ([]scraper.ScientistRef, error) {
	path := o.cfg.Paths.ListingFile

	var html string
	if storage.FileExists(path) {
		content, err := storage.ReadFile(path)
		if err != nil {
			o.logger.Error("Failed to read listing snapshot", "path", path, "error", err.Error())
		}
		html = content
	} else {
		content, err := o.fetcher.Fetch(ctx, o.cfg.Source.ListingURL)
		if err != nil {
			o.logger.Error("Failed to fetch listing", "url", o.cfg.Source.ListingURL, "error", err.Error())
		}
		html = content

		// Пустой ответ не сохраняем, иначе следующий запуск его не перезагрузит
		if html != "" {
			if err := storage.WriteFileAtomic(path, html); err != nil {
				o.logger.Error("Failed to save listing snapshot", "path", path, "error", err.Error())
			}
		}
	}

	refs, err := scraper.ParseListing(html, o.cfg.Source.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return refs, nil
}

func (o *Orchestrator) aggregate(ctx context.Context) error {
	records, err := o.aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if err := storage.WriteRecords(o.cfg.Paths.RecordsFile, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	o.logger.Info("Records saved", "path", o.cfg.Paths.RecordsFile, "count", len(records))

	if o.records != nil {
		if err := o.records.ReplaceRecords(ctx, records); err != nil {
			o.logger.Error("Failed to export records", "error", err.Error())
		}
	}
	return nil
}

func (o *Orchestrator) renderChart() error {
	// Битая строка (имя с запятой) не должна блокировать все следующие запуски
	records, bad, err := storage.ReadRecordsLenient(o.cfg.Paths.RecordsFile)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	for _, b := range bad {
		o.logger.Warn("Malformed record skipped", "line", b.Line, "text", b.Text)
	}

	cities := make([]string, len(records))
	for i, r := range records {
		cities[i] = r.City
	}
	counts := o.categorizer.CountCategories(cities)

	var buf bytes.Buffer
	if err := report.NewChartWriter(&buf).Write(counts, len(records)); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	if o.cfg.Paths.ChartFile != "" {
		if err := storage.WriteFileAtomic(o.cfg.Paths.ChartFile, buf.String()); err != nil {
			o.logger.Error("Failed to save chart", "path", o.cfg.Paths.ChartFile, "error", err.Error())
		}
	}

	if _, err := o.chartOut.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
