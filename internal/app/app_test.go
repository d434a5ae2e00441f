package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sciloc/internal/classify"
	"sciloc/internal/config"
	"sciloc/internal/observability"
	"sciloc/internal/scraper"
	"sciloc/internal/storage"
	"sciloc/internal/storage/sqlite"
)

const (
	testListingURL = "http://wiki.test/list"
	testBaseURL    = "http://wiki.test"
)

type fakeFetcher struct {
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls[url]++
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("connection refused")
	}
	return html, nil
}

func (f *fakeFetcher) Close() error { return nil }

func testGeo() *classify.GeoData {
	return &classify.GeoData{
		Cities: []string{"تهران", "اصفهان"},
		Categories: []classify.Category{
			{Name: "center", Cities: []string{"تهران"}},
			{Name: "other", Cities: []string{"اصفهان"}},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Source.ListingURL = testListingURL
	cfg.Source.BaseURL = testBaseURL
	cfg.Paths.ListingFile = filepath.Join(dir, "scientists.html")
	cfg.Paths.PagesDir = filepath.Join(dir, "scientists")
	cfg.Paths.RecordsFile = filepath.Join(dir, "data.txt")
	cfg.Paths.ChartFile = filepath.Join(dir, "chart.md")
	return cfg
}

func setupLedger(t *testing.T) *sqlite.Ledger {
	t.Helper()
	ledger, err := sqlite.Open(":memory:", observability.NewNopLogger())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func listingHTML(paths ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for i, p := range paths {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><a href="%s">scientist %d</a></td></tr>`, i+1, p, i+1)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func biography(name, born string, words int) string {
	return `<html><body><h1><span class="mw-page-title-main">` + name + `</span></h1>
<table class="infobox"><tr><th>زاده</th><td>` + born + `</td></tr></table>
<p>` + strings.Repeat("متن ", words) + `</p></body></html>`
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	ledger := setupLedger(t)
	f := newFakeFetcher()

	f.pages[testListingURL] = listingHTML("/wiki/A", "/wiki/B", "/wiki/C", "/wiki/D", "/wiki/E")
	f.pages[testBaseURL+"/wiki/A"] = biography("الف", "تهران، ۱۳۵۰ هجری خورشیدی", 6000)
	f.pages[testBaseURL+"/wiki/B"] = `<html><body><p>ابهام‌زدایی</p></body></html>`
	// /wiki/C недоступна
	f.pages[testBaseURL+"/wiki/D"] = biography("دال", "تهران", 10)
	f.pages[testBaseURL+"/wiki/E"] = biography("ه", "(۳۷۰ ه.ق) اصفهان", 9000)

	var out bytes.Buffer
	o := NewOrchestrator(cfg, observability.NewNopLogger(), f, ledger, testGeo(), nil, &out)
	ctx := context.Background()

	if stage, _ := o.DetectStage(ctx); stage != StageNotStarted {
		t.Fatalf("initial stage = %v", stage)
	}

	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(cfg.Paths.RecordsFile)
	if err != nil {
		t.Fatalf("read records: %v", err)
	}
	if string(data) != "ه,اصفهان\nالف,تهران\n" {
		t.Errorf("records file = %q", string(data))
	}

	wantStatus := map[int]storage.PageStatus{
		1: storage.StatusSaved,
		2: storage.StatusNoInfobox,
		3: storage.StatusFetchFailed,
		4: storage.StatusSaved,
		5: storage.StatusSaved,
	}
	for index, want := range wantStatus {
		entry, ok, err := ledger.Get(ctx, index)
		if err != nil || !ok || entry.Status != want {
			t.Errorf("page %d: status %v (ok=%v, err=%v), want %v", index, entry.Status, ok, err, want)
		}
	}
	if storage.FileExists(filepath.Join(cfg.Paths.PagesDir, "2.html")) {
		t.Errorf("page without infobox was saved")
	}
	if !storage.FileExists(cfg.Paths.ListingFile) {
		t.Errorf("listing snapshot not saved")
	}

	chart := out.String()
	if !strings.Contains(chart, "50.0%") || !strings.Contains(chart, "```mermaid") {
		t.Errorf("unexpected chart output:\n%s", chart)
	}
	if saved, _ := os.ReadFile(cfg.Paths.ChartFile); string(saved) != chart {
		t.Errorf("chart file differs from stdout output")
	}

	if stage, _ := o.DetectStage(ctx); stage != StageAggregated {
		t.Errorf("stage after run = %v, want aggregated", stage)
	}

	// Повторный запуск: только диаграмма, без сети
	before := len(f.calls)
	total := 0
	for _, n := range f.calls {
		total += n
	}
	out.Reset()
	if err := o.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	after := 0
	for _, n := range f.calls {
		after += n
	}
	if after != total || len(f.calls) != before {
		t.Errorf("second run hit the network: %d -> %d calls", total, after)
	}
	if out.Len() == 0 {
		t.Errorf("second run rendered no chart")
	}
}

func TestRunResumesFailedPages(t *testing.T) {
	cfg := testConfig(t)
	ledger := setupLedger(t)
	f := newFakeFetcher()

	f.pages[testListingURL] = listingHTML("/wiki/A", "/wiki/B", "/wiki/C")
	f.pages[testBaseURL+"/wiki/A"] = biography("الف", "تهران", 6000)
	f.pages[testBaseURL+"/wiki/B"] = `<html><body></body></html>`

	o := NewOrchestrator(cfg, observability.NewNopLogger(), f, ledger, testGeo(), nil, &bytes.Buffer{})
	ctx := context.Background()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Сбрасываем агрегат и делаем третью страницу доступной
	if err := os.Remove(cfg.Paths.RecordsFile); err != nil {
		t.Fatalf("remove records: %v", err)
	}
	f.pages[testBaseURL+"/wiki/C"] = biography("جیم", "اصفهان", 7000)

	if stage, _ := o.DetectStage(ctx); stage != StageNotStarted {
		t.Fatalf("stage with failed pages = %v, want not_started", stage)
	}

	if err := o.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if f.calls[testBaseURL+"/wiki/A"] != 1 {
		t.Errorf("saved page re-fetched: %d calls", f.calls[testBaseURL+"/wiki/A"])
	}
	if f.calls[testBaseURL+"/wiki/B"] != 1 {
		t.Errorf("no-infobox page re-fetched: %d calls", f.calls[testBaseURL+"/wiki/B"])
	}
	if f.calls[testBaseURL+"/wiki/C"] != 2 {
		t.Errorf("failed page fetched %d times, want 2", f.calls[testBaseURL+"/wiki/C"])
	}
	if f.calls[testListingURL] != 1 {
		t.Errorf("listing fetched %d times, want 1 (snapshot reused)", f.calls[testListingURL])
	}

	records, err := storage.ReadRecords(cfg.Paths.RecordsFile)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 || records[0].Name != "جیم" || records[1].Name != "الف" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestRunNoTable(t *testing.T) {
	cfg := testConfig(t)
	f := newFakeFetcher()

	o := NewOrchestrator(cfg, observability.NewNopLogger(), f, setupLedger(t), testGeo(), nil, &bytes.Buffer{})

	err := o.Run(context.Background())
	if !errors.Is(err, scraper.ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
	if storage.FileExists(cfg.Paths.ListingFile) {
		t.Errorf("empty listing must not be saved")
	}
}

// Имя с латинской запятой ломает строку файла записей, но не весь конвейер
func TestRunSkipsMalformedRecord(t *testing.T) {
	cfg := testConfig(t)
	f := newFakeFetcher()
	f.pages[testListingURL] = listingHTML("/wiki/A", "/wiki/B")
	f.pages[testBaseURL+"/wiki/A"] = biography("Tusi, Nasir", "تهران", 9000)
	f.pages[testBaseURL+"/wiki/B"] = biography("الف", "اصفهان", 6000)

	var out bytes.Buffer
	o := NewOrchestrator(cfg, observability.NewNopLogger(), f, setupLedger(t), testGeo(), nil, &out)
	ctx := context.Background()

	for run := 1; run <= 2; run++ {
		out.Reset()
		if err := o.Run(ctx); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		chart := out.String()
		if !strings.Contains(chart, "```mermaid") {
			t.Fatalf("run %d: no chart rendered:\n%s", run, chart)
		}
		if !strings.Contains(chart, "1 of 1 records classified.") {
			t.Errorf("run %d: malformed record not skipped:\n%s", run, chart)
		}
	}

	if stage, _ := o.DetectStage(ctx); stage != StageAggregated {
		t.Errorf("stage = %v, want aggregated", stage)
	}
}

type recordingRepo struct {
	got []scraper.ScientistRecord
}

func (r *recordingRepo) ReplaceRecords(ctx context.Context, records []scraper.ScientistRecord) error {
	r.got = append([]scraper.ScientistRecord(nil), records...)
	return nil
}

func (r *recordingRepo) Close() error { return nil }

func TestRunExportsRecords(t *testing.T) {
	cfg := testConfig(t)
	f := newFakeFetcher()
	f.pages[testListingURL] = listingHTML("/wiki/A")
	f.pages[testBaseURL+"/wiki/A"] = biography("الف", "تهران", 6000)

	repo := &recordingRepo{}
	o := NewOrchestrator(cfg, observability.NewNopLogger(), f, setupLedger(t), testGeo(), repo, &bytes.Buffer{})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.got) != 1 || repo.got[0].City != "تهران" || repo.got[0].ArticleLen <= 20000 {
		t.Errorf("exported records = %+v", repo.got)
	}
}

func TestSortByArticleLenStable(t *testing.T) {
	records := []scraper.ScientistRecord{
		{Name: "a", ArticleLen: 30000},
		{Name: "b", ArticleLen: 50000},
		{Name: "c", ArticleLen: 30000},
		{Name: "d", ArticleLen: 90000},
		{Name: "e", ArticleLen: 30000},
	}

	SortByArticleLen(records)

	var names []string
	for i, r := range records {
		names = append(names, r.Name)
		if i > 0 && records[i-1].ArticleLen < r.ArticleLen {
			t.Errorf("order not non-increasing at %d", i)
		}
	}
	if strings.Join(names, "") != "dbace" {
		t.Errorf("order = %v, want [d b a c e]", names)
	}
}

func TestStageString(t *testing.T) {
	if StagePagesCollected.String() != "pages_collected" {
		t.Errorf("String() = %q", StagePagesCollected.String())
	}
	if !(StageNotStarted < StagePagesCollected && StagePagesCollected < StageAggregated) {
		t.Errorf("stages must be ordered")
	}
}
