package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"sciloc/internal/config"
	"sciloc/internal/observability"
)

// browserProcess — запущенный процесс Chromium (*launcher.Launcher).
// Cleanup ждёт завершения процесса, поэтому вызывается после Kill.
type browserProcess interface {
	Kill()
	Cleanup()
}

// BrowserFetcher загружает страницы через headless Chromium (rod)
type BrowserFetcher struct {
	process browserProcess
	browser *rod.Browser
	cfg     *config.Config
	logger  *observability.Logger
}

func NewBrowserFetcher(cfg *config.Config, logger *observability.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox")
	if cfg.Rod.ChromePath != "" {
		l = l.Bin(cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser, err := connectBrowser(controlURL, l)
	if err != nil {
		return nil, err
	}

	logger.Info("Browser fetcher ready", "chrome_path", cfg.Rod.ChromePath)

	return &BrowserFetcher{
		process: l,
		browser: browser,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// connectBrowser подключается к запущенному Chromium. При ошибке процесс
// гасится, временный профиль удаляется.
func connectBrowser(controlURL string, process browserProcess) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		process.Kill()
		process.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return browser, nil
}

// Fetch открывает страницу, ждёт загрузки и возвращает итоговый HTML
func (bf *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	page, err := bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      bf.cfg.HTTP.UserAgent,
		AcceptLanguage: bf.cfg.HTTP.AcceptLanguage,
	}); err != nil {
		bf.logger.Warn("Failed to set user agent", "error", err.Error())
	}

	start := time.Now()
	if err := page.Timeout(bf.cfg.GetRodPageTimeout()).Navigate(urlStr); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	if err := page.Timeout(bf.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		bf.logger.Warn("Page load timeout, continuing", "url", urlStr, "error", err.Error())
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}

	bf.logger.Debug("Browser fetch complete",
		"url", urlStr,
		"bytes", len(html),
		"duration", time.Since(start),
	)

	return html, nil
}

// Close закрывает браузер и удаляет временный каталог профиля
func (bf *BrowserFetcher) Close() error {
	var err error
	if bf.browser != nil {
		err = bf.browser.Close()
	}
	if bf.process != nil {
		bf.process.Kill()
		bf.process.Cleanup()
	}
	return err
}
