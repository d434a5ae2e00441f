package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"sciloc/internal/config"
	"sciloc/internal/observability"
)

// Fetcher загружает HTML страницы. Повторных попыток нет: ошибка означает
// «страница недоступна», вызывающий код сам решает, что с этим делать.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// New выбирает реализацию по конфигу
func New(cfg *config.Config, logger *observability.Logger) (Fetcher, error) {
	if cfg.Rod.Enabled {
		return NewBrowserFetcher(cfg, logger)
	}
	return NewHTTPFetcher(cfg, logger), nil
}

type HTTPFetcher struct {
	client *http.Client
	cfg    *config.Config
	logger *observability.Logger
}

func NewHTTPFetcher(cfg *config.Config, logger *observability.Logger) *HTTPFetcher {
	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: cfg.GetConnectTimeout()}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPFetcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch выполняет GET; всё, кроме 200, считается ошибкой
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("invalid request: %w", err)
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	req.Header.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "error", err.Error())
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	reader := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	f.logger.Debug("Page fetched",
		"url", urlStr,
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(body),
	)

	return string(body), nil
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
