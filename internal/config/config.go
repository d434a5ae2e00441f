package config

import (
	"fmt"
	"time"
)

type Config struct {
	Source        SourceConfig        `yaml:"source"`
	Paths         PathsConfig         `yaml:"paths"`
	HTTP          HttpConfig          `yaml:"http"`
	Rod           RodConfig           `yaml:"rod"`
	Extract       ExtractConfig       `yaml:"extract"`
	GeoFile       string              `yaml:"geo_file"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`

	baseDir string
}

type SourceConfig struct {
	ListingURL string `yaml:"listing_url"`
	BaseURL    string `yaml:"base_url"`
}

type PathsConfig struct {
	ListingFile string `yaml:"listing_file"`
	PagesDir    string `yaml:"pages_dir"`
	RecordsFile string `yaml:"records_file"`
	StatusDB    string `yaml:"status_db"`
	ChartFile   string `yaml:"chart_file"`
}

type HttpConfig struct {
	UserAgent        string `yaml:"user_agent"`
	AcceptLanguage   string `yaml:"accept_language"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS   int    `yaml:"total_timeout_ms"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
}

type ExtractConfig struct {
	Keywords        []string `yaml:"keywords"`
	TitleSelector   string   `yaml:"title_selector"`
	InfoboxSelector string   `yaml:"infobox_selector"`
	UnknownCity     string   `yaml:"unknown_city"`
	MinArticleLen   int      `yaml:"min_article_len"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath   string `yaml:"log_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default возвращает конфиг со значениями по умолчанию.
// YAML-файл перекрывает только те поля, которые в нём заданы.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			ListingURL: "https://fa.wikipedia.org/wiki/%D9%81%D9%87%D8%B1%D8%B3%D8%AA_%D8%AF%D8%A7%D9%86%D8%B4%D9%85%D9%86%D8%AF%D8%A7%D9%86_%D8%A7%DB%8C%D8%B1%D8%A7%D9%86%DB%8C_%D9%BE%DB%8C%D8%B4_%D8%A7%D8%B2_%D8%AF%D9%88%D8%B1%D8%A7%D9%86_%D9%85%D8%B9%D8%A7%D8%B5%D8%B1",
			BaseURL:    "https://fa.wikipedia.org",
		},
		Paths: PathsConfig{
			ListingFile: "scientists.html",
			PagesDir:    "scientists",
			RecordsFile: "data.txt",
			StatusDB:    "scientists.db",
		},
		HTTP: HttpConfig{
			UserAgent:        "sciloc/1.0 (+https://fa.wikipedia.org)",
			AcceptLanguage:   "fa-IR,fa;q=0.9",
			ConnectTimeoutMS: 10000,
			TotalTimeoutMS:   30000,
		},
		Rod: RodConfig{
			PageTimeoutS:     30,
			WaitLoadTimeoutS: 10,
		},
		Extract: ExtractConfig{
			Keywords:        []string{"زادهٔ", "زاده", "محل زندگی"},
			TitleSelector:   "span.mw-page-title-main",
			InfoboxSelector: "table.infobox",
			UnknownCity:     "نامشخص",
			MinArticleLen:   20000,
		},
		GeoFile: "geo.yaml",
		Storage: StorageConfig{
			Driver:           "none",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogPath:   "logs/sciloc.log",
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Source.ListingURL == "" {
		return fmt.Errorf("source.listing_url is required")
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Paths.ListingFile == "" {
		return fmt.Errorf("paths.listing_file is required")
	}
	if c.Paths.PagesDir == "" {
		return fmt.Errorf("paths.pages_dir is required")
	}
	if c.Paths.RecordsFile == "" {
		return fmt.Errorf("paths.records_file is required")
	}
	if c.Paths.StatusDB == "" {
		return fmt.Errorf("paths.status_db is required")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if len(c.Extract.Keywords) == 0 {
		return fmt.Errorf("extract.keywords is required")
	}
	if c.Extract.InfoboxSelector == "" {
		return fmt.Errorf("extract.infobox_selector is required")
	}
	if c.Extract.UnknownCity == "" {
		return fmt.Errorf("extract.unknown_city is required")
	}
	if c.Extract.MinArticleLen < 0 {
		return fmt.Errorf("extract.min_article_len must be >= 0")
	}
	if c.GeoFile == "" {
		return fmt.Errorf("geo_file is required")
	}
	if c.Storage.Driver != "none" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'none' or 'mssql'")
	}
	if c.Storage.Driver == "mssql" {
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is 'mssql'")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Observability.LogFormat != "text" && c.Observability.LogFormat != "json" {
		return fmt.Errorf("observability.log_format must be 'text' or 'json'")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}
