package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sciloc/internal/classify"
)

// LoadGeoData загружает список городов и таблицу категорий из YAML файла
func LoadGeoData(filePath string) (*classify.GeoData, error) {
	if filePath == "" {
		return nil, fmt.Errorf("geo data file path is empty")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("geo data file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geo data file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close geo data file: %v", closeErr)
		}
	}()

	var geo classify.GeoData
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&geo); err != nil {
		return nil, fmt.Errorf("failed to parse geo data YAML: %w", err)
	}

	if err := validateGeoData(&geo); err != nil {
		return nil, err
	}

	return &geo, nil
}

// LoadGeo загружает geo_file; относительный путь берётся от каталога конфига
func (c *Config) LoadGeo() (*classify.GeoData, error) {
	filePath := c.GeoFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(c.baseDir, filePath)
	}
	return LoadGeoData(filePath)
}

func validateGeoData(g *classify.GeoData) error {
	if len(g.Cities) == 0 {
		return fmt.Errorf("cities is required")
	}
	if len(g.Categories) == 0 {
		return fmt.Errorf("categories is required")
	}
	seen := make(map[string]bool, len(g.Categories))
	for i, cat := range g.Categories {
		if cat.Name == "" {
			return fmt.Errorf("categories[%d].name is required", i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category: %s", cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}
