package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const pageExt = ".html"

// PageStore — каталог с HTML страницами, один файл на индекс (1.html, 2.html, ...)
type PageStore struct {
	dir string
}

func NewPageStore(dir string) *PageStore {
	return &PageStore{dir: dir}
}

// Path возвращает путь к файлу страницы
func (s *PageStore) Path(index int) string {
	return filepath.Join(s.dir, strconv.Itoa(index)+pageExt)
}

// Has проверяет, сохранена ли страница
func (s *PageStore) Has(index int) bool {
	return FileExists(s.Path(index))
}

// Save записывает HTML страницы (через временный файл)
func (s *PageStore) Save(index int, html string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}
	return WriteFileAtomic(s.Path(index), html)
}

// Read читает страницу
func (s *PageStore) Read(index int) (string, error) {
	return ReadFile(s.Path(index))
}

// Indexes возвращает индексы сохранённых страниц по возрастанию.
// Посторонние файлы в каталоге пропускаются.
func (s *PageStore) Indexes() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pages dir: %w", err)
	}

	var indexes []int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), pageExt) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(entry.Name(), pageExt))
		if err != nil || n < 1 {
			continue
		}
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)
	return indexes, nil
}

// FileExists — проверка существования файла или каталога
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile читает UTF-8 файл целиком
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFileAtomic пишет во временный файл и переименовывает его
func WriteFileAtomic(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	return nil
}
