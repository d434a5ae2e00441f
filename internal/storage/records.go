package storage

import (
	"errors"
	"fmt"
	"strings"

	"sciloc/internal/scraper"
)

// ErrMalformedRecord — строка файла записей не делится ровно на имя и город.
// Формат не экранирует запятые, поэтому имя с запятой ломает разбор.
var ErrMalformedRecord = errors.New("malformed record")

// FormatRecords сериализует записи в строки "name,city\n"
func FormatRecords(records []scraper.ScientistRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Name)
		b.WriteByte(',')
		b.WriteString(r.City)
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseRecords разбирает содержимое файла записей. Пустые строки пропускаются.
// ArticleLen в файле не хранится и остаётся нулевым.
func ParseRecords(data string) ([]scraper.ScientistRecord, error) {
	var records []scraper.ScientistRecord
	for i, line := range strings.Split(data, "\n") {
		rec, ok, err := parseLine(i+1, line)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// MalformedLine — строка, пропущенная при нестрогом разборе
type MalformedLine struct {
	Line int
	Text string
}

// ParseRecordsLenient разбирает файл записей, пропуская битые строки.
// Пропущенные строки возвращаются вторым значением.
func ParseRecordsLenient(data string) ([]scraper.ScientistRecord, []MalformedLine) {
	var (
		records []scraper.ScientistRecord
		bad     []MalformedLine
	)
	for i, line := range strings.Split(data, "\n") {
		rec, ok, err := parseLine(i+1, line)
		if err != nil {
			bad = append(bad, MalformedLine{Line: i + 1, Text: strings.TrimSpace(line)})
			continue
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, bad
}

func parseLine(n int, line string) (scraper.ScientistRecord, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return scraper.ScientistRecord{}, false, nil
	}
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return scraper.ScientistRecord{}, false, fmt.Errorf("line %d: %q: %w", n, line, ErrMalformedRecord)
	}
	return scraper.ScientistRecord{Name: fields[0], City: fields[1]}, true, nil
}

// WriteRecords сохраняет записи в файл
func WriteRecords(path string, records []scraper.ScientistRecord) error {
	return WriteFileAtomic(path, FormatRecords(records))
}

// ReadRecords читает файл записей
func ReadRecords(path string) ([]scraper.ScientistRecord, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecords(data)
}

// ReadRecordsLenient читает файл записей, пропуская битые строки
func ReadRecordsLenient(path string) ([]scraper.ScientistRecord, []MalformedLine, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	records, bad := ParseRecordsLenient(data)
	return records, bad, nil
}
