package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sciloc/internal/classify"
	"sciloc/internal/normalize"
)

// Extractor достаёт имя и город рождения со страницы биографии
type Extractor struct {
	selectors   *Selectors
	categorizer *classify.Categorizer
	unknownCity string
}

func NewExtractor(selectors *Selectors, categorizer *classify.Categorizer, unknownCity string) *Extractor {
	return &Extractor{
		selectors:   selectors,
		categorizer: categorizer,
		unknownCity: unknownCity,
	}
}

// ParseDocument разбирает HTML страницы
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// HasInfobox проверяет наличие карточки-инфобокса
func (e *Extractor) HasInfobox(doc *goquery.Document) bool {
	return doc.Find(e.selectors.Infobox).Length() > 0
}

// Name возвращает заголовок страницы или пустую строку
func (e *Extractor) Name(doc *goquery.Document) string {
	found := doc.Find(e.selectors.Title).First()
	if found.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

// City ищет в инфобоксе заголовок по ключевым словам в порядке приоритета.
// Берётся только первое найденное поле: если город в нём не распознан,
// следующие ключевые слова не проверяются.
func (e *Extractor) City(doc *goquery.Document) string {
	infobox := doc.Find(e.selectors.Infobox).First()
	if infobox.Length() == 0 {
		return e.unknownCity
	}

	for _, keyword := range e.selectors.Keywords {
		header := findHeader(infobox, keyword)
		if header == nil {
			continue
		}

		raw := strings.TrimSpace(header.Next().Text())
		if city, ok := e.categorizer.Match(normalize.Places(raw)); ok {
			return city
		}
		return e.unknownCity
	}

	return e.unknownCity
}

// Extract собирает запись по документу
func (e *Extractor) Extract(doc *goquery.Document) ScientistRecord {
	return ScientistRecord{
		Name:       e.Name(doc),
		City:       e.City(doc),
		ArticleLen: normalize.VisibleTextLen(doc),
	}
}

// findHeader — первая ячейка th с текстом, точно равным keyword
func findHeader(infobox *goquery.Selection, keyword string) *goquery.Selection {
	var found *goquery.Selection
	infobox.Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if th.Text() == keyword {
			found = th
			return false
		}
		return true
	})
	return found
}
