package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTable — на странице списка нет таблицы; продолжать нельзя
var ErrNoTable = errors.New("no table found")

// ParseListing извлекает пары (имя, ссылка) из первой таблицы документа.
// Порядок совпадает с порядком строк и задаёт индексы сохранённых страниц.
func ParseListing(html, baseURL string) ([]ScientistRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	var refs []ScientistRef
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cell := row.Find("td").Eq(1)
		if cell.Length() == 0 {
			return // заголовок или неполная строка
		}

		href, exists := cell.Find("a").First().Attr("href")
		if !exists || href == "" {
			return
		}

		refs = append(refs, ScientistRef{
			Name: strings.TrimSpace(cell.Text()),
			Link: baseURL + href,
		})
	})

	return refs, nil
}
