package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// birthplaceNoise — пометки календаря и пунктуация, которые встречаются
// в поле места рождения рядом с названием города. Порядок важен.
var birthplaceNoise = []string{
	"هجری",
	"خورشیدی",
	"مـ.",
	"هـ.",
	"میلادی",
	"قمری",
	"(",
	")",
	"'",
	"[",
	"]",
	"ه.ق",
}

const arabicComma = "،"

// CleanBirthplace убирает календарные пометки, скобки и все цифры (любой
// письменности). Повторяется до неподвижной точки, поэтому повторный вызов
// на уже очищенной строке ничего не меняет.
func CleanBirthplace(raw string) string {
	text := raw
	for {
		next := cleanOnce(text)
		if next == text {
			return text
		}
		text = next
	}
}

func cleanOnce(text string) string {
	text = strings.ReplaceAll(text, arabicComma, " ")
	for _, noise := range birthplaceNoise {
		text = strings.ReplaceAll(text, noise, "")
	}
	return stripDigits(text)
}

// stripDigits удаляет десятичные цифры Unicode (۰-۹, ٠-٩, 0-9 и т.д.)
func stripDigits(text string) string {
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Nd)), text)
	if err != nil {
		return text
	}
	return out
}

// SplitPlaces делит очищенный текст на кандидаты-топонимы
func SplitPlaces(cleaned string) []string {
	fields := strings.Fields(cleaned)
	places := make([]string, 0, len(fields))
	for _, f := range fields {
		if p := strings.TrimSpace(f); p != "" {
			places = append(places, p)
		}
	}
	return places
}

// Places = SplitPlaces(CleanBirthplace(raw))
func Places(raw string) []string {
	return SplitPlaces(CleanBirthplace(strings.TrimSpace(raw)))
}

// VisibleText возвращает текст документа без содержимого script/style/template.
// Исходный документ не изменяется.
func VisibleText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, template").Remove()
	return clone.Text()
}

// VisibleTextLen — длина видимого текста в символах (рунах), не в байтах
func VisibleTextLen(doc *goquery.Document) int {
	return utf8.RuneCountInString(VisibleText(doc))
}
