package checksum

import (
	"crypto/sha256"
	"fmt"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GeneratePageHash генерирует SHA256 хеш сохранённой страницы
// Формула: SHA256(link|html)
func (g *Generator) GeneratePageHash(link, html string) string {
	content := fmt.Sprintf("%s|%s", link, html)

	hash := sha256.Sum256([]byte(content))

	return fmt.Sprintf("%x", hash)
}

// VerifyPageHash проверяет соответствие хеша
func (g *Generator) VerifyPageHash(expectedHash, link, html string) bool {
	return g.GeneratePageHash(link, html) == expectedHash
}
