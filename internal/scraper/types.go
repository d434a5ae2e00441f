package scraper

// ScientistRef — строка таблицы со списком учёных
type ScientistRef struct {
	Name string
	Link string
}

// ScientistRecord — итоговая запись по сохранённой странице
type ScientistRecord struct {
	Name       string
	City       string
	ArticleLen int
}

// Selectors описывает разметку страниц биографий
type Selectors struct {
	Title    string   `yaml:"title_selector"`
	Infobox  string   `yaml:"infobox_selector"`
	Keywords []string `yaml:"keywords"`
}
