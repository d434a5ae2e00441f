package classify

// GeoData — внешние справочные данные: известные города и таблица категорий.
// Порядок категорий сохраняется и используется при выводе диаграммы.
type GeoData struct {
	Cities     []string   `yaml:"cities"`
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name   string   `yaml:"name"`
	Cities []string `yaml:"cities"`
}

type CategoryCount struct {
	Name  string
	Count int
}

// Categorizer сопоставляет топонимы со списком известных городов
type Categorizer struct {
	cities     map[string]struct{}
	categories []categorySet
}

type categorySet struct {
	name    string
	members map[string]struct{}
}

func NewCategorizer(geo *GeoData) *Categorizer {
	c := &Categorizer{
		cities: make(map[string]struct{}, len(geo.Cities)),
	}
	for _, city := range geo.Cities {
		c.cities[city] = struct{}{}
	}
	for _, cat := range geo.Categories {
		set := categorySet{
			name:    cat.Name,
			members: make(map[string]struct{}, len(cat.Cities)),
		}
		for _, city := range cat.Cities {
			set.members[city] = struct{}{}
		}
		c.categories = append(c.categories, set)
	}
	return c
}

// Match возвращает первый токен (в порядке списка), который является известным городом
func (c *Categorizer) Match(places []string) (string, bool) {
	for _, place := range places {
		if _, ok := c.cities[place]; ok {
			return place, true
		}
	}
	return "", false
}

// CountCategories считает записи по категориям.
// Каждая категория присутствует в результате, даже с нулём.
// Город, не входящий ни в одну категорию, не учитывается; город из нескольких
// категорий учитывается в каждой.
func (c *Categorizer) CountCategories(cities []string) []CategoryCount {
	counts := make([]CategoryCount, len(c.categories))
	for i, cat := range c.categories {
		counts[i].Name = cat.name
		for _, city := range cities {
			if _, ok := cat.members[city]; ok {
				counts[i].Count++
			}
		}
	}
	return counts
}

// Total суммирует счётчики
func Total(counts []CategoryCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}
