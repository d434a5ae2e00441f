package classify

import "testing"

func testGeo() *GeoData {
	return &GeoData{
		Cities: []string{"تهران", "اصفهان", "نیشابور", "توس"},
		Categories: []Category{
			{Name: "center", Cities: []string{"تهران"}},
			{Name: "other", Cities: []string{"اصفهان"}},
			{Name: "khorasan", Cities: []string{"نیشابور", "توس"}},
		},
	}
}

func TestMatch(t *testing.T) {
	c := NewCategorizer(testGeo())

	tests := []struct {
		name   string
		places []string
		want   string
		wantOK bool
	}{
		{"single known", []string{"تهران"}, "تهران", true},
		{"first known wins", []string{"روستا", "توس", "نیشابور"}, "توس", true},
		{"list order not table order", []string{"نیشابور", "تهران"}, "نیشابور", true},
		{"none known", []string{"بغداد", "دمشق"}, "", false},
		{"empty", nil, "", false},
		{"no fuzzy match", []string{"تهران "}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Match(tt.places)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Match(%q) = (%q, %v), want (%q, %v)", tt.places, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchDeterministic(t *testing.T) {
	c := NewCategorizer(testGeo())
	places := []string{"قریه", "اصفهان", "تهران"}

	first, _ := c.Match(places)
	for i := 0; i < 50; i++ {
		got, _ := c.Match(places)
		if got != first {
			t.Fatalf("Match not deterministic: %q != %q", got, first)
		}
	}
}

func TestCountCategories(t *testing.T) {
	c := NewCategorizer(&GeoData{
		Cities: []string{"تهران", "اصفهان"},
		Categories: []Category{
			{Name: "center", Cities: []string{"تهران"}},
			{Name: "other", Cities: []string{"اصفهان"}},
		},
	})

	counts := c.CountCategories([]string{"تهران", "اصفهان", "نامشخص"})

	want := map[string]int{"center": 1, "other": 1}
	if len(counts) != len(want) {
		t.Fatalf("got %d categories, want %d", len(counts), len(want))
	}
	for _, cc := range counts {
		if want[cc.Name] != cc.Count {
			t.Errorf("category %q = %d, want %d", cc.Name, cc.Count, want[cc.Name])
		}
	}
	if Total(counts) != 2 {
		t.Errorf("Total = %d, want 2", Total(counts))
	}
}

func TestCountCategoriesKeepsZeroAndOrder(t *testing.T) {
	c := NewCategorizer(testGeo())

	counts := c.CountCategories([]string{"توس", "نیشابور", "توس"})

	wantNames := []string{"center", "other", "khorasan"}
	wantCounts := []int{0, 0, 3}
	for i, cc := range counts {
		if cc.Name != wantNames[i] || cc.Count != wantCounts[i] {
			t.Errorf("counts[%d] = %+v, want {%s %d}", i, cc, wantNames[i], wantCounts[i])
		}
	}
}

func TestCountCategoriesCityInTwoCategories(t *testing.T) {
	c := NewCategorizer(&GeoData{
		Cities: []string{"ری"},
		Categories: []Category{
			{Name: "a", Cities: []string{"ری"}},
			{Name: "b", Cities: []string{"ری"}},
		},
	})

	counts := c.CountCategories([]string{"ری"})
	if counts[0].Count != 1 || counts[1].Count != 1 {
		t.Errorf("expected both categories to count the city, got %+v", counts)
	}
}
