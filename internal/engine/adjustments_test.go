package engine

import (
	"math"
	"testing"
)

// TestResolveCity проверяет поиск города по псевдониму, точному имени и записи default.
func TestResolveCity(t *testing.T) {
	resolver := NewAdjustmentResolver(DefaultTables().normalized())

	cases := map[string]string{
		"Bengaluru":      "bangalore",
		"  NEW   Delhi ": "delhi",
		"Mumbai":         "mumbai",
		"Atlantis":       defaultCityKey,
		"":               defaultCityKey,
	}
	for city, want := range cases {
		adjustments := resolver.Resolve(city, 2, 60000, 35)
		if adjustments.CityKey != want {
			t.Fatalf("%q: expected %q, got %q", city, want, adjustments.CityKey)
		}
	}
}

// TestResolveWithoutDefaultCity проверяет нейтральные множители без записи default.
func TestResolveWithoutDefaultCity(t *testing.T) {
	tables := DefaultTables()
	delete(tables.Cities, defaultCityKey)
	resolver := NewAdjustmentResolver(tables.normalized())

	adjustments := resolver.Resolve("Atlantis", 2, 60000, 35)

	if adjustments.CityKey != "" {
		t.Fatalf("expected no matched city, got %q", adjustments.CityKey)
	}
	for _, key := range tables.CategoryKeys() {
		if adjustments.City[key] != 1.0 {
			t.Fatalf("%s: expected neutral multiplier, got %v", key, adjustments.City[key])
		}
	}
}

// TestResolveBrackets проверяет полуоткрытые границы диапазонов.
func TestResolveBrackets(t *testing.T) {
	resolver := NewAdjustmentResolver(DefaultTables().normalized())

	cases := []struct {
		family int
		income float64
		age    int
		want   [3]string
	}{
		{family: 1, income: 29999.99, age: 18, want: [3]string{"single", "low", "young"}},
		{family: 2, income: 30000, age: 30, want: [3]string{"couple", "middle", "prime"}},
		{family: 3, income: 75000, age: 45, want: [3]string{"small", "upper", "mid"}},
		{family: 20, income: 150000, age: 100, want: [3]string{"large", "high", "senior"}},
	}
	for _, tc := range cases {
		adjustments := resolver.Resolve("", tc.family, tc.income, tc.age)
		got := [3]string{adjustments.FamilyBucket, adjustments.IncomeBracket, adjustments.AgeBracket}
		if got != tc.want {
			t.Fatalf("family %d income %v age %d: expected %v, got %v", tc.family, tc.income, tc.age, tc.want, got)
		}
	}
}

// TestCombinedMultiplier проверяет произведение множителей и заполнение всех категорий.
func TestCombinedMultiplier(t *testing.T) {
	resolver := NewAdjustmentResolver(DefaultTables().normalized())

	adjustments := resolver.Resolve("mumbai", 1, 60000, 35)

	if got := adjustments.Combined(CategoryHousing); math.Abs(got-1.35) > 1e-9 {
		t.Fatalf("expected housing multiplier 1.35, got %v", got)
	}
	if got := adjustments.Combined(CategorySavings); got != 1.0 {
		t.Fatalf("expected neutral savings multiplier, got %v", got)
	}
	for _, table := range []Multipliers{adjustments.City, adjustments.Family, adjustments.Income, adjustments.Age} {
		if len(table) != len(DefaultTables().Categories) {
			t.Fatalf("expected a multiplier for every category, got %v", table)
		}
	}
}
