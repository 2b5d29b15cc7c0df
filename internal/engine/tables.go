package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	CategorySavings       = "savings"
	CategoryHousing       = "housing"
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryHealthcare    = "healthcare"
	CategoryEntertainment = "entertainment"
	CategoryShopping      = "shopping"

	defaultCityKey = "default"
)

type CategoryDefinition struct {
	Key            string  `toml:"key" json:"key"`
	BasePercentage float64 `toml:"base_percentage" json:"basePercentage"`
	Name           string  `toml:"name" json:"name"`
	Icon           string  `toml:"icon" json:"icon"`
	Color          string  `toml:"color" json:"color"`
	Description    string  `toml:"description" json:"description"`
}

// Multipliers maps a category key to its adjustment factor.
type Multipliers map[string]float64

// Lookup возвращает множитель категории и признак того, что он задан явно.
func (m Multipliers) Lookup(key string) (float64, bool) {
	value, ok := m[key]
	return value, ok
}

// Factor возвращает множитель категории или нейтральный 1.0, если он не задан.
func (m Multipliers) Factor(key string) float64 {
	if value, ok := m.Lookup(key); ok {
		return value
	}
	return 1.0
}

// Bracket covers the half-open range [Min, Max); Max == 0 means unbounded.
type Bracket struct {
	Name        string      `toml:"name"`
	Min         float64     `toml:"min"`
	Max         float64     `toml:"max"`
	Multipliers Multipliers `toml:"multipliers"`
}

func (b Bracket) contains(value float64) bool {
	if value < b.Min {
		return false
	}
	return b.Max == 0 || value < b.Max
}

type Band struct {
	Min   float64 `toml:"min" json:"min"`
	Max   float64 `toml:"max" json:"max"`
	Ideal float64 `toml:"ideal" json:"ideal"`
}

type BalanceSettings struct {
	SavingsKey    string  `toml:"savings_key"`
	SavingsFloor  float64 `toml:"savings_floor"`
	CategoryFloor float64 `toml:"category_floor"`
	Tolerance     int64   `toml:"tolerance"`
}

// Tables is the immutable configuration the engine is built from.
type Tables struct {
	Currency    string                 `toml:"currency"`
	Balancing   BalanceSettings        `toml:"balancing"`
	Categories  []CategoryDefinition   `toml:"categories"`
	Cities      map[string]Multipliers `toml:"cities"`
	CityAliases map[string]string      `toml:"city_aliases"`
	FamilySizes []Bracket              `toml:"family_sizes"`
	Incomes     []Bracket              `toml:"incomes"`
	Ages        []Bracket              `toml:"ages"`
	Rules       map[string]Band        `toml:"rules"`
}

// DefaultTables возвращает встроенные таблицы категорий, множителей и правил оценки.
func DefaultTables() Tables {
	return Tables{
		Currency: "INR",
		Balancing: BalanceSettings{
			SavingsKey:    CategorySavings,
			SavingsFloor:  0.05,
			CategoryFloor: 0.02,
			Tolerance:     1,
		},
		Categories: []CategoryDefinition{
			{Key: CategoryHousing, BasePercentage: 0.30, Name: "Housing", Icon: "🏠", Color: "#4F46E5", Description: "Rent or EMI, maintenance and utilities"},
			{Key: CategoryFood, BasePercentage: 0.20, Name: "Food & Groceries", Icon: "🛒", Color: "#16A34A", Description: "Groceries, household staples and eating out"},
			{Key: CategoryTransport, BasePercentage: 0.10, Name: "Transport", Icon: "🚌", Color: "#F59E0B", Description: "Fuel, public transport, cabs and vehicle upkeep"},
			{Key: CategoryHealthcare, BasePercentage: 0.07, Name: "Healthcare", Icon: "🩺", Color: "#DC2626", Description: "Medicines, consultations and insurance premiums"},
			{Key: CategoryEntertainment, BasePercentage: 0.08, Name: "Entertainment", Icon: "🎬", Color: "#DB2777", Description: "Outings, subscriptions and hobbies"},
			{Key: CategoryShopping, BasePercentage: 0.05, Name: "Shopping", Icon: "🛍️", Color: "#0891B2", Description: "Clothing, gadgets and personal care"},
			{Key: CategorySavings, BasePercentage: 0.20, Name: "Savings & Investments", Icon: "💰", Color: "#059669", Description: "Emergency fund, investments and long-term goals"},
		},
		Cities: map[string]Multipliers{
			defaultCityKey: {},
			"mumbai":       {CategoryHousing: 1.5, CategoryFood: 1.1, CategoryTransport: 1.1, CategoryEntertainment: 1.1},
			"delhi":        {CategoryHousing: 1.3, CategoryFood: 1.05, CategoryTransport: 1.15},
			"bangalore":    {CategoryHousing: 1.35, CategoryTransport: 1.1, CategoryEntertainment: 1.1},
			"chennai":      {CategoryHousing: 1.15, CategoryFood: 0.95},
			"hyderabad":    {CategoryHousing: 1.1, CategoryFood: 0.95},
			"pune":         {CategoryHousing: 1.15, CategoryEntertainment: 1.05},
			"kolkata":      {CategoryHousing: 0.95, CategoryFood: 0.95, CategoryTransport: 0.9},
		},
		CityAliases: map[string]string{
			"bengaluru": "bangalore",
			"new delhi": "delhi",
			"bombay":    "mumbai",
			"calcutta":  "kolkata",
			"madras":    "chennai",
		},
		FamilySizes: []Bracket{
			{Name: "single", Min: 1, Max: 2, Multipliers: Multipliers{CategoryHousing: 0.9, CategoryFood: 0.8, CategoryHealthcare: 0.8, CategoryEntertainment: 1.2, CategoryShopping: 1.1}},
			{Name: "couple", Min: 2, Max: 3, Multipliers: Multipliers{}},
			{Name: "small", Min: 3, Max: 5, Multipliers: Multipliers{CategoryHousing: 1.1, CategoryFood: 1.2, CategoryHealthcare: 1.2, CategoryEntertainment: 0.9, CategoryShopping: 0.9}},
			{Name: "large", Min: 5, Multipliers: Multipliers{CategoryHousing: 1.2, CategoryFood: 1.4, CategoryHealthcare: 1.3, CategoryTransport: 1.1, CategoryEntertainment: 0.8, CategoryShopping: 0.8}},
		},
		Incomes: []Bracket{
			{Name: "low", Min: 0, Max: 30000, Multipliers: Multipliers{CategorySavings: 0.6, CategoryFood: 1.1, CategoryHousing: 1.05, CategoryEntertainment: 0.7, CategoryShopping: 0.7}},
			{Name: "middle", Min: 30000, Max: 75000, Multipliers: Multipliers{}},
			{Name: "upper", Min: 75000, Max: 150000, Multipliers: Multipliers{CategorySavings: 1.2, CategoryFood: 0.9, CategoryEntertainment: 1.1, CategoryShopping: 1.1}},
			{Name: "high", Min: 150000, Multipliers: Multipliers{CategorySavings: 1.4, CategoryHousing: 0.9, CategoryFood: 0.7, CategoryEntertainment: 1.2, CategoryShopping: 1.2}},
		},
		Ages: []Bracket{
			{Name: "young", Min: 18, Max: 30, Multipliers: Multipliers{CategoryEntertainment: 1.25, CategoryHealthcare: 0.85}},
			{Name: "prime", Min: 30, Max: 45, Multipliers: Multipliers{}},
			{Name: "mid", Min: 45, Max: 60, Multipliers: Multipliers{CategoryHealthcare: 1.3, CategoryEntertainment: 0.9, CategorySavings: 1.1}},
			{Name: "senior", Min: 60, Multipliers: Multipliers{CategoryHealthcare: 1.6, CategoryTransport: 0.8, CategoryEntertainment: 0.8, CategoryShopping: 0.8}},
		},
		Rules: map[string]Band{
			CategorySavings:       {Min: 10, Max: 40, Ideal: 20},
			CategoryHousing:       {Min: 20, Max: 45, Ideal: 30},
			CategoryFood:          {Min: 15, Max: 35, Ideal: 25},
			CategoryTransport:     {Min: 5, Max: 20, Ideal: 10},
			CategoryHealthcare:    {Min: 3, Max: 15, Ideal: 7},
			CategoryEntertainment: {Min: 2, Max: 15, Ideal: 8},
			CategoryShopping:      {Min: 2, Max: 15, Ideal: 5},
		},
	}
}

// LoadTables читает таблицы из TOML-файла. Секции, которых нет в файле, берутся из DefaultTables.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables %s: %w", path, err)
	}

	return ParseTables(string(data))
}

// ParseTables разбирает таблицы из TOML-строки поверх значений по умолчанию.
func ParseTables(data string) (Tables, error) {
	var parsed Tables
	meta, err := toml.Decode(data, &parsed)
	if err != nil {
		return Tables{}, fmt.Errorf("parse tables: %w", err)
	}

	tables := DefaultTables()
	if meta.IsDefined("currency") {
		tables.Currency = parsed.Currency
	}
	if meta.IsDefined("balancing") {
		if meta.IsDefined("balancing", "savings_key") {
			tables.Balancing.SavingsKey = parsed.Balancing.SavingsKey
		}
		if meta.IsDefined("balancing", "savings_floor") {
			tables.Balancing.SavingsFloor = parsed.Balancing.SavingsFloor
		}
		if meta.IsDefined("balancing", "category_floor") {
			tables.Balancing.CategoryFloor = parsed.Balancing.CategoryFloor
		}
		if meta.IsDefined("balancing", "tolerance") {
			tables.Balancing.Tolerance = parsed.Balancing.Tolerance
		}
	}
	if meta.IsDefined("categories") {
		tables.Categories = parsed.Categories
	}
	if meta.IsDefined("cities") {
		tables.Cities = parsed.Cities
	}
	if meta.IsDefined("city_aliases") {
		tables.CityAliases = parsed.CityAliases
	}
	if meta.IsDefined("family_sizes") {
		tables.FamilySizes = parsed.FamilySizes
	}
	if meta.IsDefined("incomes") {
		tables.Incomes = parsed.Incomes
	}
	if meta.IsDefined("ages") {
		tables.Ages = parsed.Ages
	}
	if meta.IsDefined("rules") {
		tables.Rules = parsed.Rules
	}

	if err := tables.Validate(); err != nil {
		return Tables{}, err
	}

	return tables.normalized(), nil
}

// WriteTables сериализует таблицы в TOML.
func WriteTables(w io.Writer, tables Tables) error {
	return toml.NewEncoder(w).Encode(tables)
}

// Validate проверяет согласованность таблиц.
func (t Tables) Validate() error {
	if len(t.Categories) == 0 {
		return errors.New("tables: at least one category is required")
	}

	seen := make(map[string]struct{}, len(t.Categories))
	for _, category := range t.Categories {
		key := strings.TrimSpace(category.Key)
		if key == "" {
			return errors.New("tables: category key is required")
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("tables: duplicate category %q", key)
		}
		seen[key] = struct{}{}

		if category.BasePercentage < 0 || category.BasePercentage > 1 || math.IsNaN(category.BasePercentage) {
			return fmt.Errorf("tables: base percentage of %q must be within [0, 1]", key)
		}
	}

	if _, ok := seen[t.Balancing.SavingsKey]; !ok {
		return fmt.Errorf("tables: savings category %q is not defined", t.Balancing.SavingsKey)
	}
	if t.Balancing.SavingsFloor < 0 || t.Balancing.SavingsFloor >= 1 {
		return errors.New("tables: savings floor must be within [0, 1)")
	}
	if t.Balancing.CategoryFloor < 0 || t.Balancing.CategoryFloor >= 1 {
		return errors.New("tables: category floor must be within [0, 1)")
	}
	if t.Balancing.Tolerance < 0 {
		return errors.New("tables: tolerance cannot be negative")
	}

	for name, multipliers := range t.Cities {
		if err := validateMultipliers("city "+name, multipliers); err != nil {
			return err
		}
	}
	for _, group := range []struct {
		name     string
		brackets []Bracket
	}{
		{"family size", t.FamilySizes},
		{"income", t.Incomes},
		{"age", t.Ages},
	} {
		for _, bracket := range group.brackets {
			if bracket.Max != 0 && bracket.Max <= bracket.Min {
				return fmt.Errorf("tables: %s bracket %q has max <= min", group.name, bracket.Name)
			}
			if err := validateMultipliers(group.name+" "+bracket.Name, bracket.Multipliers); err != nil {
				return err
			}
		}
	}

	for key, band := range t.Rules {
		if band.Min > band.Max || band.Ideal < band.Min || band.Ideal > band.Max {
			return fmt.Errorf("tables: rule for %q must satisfy min <= ideal <= max", key)
		}
	}

	return nil
}

func validateMultipliers(owner string, multipliers Multipliers) error {
	for key, value := range multipliers {
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("tables: %s multiplier for %q must be a non-negative number", owner, key)
		}
	}
	return nil
}

// normalized returns a deep copy with lower-cased city keys.
func (t Tables) normalized() Tables {
	out := t
	out.Categories = append([]CategoryDefinition(nil), t.Categories...)

	out.Cities = make(map[string]Multipliers, len(t.Cities))
	for name, multipliers := range t.Cities {
		out.Cities[normalizeCity(name)] = cloneMultipliers(multipliers)
	}

	out.CityAliases = make(map[string]string, len(t.CityAliases))
	for alias, target := range t.CityAliases {
		out.CityAliases[normalizeCity(alias)] = normalizeCity(target)
	}

	out.FamilySizes = cloneBrackets(t.FamilySizes)
	out.Incomes = cloneBrackets(t.Incomes)
	out.Ages = cloneBrackets(t.Ages)

	out.Rules = make(map[string]Band, len(t.Rules))
	for key, band := range t.Rules {
		out.Rules[key] = band
	}

	return out
}

// CategoryKeys возвращает ключи категорий в порядке объявления.
func (t Tables) CategoryKeys() []string {
	keys := make([]string, 0, len(t.Categories))
	for _, category := range t.Categories {
		keys = append(keys, category.Key)
	}
	return keys
}

func cloneMultipliers(m Multipliers) Multipliers {
	out := make(Multipliers, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

func cloneBrackets(brackets []Bracket) []Bracket {
	out := make([]Bracket, 0, len(brackets))
	for _, bracket := range brackets {
		bracket.Multipliers = cloneMultipliers(bracket.Multipliers)
		out = append(out, bracket)
	}
	return out
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
