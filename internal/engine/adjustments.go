package engine

// Adjustments holds one multiplier map per dimension, each defined for every category key.
type Adjustments struct {
	City   Multipliers
	Family Multipliers
	Income Multipliers
	Age    Multipliers

	// Matched entry names; empty means the neutral table was used.
	CityKey       string
	FamilyBucket  string
	IncomeBracket string
	AgeBracket    string
}

// Combined возвращает итоговый множитель категории как произведение четырех измерений.
func (a Adjustments) Combined(key string) float64 {
	return a.City.Factor(key) * a.Family.Factor(key) * a.Income.Factor(key) * a.Age.Factor(key)
}

type AdjustmentResolver struct {
	tables Tables
	keys   []string
}

// NewAdjustmentResolver создает резолвер множителей поверх таблиц.
func NewAdjustmentResolver(tables Tables) AdjustmentResolver {
	return AdjustmentResolver{tables: tables, keys: tables.CategoryKeys()}
}

// Resolve подбирает множители по городу, размеру семьи, доходу и возрасту.
// Неизвестные значения никогда не приводят к ошибке: используется запись "default" или 1.0.
func (r AdjustmentResolver) Resolve(city string, familySize int, monthlyIncome float64, age int) Adjustments {
	cityKey, cityTable, _ := r.lookupCity(city)
	familyName, familyTable, _ := lookupBracket(r.tables.FamilySizes, float64(familySize))
	incomeName, incomeTable, _ := lookupBracket(r.tables.Incomes, monthlyIncome)
	ageName, ageTable, _ := lookupBracket(r.tables.Ages, float64(age))

	return Adjustments{
		City:          r.complete(cityTable),
		Family:        r.complete(familyTable),
		Income:        r.complete(incomeTable),
		Age:           r.complete(ageTable),
		CityKey:       cityKey,
		FamilyBucket:  familyName,
		IncomeBracket: incomeName,
		AgeBracket:    ageName,
	}
}

// lookupCity resolves aliases first, then the exact city, then the default entry.
// ok is false only when even the default entry is missing.
func (r AdjustmentResolver) lookupCity(city string) (string, Multipliers, bool) {
	name := normalizeCity(city)
	if target, ok := r.tables.CityAliases[name]; ok {
		name = target
	}

	if table, ok := r.tables.Cities[name]; ok {
		return name, table, true
	}
	if table, ok := r.tables.Cities[defaultCityKey]; ok {
		return defaultCityKey, table, true
	}

	return "", nil, false
}

func lookupBracket(brackets []Bracket, value float64) (string, Multipliers, bool) {
	for _, bracket := range brackets {
		if bracket.contains(value) {
			return bracket.Name, bracket.Multipliers, true
		}
	}
	return "", nil, false
}

// complete fills every category key so downstream code never sees a missing entry.
func (r AdjustmentResolver) complete(table Multipliers) Multipliers {
	out := make(Multipliers, len(r.keys))
	for _, key := range r.keys {
		out[key] = table.Factor(key)
	}
	return out
}
