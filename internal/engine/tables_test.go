package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseTablesOverlay проверяет, что заданные секции заменяют значения по умолчанию.
func TestParseTablesOverlay(t *testing.T) {
	tables, err := ParseTables(`
currency = "USD"

[balancing]
tolerance = 5

[cities.Gotham]
housing = 2.0
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tables.Currency != "USD" || tables.Balancing.Tolerance != 5 {
		t.Fatalf("unexpected overlay %+v", tables.Balancing)
	}
	if tables.Balancing.SavingsFloor != 0.05 || tables.Balancing.SavingsKey != CategorySavings {
		t.Fatalf("expected default balancing values to survive, got %+v", tables.Balancing)
	}
	if len(tables.Cities) != 1 || tables.Cities["gotham"][CategoryHousing] != 2.0 {
		t.Fatalf("expected only the gotham city, got %v", tables.Cities)
	}
	if len(tables.Categories) != len(DefaultTables().Categories) {
		t.Fatal("expected default categories")
	}
}

// TestWriteTablesRoundTrip проверяет, что выгруженные таблицы читаются обратно.
func TestWriteTablesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTables(&buf, DefaultTables()); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tables.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tables, err := LoadTables(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if tables.Currency != "INR" || len(tables.Categories) != 7 {
		t.Fatalf("unexpected tables %+v", tables)
	}
	if tables.Cities["mumbai"][CategoryHousing] != 1.5 {
		t.Fatalf("expected mumbai housing 1.5, got %v", tables.Cities["mumbai"])
	}
	if tables.CityAliases["bengaluru"] != "bangalore" {
		t.Fatalf("expected alias to survive, got %v", tables.CityAliases)
	}
	if tables.Rules[CategorySavings] != (Band{Min: 10, Max: 40, Ideal: 20}) {
		t.Fatalf("unexpected savings rule %+v", tables.Rules[CategorySavings])
	}
	if len(tables.Ages) != 4 || tables.Ages[0].Multipliers[CategoryEntertainment] != 1.25 {
		t.Fatalf("unexpected age brackets %+v", tables.Ages)
	}
}

// TestLoadTablesMissingFile проверяет ошибку для отсутствующего файла.
func TestLoadTablesMissingFile(t *testing.T) {
	if _, err := LoadTables(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error")
	}
}

// TestTablesValidate проверяет отказ для несогласованных таблиц.
func TestTablesValidate(t *testing.T) {
	cases := map[string]func(*Tables){
		"duplicate category": func(tables *Tables) {
			tables.Categories = append(tables.Categories, tables.Categories[0])
		},
		"missing savings": func(tables *Tables) {
			tables.Balancing.SavingsKey = "pension"
		},
		"base percentage": func(tables *Tables) {
			tables.Categories[0].BasePercentage = 1.5
		},
		"savings floor": func(tables *Tables) {
			tables.Balancing.SavingsFloor = 1
		},
		"negative tolerance": func(tables *Tables) {
			tables.Balancing.Tolerance = -1
		},
		"bracket bounds": func(tables *Tables) {
			tables.Ages[0].Max = tables.Ages[0].Min
		},
		"negative multiplier": func(tables *Tables) {
			tables.Cities["mumbai"][CategoryHousing] = -1
		},
		"rule order": func(tables *Tables) {
			tables.Rules[CategoryFood] = Band{Min: 30, Max: 20, Ideal: 25}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tables := DefaultTables()
			mutate(&tables)
			if err := tables.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestParseTablesRejectsInvalid проверяет ошибки разбора и проверки.
func TestParseTablesRejectsInvalid(t *testing.T) {
	if _, err := ParseTables("currency = "); err == nil {
		t.Fatal("expected parse error")
	}

	_, err := ParseTables("[balancing]\nsavings_key = \"pension\"\n")
	if err == nil || !strings.Contains(err.Error(), "pension") {
		t.Fatalf("expected savings key error, got %v", err)
	}
}
