package sampledata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"retailsync/importer"
)

// Options параметры генерации тестовых выгрузок
type Options struct {
	RetailRows    int
	WarehouseRows int
	Seed          int64
	// MissingRate доля строк с пропущенными значениями (0..1)
	MissingRate float64
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		RetailRows:    1000,
		WarehouseRows: 200,
		Seed:          42,
		MissingRate:   0.02,
	}
}

// Result количество записанных строк
type Result struct {
	RetailRows    int `json:"retail_rows"`
	WarehouseRows int `json:"warehouse_rows"`
}

var storeTypes = []string{"Supermarket", "Convenience Store", "Pharmacy", "Warehouse Club", "Department Store", "Specialty Store"}

var qualifiers = []string{"Lemon", "Turkey", "Organic", "Large", "Jasmine", "Family Size"}

// Generator пишет Retail.csv и Warehouse.csv с реалистичными искажениями названий:
// множественное число, уточнения в скобках и через дефис, списки в одной ячейке
type Generator struct {
	faker    *gofakeit.Faker
	options  Options
	products []string
}

// NewGenerator создает генератор с детерминированным seed
func NewGenerator(options Options) *Generator {
	faker := gofakeit.New(options.Seed)
	g := &Generator{faker: faker, options: options}

	seen := make(map[string]struct{})
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		g.products = append(g.products, name)
	}
	for _, base := range []string{"Onion", "Egg", "Soap", "Hair Gel", "Tea", "Toothpaste", "Bread", "Milk", "Cereal", "Shampoo"} {
		add(base)
	}
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			add(faker.Fruit())
		} else {
			add(faker.Vegetable())
		}
	}
	return g
}

// Products возвращает словарь базовых названий товаров
func (g *Generator) Products() []string {
	return g.products
}

// variant искажает базовое название так, как это делают кассовые выгрузки
func (g *Generator) variant(base string) string {
	switch g.faker.Number(0, 5) {
	case 0:
		return pluralize(base)
	case 1:
		return fmt.Sprintf("%s (%s)", base, g.faker.RandomString(qualifiers))
	case 2:
		return fmt.Sprintf("%s - %s", base, g.faker.RandomString(qualifiers))
	case 3:
		return strings.ToLower(base)
	default:
		return base
	}
}

func pluralize(s string) string {
	switch {
	case strings.HasSuffix(s, "y") && !strings.HasSuffix(s, "ey"):
		return strings.TrimSuffix(s, "y") + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "sh"), strings.HasSuffix(s, "ch"):
		return s + "es"
	default:
		return s + "s"
	}
}

func (g *Generator) missing() bool {
	return g.faker.Float64Range(0, 1) < g.options.MissingRate
}

// productField формирует ячейку Product: обычно литерал списка вида ['A', 'B'], иногда одно название
func (g *Generator) productField() string {
	n := g.faker.Number(1, 4)
	names := make([]string, n)
	for i := range names {
		names[i] = "'" + strings.ReplaceAll(g.variant(g.faker.RandomString(g.products)), "'", `\'`) + "'"
	}
	if n == 1 && g.faker.Bool() {
		return strings.Trim(names[0], "'")
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// WriteRetail пишет розничную выгрузку
func (g *Generator) WriteRetail(path string) (int, error) {
	rows := [][]string{{
		importer.RetailColTransactionID,
		importer.RetailColDate,
		importer.RetailColProduct,
		importer.RetailColTotalItems,
		importer.RetailColCity,
		importer.RetailColStoreType,
		importer.RetailColDiscount,
	}}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < g.options.RetailRows; i++ {
		row := []string{
			fmt.Sprintf("%d", 1000000000+i),
			g.faker.DateRange(start, end).Format("2006-01-02 15:04:05"),
			g.productField(),
			fmt.Sprintf("%d", g.faker.Number(1, 10)),
			g.faker.City(),
			g.faker.RandomString(storeTypes),
			fmt.Sprintf("%t", g.faker.Bool()),
		}
		if g.missing() {
			// Пропуск в произвольной колонке, включая обязательные
			row[g.faker.Number(0, len(row)-1)] = ""
		}
		rows = append(rows, row)
	}

	if err := writeCSV(path, rows); err != nil {
		return 0, err
	}
	return len(rows) - 1, nil
}

// WriteWarehouse пишет складскую выгрузку
func (g *Generator) WriteWarehouse(path string) (int, error) {
	rows := [][]string{{importer.WarehouseColProductName, importer.WarehouseColStockQuantity}}

	for i := 0; i < g.options.WarehouseRows; i++ {
		var name string
		if i < len(g.products) {
			name = g.variant(g.products[i])
		} else {
			name = g.variant(g.faker.RandomString(g.products))
		}
		stock := fmt.Sprintf("%d", g.faker.Number(0, 500))
		if g.missing() {
			if g.faker.Bool() {
				stock = ""
			} else {
				stock = "N/A"
			}
		}
		rows = append(rows, []string{name, stock})
	}

	if err := writeCSV(path, rows); err != nil {
		return 0, err
	}
	return len(rows) - 1, nil
}

// Generate пишет обе выгрузки
func (g *Generator) Generate(retailPath, warehousePath string) (Result, error) {
	var result Result
	var err error
	if result.RetailRows, err = g.WriteRetail(retailPath); err != nil {
		return result, err
	}
	if result.WarehouseRows, err = g.WriteWarehouse(warehousePath); err != nil {
		return result, err
	}
	return result, nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return nil
}
