package normalization

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PluralRules справочные данные для приведения SKU к единственному числу.
// Таблицы подобраны вручную под конкретный ассортимент и не претендуют на
// общность: новые товары требуют пополнения файла правил, а не правки алгоритма.
type PluralRules struct {
	// Overrides явные замены неправильных форм ("POTATOES" -> "POTATO")
	Overrides map[string]string
	// NoStrip слова, которые выглядят как множественное число, но им не являются
	NoStrip map[string]struct{}
}

// pluralRulesFile формат JSON файла правил
type pluralRulesFile struct {
	Overrides map[string]string `json:"overrides"`
	NoStrip   []string          `json:"no_strip"`
}

var defaultOverrides = map[string]string{
	"ONIONS":          "ONION",
	"CARROTS":         "CARROT",
	"POTATOES":        "POTATO",
	"TOMATOES":        "TOMATO",
	"EGGS":            "EGG",
	"TISSUES":         "TISSUE",
	"CHIPS":           "CHIP",
	"PICKLES":         "PICKLE",
	"SPONGES":         "SPONGE",
	"MUSHROOMS":       "MUSHROOM",
	"BLUEBERRIES":     "BLUEBERRY",
	"STRAWBERRIES":    "STRAWBERRY",
	"GRAPES":          "GRAPE",
	"PEAS":            "PEA",
	"ANCHOVIES":       "ANCHOVY",
	"SARDINES":        "SARDINE",
	"GREEN_BEANS":     "GREEN_BEAN",
	"DIAPERS":         "DIAPER",
	"RAZORS":          "RAZOR",
	"EXTENSION_CORDS": "EXTENSION_CORD",
	"LIGHT_BULBS":     "LIGHT_BULB",
	"POWER_STRIPS":    "POWER_STRIP",
	"TRASH_BAGS":      "TRASH_BAG",
	"TRASH_CANS":      "TRASH_CAN",
	"BATH_TOWELS":     "BATH_TOWEL",
	"PAPER_TOWELS":    "PAPER_TOWEL",
	"CLEANING_RAGS":   "CLEANING_RAG",
	"CEREAL_BARS":     "CEREAL_BAR",
	"BABY_WIPES":      "BABY_WIPE",
}

var defaultNoStrip = []string{
	"CHEESE", "RICE", "SAUCE", "JUICE", "GREASE", "MOUSSE",
	"LETTUCE", "PRODUCE", "GLUCOSE", "PURPOSE", "CITRUS",
	"ASPARAGUS", "COUSCOUS", "HUMMUS", "OKRAS",
}

// Окончания, при которых завершающая S не отбрасывается
var keepSuffixes = []string{"SS", "US", "IS"}

// DefaultPluralRules возвращает копию встроенных правил
func DefaultPluralRules() *PluralRules {
	rules := &PluralRules{
		Overrides: make(map[string]string, len(defaultOverrides)),
		NoStrip:   make(map[string]struct{}, len(defaultNoStrip)),
	}
	for k, v := range defaultOverrides {
		rules.Overrides[k] = v
	}
	for _, w := range defaultNoStrip {
		rules.NoStrip[w] = struct{}{}
	}
	return rules
}

// LoadPluralRules читает JSON файл правил и накладывает его поверх встроенных.
// Пустой путь означает только встроенные правила.
func LoadPluralRules(path string) (*PluralRules, error) {
	rules := DefaultPluralRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plural rules file: %w", err)
	}

	var file pluralRulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plural rules file %s: %w", path, err)
	}

	for k, v := range file.Overrides {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		rules.Overrides[key] = strings.ToUpper(strings.TrimSpace(v))
	}
	for _, w := range file.NoStrip {
		if w = strings.ToUpper(strings.TrimSpace(w)); w != "" {
			rules.NoStrip[w] = struct{}{}
		}
	}

	return rules, nil
}

// Singularize применяет таблицу замен, а при ее отсутствии общее правило
// отбрасывания завершающей S
func (r *PluralRules) Singularize(sku string) string {
	if singular, ok := r.Overrides[sku]; ok {
		return singular
	}

	if _, ok := r.NoStrip[sku]; ok {
		return sku
	}
	for _, suffix := range keepSuffixes {
		if strings.HasSuffix(sku, suffix) {
			return sku
		}
	}

	if strings.HasSuffix(sku, "S") && len(sku) > 3 {
		return sku[:len(sku)-1]
	}
	return sku
}
