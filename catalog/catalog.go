package catalog

import (
	"sort"

	"retailsync/internal/domain/models"
)

// Catalog дедуплицированный справочник товаров.
// Первое добавленное название для SKU сохраняется, повторные игнорируются.
type Catalog struct {
	products []models.Product
	index    map[string]int
}

// NewCatalog создает пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{
		index: make(map[string]int),
	}
}

// Add добавляет товар, если SKU еще не встречался.
// Пустой SKU не добавляется. Возвращает true, если запись создана.
func (c *Catalog) Add(sku, displayName string) bool {
	if sku == "" {
		return false
	}
	if _, exists := c.index[sku]; exists {
		return false
	}
	c.index[sku] = len(c.products)
	c.products = append(c.products, models.Product{SKU: sku, DisplayName: displayName})
	return true
}

// Lookup возвращает товар по SKU
func (c *Catalog) Lookup(sku string) (models.Product, bool) {
	idx, ok := c.index[sku]
	if !ok {
		return models.Product{}, false
	}
	return c.products[idx], true
}

// Products возвращает копию списка товаров в порядке добавления
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Size возвращает количество товаров
func (c *Catalog) Size() int {
	return len(c.products)
}

// SKUSet множество SKU
type SKUSet map[string]struct{}

// Add добавляет SKU в множество
func (s SKUSet) Add(sku string) {
	s[sku] = struct{}{}
}

// Contains проверяет наличие SKU
func (s SKUSet) Contains(sku string) bool {
	_, ok := s[sku]
	return ok
}

// Sorted возвращает элементы множества по возрастанию
func (s SKUSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for sku := range s {
		out = append(out, sku)
	}
	sort.Strings(out)
	return out
}
