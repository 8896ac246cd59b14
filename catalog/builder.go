package catalog

import (
	"log"

	"retailsync/internal/domain/models"
	"retailsync/normalization"
)

// SourceStats статистика одного источника после нормализации
type SourceStats struct {
	Rows           int
	UniqueProducts int
	UniqueSKUs     int
	EmptySKURows   int
}

// BuildResult результат построения каталога
type BuildResult struct {
	Catalog        *Catalog
	Retail         []models.RetailTransaction
	Inventory      []models.InventoryItem
	RetailSKUs     SKUSet
	WarehouseSKUs  SKUSet
	RetailStats    SourceStats
	WarehouseStats SourceStats
}

// Builder нормализует обе стороны и строит каталог
type Builder struct {
	normalizer *normalization.ProductNormalizer
}

// NewBuilder создает построитель каталога.
// Если normalizer == nil, используются встроенные правила.
func NewBuilder(normalizer *normalization.ProductNormalizer) *Builder {
	if normalizer == nil {
		normalizer = normalization.NewProductNormalizer(nil)
	}
	return &Builder{normalizer: normalizer}
}

type normalized struct {
	sku  string
	base string
}

// Build заполняет SKU и базовое название у записей обеих сторон и строит каталог.
// Розничные записи просматриваются раньше складских, поэтому при расхождении
// названий для одного SKU побеждает розничное написание.
// Записи с пустым SKU не попадают ни в каталог, ни в множества SKU.
// Переданные срезы изменяются на месте и принадлежат результату.
func (b *Builder) Build(retail []models.RetailTransaction, inventory []models.InventoryItem) *BuildResult {
	result := &BuildResult{
		Catalog:       NewCatalog(),
		Retail:        retail,
		Inventory:     inventory,
		RetailSKUs:    make(SKUSet),
		WarehouseSKUs: make(SKUSet),
	}

	// Названия сильно повторяются, нормализуем каждое один раз
	cache := make(map[string]normalized)
	normalize := func(name string) normalized {
		if n, ok := cache[name]; ok {
			return n
		}
		sku, base := b.normalizer.Normalize(name)
		n := normalized{sku: sku, base: base}
		cache[name] = n
		return n
	}

	retailNames := make(map[string]struct{})
	for i := range retail {
		n := normalize(retail[i].ProductName)
		retail[i].SKU = n.sku
		retail[i].BaseName = n.base
		retailNames[retail[i].ProductName] = struct{}{}

		if n.sku == "" {
			result.RetailStats.EmptySKURows++
			continue
		}
		result.RetailSKUs.Add(n.sku)
		result.Catalog.Add(n.sku, n.base)
	}

	warehouseNames := make(map[string]struct{})
	for i := range inventory {
		n := normalize(inventory[i].ProductName)
		inventory[i].SKU = n.sku
		inventory[i].BaseName = n.base
		warehouseNames[inventory[i].ProductName] = struct{}{}

		if n.sku == "" {
			result.WarehouseStats.EmptySKURows++
			continue
		}
		result.WarehouseSKUs.Add(n.sku)
		result.Catalog.Add(n.sku, n.base)
	}

	result.RetailStats.Rows = len(retail)
	result.RetailStats.UniqueProducts = len(retailNames)
	result.RetailStats.UniqueSKUs = len(result.RetailSKUs)
	result.WarehouseStats.Rows = len(inventory)
	result.WarehouseStats.UniqueProducts = len(warehouseNames)
	result.WarehouseStats.UniqueSKUs = len(result.WarehouseSKUs)

	if result.RetailStats.EmptySKURows > 0 || result.WarehouseStats.EmptySKURows > 0 {
		log.Printf("Catalog: %d retail and %d warehouse rows normalized to an empty SKU",
			result.RetailStats.EmptySKURows, result.WarehouseStats.EmptySKURows)
	}
	log.Printf("Catalog built: %d products (%d retail SKUs, %d warehouse SKUs)",
		result.Catalog.Size(), result.RetailStats.UniqueSKUs, result.WarehouseStats.UniqueSKUs)

	return result
}
