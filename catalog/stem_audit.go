package catalog

import (
	"sort"

	"retailsync/internal/domain/models"
	"retailsync/normalization"
)

// StemCollisions группирует SKU каталога по основам слов.
// Группа из нескольких SKU подсказывает, что таблицу замен множественного
// числа стоит дополнить (например PEACH и PEACHE из "Peaches").
// На идентичность товаров отчет не влияет.
func StemCollisions(c *Catalog, stemmer *normalization.SKUStemmer) []models.StemCollision {
	if stemmer == nil {
		stemmer = normalization.NewSKUStemmer()
	}

	groups := make(map[string][]string)
	for _, p := range c.products {
		key := stemmer.StemKey(p.SKU)
		groups[key] = append(groups[key], p.SKU)
	}

	var collisions []models.StemCollision
	for key, skus := range groups {
		if len(skus) < 2 {
			continue
		}
		sort.Strings(skus)
		collisions = append(collisions, models.StemCollision{StemKey: key, SKUs: skus})
	}

	sort.Slice(collisions, func(i, j int) bool {
		return collisions[i].StemKey < collisions[j].StemKey
	})
	return collisions
}
