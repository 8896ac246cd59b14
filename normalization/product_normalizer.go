package normalization

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Пробельный класс шире ASCII \s: неразрывные пробелы и прочие Zs из
// выгрузок Excel должны вести себя как обычные пробелы.
const whitespaceClass = `[\s\p{Zs}\x{0085}\x{2028}\x{2029}]`

var (
	// "EGG (TURKEY)" -> "EGG"
	parentheticalRe = regexp.MustCompile(whitespaceClass + `*\(.*?\)`)
	// "SOAP - LEMON" -> "SOAP"; "X-RAY" не трогаем
	dashQualifierRe = regexp.MustCompile(whitespaceClass + `*-` + whitespaceClass + `+.*$`)
	disallowedRe    = regexp.MustCompile(`[^A-Z0-9\s\p{Zs}\x{0085}\x{2028}\x{2029}]`)
	whitespaceRunRe = regexp.MustCompile(whitespaceClass + `+`)
)

// ProductNormalizer приводит свободный текст названия товара к каноническому SKU.
// Экземпляр неизменяем после создания и безопасен для конкурентного использования.
type ProductNormalizer struct {
	rules *PluralRules
}

// NewProductNormalizer создает нормализатор с заданными правилами множественного числа.
// nil означает встроенные правила.
func NewProductNormalizer(rules *PluralRules) *ProductNormalizer {
	if rules == nil {
		rules = DefaultPluralRules()
	}
	return &ProductNormalizer{rules: rules}
}

// Rules возвращает правила, с которыми работает нормализатор
func (n *ProductNormalizer) Rules() *PluralRules {
	return n.rules
}

// Normalize выполняет нормализацию названия товара.
// Возвращает (sku, baseName). Функция тотальна: любая строка дает результат,
// в том числе пустой SKU, если после очистки ничего не осталось.
//
// Примеры:
//
//	"onions"        -> ("ONION", "ONION")
//	"Tea (Jasmine)" -> ("TEA", "TEA")
//	"Hair Gel"      -> ("HAIR_GEL", "HAIR GEL")
//	"Soap - Lemon"  -> ("SOAP", "SOAP")
func (n *ProductNormalizer) Normalize(raw string) (string, string) {
	// 0. Каноническая композиция Unicode, чтобы составные и разложенные
	// формы одного символа давали одинаковый результат
	name := norm.NFC.String(raw)

	// 1. Обрезка и верхний регистр (полное отображение регистра, "ß" -> "SS")
	name = strings.TrimSpace(name)
	name = cases.Upper(language.Und).String(name)

	// 2. Уточнения в скобках
	name = parentheticalRe.ReplaceAllString(name, "")

	// 3. Уточнения после тире
	name = dashQualifierRe.ReplaceAllString(name, "")

	// 4. Пунктуация и прочие символы
	name = disallowedRe.ReplaceAllString(name, "")

	// 5. Схлопывание пробелов
	name = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(name, " "))

	// 6. Предварительный SKU
	sku := strings.ReplaceAll(name, " ", "_")

	// 7. Единственное число
	sku = n.rules.Singularize(sku)

	// 8. Отображаемое имя
	return sku, strings.ReplaceAll(sku, "_", " ")
}

var defaultNormalizer = NewProductNormalizer(nil)

// NormalizeProductName нормализует название встроенным нормализатором
func NormalizeProductName(raw string) (string, string) {
	return defaultNormalizer.Normalize(raw)
}
