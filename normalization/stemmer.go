package normalization

import (
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// SKUStemmer строит ключ основы для SKU с помощью английского Snowball стеммера.
// Используется только для отчетов о возможных пропусках в таблице замен,
// на идентичность товаров не влияет.
type SKUStemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
}

// NewSKUStemmer создает стеммер с кэшем
func NewSKUStemmer() *SKUStemmer {
	return &SKUStemmer{
		language: "english",
		cache:    make(map[string]string),
	}
}

// Stem возвращает основу одного слова
// Example: "tomatoes" -> "tomato", "berries" -> "berri"
func (s *SKUStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	if cached, found := s.cache[normalized]; found {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	stemmed, err := snowball.Stem(normalized, s.language, true)
	if err != nil {
		// Если стемминг не удался, используем само слово
		stemmed = normalized
	}

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()

	return stemmed
}

// StemKey возвращает ключ основы для SKU: каждый токен через "_" стеммируется отдельно
// Example: "PAPER_TOWELS" -> "PAPER_TOWEL"
func (s *SKUStemmer) StemKey(sku string) string {
	if sku == "" {
		return ""
	}

	tokens := strings.Split(sku, "_")
	for i, token := range tokens {
		tokens[i] = strings.ToUpper(s.Stem(token))
	}
	return strings.Join(tokens, "_")
}

// CacheSize возвращает количество закэшированных слов
func (s *SKUStemmer) CacheSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
