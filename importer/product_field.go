package importer

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ProductField результат разбора поля Product: либо список, либо одиночное значение
type ProductField interface {
	isProductField()
}

// ParsedList поле содержало литерал списка; пустые и ложные элементы уже отброшены
type ParsedList struct {
	Items []string
	// Blank элементы, которые после обрезки пробелов оказались пустыми
	Blank int
}

// SingleLiteral поле трактуется как одно название товара
type SingleLiteral struct {
	Value string
	// Fallback поле выглядело как список (начиналось с "["), но не разобралось
	Fallback bool
}

func (ParsedList) isProductField()    {}
func (SingleLiteral) isProductField() {}

// ParseProductField разбирает значение колонки Product.
// Поддерживается литерал списка из строк, чисел и констант True/False/None:
// ['Onions', "Egg (Turkey)"]. Вложенные списки, кортежи и словари не
// поддерживаются, такое поле целиком становится одним названием.
// Example: "['Milk', 'Bread']" -> ParsedList{Items: ["Milk", "Bread"]}
// Example: "Milk" -> SingleLiteral{Value: "Milk"}
func ParseProductField(raw string) ProductField {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		if items, blank, ok := parseListLiteral(trimmed); ok {
			return ParsedList{Items: items, Blank: blank}
		}
		return SingleLiteral{Value: trimmed, Fallback: true}
	}
	return SingleLiteral{Value: trimmed}
}

// listScanner простой разборщик литерала списка
type listScanner struct {
	src string
	pos int
}

// parseListLiteral возвращает непустые элементы списка в исходном порядке
// и число элементов, состоявших из одних пробелов
func parseListLiteral(src string) ([]string, int, bool) {
	s := &listScanner{src: src}
	if !s.consume('[') {
		return nil, 0, false
	}

	items := make([]string, 0, 4)
	blank := 0
	s.skipSpace()
	if s.consume(']') {
		return items, 0, s.atEnd()
	}

	for {
		s.skipSpace()
		value, keep, ok := s.element()
		if !ok {
			return nil, 0, false
		}
		if keep {
			if v := strings.TrimSpace(value); v != "" {
				items = append(items, v)
			} else {
				blank++
			}
		}

		s.skipSpace()
		if s.consume(']') {
			return items, blank, s.atEnd()
		}
		if !s.consume(',') {
			return nil, 0, false
		}
		s.skipSpace()
		// Завершающая запятая допустима: ['a', 'b',]
		if s.consume(']') {
			return items, blank, s.atEnd()
		}
	}
}

func (s *listScanner) atEnd() bool {
	s.skipSpace()
	return s.pos >= len(s.src)
}

func (s *listScanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			s.pos++
		default:
			return
		}
	}
}

func (s *listScanner) consume(ch byte) bool {
	if s.pos < len(s.src) && s.src[s.pos] == ch {
		s.pos++
		return true
	}
	return false
}

func (s *listScanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

// element разбирает один элемент списка.
// keep=false для ложных значений (пустая строка, None, False, ноль).
func (s *listScanner) element() (value string, keep bool, ok bool) {
	ch := s.peek()
	switch {
	case ch == '\'' || ch == '"' || isStringPrefix(s.src[s.pos:]):
		return s.stringConcat()
	case ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9'):
		return s.number()
	case isIdentStart(ch):
		start := s.pos
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		switch s.src[start:s.pos] {
		case "True":
			return "True", true, true
		case "False", "None":
			return "", false, true
		}
		return "", false, false
	}
	return "", false, false
}

// stringConcat разбирает один или несколько соседних строковых литералов,
// которые склеиваются: 'a' 'b' -> "ab"
func (s *listScanner) stringConcat() (string, bool, bool) {
	var b strings.Builder
	for {
		part, ok := s.stringLiteral()
		if !ok {
			return "", false, false
		}
		b.WriteString(part)

		save := s.pos
		s.skipSpace()
		ch := s.peek()
		if ch != '\'' && ch != '"' && !isStringPrefix(s.src[s.pos:]) {
			s.pos = save
			break
		}
	}
	value := b.String()
	return value, value != "", true
}

func isStringPrefix(rest string) bool {
	if len(rest) < 2 {
		return false
	}
	switch rest[0] {
	case 'u', 'U', 'r', 'R':
		return rest[1] == '\'' || rest[1] == '"'
	}
	return false
}

// stringLiteral разбирает строку в одинарных или двойных кавычках
// с необязательным префиксом u или r. Тройные кавычки не поддерживаются.
func (s *listScanner) stringLiteral() (string, bool) {
	raw := false
	switch s.peek() {
	case 'r', 'R':
		raw = true
		s.pos++
	case 'u', 'U':
		s.pos++
	}

	quote := s.peek()
	if quote != '\'' && quote != '"' {
		return "", false
	}
	s.pos++
	// пустая строка '' допустима, тройная кавычка нет
	if s.pos+1 < len(s.src) && s.src[s.pos] == quote && s.src[s.pos+1] == quote {
		return "", false
	}

	var b strings.Builder
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == quote:
			s.pos++
			return b.String(), true
		case ch == '\n':
			return "", false
		case ch == '\\':
			if s.pos+1 >= len(s.src) {
				return "", false
			}
			if raw {
				b.WriteByte('\\')
				b.WriteByte(s.src[s.pos+1])
				s.pos += 2
				continue
			}
			if !s.escape(&b) {
				return "", false
			}
		default:
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			b.WriteRune(r)
			s.pos += size
		}
	}
	return "", false
}

// escape обрабатывает escape-последовательность, s.pos указывает на обратный слэш
func (s *listScanner) escape(b *strings.Builder) bool {
	next := s.src[s.pos+1]
	s.pos += 2
	switch next {
	case '\\', '\'', '"':
		b.WriteByte(next)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '\n':
		// продолжение строки
	case 'x':
		return s.hexRune(b, 2)
	case 'u':
		return s.hexRune(b, 4)
	case 'U':
		return s.hexRune(b, 8)
	default:
		// неизвестная последовательность сохраняется как есть
		b.WriteByte('\\')
		b.WriteByte(next)
	}
	return true
}

func (s *listScanner) hexRune(b *strings.Builder, digits int) bool {
	if s.pos+digits > len(s.src) {
		return false
	}
	code, err := strconv.ParseUint(s.src[s.pos:s.pos+digits], 16, 32)
	if err != nil || code > utf8.MaxRune {
		return false
	}
	b.WriteRune(rune(code))
	s.pos += digits
	return true
}

// number разбирает целое или дробное число и возвращает его текстовое представление
func (s *listScanner) number() (string, bool, bool) {
	start := s.pos
	if ch := s.peek(); ch == '-' || ch == '+' {
		s.pos++
		s.skipSpace()
	}
	digitsStart := s.pos
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '_' || ch == 'e' || ch == 'E' ||
			((ch == '-' || ch == '+') && s.pos > digitsStart && (s.src[s.pos-1] == 'e' || s.src[s.pos-1] == 'E')) {
			s.pos++
			continue
		}
		break
	}

	sign := strings.TrimSpace(s.src[start:digitsStart])
	literal := strings.ReplaceAll(s.src[digitsStart:s.pos], "_", "")
	if literal == "" {
		return "", false, false
	}
	negative := sign == "-"

	if !strings.ContainsAny(literal, ".eE") {
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return "", false, false
		}
		if negative {
			n = -n
		}
		return strconv.FormatInt(n, 10), n != 0, true
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return "", false, false
	}
	if negative {
		f = -f
	}
	text := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text, f != 0, true
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
