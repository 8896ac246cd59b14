package importer

import "errors"

var (
	// ErrSourceUnreadable файл источника не удалось открыть или разобрать целиком.
	// Это фатальная ошибка запуска, в отличие от отбраковки отдельных строк.
	ErrSourceUnreadable = errors.New("source file is unreadable")

	// ErrMissingColumn в источнике нет обязательной колонки идентичности
	ErrMissingColumn = errors.New("required column is missing")
)
