package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"retailsync/database"
)

// Kind машинный код ошибки, уходит клиенту в поле "code"
type Kind string

const (
	KindInvalidQuery     Kind = "invalid_query"
	KindNotFound         Kind = "not_found"
	KindStoreUnavailable Kind = "store_unavailable"
	KindInternal         Kind = "internal"
)

// APIError ошибка API поверх хранилища результатов.
// Message показывается клиенту, Err и Op остаются в логах.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Op      string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// With добавляет поле контекста (sku, table, ...) для логов
func (e *APIError) With(key, value string) *APIError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = value
	return e
}

// LogFields возвращает поля контекста в стабильном порядке "k=v"
func (e *APIError) LogFields() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Fields[k]
	}
	return strings.Join(parts, " ")
}

// InvalidQuery ошибка разбора параметров запроса.
// Ошибки валидатора переводятся в "limit must be <= 1000" и подобные.
func InvalidQuery(err error) *APIError {
	msg := "Invalid query parameters"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, describeField(fe))
		}
		msg += ": " + strings.Join(details, "; ")
	}
	return &APIError{Kind: KindInvalidQuery, Status: http.StatusBadRequest, Message: msg, Err: err}
}

func describeField(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "required":
		return field + " is required"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// BadRequest некорректный запрос с готовым сообщением для клиента
func BadRequest(message string) *APIError {
	return &APIError{Kind: KindInvalidQuery, Status: http.StatusBadRequest, Message: message}
}

// NotFound запрошенная запись (товар, таблица) отсутствует
func NotFound(resource, key string, err error) *APIError {
	e := &APIError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
	return e.With(strings.ToLower(resource), key)
}

// StoreUnavailable база результатов недоступна
func StoreUnavailable(err error) *APIError {
	return &APIError{
		Kind:    KindStoreUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: "Results database unavailable",
		Err:     err,
	}
}

// Internal непредвиденная ошибка операции op; клиент видит общее сообщение
func Internal(op string, err error) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
		Op:      op,
		Err:     err,
	}
}

// FromStore классифицирует ошибку хранилища:
// ErrNotFound становится 404, таймаут или отмена 503, остальное 500.
func FromStore(op string, err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, database.ErrNotFound):
		e := &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: "Record not found", Err: err}
		e.Op = op
		return e
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		e := StoreUnavailable(err)
		e.Op = op
		return e
	default:
		return Internal(op, err)
	}
}

// As приводит любую ошибку к APIError; не-APIError считается внутренней
func As(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("", err)
}
