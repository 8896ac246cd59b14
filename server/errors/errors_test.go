package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailsync/database"
)

func TestFromStore(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"not found", fmt.Errorf("product EGG: %w", database.ErrNotFound), KindNotFound, http.StatusNotFound},
		{"deadline", fmt.Errorf("failed to ping database: %w", context.DeadlineExceeded), KindStoreUnavailable, http.StatusServiceUnavailable},
		{"canceled", context.Canceled, KindStoreUnavailable, http.StatusServiceUnavailable},
		{"other", errors.New("no such table: products"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromStore("list products", tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "list products", apiErr.Op)
			assert.ErrorIs(t, apiErr, tt.err)
		})
	}

	assert.Nil(t, FromStore("noop", nil))
}

func TestInternalHidesDetails(t *testing.T) {
	err := Internal("count matches", errors.New("disk I/O error"))

	assert.Equal(t, "Internal server error", err.Message)
	assert.Equal(t, "count matches: Internal server error: disk I/O error", err.Error())
}

type pageQuery struct {
	Limit  int `validate:"omitempty,min=1,max=1000"`
	Offset int `validate:"omitempty,min=0"`
}

func TestInvalidQueryDescribesFields(t *testing.T) {
	verr := validator.New().Struct(pageQuery{Limit: 5000})
	require.Error(t, verr)

	err := InvalidQuery(verr)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, KindInvalidQuery, err.Kind)
	assert.Equal(t, "Invalid query parameters: limit must be <= 1000", err.Message)

	plain := InvalidQuery(errors.New("strconv.ParseBool: parsing \"maybe\": invalid syntax"))
	assert.Equal(t, "Invalid query parameters", plain.Message)
}

func TestNotFoundFields(t *testing.T) {
	err := NotFound("Product", "SOAP", nil).With("driver", "sqlite3")

	assert.Equal(t, "Product not found", err.Message)
	assert.Equal(t, "driver=sqlite3 product=SOAP", err.LogFields())
}

func TestAs(t *testing.T) {
	assert.Nil(t, As(nil))

	wrapped := fmt.Errorf("handler: %w", StoreUnavailable(errors.New("database is locked")))
	assert.Equal(t, KindStoreUnavailable, As(wrapped).Kind)

	assert.Equal(t, KindInternal, As(errors.New("boom")).Kind)
}

func TestErrorMetricsCollector(t *testing.T) {
	emc := NewErrorMetricsCollector()
	emc.RecordError(NotFound("Product", "EGG", nil), "/api/v1/products/:sku", "req-1")
	emc.RecordError(InvalidQuery(nil), "/api/v1/products", "req-2")
	emc.RecordError(NotFound("Product", "TEA", nil), "/api/v1/products/:sku", "req-3")

	m := emc.GetMetrics()
	assert.Equal(t, int64(3), m.TotalErrors)
	assert.Equal(t, int64(2), m.ErrorsByKind[KindNotFound])
	assert.Equal(t, int64(1), m.ErrorsByStatus[http.StatusBadRequest])
	assert.Equal(t, int64(2), m.ErrorsByEndpoint["/api/v1/products/:sku"])
	require.Len(t, m.LastErrors, 3)
	assert.Equal(t, "req-3", m.LastErrors[0].RequestID, "newest error first")

	m.ErrorsByKind[KindNotFound] = 100
	assert.Equal(t, int64(2), emc.GetMetrics().ErrorsByKind[KindNotFound], "GetMetrics must return a copy")
}
