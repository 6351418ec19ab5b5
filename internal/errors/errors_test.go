package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "unauthenticated", err: ErrUnauthenticated, expected: http.StatusUnauthorized},
		{
			name:     "forbidden wrapped",
			err:      fmt.Errorf("failed authorizing transition with error=%w", ErrForbidden),
			expected: http.StatusForbidden,
		},
		{name: "order not found", err: ErrOrderNotFound, expected: http.StatusNotFound},
		{
			name:     "product not found typed",
			err:      ProductNotFoundError{ProductID: uuid.New(), Name: "widget"},
			expected: http.StatusNotFound,
		},
		{name: "tx conflict", err: ErrTxConflict, expected: http.StatusConflict},
		{name: "invalid transition", err: ErrInvalidStatusTransition, expected: http.StatusConflict},
		{
			name:     "insufficient stock typed",
			err:      InsufficientStockError{ProductID: uuid.New(), Name: "widget", Available: 1, Requested: 2},
			expected: http.StatusUnprocessableEntity,
		},
		{name: "empty cart", err: ErrEmptyCart, expected: http.StatusBadRequest},
		{name: "invalid order status", err: ErrInvalidOrderStatus, expected: http.StatusBadRequest},
		{name: "store unavailable", err: ErrStoreUnavailable, expected: http.StatusServiceUnavailable},
		{
			name: "upstream keeps its own status",
			err: fmt.Errorf(
				"failed requesting checkout with error=%w",
				UpstreamError{StatusCode: http.StatusUnprocessableEntity, Message: "insufficient stock"},
			),
			expected: http.StatusUnprocessableEntity,
		},
		{name: "unknown defaults to 500", err: fmt.Errorf("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusCode(tt.err))
		})
	}
}
