package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wms-platform/transfers/pkg/resilience"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"app error passthrough", ErrUpstream("fetchOrderDetails"), CodeUpstreamQuery, http.StatusBadGateway},
		{"circuit open", fmt.Errorf("oms: %w", resilience.ErrCircuitOpen), CodeServiceUnavailable, http.StatusServiceUnavailable},
		{"not found", errors.New("order not found"), CodeNotFound, http.StatusNotFound},
		{"invalid", errors.New("invalid groupBy"), CodeValidationError, http.StatusBadRequest},
		{"deadline", errors.New("context deadline exceeded"), CodeTimeout, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapDomainError(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}

	assert.Nil(t, MapDomainError(nil))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := ErrUpstream("findOrders").Wrap(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "UPSTREAM_QUERY_FAILED")
}

func TestAppError_WithDetail(t *testing.T) {
	appErr := ErrValidation("validation failed").WithDetail("orderId", "is required").WithDetail("items", "is invalid")

	assert.Equal(t, map[string]string{"orderId": "is required", "items": "is invalid"}, appErr.Details)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}
