package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/transfers/pkg/errors"
	"github.com/wms-platform/transfers/pkg/logging"
	"github.com/wms-platform/transfers/pkg/resilience"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Setup(router, DefaultConfig("transfers-test", slog.New(slog.NewTextHandler(io.Discard, nil))))
	return router
}

func TestSession_DefaultsAndHeader(t *testing.T) {
	router := newTestRouter()
	router.GET("/session", func(c *gin.Context) {
		ctxSession, _ := c.Request.Context().Value(logging.SessionIDKey).(string)
		c.JSON(http.StatusOK, gin.H{"session": GetSessionID(c), "ctx": ctxSession})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.JSONEq(t, `{"session":"default","ctx":"default"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(HeaderSessionID, "abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"session":"abc","ctx":"abc"}`, w.Body.String())
}

func TestErrorHandler_MapsErrors(t *testing.T) {
	router := newTestRouter()
	router.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(errors.ErrUpstream("fetchOrderDetails"))
	})
	router.GET("/open", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("oms: %w", resilience.ErrCircuitOpen))
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/upstream", http.StatusBadGateway, errors.CodeUpstreamQuery},
		{"/open", http.StatusServiceUnavailable, errors.CodeServiceUnavailable},
		{"/panic", http.StatusInternalServerError, errors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			var body APIErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.path, body.Path)
		})
	}
}

type groupByQuery struct {
	GroupBy string `form:"groupBy" binding:"omitempty,group_by"`
}

func TestBindQueryAndValidate_GroupBy(t *testing.T) {
	router := newTestRouter()
	router.GET("/q", func(c *gin.Context) {
		var q groupByQuery
		if appErr := BindQueryAndValidate(c, &q); appErr != nil {
			AbortWithAppError(c, appErr)
			return
		}
		c.JSON(http.StatusOK, q)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?groupBy=orderId", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/q?groupBy=shipmentId", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body APIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeValidationError, body.Code)
	assert.Contains(t, body.Details, "groupBy")
}
