package handler_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/apitest"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/time"
)

const testAPIKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePool struct {
	metrics database.ConnectionPoolMetrics
}

func (f fakePool) PoolMetrics() database.ConnectionPoolMetrics { return f.metrics }

type harness struct {
	t         *testing.T
	router    *gin.Engine
	payments  *apitest.MockPayments
	merchants *apitest.MockMerchants
	merchant  *entity.Merchant
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithPool(t, fakePool{metrics: database.ConnectionPoolMetrics{Healthy: true, OpenConnections: 2}})
}

func newHarnessWithPool(t *testing.T, pool handler.PoolReporter) *harness {
	t.Helper()

	tp, err := timeadapter.NewRealTimeProvider("UTC")
	require.NoError(t, err)
	log := logger.NewNoopLogger()

	h := &harness{
		t:         t,
		router:    gin.New(),
		payments:  new(apitest.MockPayments),
		merchants: new(apitest.MockMerchants),
		merchant:  &entity.Merchant{ID: 7, Username: "tokobudi", Email: "budi@example.com", Verified: true},
	}
	h.merchants.On("Authenticate", mock.Anything, testAPIKey).Return(h.merchant, nil).Maybe()
	h.merchants.On("RecordAPIRequest", mock.Anything, mock.Anything).Return(nil).Maybe()

	routes.SetupMiddlewares(h.router, log, tp)
	routes.SetupRoutes(h.router, routes.Handlers{
		Payment: handler.NewPaymentHandler(h.payments, h.merchants, log),
		Member:  handler.NewMemberHandler(h.payments, h.merchants, log),
		Tools:   handler.NewToolsHandler(h.merchants, log),
		Health:  handler.NewHealthHandler(pool),
	}, h.merchants, tp, log)

	t.Cleanup(func() {
		h.payments.AssertExpectations(t)
		h.merchants.AssertExpectations(t)
	})
	return h
}

// do sends a request; a non-empty key goes in the X-API-Key header
func (h *harness) do(method, target, body, apiKey string) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
