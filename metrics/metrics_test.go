package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/v1/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/orders/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	m.OrderTransition("In Repair", "Ready")
	m.OrderCreated("request")
	m.RequestConverted()

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, `repairshop_http_requests_total{method="GET",route="/api/v1/orders/:id",status="200"} 1`)
	assert.Contains(t, body, `repairshop_order_status_transitions_total{from="In Repair",to="Ready"} 1`)
	assert.Contains(t, body, `repairshop_orders_created_total{source="request"} 1`)
	assert.Contains(t, body, `repairshop_repair_requests_converted_total 1`)
}
