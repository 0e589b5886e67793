package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	master  *models.User
	client  *models.Client
	device  *models.Device
	service *models.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	db := setupTestEnv(t)
	f := &orderFixture{
		db:      db,
		master:  testutil.CreateUser(t, db, models.RoleMaster, "master@shop.test"),
		client:  testutil.CreateClient(t, db, "Anna", "+79000000001", "anna@mail.test"),
		device:  testutil.CreateDevice(t, db, "Smartphone", "Apple", "iPhone 12"),
		service: testutil.CreateService(t, db, "Screen replacement", 2500),
	}

	router := setupTestRouter()
	auth := mockStaffAuth(f.master)
	router.POST("/orders", auth, CreateOrder)
	router.GET("/orders", auth, ListOrders)
	router.GET("/orders/:id", auth, GetOrder)
	router.PUT("/orders/:id", auth, UpdateOrder)
	router.GET("/orders/:id/history", auth, GetOrderHistory)
	router.POST("/orders/:id/parts", auth, UseOrderPart)
	router.GET("/orders/:id/receipt", auth, GetOrderReceipt)
	router.GET("/client/orders", mockClientAuth(f.client), GetMyOrders)
	router.GET("/client/orders/:id", mockClientAuth(f.client), GetMyOrder)
	f.router = router
	return f
}

func (f *orderFixture) createOrder(t *testing.T, serviceIDs ...uint) map[string]interface{} {
	t.Helper()
	w, response := performJSON(t, f.router, http.MethodPost, "/orders", map[string]interface{}{
		"client_id":           f.client.ID,
		"device_id":           f.device.ID,
		"problem_description": "Cracked screen",
		"service_ids":         serviceIDs,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, response)
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "Successfully create order with services",
			requestBody: map[string]interface{}{
				"client_id":           f.client.ID,
				"device_id":           f.device.ID,
				"problem_description": "Cracked screen",
				"service_ids":         []uint{f.service.ID, f.service.ID},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, float64(models.StatusAccepted), data["status_id"])
				assert.Equal(t, "Accepted", data["status"].(map[string]interface{})["name"])
				assert.Equal(t, float64(f.master.ID), data["master_id"])
				assert.Equal(t, "Anna", data["client"].(map[string]interface{})["name"])
				assert.Equal(t, "iPhone 12", data["device"].(map[string]interface{})["model"])
				assert.Nil(t, data["date_completed"])
				lines := data["services"].([]interface{})
				require.Len(t, lines, 2)
				assert.Equal(t, float64(2500), lines[0].(map[string]interface{})["price"])
			},
		},
		{
			name: "Fail with unknown client",
			requestBody: map[string]interface{}{
				"client_id":           9999,
				"device_id":           f.device.ID,
				"problem_description": "Cracked screen",
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
		{
			name: "Fail with unknown service",
			requestBody: map[string]interface{}{
				"client_id":           f.client.ID,
				"device_id":           f.device.ID,
				"problem_description": "Cracked screen",
				"service_ids":         []uint{f.service.ID, 9999},
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "NOT_FOUND",
		},
		{
			name: "Fail with missing problem description",
			requestBody: map[string]interface{}{
				"client_id": f.client.ID,
				"device_id": f.device.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, f.router, http.MethodPost, "/orders", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, dataMap(t, response))
			}
		})
	}

	// The failed creation with an unknown service left nothing behind
	var orders, lines int64
	f.db.Model(&models.RepairOrder{}).Count(&orders)
	f.db.Model(&models.OrderService{}).Count(&lines)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(2), lines)
}

func TestListOrders_PaginationAndFilters(t *testing.T) {
	f := newOrderFixture(t)
	other := testutil.CreateClient(t, f.db, "Boris", "+79000000002", "")
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		status := models.StatusAccepted
		if i%5 == 0 {
			status = models.StatusReady
		}
		testutil.CreateOrder(t, f.db, f.client, f.device, status, base.Add(time.Duration(i)*time.Hour))
	}
	testutil.CreateOrder(t, f.db, other, f.device, models.StatusAccepted, base)

	w, response := performJSON(t, f.router, http.MethodGet, "/orders?page=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, response)
	assert.Equal(t, float64(24), data["totalCount"])
	assert.Equal(t, float64(3), data["totalPages"])
	assert.Len(t, data["orders"].([]interface{}), 4)

	w, response = performJSON(t, f.router, http.MethodGet, "/orders?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	newest := dataMap(t, response)["orders"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, base.Add(22*time.Hour).Format(time.RFC3339), newest["date_created"])

	w, response = performJSON(t, f.router, http.MethodGet, fmt.Sprintf("/orders?status=%d", models.StatusReady), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), dataMap(t, response)["totalCount"])

	w, response = performJSON(t, f.router, http.MethodGet, fmt.Sprintf("/orders?client=%d", other.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataMap(t, response)["totalCount"])

	w, response = performJSON(t, f.router, http.MethodGet, "/orders?status=ready", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "VALIDATION_ERROR")
}

func TestUpdateOrder_Lifecycle(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.service.ID)
	path := fmt.Sprintf("/orders/%.0f", order["id"])

	w, response := performJSON(t, f.router, http.MethodPut, path, map[string]interface{}{
		"status_id":     models.StatusDiagnosis,
		"diagnosis":     "Display assembly damaged",
		"cost_estimate": 3000,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, response)
	assert.Equal(t, float64(models.StatusDiagnosis), data["status_id"])
	assert.Equal(t, float64(3000), data["cost_estimate"])
	assert.Nil(t, data["final_cost"])

	w, response = performJSON(t, f.router, http.MethodPut, path, map[string]interface{}{
		"status_id":      models.StatusReady,
		"final_cost":     2900,
		"warranty_until": "2026-12-31",
	})
	require.Equal(t, http.StatusOK, w.Code)
	data = dataMap(t, response)
	assert.NotNil(t, data["date_completed"])
	assert.Equal(t, "2026-12-31T00:00:00Z", data["warranty_until"])
	// Absent fields are kept
	assert.Equal(t, "Display assembly damaged", data["diagnosis"])
	completed := data["date_completed"]

	w, response = performJSON(t, f.router, http.MethodPut, path, map[string]interface{}{"status_id": models.StatusIssued})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, completed, dataMap(t, response)["date_completed"], "date_completed is write-once")

	invalid := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"unknown status", map[string]interface{}{"status_id": 8}, "status_id"},
		{"negative final cost", map[string]interface{}{"final_cost": -1}, "final_cost"},
		{"negative estimate", map[string]interface{}{"cost_estimate": -0.01}, "cost_estimate"},
		{"malformed warranty", map[string]interface{}{"warranty_until": "31.12.2026"}, "warranty_until"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, f.router, http.MethodPut, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, []string{tt.field}, fieldNames(assertErrorCode(t, response, "VALIDATION_ERROR")))
		})
	}

	w, response = performJSON(t, f.router, http.MethodPut, "/orders/9999", map[string]interface{}{"diagnosis": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", assertErrorCode(t, response, "NOT_FOUND")["message"])

	w, response = performJSON(t, f.router, http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := response["data"].([]interface{})
	require.Len(t, history, 4)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.(map[string]interface{})["action"].(string))
	}
	assert.Equal(t, []string{
		models.HistoryCreated,
		models.HistoryStatusChanged,
		models.HistoryStatusChanged,
		models.HistoryStatusChanged,
	}, actions)
}

func TestUpdateOrder_StrictPolicy(t *testing.T) {
	f := newOrderFixture(t)
	cfg := testutil.TestConfig()
	cfg.TransitionPolicy = models.PolicyStrict
	config.SetConfig(cfg)

	order := f.createOrder(t)
	path := fmt.Sprintf("/orders/%.0f", order["id"])

	w, response := performJSON(t, f.router, http.MethodPut, path, map[string]interface{}{"status_id": models.StatusIssued})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := assertErrorCode(t, response, "INVALID_TRANSITION")
	assert.Equal(t, "Order cannot move from Accepted to Issued", errorData["message"])

	w, _ = performJSON(t, f.router, http.MethodPut, path, map[string]interface{}{"status_id": models.StatusDiagnosis})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUseOrderPart(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)
	part := models.SparePart{Name: "Display", Quantity: 2}
	require.NoError(t, f.db.Create(&part).Error)
	path := fmt.Sprintf("/orders/%.0f/parts", order["id"])

	w, response := performJSON(t, f.router, http.MethodPost, path, map[string]interface{}{"part_id": part.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataMap(t, response)["parts"].([]interface{}), 1)

	w, response = performJSON(t, f.router, http.MethodPost, path, map[string]interface{}{"part_id": part.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "INSUFFICIENT_STOCK")

	w, response = performJSON(t, f.router, http.MethodPost, path, map[string]interface{}{"part_id": part.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "VALIDATION_ERROR")

	var stored models.SparePart
	require.NoError(t, f.db.First(&stored, part.ID).Error)
	assert.Equal(t, 0, stored.Quantity)
}

func TestGetOrderReceipt(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t, f.service.ID)

	w, _ := performJSON(t, f.router, http.MethodGet, fmt.Sprintf("/orders/%.0f/receipt", order["id"]), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf("receipt-%.0f.pdf", order["id"]))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w, response := performJSON(t, f.router, http.MethodGet, "/orders/9999/receipt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, response, "NOT_FOUND")
}

func TestClientOrders_OwnOnly(t *testing.T) {
	f := newOrderFixture(t)
	other := testutil.CreateClient(t, f.db, "Boris", "+79000000002", "")
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	first := testutil.CreateOrder(t, f.db, f.client, f.device, models.StatusAccepted, base)
	second := testutil.CreateOrder(t, f.db, f.client, f.device, models.StatusReady, base.Add(24*time.Hour))
	foreign := testutil.CreateOrder(t, f.db, other, f.device, models.StatusAccepted, base)

	w, response := performJSON(t, f.router, http.MethodGet, "/client/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, response)
	assert.Equal(t, float64(2), data["totalCount"])
	orders := data["orders"].([]interface{})
	require.Len(t, orders, 2)
	assert.Equal(t, float64(second.ID), orders[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(first.ID), orders[1].(map[string]interface{})["id"])

	w, _ = performJSON(t, f.router, http.MethodGet, fmt.Sprintf("/client/orders/%d", first.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = performJSON(t, f.router, http.MethodGet, fmt.Sprintf("/client/orders/%d", foreign.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, response, "NOT_FOUND")
}
