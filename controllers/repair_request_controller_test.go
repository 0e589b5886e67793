package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestRouter(staff *models.User, client, other *models.Client) *gin.Engine {
	router := setupTestRouter()
	router.POST("/repair-requests", mockClientAuth(client), SubmitRequest)
	router.GET("/repair-requests/my-requests", mockClientAuth(client), ListMyRequests)
	router.GET("/repair-requests/my-requests/:id", mockClientAuth(client), GetMyRequest)
	router.GET("/other/my-requests/:id", mockClientAuth(other), GetMyRequest)
	router.GET("/repair-requests", mockStaffAuth(staff), ListRequests)
	router.GET("/repair-requests/:id", mockStaffAuth(staff), GetRequest)
	router.PUT("/repair-requests/:id/status", mockStaffAuth(staff), UpdateRequestStatus)
	router.POST("/repair-requests/:id/convert", mockStaffAuth(staff), ConvertRequest)
	return router
}

func submitRequest(t *testing.T, router *gin.Engine, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w, response := performJSON(t, router, http.MethodPost, "/repair-requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return dataMap(t, response)
}

func validRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"device_type":         "Smartphone",
		"device_brand":        "Apple",
		"device_model":        "iPhone 12",
		"problem_description": "Screen is cracked",
		"contact_phone":       "+79000000001",
	}
}

func TestSubmitRequest(t *testing.T) {
	db := setupTestEnv(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager@shop.test")
	anna := testutil.CreateClient(t, db, "Anna", "+79000000001", "anna@mail.test")
	boris := testutil.CreateClient(t, db, "Boris", "+79000000002", "")
	router := requestRouter(manager, anna, boris)

	request := submitRequest(t, router, validRequestBody())
	assert.Equal(t, "pending", request["status"])
	assert.Equal(t, "anna@mail.test", request["contact_email"])
	assert.Equal(t, float64(anna.ID), request["client_id"])
	assert.Nil(t, request["order_id"])

	body := validRequestBody()
	body["contact_email"] = "work@mail.test"
	assert.Equal(t, "work@mail.test", submitRequest(t, router, body)["contact_email"])

	delete(body, "device_model")
	w, response := performJSON(t, router, http.MethodPost, "/repair-requests", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"device_model"}, fieldNames(assertErrorCode(t, response, "VALIDATION_ERROR")))

	w, response = performJSON(t, router, http.MethodGet, "/repair-requests/my-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)

	path := fmt.Sprintf("/repair-requests/my-requests/%.0f", request["id"])
	w, _ = performJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = performJSON(t, router, http.MethodGet, fmt.Sprintf("/other/my-requests/%.0f", request["id"]), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, response, "NOT_FOUND")
}

func TestTriageRequests(t *testing.T) {
	db := setupTestEnv(t)
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager@shop.test")
	anna := testutil.CreateClient(t, db, "Anna", "+79000000001", "anna@mail.test")
	router := requestRouter(manager, anna, anna)

	first := submitRequest(t, router, validRequestBody())
	second := submitRequest(t, router, validRequestBody())
	statusPath := func(req map[string]interface{}) string {
		return fmt.Sprintf("/repair-requests/%.0f/status", req["id"])
	}

	w, response := performJSON(t, router, http.MethodPut, statusPath(first), map[string]interface{}{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", dataMap(t, response)["status"])

	// Setting the same status again is a no-op
	w, _ = performJSON(t, router, http.MethodPut, statusPath(first), map[string]interface{}{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = performJSON(t, router, http.MethodPut, statusPath(first), map[string]interface{}{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := assertErrorCode(t, response, "REQUEST_ALREADY_DECIDED")
	assert.Equal(t, "Repair request has already been approved", errorData["message"])

	w, response = performJSON(t, router, http.MethodPut, statusPath(second), map[string]interface{}{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"status"}, fieldNames(assertErrorCode(t, response, "VALIDATION_ERROR")))

	w, _ = performJSON(t, router, http.MethodPut, "/repair-requests/9999/status", map[string]interface{}{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, response = performJSON(t, router, http.MethodGet, "/repair-requests?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, response)
	assert.Equal(t, float64(1), data["totalCount"])
	listed := data["requests"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, second["id"], listed["id"])
	assert.Equal(t, "Anna", listed["client"].(map[string]interface{})["name"])

	w, response = performJSON(t, router, http.MethodGet, "/repair-requests?status=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "VALIDATION_ERROR")

	w, response = performJSON(t, router, http.MethodGet, fmt.Sprintf("/repair-requests/%.0f", first["id"]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", dataMap(t, response)["status"])
}

func TestConvertRequest(t *testing.T) {
	db := setupTestEnv(t)
	master := testutil.CreateUser(t, db, models.RoleMaster, "master@shop.test")
	anna := testutil.CreateClient(t, db, "Anna", "+79000000001", "anna@mail.test")
	device := testutil.CreateDevice(t, db, "Smartphone", "Apple", "iPhone 12")
	service := testutil.CreateService(t, db, "Screen replacement", 2500)
	router := requestRouter(master, anna, anna)

	approved := submitRequest(t, router, validRequestBody())
	pending := submitRequest(t, router, validRequestBody())
	w, _ := performJSON(t, router, http.MethodPut, fmt.Sprintf("/repair-requests/%.0f/status", approved["id"]), map[string]interface{}{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	convertPath := func(req map[string]interface{}) string {
		return fmt.Sprintf("/repair-requests/%.0f/convert", req["id"])
	}

	w, response := performJSON(t, router, http.MethodPost, convertPath(pending), map[string]interface{}{
		"device_id": device.ID, "service_ids": []uint{service.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "REQUEST_NOT_APPROVED")

	w, response = performJSON(t, router, http.MethodPost, convertPath(approved), map[string]interface{}{
		"service_ids": []uint{service.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"device_id"}, fieldNames(assertErrorCode(t, response, "VALIDATION_ERROR")))

	w, response = performJSON(t, router, http.MethodPost, convertPath(approved), map[string]interface{}{
		"new_device":  map[string]interface{}{"type_id": device.TypeID, "brand_id": 9999, "model": "iPhone 12"},
		"service_ids": []uint{service.ID},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"new_device.brand_id"}, fieldNames(assertErrorCode(t, response, "VALIDATION_ERROR")))

	w, response = performJSON(t, router, http.MethodPost, convertPath(approved), map[string]interface{}{
		"new_device":  map[string]interface{}{"type_id": device.TypeID, "brand_id": device.BrandID, "model": "iPhone 12", "serial_number": "SN-77"},
		"service_ids": []uint{service.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := dataMap(t, response)
	assert.Equal(t, float64(anna.ID), order["client_id"])
	assert.Equal(t, float64(master.ID), order["master_id"])
	assert.Equal(t, approved["id"], order["request_id"])
	assert.Equal(t, "Screen is cracked", order["problem_description"])
	assert.Equal(t, "SN-77", order["device"].(map[string]interface{})["serial_number"])
	assert.Len(t, order["services"].([]interface{}), 1)

	w, response = performJSON(t, router, http.MethodGet, fmt.Sprintf("/repair-requests/%.0f", approved["id"]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order["id"], dataMap(t, response)["order_id"])

	w, response = performJSON(t, router, http.MethodPost, convertPath(approved), map[string]interface{}{
		"device_id": device.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "REQUEST_ALREADY_CONVERTED")

	var orders int64
	db.Model(&models.RepairOrder{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}
